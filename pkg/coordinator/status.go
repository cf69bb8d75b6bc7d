package coordinator

import (
	"time"

	"github.com/TIMPICKLE/agentflow/pkg/agent"
	"github.com/TIMPICKLE/agentflow/pkg/models"
)

// TaskStats counts a workflow's tasks by status.
type TaskStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// WorkflowStatusReport is a read-only snapshot of one workflow.
type WorkflowStatusReport struct {
	WorkflowID  string                `json:"workflow_id"`
	Name        string                `json:"name"`
	Status      models.WorkflowStatus `json:"status"`
	Progress    float64               `json:"progress"`
	Tasks       TaskStats             `json:"tasks"`
	CreatedAt   time.Time             `json:"created_at"`
	StartedAt   *time.Time            `json:"started_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	ErrorMsg    string                `json:"error,omitempty"`
}

// AgentStatusReport is a read-only snapshot of one agent.
type AgentStatusReport struct {
	AgentID string       `json:"agent_id"`
	Status  agent.Status `json:"status"`
	Stats   agent.Stats  `json:"stats"`
}

// SystemStatusReport is a read-only snapshot of the whole coordinator.
type SystemStatusReport struct {
	Workflows struct {
		Total    int                           `json:"total"`
		ByStatus map[models.WorkflowStatus]int `json:"by_status"`
	} `json:"workflows"`
	Agents struct {
		Total   int `json:"total"`
		Idle    int `json:"idle"`
		Working int `json:"working"`
		Error   int `json:"error"`
	} `json:"agents"`
	Tasks struct {
		TotalExecuted int     `json:"total_executed"`
		SuccessRate   float64 `json:"success_rate"` // percentage across all executed tasks
	} `json:"tasks"`
	Messages int `json:"messages"`
}

// WorkflowStatus returns a snapshot of the workflow's state and task counts.
func (c *Coordinator) WorkflowStatus(workflowID string) (WorkflowStatusReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	wf, ok := c.workflows[workflowID]
	if !ok {
		return WorkflowStatusReport{}, &UnknownWorkflowError{WorkflowID: workflowID}
	}

	report := WorkflowStatusReport{
		WorkflowID:  wf.ID,
		Name:        wf.Name,
		Status:      wf.Status,
		Progress:    wf.Progress,
		CreatedAt:   wf.CreatedAt,
		StartedAt:   wf.StartedAt,
		CompletedAt: wf.CompletedAt,
		ErrorMsg:    wf.ErrorMsg,
	}
	report.Tasks.Total = len(wf.Tasks)
	for _, t := range wf.Tasks {
		switch t.Status {
		case models.PendingTaskStatus:
			report.Tasks.Pending++
		case models.RunningTaskStatus:
			report.Tasks.Running++
		case models.CompletedTaskStatus:
			report.Tasks.Completed++
		case models.FailedTaskStatus:
			report.Tasks.Failed++
		}
	}
	return report, nil
}

// AgentStatus returns the agent's coarse status and its self-reported
// performance counters.
func (c *Coordinator) AgentStatus(agentID string) (AgentStatusReport, error) {
	c.mu.RLock()
	a, ok := c.agents[agentID]
	c.mu.RUnlock()
	if !ok {
		return AgentStatusReport{}, &UnknownAgentError{AgentID: agentID}
	}
	return AgentStatusReport{
		AgentID: a.ID(),
		Status:  a.Status(),
		Stats:   a.Stats(),
	}, nil
}

// SystemStatus aggregates workflow, agent, task, and message counts.
func (c *Coordinator) SystemStatus() SystemStatusReport {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var report SystemStatusReport
	report.Workflows.Total = len(c.workflows)
	report.Workflows.ByStatus = make(map[models.WorkflowStatus]int)
	for _, wf := range c.workflows {
		report.Workflows.ByStatus[wf.Status]++
	}

	report.Agents.Total = len(c.agents)
	for _, a := range c.agents {
		switch a.Status() {
		case agent.IdleStatus:
			report.Agents.Idle++
		case agent.WorkingStatus:
			report.Agents.Working++
		case agent.ErrorStatus:
			report.Agents.Error++
		}
	}

	report.Tasks.TotalExecuted = len(c.history)
	if len(c.history) > 0 {
		succeeded := 0
		for _, res := range c.history {
			if res.Status == models.SuccessResultStatus {
				succeeded++
			}
		}
		report.Tasks.SuccessRate = float64(succeeded) / float64(len(c.history)) * 100
	}

	report.Messages = len(c.messages)
	return report
}
