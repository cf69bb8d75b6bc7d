package models

import "time"

type WorkflowStatus string

const (
	IdleWorkflowStatus      WorkflowStatus = "IDLE"
	RunningWorkflowStatus   WorkflowStatus = "RUNNING"
	PausedWorkflowStatus    WorkflowStatus = "PAUSED"
	CompletedWorkflowStatus WorkflowStatus = "COMPLETED"
	FailedWorkflowStatus    WorkflowStatus = "FAILED"
	CancelledWorkflowStatus WorkflowStatus = "CANCELLED"
)

// ValidWorkflowStatus reports whether s is one of the declared workflow statuses.
// PAUSED and CANCELLED are reserved for external bookkeeping; the engine never
// produces them itself.
func ValidWorkflowStatus(s WorkflowStatus) bool {
	switch s {
	case IdleWorkflowStatus, RunningWorkflowStatus, PausedWorkflowStatus,
		CompletedWorkflowStatus, FailedWorkflowStatus, CancelledWorkflowStatus:
		return true
	}
	return false
}

// Workflow is a named, ordered collection of tasks driven together to a
// terminal outcome. Task insertion order is the tie-break for equal priority.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Tasks       []*WorkflowTask `json:"tasks,omitempty"`
	Status      WorkflowStatus  `json:"status"`
	Progress    float64         `json:"progress"` // Percentage of completed tasks; 100 only on a completed run
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	ErrorMsg    string          `json:"error,omitempty"` // Last error message when failed
}

// Task returns the task with the given ID, or nil if absent.
func (w *Workflow) Task(id string) *WorkflowTask {
	for _, t := range w.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
