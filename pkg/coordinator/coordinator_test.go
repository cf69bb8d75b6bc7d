package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/TIMPICKLE/agentflow/pkg/agent"
	"github.com/TIMPICKLE/agentflow/pkg/coordinator"
	"github.com/TIMPICKLE/agentflow/pkg/models"
)

func okAgent(id string) *agent.LocalAgent {
	return agent.NewLocalAgent(id, id, "",
		func(ctx context.Context, taskType string, payload map[string]interface{}) (interface{}, error) {
			return "done", nil
		})
}

func TestCreateTask_UnknownAgent(t *testing.T) {
	co := coordinator.New(newLogger(t))
	_, err := co.CreateTask("t1", "compute", "missing", nil, nil, 0, time.Second)
	var agentErr *coordinator.UnknownAgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("Expected UnknownAgentError, got %T: %v", err, err)
	}
	if agentErr.AgentID != "missing" {
		t.Errorf("Expected agent ID 'missing', got %q", agentErr.AgentID)
	}
}

func TestCreateTask_Defaults(t *testing.T) {
	co := coordinator.New(newLogger(t), coordinator.WithDefaultTimeout(7*time.Second))
	if err := co.RegisterAgent(okAgent("a1")); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}

	task, err := co.CreateTask("t1", "compute", "a1", nil, nil, 0, 0)
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if task.Timeout != 7*time.Second {
		t.Errorf("Expected default timeout 7s, got %s", task.Timeout)
	}
	if task.MaxRetries != models.DefaultMaxRetries {
		t.Errorf("Expected default retry budget %d, got %d", models.DefaultMaxRetries, task.MaxRetries)
	}
	if task.Status != models.PendingTaskStatus {
		t.Errorf("Expected status PENDING, got %s", task.Status)
	}

	task, err = co.CreateTask("t2", "compute", "a1", nil, nil, 0, time.Second, models.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if task.MaxRetries != 0 {
		t.Errorf("Expected retry budget 0, got %d", task.MaxRetries)
	}
}

func TestAddTask_UnknownWorkflow(t *testing.T) {
	co := coordinator.New(newLogger(t))
	if err := co.RegisterAgent(okAgent("a1")); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	task := mustCreateTask(t, co, "t1", "a1", nil, 0)

	err := co.AddTask("missing-wf", task)
	var wfErr *coordinator.UnknownWorkflowError
	if !errors.As(err, &wfErr) {
		t.Fatalf("Expected UnknownWorkflowError, got %T: %v", err, err)
	}
}

func TestAddTask_DuplicateID(t *testing.T) {
	co := coordinator.New(newLogger(t))
	if err := co.RegisterAgent(okAgent("a1")); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	wf, err := co.CreateWorkflow("wf1", "dup", "")
	if err != nil {
		t.Fatalf("Failed to create workflow: %v", err)
	}
	mustAddTask(t, co, wf.ID, mustCreateTask(t, co, "t1", "a1", nil, 0))

	if err := co.AddTask(wf.ID, mustCreateTask(t, co, "t1", "a1", nil, 0)); err == nil {
		t.Error("Expected an error adding a duplicate task ID")
	}
}

func TestUnregisterAgent(t *testing.T) {
	co := coordinator.New(newLogger(t))
	if err := co.RegisterAgent(okAgent("a1")); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	if err := co.UnregisterAgent("a1"); err != nil {
		t.Fatalf("Failed to unregister agent: %v", err)
	}
	err := co.UnregisterAgent("a1")
	var agentErr *coordinator.UnknownAgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("Expected UnknownAgentError on double unregister, got %T: %v", err, err)
	}
}

func TestAddWorkflow_ValidatesAgents(t *testing.T) {
	co := coordinator.New(newLogger(t))
	if err := co.RegisterAgent(okAgent("a1")); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}

	wf := &models.Workflow{
		Name:   "external",
		Status: models.IdleWorkflowStatus,
		Tasks: []*models.WorkflowTask{
			{ID: "t1", AgentID: "nobody", Status: models.PendingTaskStatus},
		},
	}
	err := co.AddWorkflow(wf)
	var agentErr *coordinator.UnknownAgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("Expected UnknownAgentError, got %T: %v", err, err)
	}

	wf.Tasks[0].AgentID = "a1"
	if err := co.AddWorkflow(wf); err != nil {
		t.Fatalf("Failed to add workflow: %v", err)
	}
	if wf.ID == "" {
		t.Error("Expected a generated workflow ID")
	}
	if err := co.AddWorkflow(wf); err == nil {
		t.Error("Expected an error re-adding the same workflow ID")
	}

	bogus := &models.Workflow{Name: "bogus", Status: models.WorkflowStatus("LIMBO")}
	if err := co.AddWorkflow(bogus); err == nil {
		t.Error("Expected an error for an invalid workflow status")
	}
}

func TestSystemStatus(t *testing.T) {
	co := coordinator.New(newLogger(t))
	if err := co.RegisterAgent(okAgent("good")); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	failing := agent.NewLocalAgent("bad", "bad", "",
		func(ctx context.Context, taskType string, payload map[string]interface{}) (interface{}, error) {
			return nil, errors.New("always fails")
		})
	if err := co.RegisterAgent(failing); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}

	okWf, err := co.CreateWorkflow("wf-ok", "succeeds", "")
	if err != nil {
		t.Fatalf("Failed to create workflow: %v", err)
	}
	mustAddTask(t, co, okWf.ID, mustCreateTask(t, co, "t1", "good", nil, 0))
	if _, err := co.ExecuteWorkflow(context.Background(), okWf.ID); err != nil {
		t.Fatalf("Workflow failed: %v", err)
	}

	badWf, err := co.CreateWorkflow("wf-bad", "fails", "")
	if err != nil {
		t.Fatalf("Failed to create workflow: %v", err)
	}
	mustAddTask(t, co, badWf.ID, mustCreateTask(t, co, "t2", "bad", nil, 0, models.WithMaxRetries(0)))
	if _, err := co.ExecuteWorkflow(context.Background(), badWf.ID); err == nil {
		t.Fatal("Expected failing workflow to return an error")
	}

	status := co.SystemStatus()
	if status.Workflows.Total != 2 {
		t.Errorf("Expected 2 workflows, got %d", status.Workflows.Total)
	}
	if status.Workflows.ByStatus[models.CompletedWorkflowStatus] != 1 {
		t.Errorf("Expected 1 completed workflow, got %d", status.Workflows.ByStatus[models.CompletedWorkflowStatus])
	}
	if status.Workflows.ByStatus[models.FailedWorkflowStatus] != 1 {
		t.Errorf("Expected 1 failed workflow, got %d", status.Workflows.ByStatus[models.FailedWorkflowStatus])
	}
	if status.Agents.Total != 2 {
		t.Errorf("Expected 2 agents, got %d", status.Agents.Total)
	}
	if status.Tasks.TotalExecuted != 2 {
		t.Errorf("Expected 2 executed tasks, got %d", status.Tasks.TotalExecuted)
	}
	if status.Tasks.SuccessRate != 50 {
		t.Errorf("Expected 50%% success rate, got %.1f", status.Tasks.SuccessRate)
	}

	report, err := co.AgentStatus("good")
	if err != nil {
		t.Fatalf("Failed to get agent status: %v", err)
	}
	if report.Stats.Requests != 1 || report.Stats.Successes != 1 {
		t.Errorf("Unexpected agent stats: %+v", report.Stats)
	}
	if _, err := co.AgentStatus("nobody"); err == nil {
		t.Error("Expected an error for an unknown agent")
	}
}

func TestWorkflowStatusReport(t *testing.T) {
	co := coordinator.New(newLogger(t))
	if err := co.RegisterAgent(okAgent("a1")); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	wf, err := co.CreateWorkflow("wf1", "report", "desc")
	if err != nil {
		t.Fatalf("Failed to create workflow: %v", err)
	}
	mustAddTask(t, co, wf.ID, mustCreateTask(t, co, "t1", "a1", nil, 0))
	mustAddTask(t, co, wf.ID, mustCreateTask(t, co, "t2", "a1", []string{"t1"}, 0))

	report, err := co.WorkflowStatus(wf.ID)
	if err != nil {
		t.Fatalf("Failed to get workflow status: %v", err)
	}
	if report.Status != models.IdleWorkflowStatus {
		t.Errorf("Expected IDLE before execution, got %s", report.Status)
	}
	if report.Tasks.Total != 2 || report.Tasks.Pending != 2 {
		t.Errorf("Unexpected task stats before execution: %+v", report.Tasks)
	}

	if _, err := co.ExecuteWorkflow(context.Background(), wf.ID); err != nil {
		t.Fatalf("Workflow failed: %v", err)
	}

	report, err = co.WorkflowStatus(wf.ID)
	if err != nil {
		t.Fatalf("Failed to get workflow status: %v", err)
	}
	if report.Status != models.CompletedWorkflowStatus || report.Progress != 100 {
		t.Errorf("Expected COMPLETED at 100%%, got %s at %.1f", report.Status, report.Progress)
	}
	if report.Tasks.Completed != 2 {
		t.Errorf("Expected 2 completed tasks, got %d", report.Tasks.Completed)
	}
	if report.StartedAt == nil || report.CompletedAt == nil {
		t.Error("Expected start and completion timestamps")
	}

	if _, err := co.WorkflowStatus("missing"); err == nil {
		t.Error("Expected an error for an unknown workflow")
	}
}

func TestClearHistoryAndReset(t *testing.T) {
	co := coordinator.New(newLogger(t))
	a := okAgent("a1")
	if err := co.RegisterAgent(a); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	wf, err := co.CreateWorkflow("wf1", "reset", "")
	if err != nil {
		t.Fatalf("Failed to create workflow: %v", err)
	}
	mustAddTask(t, co, wf.ID, mustCreateTask(t, co, "t1", "a1", nil, 0))
	if _, err := co.ExecuteWorkflow(context.Background(), wf.ID); err != nil {
		t.Fatalf("Workflow failed: %v", err)
	}
	if _, err := co.SendMessage("a1", "a1", "note to self", "text", nil); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}

	co.ClearHistory()
	status := co.SystemStatus()
	if status.Tasks.TotalExecuted != 0 || status.Messages != 0 {
		t.Errorf("Expected empty history after ClearHistory, got %+v", status.Tasks)
	}
	// workflows survive a history clear
	if status.Workflows.Total != 1 {
		t.Errorf("Expected workflow to survive ClearHistory, got %d", status.Workflows.Total)
	}

	co.Reset()
	status = co.SystemStatus()
	if status.Workflows.Total != 0 {
		t.Errorf("Expected no workflows after Reset, got %d", status.Workflows.Total)
	}
	if status.Agents.Total != 1 {
		t.Errorf("Expected agents to stay registered after Reset, got %d", status.Agents.Total)
	}
	if a.Stats().Requests != 0 {
		t.Errorf("Expected agent counters reset, got %+v", a.Stats())
	}
	if len(a.Inbox()) != 0 {
		t.Error("Expected agent inbox cleared by Reset")
	}
}
