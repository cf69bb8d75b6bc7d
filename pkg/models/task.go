package models

import "time"

type TaskStatus string

const (
	PendingTaskStatus   TaskStatus = "PENDING"
	RunningTaskStatus   TaskStatus = "RUNNING"
	FailedTaskStatus    TaskStatus = "FAILED"
	CompletedTaskStatus TaskStatus = "COMPLETED"
)

// WorkflowTask represents a single unit of work inside a workflow.
// Dependencies reference task IDs within the same workflow.
type WorkflowTask struct {
	ID           string                 `json:"id"`                     // Unique identifier within the workflow (e.g., "research")
	Type         string                 `json:"type"`                   // Task type tag, opaque to the engine
	AgentID      string                 `json:"agent_id"`               // Agent assigned to execute the task
	Payload      map[string]interface{} `json:"payload,omitempty"`      // Task input, passed to the agent verbatim
	Dependencies []string               `json:"dependencies,omitempty"` // Task IDs that must complete before this task starts
	Priority     int                    `json:"priority"`               // Higher runs first among ready tasks
	Timeout      time.Duration          `json:"timeout"`                // Per-attempt timeout
	MaxRetries   int                    `json:"max_retries"`            // Retry budget after the first attempt
	RetryCount   int                    `json:"retry_count"`            // Retries consumed so far
	Status       TaskStatus             `json:"status"`
	Result       *TaskResult            `json:"result,omitempty"`       // Outcome of the most recent attempt, set once terminal
	CreatedAt    time.Time              `json:"created_at"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`   // Nullable start time
	CompletedAt  *time.Time             `json:"completed_at,omitempty"` // Nullable end time
}

// Terminal reports whether the task reached a final status.
func (t *WorkflowTask) Terminal() bool {
	return t.Status == CompletedTaskStatus || t.Status == FailedTaskStatus
}
