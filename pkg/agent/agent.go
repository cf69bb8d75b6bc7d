package agent

import (
	"context"
	"time"

	"github.com/TIMPICKLE/agentflow/pkg/models"
)

// Status is the coarse agent state the coordinator reads for observability.
// Dispatch is never gated on it.
type Status string

const (
	IdleStatus    Status = "idle"
	WorkingStatus Status = "working"
	ErrorStatus   Status = "error"
)

// Stats holds the performance counters an agent reports for monitoring.
// Maintaining them is the agent's own responsibility, not the scheduler's.
type Stats struct {
	Requests      int           `json:"requests"`
	Successes     int           `json:"successes"`
	Errors        int           `json:"errors"`
	TotalExecTime time.Duration `json:"total_execution_time"`
	AvgExecTime   time.Duration `json:"avg_execution_time"`
}

// ExecuteFunc is the signature of a task handler. The payload is passed
// through from the task verbatim.
type ExecuteFunc func(ctx context.Context, taskType string, payload map[string]interface{}) (interface{}, error)

// Agent is the engine's only dependency on domain logic. Each role is a
// separate type implementing this interface; the coordinator depends on the
// interface alone, never on concrete role types.
type Agent interface {
	ID() string

	// Execute runs one task attempt. It must honor ctx cancellation; the
	// coordinator enforces the task's timeout through ctx.
	Execute(ctx context.Context, taskType string, payload map[string]interface{}) (interface{}, error)

	// Deliver appends a message to the agent's private inbox.
	Deliver(msg models.Message)

	Status() Status
	Stats() Stats
}
