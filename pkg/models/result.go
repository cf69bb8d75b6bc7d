package models

import "time"

type ResultStatus string

const (
	SuccessResultStatus ResultStatus = "success"
	FailedResultStatus  ResultStatus = "failed"
)

// TaskResult is the outcome of a single task execution attempt.
type TaskResult struct {
	AgentID       string        `json:"agent_id"`
	TaskID        string        `json:"task_id"`
	Status        ResultStatus  `json:"status"`
	Output        interface{}   `json:"output,omitempty"`
	ErrorMsg      string        `json:"error,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	Timestamp     time.Time     `json:"timestamp"`
}
