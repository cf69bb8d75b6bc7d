package models

// DefaultMaxRetries is the retry budget for tasks created without an
// explicit one.
const DefaultMaxRetries = 3

// TaskOption customizes a WorkflowTask at creation time.
type TaskOption func(*WorkflowTask)

// WithMaxRetries sets the task's retry budget. Negative values disable
// retries entirely.
func WithMaxRetries(n int) TaskOption {
	return func(t *WorkflowTask) {
		if n < 0 {
			n = 0
		}
		t.MaxRetries = n
	}
}
