package coordinator

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/TIMPICKLE/agentflow/pkg/agent"
	"github.com/TIMPICKLE/agentflow/pkg/models"
)

// executeTask runs one task against its agent, racing every attempt against
// the task's timeout and applying the retry policy on failure. Retries run
// immediately inside the same dispatch slot; the slot is not returned to the
// scheduler between attempts.
func (c *Coordinator) executeTask(ctx context.Context, task *models.WorkflowTask, ag agent.Agent) error {
	if ag == nil {
		err := &UnknownAgentError{AgentID: task.AgentID}
		c.failTask(task, err, 0)
		return err
	}

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	var lastErr error
	var lastElapsed time.Duration
	for attempt := 0; ; attempt++ {
		out, elapsed, err := c.attempt(ctx, task, ag, timeout)
		if err == nil {
			c.completeTask(task, out, elapsed)
			return nil
		}
		lastErr = err
		lastElapsed = elapsed
		c.logger.Errorf("Task '%s' attempt %d failed: %v", task.ID, attempt+1, err)

		if attempt >= task.MaxRetries {
			break
		}
		// retry budget left: back to pending, re-attempt in place
		c.mu.Lock()
		task.RetryCount++
		task.Status = models.PendingTaskStatus
		c.mu.Unlock()
		c.logger.Infof("Retrying task '%s' (%d/%d)", task.ID, attempt+1, task.MaxRetries)
	}

	c.failTask(task, lastErr, lastElapsed)
	return lastErr
}

// attempt performs a single invocation of the agent, bounded by timeout.
func (c *Coordinator) attempt(ctx context.Context, task *models.WorkflowTask, ag agent.Agent, timeout time.Duration) (interface{}, time.Duration, error) {
	c.mu.Lock()
	task.Status = models.RunningTaskStatus
	c.mu.Unlock()

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type attemptResult struct {
		out interface{}
		err error
	}
	resultCh := make(chan attemptResult, 1)
	start := time.Now()
	go func() {
		out, err := ag.Execute(attemptCtx, task.Type, task.Payload)
		resultCh <- attemptResult{out: out, err: err}
	}()

	select {
	case r := <-resultCh:
		return r.out, time.Since(start), r.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return nil, time.Since(start), errors.Wrapf(ctx.Err(), "task %s cancelled", task.ID)
		}
		return nil, time.Since(start), errors.Errorf("task %s timed out after %s", task.ID, timeout)
	}
}

func (c *Coordinator) completeTask(task *models.WorkflowTask, out interface{}, elapsed time.Duration) {
	res := models.TaskResult{
		AgentID:       task.AgentID,
		TaskID:        task.ID,
		Status:        models.SuccessResultStatus,
		Output:        out,
		ExecutionTime: elapsed,
		Timestamp:     time.Now(),
	}
	now := time.Now()
	c.mu.Lock()
	task.Status = models.CompletedTaskStatus
	task.Result = &res
	task.CompletedAt = &now
	c.history = append(c.history, res)
	c.mu.Unlock()
	c.logger.Infof("Task '%s' completed in %s", task.ID, elapsed)
}

func (c *Coordinator) failTask(task *models.WorkflowTask, taskErr error, elapsed time.Duration) {
	res := models.TaskResult{
		AgentID:       task.AgentID,
		TaskID:        task.ID,
		Status:        models.FailedResultStatus,
		ErrorMsg:      taskErr.Error(),
		ExecutionTime: elapsed,
		Timestamp:     time.Now(),
	}
	now := time.Now()
	c.mu.Lock()
	task.Status = models.FailedTaskStatus
	task.Result = &res
	task.CompletedAt = &now
	c.history = append(c.history, res)
	c.mu.Unlock()
	c.logger.Errorf("Task '%s' failed after %d retries: %v", task.ID, task.RetryCount, taskErr)
}
