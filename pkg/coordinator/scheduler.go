package coordinator

import (
	"context"
	"sort"
	"time"

	"github.com/TIMPICKLE/agentflow/pkg/models"
)

type taskOutcome struct {
	task *models.WorkflowTask
	err  error
}

// ExecuteWorkflow drives the workflow to a terminal state and returns it.
// On failure the workflow is marked failed with the triggering error message
// and that error is returned alongside it.
//
// The workflow's tasks, progress, and status are owned by this call for its
// duration; callers must not run the same workflow concurrently.
func (c *Coordinator) ExecuteWorkflow(ctx context.Context, workflowID string) (*models.Workflow, error) {
	c.mu.RLock()
	wf, ok := c.workflows[workflowID]
	c.mu.RUnlock()
	if !ok {
		return nil, &UnknownWorkflowError{WorkflowID: workflowID}
	}

	c.logger.Infof("Starting workflow '%s' (%s) with %d tasks", wf.Name, wf.ID, len(wf.Tasks))
	started := time.Now()
	c.mu.Lock()
	wf.Status = models.RunningWorkflowStatus
	wf.StartedAt = &started
	wf.Progress = 0
	c.mu.Unlock()

	if err := c.runTasks(ctx, wf); err != nil {
		finished := time.Now()
		c.mu.Lock()
		wf.Status = models.FailedWorkflowStatus
		wf.ErrorMsg = err.Error()
		wf.CompletedAt = &finished
		c.mu.Unlock()
		c.logger.Errorf("Workflow '%s' failed: %v", wf.Name, err)
		return wf, err
	}

	finished := time.Now()
	c.mu.Lock()
	wf.Status = models.CompletedWorkflowStatus
	wf.Progress = 100
	wf.CompletedAt = &finished
	c.mu.Unlock()
	c.logger.Infof("Workflow '%s' completed", wf.Name)
	return wf, nil
}

// runTasks is the dispatch loop: compute the ready set, fill free slots,
// suspend until at least one in-flight execution finishes, repeat. Once a
// task definitively fails, no new tasks are started but in-flight siblings
// are allowed to finish.
func (c *Coordinator) runTasks(ctx context.Context, wf *models.Workflow) error {
	total := len(wf.Tasks)
	if total == 0 {
		return nil
	}

	completed := make(map[string]struct{}, total)
	running := make(map[string]struct{}, c.maxConcurrent)
	outcomes := make(chan taskOutcome, total)

	// tasks already terminal from an earlier run keep their outcome
	terminal := 0
	c.mu.RLock()
	for _, task := range wf.Tasks {
		if task.Status == models.CompletedTaskStatus {
			completed[task.ID] = struct{}{}
		}
		if task.Terminal() {
			terminal++
		}
	}
	c.mu.RUnlock()

	var failure error

	for terminal < total {
		if failure == nil {
			ready := c.readyTasks(wf, completed, running)

			dispatched := 0
		fill:
			for _, task := range ready {
				select {
				case c.sem <- struct{}{}:
				default:
					// dispatch budget saturated, possibly by another
					// workflow on this coordinator
					break fill
				}
				c.dispatch(ctx, wf, task, running, outcomes)
				dispatched++
			}

			if dispatched == 0 && len(running) == 0 {
				if len(ready) == 0 {
					return c.stallError(wf, completed)
				}
				// all slots held by other workflows; block for one
				c.sem <- struct{}{}
				c.dispatch(ctx, wf, ready[0], running, outcomes)
			}
		}

		if len(running) == 0 {
			// a task failed and every dispatched sibling has drained
			return failure
		}

		out := <-outcomes
		<-c.sem
		delete(running, out.task.ID)
		terminal++

		if out.err != nil {
			if failure == nil {
				failure = out.err
			}
		} else {
			completed[out.task.ID] = struct{}{}
		}

		// only completed tasks advance progress; a failed task keeps the
		// run below 100 so progress reaches 100 iff the workflow completes
		c.mu.Lock()
		wf.Progress = float64(len(completed)) / float64(total) * 100
		c.mu.Unlock()
		c.logger.Infof("Workflow '%s' progress: %.1f%%", wf.Name, wf.Progress)
	}

	return failure
}

// readyTasks returns the pending tasks whose dependencies are all completed,
// ordered by descending priority with workflow insertion order breaking ties.
func (c *Coordinator) readyTasks(wf *models.Workflow, completed, running map[string]struct{}) []*models.WorkflowTask {
	var ready []*models.WorkflowTask
	c.mu.RLock()
	for _, task := range wf.Tasks {
		if task.Status != models.PendingTaskStatus {
			continue
		}
		if _, ok := running[task.ID]; ok {
			continue
		}
		met := true
		for _, dep := range task.Dependencies {
			if _, ok := completed[dep]; !ok {
				met = false
				break
			}
		}
		if met {
			ready = append(ready, task)
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].Priority > ready[j].Priority
	})
	return ready
}

// dispatch marks the task running and launches its execution. The caller must
// already hold a slot on c.sem.
func (c *Coordinator) dispatch(ctx context.Context, wf *models.Workflow, task *models.WorkflowTask, running map[string]struct{}, outcomes chan<- taskOutcome) {
	now := time.Now()
	c.mu.Lock()
	task.Status = models.RunningTaskStatus
	task.StartedAt = &now
	c.mu.Unlock()
	running[task.ID] = struct{}{}
	c.logger.Infof("Dispatching task '%s' (workflow '%s')", task.ID, wf.Name)

	ag := c.agent(task.AgentID)
	go func() {
		outcomes <- taskOutcome{task: task, err: c.executeTask(ctx, task, ag)}
	}()
}

// stallError builds the unresolved-dependency error for a workflow where no
// task can progress though uncompleted tasks remain. This dead-end check is
// the only cycle detection the engine performs.
func (c *Coordinator) stallError(wf *models.Workflow, completed map[string]struct{}) error {
	var edges []DependencyEdge
	c.mu.RLock()
	for _, task := range wf.Tasks {
		if task.Terminal() {
			continue
		}
		for _, dep := range task.Dependencies {
			if _, ok := completed[dep]; !ok {
				edges = append(edges, DependencyEdge{TaskID: task.ID, DependsOn: dep})
			}
		}
	}
	c.mu.RUnlock()

	err := &UnresolvedDependencyError{Edges: edges}
	c.logger.Errorf("Workflow '%s' stalled: %v", wf.Name, err)
	return err
}
