package agent

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/TIMPICKLE/agentflow/pkg/models"
)

// LocalAgent is an in-process agent backed by an ExecuteFunc. It keeps a
// FIFO message inbox and tracks its own performance counters. A LocalAgent
// is a shared, re-entrant resource: multiple tasks may execute on it
// concurrently.
type LocalAgent struct {
	id          string
	name        string
	description string
	fn          ExecuteFunc

	mu       sync.Mutex
	status   Status
	inFlight int
	inbox    []models.Message
	stats    Stats
}

// NewLocalAgent builds an agent that executes tasks with fn.
func NewLocalAgent(id, name, description string, fn ExecuteFunc) *LocalAgent {
	return &LocalAgent{
		id:          id,
		name:        name,
		description: description,
		fn:          fn,
		status:      IdleStatus,
	}
}

func (a *LocalAgent) ID() string {
	return a.id
}

func (a *LocalAgent) Name() string {
	return a.name
}

func (a *LocalAgent) Description() string {
	return a.description
}

// Execute runs fn, flipping the coarse status around the call and updating
// the performance counters.
func (a *LocalAgent) Execute(ctx context.Context, taskType string, payload map[string]interface{}) (interface{}, error) {
	if a.fn == nil {
		return nil, errors.Errorf("agent %s has no execute function", a.id)
	}

	a.mu.Lock()
	a.inFlight++
	a.status = WorkingStatus
	a.stats.Requests++
	a.mu.Unlock()

	start := time.Now()
	out, err := a.fn(ctx, taskType, payload)
	elapsed := time.Since(start)

	a.mu.Lock()
	a.inFlight--
	a.stats.TotalExecTime += elapsed
	a.stats.AvgExecTime = a.stats.TotalExecTime / time.Duration(a.stats.Requests)
	if err != nil {
		a.stats.Errors++
		a.status = ErrorStatus
	} else {
		a.stats.Successes++
		if a.inFlight == 0 {
			a.status = IdleStatus
		}
	}
	a.mu.Unlock()

	return out, err
}

func (a *LocalAgent) Deliver(msg models.Message) {
	a.mu.Lock()
	a.inbox = append(a.inbox, msg)
	a.mu.Unlock()
}

// Inbox returns a copy of the agent's received messages in delivery order.
func (a *LocalAgent) Inbox() []models.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Message, len(a.inbox))
	copy(out, a.inbox)
	return out
}

func (a *LocalAgent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *LocalAgent) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Reset clears the inbox, counters, and coarse status.
func (a *LocalAgent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inbox = nil
	a.stats = Stats{}
	a.status = IdleStatus
}
