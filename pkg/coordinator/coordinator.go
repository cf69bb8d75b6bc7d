package coordinator

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/TIMPICKLE/agentflow/pkg/agent"
	"github.com/TIMPICKLE/agentflow/pkg/models"
)

const (
	// DefaultMaxConcurrent bounds simultaneously dispatched tasks per coordinator.
	DefaultMaxConcurrent = 5
	// DefaultTaskTimeout applies to tasks created without an explicit timeout.
	DefaultTaskTimeout = 60 * time.Second
)

// Logger defines the logging interface for the Coordinator.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Option configures a Coordinator at construction time.
type Option func(*Coordinator)

// WithMaxConcurrent sets the maximum number of simultaneously dispatched
// tasks. The budget is scoped to the coordinator instance: workflows executed
// in parallel on the same coordinator draw from the same budget.
func WithMaxConcurrent(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithDefaultTimeout sets the timeout used for tasks created without one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

// Coordinator manages agents, workflows, and messaging, and drives workflows
// to a terminal state. All state is in-memory for the lifetime of the
// instance; nothing is persisted.
type Coordinator struct {
	logger         Logger
	maxConcurrent  int
	defaultTimeout time.Duration

	sem chan struct{} // dispatch slots, shared across workflows

	mu        sync.RWMutex
	agents    map[string]agent.Agent
	workflows map[string]*models.Workflow
	history   []models.TaskResult // outcomes of all executed tasks
	messages  []models.Message    // global message history
}

// New builds a coordinator. The logger must not be nil.
func New(logger Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:         logger,
		maxConcurrent:  DefaultMaxConcurrent,
		defaultTimeout: DefaultTaskTimeout,
		agents:         make(map[string]agent.Agent),
		workflows:      make(map[string]*models.Workflow),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sem = make(chan struct{}, c.maxConcurrent)
	return c
}

// RegisterAgent makes an agent available for task assignment and messaging.
// Registering an agent with an ID already in use replaces the previous one.
func (c *Coordinator) RegisterAgent(a agent.Agent) error {
	if a == nil || a.ID() == "" {
		return errors.New("agent must have a non-empty ID")
	}
	c.mu.Lock()
	c.agents[a.ID()] = a
	c.mu.Unlock()
	c.logger.Infof("Registered agent '%s'", a.ID())
	return nil
}

// UnregisterAgent removes an agent. Tasks already assigned to it fail at
// dispatch time if it is gone when they become ready.
func (c *Coordinator) UnregisterAgent(agentID string) error {
	c.mu.Lock()
	if _, ok := c.agents[agentID]; !ok {
		c.mu.Unlock()
		return &UnknownAgentError{AgentID: agentID}
	}
	delete(c.agents, agentID)
	c.mu.Unlock()
	c.logger.Infof("Unregistered agent '%s'", agentID)
	return nil
}

// CreateWorkflow creates and registers an empty workflow. An empty id gets a
// generated one.
func (c *Coordinator) CreateWorkflow(id, name, description string) (*models.Workflow, error) {
	if name == "" {
		return nil, errors.New("workflow name cannot be empty")
	}
	if id == "" {
		id = uuid.NewString()
	}
	wf := &models.Workflow{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      models.IdleWorkflowStatus,
		CreatedAt:   time.Now(),
	}
	c.mu.Lock()
	c.workflows[id] = wf
	c.mu.Unlock()
	c.logger.Infof("Created workflow '%s' (%s)", name, id)
	return wf, nil
}

// AddWorkflow registers a workflow built elsewhere (e.g. parsed from a
// definition file). Every task's agent must already be registered.
func (c *Coordinator) AddWorkflow(wf *models.Workflow) error {
	if wf == nil || wf.Name == "" {
		return errors.New("workflow must have a name")
	}
	if wf.Status == "" {
		wf.Status = models.IdleWorkflowStatus
	}
	if !models.ValidWorkflowStatus(wf.Status) {
		return errors.Errorf("invalid workflow status %q", wf.Status)
	}
	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.workflows[wf.ID]; exists {
		return errors.Errorf("workflow %q already exists", wf.ID)
	}
	for _, task := range wf.Tasks {
		if _, ok := c.agents[task.AgentID]; !ok {
			return &UnknownAgentError{AgentID: task.AgentID}
		}
	}
	c.workflows[wf.ID] = wf
	c.logger.Infof("Added workflow '%s' (%s) with %d tasks", wf.Name, wf.ID, len(wf.Tasks))
	return nil
}

// CreateTask builds a task assigned to a registered agent. A zero timeout
// falls back to the coordinator's default. The retry budget defaults to
// DefaultMaxRetries and is adjustable through options.
func (c *Coordinator) CreateTask(id, taskType, agentID string, payload map[string]interface{},
	dependencies []string, priority int, timeout time.Duration, opts ...models.TaskOption) (*models.WorkflowTask, error) {
	if id == "" {
		return nil, errors.New("task ID cannot be empty")
	}
	c.mu.RLock()
	_, ok := c.agents[agentID]
	c.mu.RUnlock()
	if !ok {
		return nil, &UnknownAgentError{AgentID: agentID}
	}
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	task := &models.WorkflowTask{
		ID:           id,
		Type:         taskType,
		AgentID:      agentID,
		Payload:      payload,
		Dependencies: dependencies,
		Priority:     priority,
		Timeout:      timeout,
		MaxRetries:   models.DefaultMaxRetries,
		Status:       models.PendingTaskStatus,
		CreatedAt:    time.Now(),
	}
	for _, opt := range opts {
		opt(task)
	}
	c.logger.Infof("Created task '%s' -> agent '%s'", id, agentID)
	return task, nil
}

// AddTask appends a task to a workflow. Insertion order is the tie-break for
// equal priority during scheduling.
func (c *Coordinator) AddTask(workflowID string, task *models.WorkflowTask) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	wf, ok := c.workflows[workflowID]
	if !ok {
		return &UnknownWorkflowError{WorkflowID: workflowID}
	}
	if wf.Task(task.ID) != nil {
		return errors.Errorf("task %q already exists in workflow %q", task.ID, workflowID)
	}
	wf.Tasks = append(wf.Tasks, task)
	c.logger.Infof("Added task '%s' to workflow '%s'", task.ID, wf.Name)
	return nil
}

// GetWorkflow returns the workflow with the given ID.
func (c *Coordinator) GetWorkflow(workflowID string) (*models.Workflow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	wf, ok := c.workflows[workflowID]
	if !ok {
		return nil, &UnknownWorkflowError{WorkflowID: workflowID}
	}
	return wf, nil
}

// ListWorkflows returns all registered workflows in unspecified order.
func (c *Coordinator) ListWorkflows() []*models.Workflow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Workflow, 0, len(c.workflows))
	for _, wf := range c.workflows {
		out = append(out, wf)
	}
	return out
}

// ClearHistory drops the recorded task outcomes and message history.
func (c *Coordinator) ClearHistory() {
	c.mu.Lock()
	c.history = nil
	c.messages = nil
	c.mu.Unlock()
	c.logger.Infof("Cleared task and message history")
}

// Reset clears workflows and history and resets every agent that supports it.
// Registered agents stay registered.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	agents := make([]agent.Agent, 0, len(c.agents))
	for _, a := range c.agents {
		agents = append(agents, a)
	}
	c.workflows = make(map[string]*models.Workflow)
	c.history = nil
	c.messages = nil
	c.mu.Unlock()

	for _, a := range agents {
		if r, ok := a.(interface{ Reset() }); ok {
			r.Reset()
		}
	}
	c.logger.Infof("Coordinator reset")
}

func (c *Coordinator) agent(id string) agent.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.agents[id]
}
