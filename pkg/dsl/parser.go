package dsl

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/TIMPICKLE/agentflow/pkg/models"
)

// WorkflowYAML is the top-level YAML structure of a workflow definition file.
type WorkflowYAML struct {
	Workflow struct {
		ID          string     `yaml:"id,omitempty"`
		Name        string     `yaml:"name"`
		Description string     `yaml:"description,omitempty"`
		Tasks       []TaskYAML `yaml:"tasks"`
	} `yaml:"workflow"`
}

type TaskYAML struct {
	ID         string                 `yaml:"id"`
	Type       string                 `yaml:"type"`
	Agent      string                 `yaml:"agent"`
	Payload    map[string]interface{} `yaml:"payload,omitempty"`
	DependsOn  []string               `yaml:"depends_on,omitempty"`
	Priority   int                    `yaml:"priority,omitempty"`
	Timeout    string                 `yaml:"timeout,omitempty"` // Go duration string, e.g. "30s"
	MaxRetries *int                   `yaml:"max_retries,omitempty"`
}

// Parser parses YAML workflow definitions into the engine's data model.
type Parser struct{}

// NewParser creates a new workflow definition parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses a YAML workflow file.
func (p *Parser) ParseFile(filename string) (*models.Workflow, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read workflow file")
	}
	return p.Parse(data)
}

// Parse parses YAML workflow data. Duplicate task IDs and dependencies on
// undeclared tasks are definition errors. Dependency cycles are NOT rejected
// here; they surface at run time through the engine's dead-end check.
func (p *Parser) Parse(data []byte) (*models.Workflow, error) {
	var def WorkflowYAML
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(err, "parse workflow YAML")
	}

	wf := def.Workflow
	if wf.Name == "" {
		return nil, errors.New("workflow name is required")
	}
	if len(wf.Tasks) == 0 {
		return nil, errors.New("workflow has no tasks")
	}

	declared := make(map[string]struct{}, len(wf.Tasks))
	for _, t := range wf.Tasks {
		if t.ID == "" {
			return nil, errors.New("task id is required")
		}
		if _, dup := declared[t.ID]; dup {
			return nil, errors.Errorf("duplicate task id %q", t.ID)
		}
		declared[t.ID] = struct{}{}
	}

	out := &models.Workflow{
		ID:          wf.ID,
		Name:        wf.Name,
		Description: wf.Description,
		Status:      models.IdleWorkflowStatus,
		CreatedAt:   time.Now(),
	}

	for _, t := range wf.Tasks {
		if t.Agent == "" {
			return nil, errors.Errorf("task %q has no agent", t.ID)
		}
		for _, dep := range t.DependsOn {
			if _, ok := declared[dep]; !ok {
				return nil, errors.Errorf("task %q depends on undeclared task %q", t.ID, dep)
			}
		}

		var timeout time.Duration
		if t.Timeout != "" {
			d, err := time.ParseDuration(t.Timeout)
			if err != nil {
				return nil, errors.Wrapf(err, "task %q: invalid timeout", t.ID)
			}
			timeout = d
		}

		maxRetries := models.DefaultMaxRetries
		if t.MaxRetries != nil {
			maxRetries = *t.MaxRetries
			if maxRetries < 0 {
				maxRetries = 0
			}
		}

		out.Tasks = append(out.Tasks, &models.WorkflowTask{
			ID:           t.ID,
			Type:         t.Type,
			AgentID:      t.Agent,
			Payload:      t.Payload,
			Dependencies: t.DependsOn,
			Priority:     t.Priority,
			Timeout:      timeout,
			MaxRetries:   maxRetries,
			Status:       models.PendingTaskStatus,
			CreatedAt:    time.Now(),
		})
	}

	return out, nil
}
