package coordinator

import (
	"fmt"
	"strings"
)

// UnknownAgentError reports a reference to an agent ID that is not registered.
type UnknownAgentError struct {
	AgentID string
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("agent %q is not registered", e.AgentID)
}

// UnknownWorkflowError reports a lookup of a workflow ID that does not exist.
type UnknownWorkflowError struct {
	WorkflowID string
}

func (e *UnknownWorkflowError) Error() string {
	return fmt.Sprintf("workflow %q does not exist", e.WorkflowID)
}

// DependencyEdge is one unresolved (task -> missing dependency) pair.
type DependencyEdge struct {
	TaskID    string
	DependsOn string
}

func (e DependencyEdge) String() string {
	return e.TaskID + " -> " + e.DependsOn
}

// UnresolvedDependencyError is raised when no task can make progress though
// uncompleted tasks remain. It signals a dependency cycle or a missing
// producer; the engine performs no static cycle detection ahead of execution.
type UnresolvedDependencyError struct {
	Edges []DependencyEdge
}

func (e *UnresolvedDependencyError) Error() string {
	edges := make([]string, len(e.Edges))
	for i, edge := range e.Edges {
		edges[i] = edge.String()
	}
	return "unresolved task dependencies: " + strings.Join(edges, ", ")
}
