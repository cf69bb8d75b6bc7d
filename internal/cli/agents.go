package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/TIMPICKLE/agentflow/pkg/agent"
)

// builtinAgents returns the agents available to YAML-defined workflows run
// from the command line. They are deliberately simple: enough to exercise
// dependencies, timeouts, and retries without any external service.
func builtinAgents() []*agent.LocalAgent {
	echo := agent.NewLocalAgent("echo", "Echo", "returns the payload message",
		func(ctx context.Context, taskType string, payload map[string]interface{}) (interface{}, error) {
			if msg, ok := payload["message"].(string); ok {
				return msg, nil
			}
			return payload, nil
		})

	sleeper := agent.NewLocalAgent("sleeper", "Sleeper", "sleeps for payload duration",
		func(ctx context.Context, taskType string, payload map[string]interface{}) (interface{}, error) {
			d := 100 * time.Millisecond
			if raw, ok := payload["duration"].(string); ok {
				parsed, err := time.ParseDuration(raw)
				if err != nil {
					return nil, errors.Wrap(err, "invalid duration")
				}
				d = parsed
			}
			select {
			case <-time.After(d):
				return d.String(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})

	flaky := agent.NewLocalAgent("flaky", "Flaky", "fails when payload asks it to",
		func(ctx context.Context, taskType string, payload map[string]interface{}) (interface{}, error) {
			if fail, ok := payload["fail"].(bool); ok && fail {
				return nil, errors.New("flaky agent failed on purpose")
			}
			return "ok", nil
		})

	return []*agent.LocalAgent{echo, sleeper, flaky}
}
