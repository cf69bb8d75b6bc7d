package coordinator_test

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"github.com/TIMPICKLE/agentflow/pkg/agent"
	"github.com/TIMPICKLE/agentflow/pkg/coordinator"
	"github.com/TIMPICKLE/agentflow/pkg/models"
)

func TestSendMessage(t *testing.T) {
	co := coordinator.New(newLogger(t))
	sender := okAgent("sender")
	receiver := okAgent("receiver")
	if err := co.RegisterAgent(sender); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	if err := co.RegisterAgent(receiver); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}

	msg, err := co.SendMessage("sender", "receiver", "hello", "text", map[string]interface{}{"k": "v"})
	if err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}
	if msg.ID == "" {
		t.Error("Expected a generated message ID")
	}
	if msg.Sender != "sender" || msg.Receiver != "receiver" {
		t.Errorf("Unexpected addressing: %+v", msg)
	}

	inbox := receiver.Inbox()
	if len(inbox) != 1 || inbox[0].Content != "hello" {
		t.Errorf("Expected one delivered message, got %+v", inbox)
	}
	if len(sender.Inbox()) != 0 {
		t.Error("Sender must not receive its own direct message")
	}
	if got := len(co.Messages()); got != 1 {
		t.Errorf("Expected 1 message in history, got %d", got)
	}
}

func TestSendMessage_BroadcastReceiver(t *testing.T) {
	co := coordinator.New(newLogger(t))
	sender := okAgent("sender")
	a := okAgent("a")
	b := okAgent("b")
	for _, ag := range []*agent.LocalAgent{sender, a, b} {
		if err := co.RegisterAgent(ag); err != nil {
			t.Fatalf("Failed to register agent: %v", err)
		}
	}

	msg, err := co.SendMessage("sender", models.Broadcast, "everyone", "status", nil)
	if err != nil {
		t.Fatalf("Failed to broadcast via SendMessage: %v", err)
	}
	if msg.Receiver != models.Broadcast {
		t.Errorf("Expected broadcast receiver, got %q", msg.Receiver)
	}
	if len(sender.Inbox()) != 0 {
		t.Error("Sender must not receive its own broadcast")
	}
	if len(a.Inbox()) != 1 || len(b.Inbox()) != 1 {
		t.Errorf("Expected one message for a and b, got %d and %d", len(a.Inbox()), len(b.Inbox()))
	}
	if got := len(co.Messages()); got != 1 {
		t.Errorf("Expected a single history entry for a broadcast, got %d", got)
	}
}

func TestSendMessage_UnknownReceiver(t *testing.T) {
	co := coordinator.New(newLogger(t))
	_, err := co.SendMessage("sender", "missing", "hello", "text", nil)
	var agentErr *coordinator.UnknownAgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("Expected UnknownAgentError, got %T: %v", err, err)
	}
}

func TestSendMessage_FIFOPerInbox(t *testing.T) {
	co := coordinator.New(newLogger(t))
	receiver := okAgent("receiver")
	if err := co.RegisterAgent(okAgent("sender")); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	if err := co.RegisterAgent(receiver); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := co.SendMessage("sender", "receiver", fmt.Sprintf("msg-%d", i), "text", nil); err != nil {
			t.Fatalf("Failed to send message %d: %v", i, err)
		}
	}

	inbox := receiver.Inbox()
	if len(inbox) != 5 {
		t.Fatalf("Expected 5 messages, got %d", len(inbox))
	}
	for i, msg := range inbox {
		if want := fmt.Sprintf("msg-%d", i); msg.Content != want {
			t.Errorf("Expected %q at position %d, got %q", want, i, msg.Content)
		}
	}
}

func TestBroadcast(t *testing.T) {
	co := coordinator.New(newLogger(t))
	sender := okAgent("sender")
	a := okAgent("a")
	b := okAgent("b")
	c := okAgent("c")
	if err := co.RegisterAgent(sender); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	if err := co.RegisterAgent(a); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	if err := co.RegisterAgent(b); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}
	if err := co.RegisterAgent(c); err != nil {
		t.Fatalf("Failed to register agent: %v", err)
	}

	sent := co.Broadcast("sender", "attention", "broadcast", []string{"c"})
	if len(sent) != 2 {
		t.Fatalf("Expected 2 deliveries, got %d", len(sent))
	}
	if len(sender.Inbox()) != 0 {
		t.Error("Sender must not receive its own broadcast")
	}
	if len(c.Inbox()) != 0 {
		t.Error("Excluded agent must not receive the broadcast")
	}
	if len(a.Inbox()) != 1 || len(b.Inbox()) != 1 {
		t.Errorf("Expected one message for a and b, got %d and %d", len(a.Inbox()), len(b.Inbox()))
	}
	if a.Inbox()[0].Content != "attention" || a.Inbox()[0].Type != "broadcast" {
		t.Errorf("Unexpected broadcast message: %+v", a.Inbox()[0])
	}
	if got := len(co.Messages()); got != 2 {
		t.Errorf("Expected 2 messages in history, got %d", got)
	}
}
