package coordinator

import (
	"github.com/TIMPICKLE/agentflow/pkg/agent"
	"github.com/TIMPICKLE/agentflow/pkg/models"
)

// SendMessage delivers a message to one named agent. Delivery is synchronous
// and fire-and-forget: the message is appended to the global history and to
// the receiver's inbox, with no acknowledgment and no backpressure. A
// models.Broadcast receiver fans the message out to every other agent; the
// returned message then carries the broadcast receiver.
func (c *Coordinator) SendMessage(senderID, receiverID, content, msgType string, metadata map[string]interface{}) (models.Message, error) {
	if receiverID == models.Broadcast {
		msg := models.NewMessage(senderID, models.Broadcast, content, msgType, metadata)
		c.mu.Lock()
		c.messages = append(c.messages, msg)
		receivers := make([]agent.Agent, 0, len(c.agents))
		for id, a := range c.agents {
			if id == senderID {
				continue
			}
			receivers = append(receivers, a)
		}
		c.mu.Unlock()
		for _, receiver := range receivers {
			receiver.Deliver(msg)
		}
		c.logger.Infof("Broadcast message from %s to %d agents", senderID, len(receivers))
		return msg, nil
	}

	c.mu.RLock()
	receiver, ok := c.agents[receiverID]
	c.mu.RUnlock()
	if !ok {
		return models.Message{}, &UnknownAgentError{AgentID: receiverID}
	}

	msg := models.NewMessage(senderID, receiverID, content, msgType, metadata)
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	receiver.Deliver(msg)

	c.logger.Infof("Message sent: %s -> %s (%s)", senderID, receiverID, msgType)
	return msg, nil
}

// Broadcast delivers a message to every registered agent except the sender
// and the exclusion list. Returns the messages actually delivered.
func (c *Coordinator) Broadcast(senderID, content, msgType string, exclude []string) []models.Message {
	excluded := make(map[string]struct{}, len(exclude)+1)
	excluded[senderID] = struct{}{}
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	c.mu.RLock()
	receivers := make([]agent.Agent, 0, len(c.agents))
	for id, a := range c.agents {
		if _, skip := excluded[id]; skip {
			continue
		}
		receivers = append(receivers, a)
	}
	c.mu.RUnlock()

	var sent []models.Message
	for _, receiver := range receivers {
		msg := models.NewMessage(senderID, receiver.ID(), content, msgType, nil)
		c.mu.Lock()
		c.messages = append(c.messages, msg)
		c.mu.Unlock()
		receiver.Deliver(msg)
		sent = append(sent, msg)
	}

	c.logger.Infof("Broadcast from %s to %d agents", senderID, len(sent))
	return sent
}

// Messages returns a copy of the global message history in send order.
func (c *Coordinator) Messages() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}
