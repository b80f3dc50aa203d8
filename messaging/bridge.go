package messaging

import (
	"log"

	"warebot/request"
)

// SubmitFunc queues a part request in the simulation.
type SubmitFunc func(partID string, qty int) (request.Request, error)

// Bridge connects the simulation to a broker: inbound part_request envelopes
// become queued requests, terminal records go back out. The simulation is
// complete without it; publish failures are logged and dropped.
type Bridge struct {
	client        *Client
	station       string
	requestTopic  string
	terminalTopic string
	submit        SubmitFunc
}

func NewBridge(client *Client, station, requestTopic, terminalTopic string, submit SubmitFunc) *Bridge {
	return &Bridge{
		client:        client,
		station:       station,
		requestTopic:  requestTopic,
		terminalTopic: terminalTopic,
		submit:        submit,
	}
}

// Start subscribes to the inbound request topic.
func (b *Bridge) Start() error {
	return b.client.Subscribe(b.requestTopic, b.handleInbound)
}

func (b *Bridge) handleInbound(data []byte) {
	env, err := Decode(data)
	if err != nil {
		log.Printf("messaging: bad envelope: %v", err)
		return
	}
	if env.Type != TypePartRequest {
		log.Printf("messaging: ignoring message type %q", env.Type)
		return
	}
	var msg PartRequestMessage
	if err := env.DecodePayload(&msg); err != nil {
		log.Printf("messaging: bad part_request payload: %v", err)
		return
	}
	if _, err := b.submit(msg.PartID, msg.Qty); err != nil {
		log.Printf("messaging: submit %s x%d: %v", msg.PartID, msg.Qty, err)
	}
}

// PublishTerminal sends a terminal record envelope to the broker.
func (b *Bridge) PublishTerminal(rec TerminalRecordMessage) {
	env, err := NewEnvelope(TypeTerminalRecord, b.station, rec)
	if err != nil {
		log.Printf("messaging: terminal record encode: %v", err)
		return
	}
	if err := b.client.PublishEnvelope(b.terminalTopic, env); err != nil {
		log.Printf("messaging: terminal record publish: %v", err)
	}
}
