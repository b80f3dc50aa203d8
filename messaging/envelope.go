package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wrapper for all broker traffic, inbound and outbound.
type Envelope struct {
	Version   int             `json:"v"`
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Station   string          `json:"station"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"p"`
}

const Version = 1

// Message types.
const (
	TypePartRequest    = "part_request"
	TypeTerminalRecord = "terminal_record"
)

// PartRequestMessage asks the simulation to queue a pick.
type PartRequestMessage struct {
	PartID string `json:"part_id"`
	Qty    int    `json:"qty"`
}

// TerminalRecordMessage reports a request reaching a terminal state.
type TerminalRecordMessage struct {
	RequestID string `json:"request_id"`
	PartID    string `json:"part_id"`
	Qty       int    `json:"qty"`
	Status    string `json:"status"`
	RobotID   string `json:"robot_id,omitempty"`
}

// NewEnvelope wraps a payload in an outbound envelope.
func NewEnvelope(msgType, station string, payload any) (*Envelope, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Version:   Version,
		Type:      msgType,
		ID:        uuid.New().String(),
		Station:   station,
		Timestamp: time.Now().UTC(),
		Payload:   p,
	}, nil
}

// Encode marshals the envelope to JSON.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an inbound envelope.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// DecodePayload unmarshals the raw payload into the given target.
func (e *Envelope) DecodePayload(target any) error {
	return json.Unmarshal(e.Payload, target)
}
