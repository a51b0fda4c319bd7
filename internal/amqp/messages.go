package amqp

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"mywallet/internal/core"
)

// AlertMessage is the wire form of an alert published to the broker.
type AlertMessage struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewAlertMessage wraps ev with a fresh message id.
func NewAlertMessage(ev core.AlertEvent, now time.Time) *AlertMessage {
	env := ev.Envelope()
	data, _ := env["data"].(map[string]any)
	return &AlertMessage{
		ID:        uuid.NewString(),
		Type:      ev.Type,
		Data:      data,
		Timestamp: now.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON decodes a message body. Numbers are kept as json.Number.
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Event converts the message back into an alert event.
func (m *AlertMessage) Event() core.AlertEvent {
	return core.AlertEvent{Type: m.Type, Payload: m.Data}
}
