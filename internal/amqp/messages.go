package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// InvoicesImportedMessage announces that a client's invoice collection
// changed. It carries the scope only; consumers reload the collection.
type InvoicesImportedMessage struct {
	SessionEmail string    `json:"sessionEmail"`
	ClientID     string    `json:"clientId"`
	Source       string    `json:"source"`
	Direction    string    `json:"direction"`
	Accepted     int       `json:"accepted"`
	Duplicates   int       `json:"duplicates"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewInvoicesImportedMessage(session, clientID, source, direction string, accepted, duplicates int) *InvoicesImportedMessage {
	return &InvoicesImportedMessage{
		SessionEmail: session,
		ClientID:     clientID,
		Source:       source,
		Direction:    direction,
		Accepted:     accepted,
		Duplicates:   duplicates,
		Timestamp:    time.Now().UTC(),
	}
}

func (m *InvoicesImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvoicesImportedMessageFromJSON decodes a message and rejects ones
// without a client scope.
func InvoicesImportedMessageFromJSON(data []byte) (*InvoicesImportedMessage, error) {
	var msg InvoicesImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.SessionEmail == "" || msg.ClientID == "" {
		return nil, fmt.Errorf("message without session or client id")
	}
	return &msg, nil
}
