package amqp

import (
	"encoding/json"
	"time"
)

// Change kinds carried by TransactionChangedMessage.
const (
	ChangeCreated    = "created"
	ChangeDeleted    = "deleted"
	ChangeDepartment = "department"
)

// TransactionChangedMessage tells the summary worker which month and currency
// need their derived totals recomputed. It is deliberately small; the worker
// reads the authoritative rows back from the database.
type TransactionChangedMessage struct {
	ID        string    `json:"id"`
	Change    string    `json:"change"`
	Currency  string    `json:"currency"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionChangedMessage(id, change, currency string, year, month int) *TransactionChangedMessage {
	return &TransactionChangedMessage{
		ID:        id,
		Change:    change,
		Currency:  currency,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
