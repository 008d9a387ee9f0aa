package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionGeneratedMessage announces that the generation run
// materialized a transaction from a recurring template. Consumers fetch
// the full transaction from the store by ID.
type TransactionGeneratedMessage struct {
	MessageID     string    `json:"message_id"`
	TransactionID int64     `json:"transaction_id"`
	TemplateID    int64     `json:"template_id"`
	ProjectID     int64     `json:"project_id"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionGeneratedMessage builds a message for a freshly
// generated transaction.
func NewTransactionGeneratedMessage(transactionID, templateID, projectID int64, year, month int) *TransactionGeneratedMessage {
	return &TransactionGeneratedMessage{
		MessageID:     uuid.NewString(),
		TransactionID: transactionID,
		TemplateID:    templateID,
		ProjectID:     projectID,
		Year:          year,
		Month:         month,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionGeneratedMessageFromJSON creates a message from JSON bytes
func TransactionGeneratedMessageFromJSON(data []byte) (*TransactionGeneratedMessage, error) {
	var msg TransactionGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// PeriodRenewedMessage announces that a project's contract period was
// automatically closed at its anniversary and a new one opened.
type PeriodRenewedMessage struct {
	MessageID   string    `json:"message_id"`
	ProjectID   int64     `json:"project_id"`
	ClosedAt    string    `json:"closed_at"`
	NewPeriodID int64     `json:"new_period_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewPeriodRenewedMessage(projectID int64, closedAt string, newPeriodID int64) *PeriodRenewedMessage {
	return &PeriodRenewedMessage{
		MessageID:   uuid.NewString(),
		ProjectID:   projectID,
		ClosedAt:    closedAt,
		NewPeriodID: newPeriodID,
		Timestamp:   time.Now(),
	}
}

func (m *PeriodRenewedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PeriodRenewedMessageFromJSON(data []byte) (*PeriodRenewedMessage, error) {
	var msg PeriodRenewedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
