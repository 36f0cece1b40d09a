package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried on the dues event queue.
const (
	KindReminderDue     = "reminder.due"
	KindPaymentRecorded = "payment.recorded"
)

// Envelope wraps every queue message with its kind so one queue can carry
// both reminder and payment events.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ReminderDueMessage tells the dues worker to deliver one reminder.
type ReminderDueMessage struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	BillID     string `json:"bill_id"`
	Title      string `json:"title"`
	Amount     string `json:"amount"`
	DueDate    string `json:"due_date"`
	DaysBefore int    `json:"days_before"`
}

// PaymentRecordedMessage tells the dues worker to append a ledger row.
type PaymentRecordedMessage struct {
	UserID    string `json:"user_id"`
	BillID    string `json:"bill_id"`
	PaymentID string `json:"payment_id"`
	Title     string `json:"title"`
	Amount    string `json:"amount"`
	PaidOn    string `json:"paid_on"`
	NextDue   string `json:"next_due,omitempty"`
}

// NewEnvelope wraps a payload struct into a timestamped envelope.
func NewEnvelope(kind string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return &Envelope{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   body,
	}, nil
}

// ToJSON converts the envelope to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON creates an envelope from JSON bytes
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Kind == "" {
		return nil, fmt.Errorf("envelope missing kind")
	}
	return &e, nil
}

// Decode unmarshals the payload into the given message struct.
func (e *Envelope) Decode(into any) error {
	if err := json.Unmarshal(e.Payload, into); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return nil
}
