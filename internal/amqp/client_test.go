package amqp

import (
	"testing"
	"time"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	msg := ReminderDueMessage{
		UserID:     "u1",
		Email:      "a@example.com",
		BillID:     "b1",
		Title:      "Rent",
		Amount:     "1200.50",
		DueDate:    "2024-03-15",
		DaysBefore: 7,
	}

	env, err := NewEnvelope(KindReminderDue, msg)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if env.Kind != KindReminderDue {
		t.Errorf("kind = %q, want %q", env.Kind, KindReminderDue)
	}
	if env.Timestamp.IsZero() || time.Since(env.Timestamp) > time.Second {
		t.Errorf("timestamp should be recent, got %v", env.Timestamp)
	}

	body, err := env.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := EnvelopeFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var got ReminderDueMessage
	if err := parsed.Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != msg {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}
}

func TestEnvelopeFromJSONRejectsBadInput(t *testing.T) {
	if _, err := EnvelopeFromJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := EnvelopeFromJSON([]byte(`{"payload":{}}`)); err == nil {
		t.Error("expected error for envelope without kind")
	}
}

func TestDecodeMismatchedPayload(t *testing.T) {
	env, err := NewEnvelope(KindPaymentRecorded, PaymentRecordedMessage{PaymentID: "p1"})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	var bad struct {
		PaymentID []int `json:"payment_id"`
	}
	if err := env.Decode(&bad); err == nil {
		t.Error("expected decode error for mismatched payload shape")
	}
}
