package model

import (
	"encoding/json"
	"errors"
)

const (
	// EventPaymentCaptured is the only gateway event that triggers a notification.
	EventPaymentCaptured = "payment.captured"

	// TestTriggerPhrase is the text /test-payment must carry to simulate a payment.
	TestTriggerPhrase = "Paid 💸"
)

// WebhookOutcome is what happened to an accepted request.
type WebhookOutcome string

const (
	OutcomeSent    WebhookOutcome = "sent"    // notification delivered
	OutcomeIgnored WebhookOutcome = "ignored" // request understood, nothing to do
)

var ErrNotJSONObject = errors.New("payload is not a JSON object")

// WebhookEvent is a decoded gateway notification. Only Event drives behavior; the
// rest of the document is kept for logging.
type WebhookEvent struct {
	Event     string
	PaymentID string // payload.payment.entity.id when present
	Raw       map[string]interface{}
}

// ParseWebhookEvent decodes body, which must be a JSON object.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotJSONObject
	}

	ev := &WebhookEvent{Raw: raw}
	ev.Event, _ = raw["event"].(string)
	ev.PaymentID = lookupString(raw, "payload", "payment", "entity", "id")
	return ev, nil
}

// IsPaymentCaptured reports whether the event should trigger a notification.
func (e *WebhookEvent) IsPaymentCaptured() bool {
	return e != nil && e.Event == EventPaymentCaptured
}

func lookupString(m map[string]interface{}, path ...string) string {
	var cur interface{} = m
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	s, _ := cur.(string)
	return s
}

// TestPaymentRequest is the body accepted by the manual test endpoint.
type TestPaymentRequest struct {
	Text string `json:"text"`
}
