package domain

import (
	"fmt"
	"time"
)

// WebhookEvent is one gateway notification about a payment status change.
// WebhookEventID is the idempotency key.
type WebhookEvent struct {
	PaymentID      string
	Status         PaymentStatus
	Amount         float64
	WebhookEventID string
}

// WebhookLog is the append-only audit record of a received event.
type WebhookLog struct {
	ID             string        `json:"id"`
	WebhookEventID string        `json:"webhook_event_id"`
	PaymentID      string        `json:"payment_id"`
	Status         PaymentStatus `json:"status"`
	ReceivedAt     time.Time     `json:"received_at"`
}

type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// WebhookResult is the acknowledged outcome of processing an event. Every
// variant means the gateway must not retry; rejections are returned as
// errors instead.
type WebhookResult struct {
	Outcome       Outcome       `json:"-"`
	Received      bool          `json:"received"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	Duplicate     bool          `json:"duplicate,omitempty"`
	Ignored       bool          `json:"ignored,omitempty"`
	Reason        string        `json:"reason,omitempty"`
}

func Accepted(status PaymentStatus) WebhookResult {
	return WebhookResult{Outcome: OutcomeAccepted, Received: true, PaymentStatus: status}
}

func Duplicate() WebhookResult {
	return WebhookResult{Outcome: OutcomeDuplicate, Received: true, Duplicate: true}
}

func Ignored(from, to PaymentStatus) WebhookResult {
	return WebhookResult{
		Outcome:  OutcomeIgnored,
		Received: true,
		Ignored:  true,
		Reason:   fmt.Sprintf("cannot transition from '%s' to '%s'", from, to),
	}
}
