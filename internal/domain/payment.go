package domain

import (
	"math"
	"slices"
	"time"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
)

// AmountTolerance absorbs float representation error when comparing an
// event amount against an order total.
const AmountTolerance = 0.01

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentProcessing, PaymentCompleted, PaymentFailed},
	PaymentProcessing: {PaymentCompleted, PaymentFailed},
	PaymentCompleted:  {},
	PaymentFailed:     {PaymentProcessing},
}

// CanTransitionTo reports whether a payment currently in s may move to next.
// Statuses outside the table have no legal successors.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return slices.Contains(paymentTransitions[s], next)
}

// NextStatuses returns a copy of the legal successors of s.
func (s PaymentStatus) NextStatuses() []PaymentStatus {
	return slices.Clone(paymentTransitions[s])
}

type Payment struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"order_id"`
	Amount      float64       `json:"amount"`
	Status      PaymentStatus `json:"status"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
}

// AmountMatches compares amount with total within AmountTolerance.
func AmountMatches(amount, total float64) bool {
	return math.Abs(amount-total) <= AmountTolerance
}
