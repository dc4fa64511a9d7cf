package gateway

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
)

// PaymentGateway is the sending side of the webhook flow.
type PaymentGateway interface {
	// Settle decides the outcome of a payment and returns the webhook
	// deliveries that reach us, in arrival order. Settling an already
	// settled payment only redelivers its final event.
	Settle(ctx context.Context, paymentID string, amount float64) ([]domain.WebhookEvent, error)
	// CheckStatus returns the final event of a settled payment.
	CheckStatus(ctx context.Context, paymentID string) (domain.WebhookEvent, bool, error)
}

// Chances are percentages in [0, 100].
type Options struct {
	Seed            uint64
	FailChance      int
	RedeliverChance int
	ReorderChance   int
	DropChance      int
}

func DefaultOptions() Options {
	return Options{
		Seed:            1,
		FailChance:      20,
		RedeliverChance: 30,
		ReorderChance:   10,
		DropChance:      10,
	}
}

type simulatedGateway struct {
	mu      sync.Mutex
	rng     *rand.Rand
	opts    Options
	settled map[string]domain.WebhookEvent
}

func NewSimulatedGateway(opts Options) PaymentGateway {
	return &simulatedGateway{
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		opts:    opts,
		settled: make(map[string]domain.WebhookEvent),
	}
}

func (g *simulatedGateway) Settle(ctx context.Context, paymentID string, amount float64) ([]domain.WebhookEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	// already settled: the gateway retries the final notification
	if final, exists := g.settled[paymentID]; exists {
		return []domain.WebhookEvent{final}, nil
	}

	processing := g.event(paymentID, domain.PaymentProcessing, amount)
	final := g.event(paymentID, domain.PaymentCompleted, amount)
	if g.roll(g.opts.FailChance) {
		final.Status = domain.PaymentFailed
	}
	g.settled[paymentID] = final

	var deliveries []domain.WebhookEvent
	switch {
	case g.roll(g.opts.DropChance):
		// final notification lost in transit; only reconciliation finds it
		deliveries = append(deliveries, processing)
	case g.roll(g.opts.ReorderChance):
		deliveries = append(deliveries, final, processing)
	default:
		deliveries = append(deliveries, processing, final)
	}

	out := make([]domain.WebhookEvent, 0, len(deliveries)*2)
	for _, ev := range deliveries {
		out = append(out, ev)
		if g.roll(g.opts.RedeliverChance) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (g *simulatedGateway) CheckStatus(ctx context.Context, paymentID string) (domain.WebhookEvent, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.WebhookEvent{}, false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	final, exists := g.settled[paymentID]
	return final, exists, nil
}

func (g *simulatedGateway) event(paymentID string, status domain.PaymentStatus, amount float64) domain.WebhookEvent {
	return domain.WebhookEvent{
		PaymentID:      paymentID,
		Status:         status,
		Amount:         amount,
		WebhookEventID: "evt_" + uuid.NewString(),
	}
}

func (g *simulatedGateway) roll(chance int) bool {
	return g.rng.IntN(100) < chance
}
