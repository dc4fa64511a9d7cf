package repo

import (
	"context"
	"errors"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
)

var (
	// ErrDuplicateEvent is returned by CreateWebhookLog when a log entry with
	// the same webhook_event_id already exists.
	ErrDuplicateEvent = errors.New("repo: duplicate webhook event id")
	// ErrRecordNotFound is returned by updates that target a missing record.
	ErrRecordNotFound = errors.New("repo: record not found")
)

// Lookups return (nil, nil) when the record does not exist.
type OrderRepo interface {
	FindById(ctx context.Context, id string) (*domain.Order, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
	UpdateOrderStatus(ctx context.Context, order *domain.Order) error
}

type PaymentRepo interface {
	FindById(ctx context.Context, id string) (*domain.Payment, error)
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	// UpdatePaymentStatus persists Status and ProcessedAt.
	UpdatePaymentStatus(ctx context.Context, payment *domain.Payment) error
	// FindUnsettled returns up to limit payments still pending or
	// processing, oldest id first.
	FindUnsettled(ctx context.Context, limit int) ([]domain.Payment, error)
}

type TicketRepo interface {
	FindByOrderId(ctx context.Context, orderID string) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, ticket *domain.Ticket) error
	// ConfirmHeldTickets moves every held ticket of the order to confirmed
	// and returns how many changed.
	ConfirmHeldTickets(ctx context.Context, orderID string) (int64, error)
}

type WebhookLogRepo interface {
	FindByEventId(ctx context.Context, webhookEventID string) (*domain.WebhookLog, error)
	CreateWebhookLog(ctx context.Context, log *domain.WebhookLog) error
	ListWebhookLogs(ctx context.Context) ([]domain.WebhookLog, error)
}

// Repos is the set of record accessors bound to one unit of work.
type Repos struct {
	Orders      OrderRepo
	Payments    PaymentRepo
	Tickets     TicketRepo
	WebhookLogs WebhookLogRepo
}

type TxFunc func(ctx context.Context, r Repos) error

// Store owns the record collections and the shared id counter.
type Store interface {
	// View runs fn against a read-only view of the records.
	View(ctx context.Context, fn TxFunc) error
	// Atomic runs fn as one unit isolated from every other Atomic call. A
	// non-nil error from fn aborts the unit.
	Atomic(ctx context.Context, fn TxFunc) error
	// Reset clears every collection and restarts the id counter at 1.
	Reset(ctx context.Context) error
	Health(ctx context.Context) map[string]string
	Close() error
}
