package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/repo"
)

// SeedInput carries records to bulk-create. Nil slices are skipped and left
// out of the SeedResult.
type SeedInput struct {
	Orders   []domain.Order
	Payments []domain.Payment
	Tickets  []domain.Ticket
}

type SeedResult struct {
	Orders   []domain.Order   `json:"orders,omitempty"`
	Payments []domain.Payment `json:"payments,omitempty"`
	Tickets  []domain.Ticket  `json:"tickets,omitempty"`
}

type RecordService interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListTickets(ctx context.Context, orderID string) ([]domain.Ticket, error)
	// ListWebhookLogs returns every log entry, or only the entry for
	// webhookEventID when it is non-empty.
	ListWebhookLogs(ctx context.Context, webhookEventID string) ([]domain.WebhookLog, error)
	Seed(ctx context.Context, in SeedInput) (SeedResult, error)
	Reset(ctx context.Context) error
	Health(ctx context.Context) map[string]string
}

type recordService struct {
	store repo.Store
	log   zerolog.Logger
}

func NewRecordService(store repo.Store, log zerolog.Logger) RecordService {
	return &recordService{store: store, log: log}
}

func (s *recordService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.View(ctx, func(ctx context.Context, r repo.Repos) error {
		var err error
		order, err = r.Orders.FindById(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.NotFound("not found")
	}
	return order, nil
}

func (s *recordService) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.store.View(ctx, func(ctx context.Context, r repo.Repos) error {
		var err error
		payment, err = r.Payments.FindById(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, domain.NotFound("not found")
	}
	return payment, nil
}

func (s *recordService) ListTickets(ctx context.Context, orderID string) ([]domain.Ticket, error) {
	if orderID == "" {
		return nil, domain.InvalidInput("order_id query param required")
	}
	var tickets []domain.Ticket
	err := s.store.View(ctx, func(ctx context.Context, r repo.Repos) error {
		var err error
		tickets, err = r.Tickets.FindByOrderId(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func (s *recordService) ListWebhookLogs(ctx context.Context, webhookEventID string) ([]domain.WebhookLog, error) {
	logs := []domain.WebhookLog{}
	err := s.store.View(ctx, func(ctx context.Context, r repo.Repos) error {
		if webhookEventID == "" {
			all, err := r.WebhookLogs.ListWebhookLogs(ctx)
			logs = append(logs, all...)
			return err
		}
		entry, err := r.WebhookLogs.FindByEventId(ctx, webhookEventID)
		if entry != nil {
			logs = append(logs, *entry)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list webhook logs: %w", err)
	}
	return logs, nil
}

// Seed creates orders, then payments, then tickets, in input order, so
// assigned ids follow that sequence.
func (s *recordService) Seed(ctx context.Context, in SeedInput) (SeedResult, error) {
	var out SeedResult
	err := s.store.Atomic(ctx, func(ctx context.Context, r repo.Repos) error {
		out = SeedResult{}
		if in.Orders != nil {
			out.Orders = make([]domain.Order, 0, len(in.Orders))
			for _, o := range in.Orders {
				if o.Status == "" {
					o.Status = domain.OrderPending
				}
				if o.PaymentStatus == "" {
					o.PaymentStatus = domain.OrderPaymentPending
				}
				if err := r.Orders.CreateOrder(ctx, &o); err != nil {
					return fmt.Errorf("create order: %w", err)
				}
				out.Orders = append(out.Orders, o)
			}
		}
		if in.Payments != nil {
			out.Payments = make([]domain.Payment, 0, len(in.Payments))
			for _, p := range in.Payments {
				if p.Status == "" {
					p.Status = domain.PaymentPending
				}
				if err := r.Payments.CreatePayment(ctx, &p); err != nil {
					return fmt.Errorf("create payment: %w", err)
				}
				out.Payments = append(out.Payments, p)
			}
		}
		if in.Tickets != nil {
			out.Tickets = make([]domain.Ticket, 0, len(in.Tickets))
			for _, t := range in.Tickets {
				if t.Status == "" {
					t.Status = domain.TicketHeld
				}
				if err := r.Tickets.CreateTicket(ctx, &t); err != nil {
					return fmt.Errorf("create ticket: %w", err)
				}
				out.Tickets = append(out.Tickets, t)
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}
	s.log.Info().
		Int("orders", len(out.Orders)).
		Int("payments", len(out.Payments)).
		Int("tickets", len(out.Tickets)).
		Msg("records seeded")
	return out, nil
}

func (s *recordService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.log.Info().Msg("store reset")
	return nil
}

func (s *recordService) Health(ctx context.Context) map[string]string {
	return s.store.Health(ctx)
}
