package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/repo"
)

type WebhookService interface {
	ProcessWebhook(ctx context.Context, event domain.WebhookEvent) (domain.WebhookResult, error)
}

type webhookService struct {
	store repo.Store
	log   zerolog.Logger
	now   func() time.Time
}

type WebhookOption func(*webhookService)

// WithClock replaces the clock used for received_at and processed_at.
func WithClock(now func() time.Time) WebhookOption {
	return func(s *webhookService) { s.now = now }
}

func NewWebhookService(store repo.Store, log zerolog.Logger, opts ...WebhookOption) WebhookService {
	s := &webhookService{
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessWebhook applies one gateway event. The whole sequence runs as a
// single store unit so concurrent deliveries of the same event id cannot
// both pass the duplicate check:
//
//  1. duplicate check on webhook_event_id
//  2. audit log append, before any validation, so rejected events are
//     still recorded exactly once
//  3. payment lookup
//  4. order lookup
//  5. amount check against the order total
//  6. transition check against the payment's current status
//  7. payment status update
//  8. order and ticket cascade
//
// Rejections in steps 3-5 are returned as errors after the audit log has
// been committed. Duplicate and ignored events are successful results.
func (s *webhookService) ProcessWebhook(ctx context.Context, event domain.WebhookEvent) (domain.WebhookResult, error) {
	log := s.log.With().
		Str("webhook_event_id", event.WebhookEventID).
		Str("payment_id", event.PaymentID).
		Str("status", string(event.Status)).
		Logger()

	var (
		result    domain.WebhookResult
		rejection error
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, r repo.Repos) error {
		res, err := s.process(ctx, r, event)
		if domain.IsNotFound(err) || domain.IsInvalidInput(err) {
			// keep the audit log written in step 2
			rejection = err
			return nil
		}
		result = res
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("webhook processing failed")
		return domain.WebhookResult{}, fmt.Errorf("process webhook %s: %w", event.WebhookEventID, err)
	}
	if rejection != nil {
		log.Warn().Err(rejection).Msg("webhook rejected")
		return domain.WebhookResult{}, rejection
	}

	switch result.Outcome {
	case domain.OutcomeDuplicate:
		log.Info().Msg("duplicate webhook skipped")
	case domain.OutcomeIgnored:
		log.Warn().Str("reason", result.Reason).Msg("webhook ignored")
	default:
		log.Info().Str("payment_status", string(result.PaymentStatus)).Msg("webhook applied")
	}
	return result, nil
}

func (s *webhookService) process(ctx context.Context, r repo.Repos, event domain.WebhookEvent) (domain.WebhookResult, error) {
	existing, err := r.WebhookLogs.FindByEventId(ctx, event.WebhookEventID)
	if err != nil {
		return domain.WebhookResult{}, fmt.Errorf("find webhook log: %w", err)
	}
	if existing != nil {
		return domain.Duplicate(), nil
	}

	entry := &domain.WebhookLog{
		WebhookEventID: event.WebhookEventID,
		PaymentID:      event.PaymentID,
		Status:         event.Status,
		ReceivedAt:     s.now().UTC(),
	}
	if err := r.WebhookLogs.CreateWebhookLog(ctx, entry); err != nil {
		if errors.Is(err, repo.ErrDuplicateEvent) {
			return domain.Duplicate(), nil
		}
		return domain.WebhookResult{}, fmt.Errorf("create webhook log: %w", err)
	}

	payment, err := r.Payments.FindById(ctx, event.PaymentID)
	if err != nil {
		return domain.WebhookResult{}, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		return domain.WebhookResult{}, domain.NotFound(domain.MsgPaymentNotFound)
	}

	order, err := r.Orders.FindById(ctx, payment.OrderID)
	if err != nil {
		return domain.WebhookResult{}, fmt.Errorf("find order: %w", err)
	}
	if order == nil {
		return domain.WebhookResult{}, domain.NotFound(domain.MsgOrderNotFound)
	}

	if !domain.AmountMatches(event.Amount, order.TotalAmount) {
		return domain.WebhookResult{}, domain.InvalidInput(domain.MsgAmountMismatch)
	}

	if !payment.Status.CanTransitionTo(event.Status) {
		return domain.Ignored(payment.Status, event.Status), nil
	}

	processedAt := s.now().UTC()
	payment.Status = event.Status
	payment.ProcessedAt = &processedAt
	if err := r.Payments.UpdatePaymentStatus(ctx, payment); err != nil {
		return domain.WebhookResult{}, fmt.Errorf("update payment: %w", err)
	}

	if err := s.cascade(ctx, r, payment, order); err != nil {
		return domain.WebhookResult{}, err
	}

	return domain.Accepted(payment.Status), nil
}

func (s *webhookService) cascade(ctx context.Context, r repo.Repos, payment *domain.Payment, order *domain.Order) error {
	switch payment.Status {
	case domain.PaymentCompleted:
		order.Status = domain.OrderConfirmed
		order.PaymentStatus = domain.OrderPaymentPaid
		if err := r.Orders.UpdateOrderStatus(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		confirmed, err := r.Tickets.ConfirmHeldTickets(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("confirm tickets: %w", err)
		}
		s.log.Debug().Str("order_id", order.ID).Int64("tickets_confirmed", confirmed).Msg("order confirmed")
	case domain.PaymentFailed:
		order.PaymentStatus = domain.OrderPaymentFailed
		if err := r.Orders.UpdateOrderStatus(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
	}
	return nil
}
