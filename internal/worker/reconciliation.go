package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/infrastructure/gateway"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/repo"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/service"
)

const reconcileBatch = 100

// ReconciliationWorker finds payments the gateway has settled but that are
// still unsettled locally, and replays the final event through the webhook
// service. The first replay carries the gateway's own event id, so a late
// original delivery is still deduplicated. If that id was already logged
// (the final event arrived before an older one and was overridden), the
// event is replayed once more under a derived id.
type ReconciliationWorker struct {
	store    repo.Store
	webhooks service.WebhookService
	gateway  gateway.PaymentGateway
	interval time.Duration
	log      zerolog.Logger
}

func NewReconciliationWorker(
	store repo.Store,
	webhooks service.WebhookService,
	gw gateway.PaymentGateway,
	interval time.Duration,
	log zerolog.Logger,
) *ReconciliationWorker {
	return &ReconciliationWorker{
		store:    store,
		webhooks: webhooks,
		gateway:  gw,
		interval: interval,
		log:      log,
	}
}

func (rw *ReconciliationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.log.Info().Dur("interval", rw.interval).Msg("reconciliation worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rw.Process(ctx); err != nil {
				rw.log.Error().Err(err).Msg("reconciliation failed")
			}
		}
	}
}

// Process runs one reconciliation pass and returns how many replayed
// events were accepted.
func (rw *ReconciliationWorker) Process(ctx context.Context) (int, error) {
	var unsettled []domain.Payment
	err := rw.store.View(ctx, func(ctx context.Context, r repo.Repos) error {
		var err error
		unsettled, err = r.Payments.FindUnsettled(ctx, reconcileBatch)
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(unsettled) == 0 {
		return 0, nil
	}

	rw.log.Info().Int("payments", len(unsettled)).Msg("found unsettled payments")

	fixed := 0
	for _, payment := range unsettled {
		final, settled, err := rw.gateway.CheckStatus(ctx, payment.ID)
		if err != nil {
			rw.log.Warn().Err(err).Str("payment_id", payment.ID).Msg("check status failed")
			continue // next pass
		}
		if !settled {
			continue
		}

		result, err := rw.webhooks.ProcessWebhook(ctx, final)
		if err == nil && result.Outcome == domain.OutcomeDuplicate {
			final.WebhookEventID = ReplayEventID(final.WebhookEventID)
			result, err = rw.webhooks.ProcessWebhook(ctx, final)
		}
		if err != nil {
			rw.log.Warn().Err(err).Str("payment_id", payment.ID).Msg("replay rejected")
			continue
		}
		if result.Outcome == domain.OutcomeAccepted {
			fixed++
			rw.log.Info().
				Str("payment_id", payment.ID).
				Str("payment_status", string(result.PaymentStatus)).
				Msg("replayed lost webhook")
		}
	}
	return fixed, nil
}

func ReplayEventID(webhookEventID string) string {
	return webhookEventID + ":reconcile"
}
