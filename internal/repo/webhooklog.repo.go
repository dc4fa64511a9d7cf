package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
)

type webhookLogRepo struct {
	db DBTX
}

func NewWebhookLogRepo(db DBTX) WebhookLogRepo {
	return &webhookLogRepo{db: db}
}

func (r *webhookLogRepo) FindByEventId(ctx context.Context, webhookEventID string) (*domain.WebhookLog, error) {
	var l domain.WebhookLog
	err := r.db.QueryRowContext(ctx,
		"SELECT id, webhook_event_id, payment_id, status, received_at FROM webhook_logs WHERE webhook_event_id = $1",
		webhookEventID,
	).Scan(&l.ID, &l.WebhookEventID, &l.PaymentID, &l.Status, &l.ReceivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.ReceivedAt = l.ReceivedAt.UTC()
	return &l, nil
}

// CreateWebhookLog claims the event id. A concurrent insert of the same id
// blocks on the unique index until the first transaction finishes and then
// inserts nothing.
func (r *webhookLogRepo) CreateWebhookLog(ctx context.Context, log *domain.WebhookLog) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO webhook_logs (webhook_event_id, payment_id, status, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (webhook_event_id) DO NOTHING
		RETURNING id`,
		log.WebhookEventID, log.PaymentID, log.Status, log.ReceivedAt,
	).Scan(&log.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicateEvent
	}
	return err
}

func (r *webhookLogRepo) ListWebhookLogs(ctx context.Context) ([]domain.WebhookLog, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, webhook_event_id, payment_id, status, received_at FROM webhook_logs ORDER BY id::bigint",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []domain.WebhookLog{}
	for rows.Next() {
		var l domain.WebhookLog
		if err := rows.Scan(&l.ID, &l.WebhookEventID, &l.PaymentID, &l.Status, &l.ReceivedAt); err != nil {
			return nil, err
		}
		l.ReceivedAt = l.ReceivedAt.UTC()
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
