package repo

import (
	"context"
	"database/sql"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
)

type paymentRepo struct {
	db DBTX
	// forUpdate row-locks payments read inside a transaction.
	forUpdate bool
}

func NewPaymentRepo(db DBTX) PaymentRepo {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) FindById(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT id, order_id, amount, status, processed_at FROM payments WHERE id = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	var p domain.Payment
	var processedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.OrderID,
		&p.Amount,
		&p.Status,
		&processedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		t := processedAt.Time.UTC()
		p.ProcessedAt = &t
	}
	return &p, nil
}

func (r *paymentRepo) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	query := `INSERT INTO payments (order_id, amount, status, processed_at) VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(
		ctx, query, payment.OrderID, payment.Amount, payment.Status, payment.ProcessedAt,
	).Scan(&payment.ID)
}

func (r *paymentRepo) UpdatePaymentStatus(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $2,
		    processed_at = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, payment.ID, payment.Status, payment.ProcessedAt)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *paymentRepo) FindUnsettled(ctx context.Context, limit int) ([]domain.Payment, error) {
	query := `
		SELECT id, order_id, amount, status, processed_at FROM payments
		WHERE status IN ($1, $2)
		ORDER BY id::bigint
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, domain.PaymentPending, domain.PaymentProcessing, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		var processedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Status, &processedAt); err != nil {
			return nil, err
		}
		if processedAt.Valid {
			t := processedAt.Time.UTC()
			p.ProcessedAt = &t
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
