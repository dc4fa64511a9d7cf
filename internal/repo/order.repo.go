package repo

import (
	"context"
	"database/sql"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type orderRepo struct {
	db DBTX
}

func NewOrderRepo(db DBTX) OrderRepo {
	return &orderRepo{db: db}
}

func (r *orderRepo) FindById(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRowContext(ctx,
		"SELECT id, total_amount, status, payment_status FROM orders WHERE id = $1", id,
	).Scan(
		&order.ID,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentStatus,
	)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	return r.db.QueryRowContext(ctx,
		"INSERT INTO orders (total_amount, status, payment_status) VALUES ($1, $2, $3) RETURNING id",
		order.TotalAmount, order.Status, order.PaymentStatus,
	).Scan(&order.ID)
}

func (r *orderRepo) UpdateOrderStatus(ctx context.Context, order *domain.Order) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, payment_status = $2 WHERE id = $3",
		order.Status, order.PaymentStatus, order.ID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
