package repo

import (
	"context"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
)

type ticketRepo struct {
	db DBTX
}

func NewTicketRepo(db DBTX) TicketRepo {
	return &ticketRepo{db: db}
}

func (r *ticketRepo) FindByOrderId(ctx context.Context, orderID string) ([]domain.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_id, status, unit_price FROM tickets WHERE order_id = $1 ORDER BY id::bigint",
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Status, &t.UnitPrice); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepo) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	return r.db.QueryRowContext(ctx,
		"INSERT INTO tickets (order_id, status, unit_price) VALUES ($1, $2, $3) RETURNING id",
		ticket.OrderID, ticket.Status, ticket.UnitPrice,
	).Scan(&ticket.ID)
}

func (r *ticketRepo) ConfirmHeldTickets(ctx context.Context, orderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tickets SET status = $1 WHERE order_id = $2 AND status = $3",
		domain.TicketConfirmed, orderID, domain.TicketHeld,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
