package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/database"
)

// PostgresStore runs each unit of work in its own transaction. Record ids
// come from the shared record_ids sequence.
type PostgresStore struct {
	dbService database.Service
}

func NewPostgresStore(dbService database.Service) *PostgresStore {
	return &PostgresStore{dbService: dbService}
}

func (p *PostgresStore) View(ctx context.Context, fn TxFunc) error {
	return fn(ctx, postgresRepos(p.dbService.DB(), false))
}

func (p *PostgresStore) Atomic(ctx context.Context, fn TxFunc) error {
	tx, err := p.dbService.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, postgresRepos(tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (p *PostgresStore) Reset(ctx context.Context) error {
	tx, err := p.dbService.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE orders, payments, tickets, webhook_logs`); err != nil {
		return fmt.Errorf("truncate records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER SEQUENCE record_ids RESTART WITH 1`); err != nil {
		return fmt.Errorf("restart record ids: %w", err)
	}
	return tx.Commit()
}

func (p *PostgresStore) Health(ctx context.Context) map[string]string {
	stats := p.dbService.Health(ctx)
	stats["driver"] = "postgres"
	return stats
}

func (p *PostgresStore) Close() error {
	return p.dbService.Close()
}

func postgresRepos(db DBTX, inTx bool) Repos {
	return Repos{
		Orders:      NewOrderRepo(db),
		Payments:    &paymentRepo{db: db, forUpdate: inTx},
		Tickets:     NewTicketRepo(db),
		WebhookLogs: NewWebhookLogRepo(db),
	}
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ DBTX  = (*sql.DB)(nil)
	_ DBTX  = (*sql.Tx)(nil)
)
