package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending migration. It opens its own connection so
// the application pool is left untouched.
func Migrate(cfg config.DBConfig, log zerolog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL("pgx5"))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Warn().AnErr("source", sourceErr).AnErr("db", dbErr).Msg("closing migration resources")
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("migrations: database already up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info().Msg("migrations applied")
	return nil
}
