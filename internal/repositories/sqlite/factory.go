package sqlite

import (
	"context"
	"database/sql"

	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/sirupsen/logrus"
)

type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Ping(ctx context.Context) error {
	if err := h.db.PingContext(ctx); err != nil {
		return repositories.ConnectionError(err)
	}
	return nil
}

// NewRepositoryContainer wires the SQLite repositories around an open database.
// Closing the container closes db.
func NewRepositoryContainer(db *sql.DB, logger *logrus.Logger) *repositories.RepositoryContainer {
	return repositories.NewRepositoryContainer(
		repositories.DriverSQLite,
		NewAdminRepository(db, logger),
		NewPricingRepository(db, logger),
		dbHealth{db: db},
		db.Close,
	)
}
