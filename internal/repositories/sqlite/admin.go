package sqlite

import (
	"context"
	"database/sql"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/sirupsen/logrus"
)

const adminsTable = "admins"

// AdminRepository implements repositories.AdminRepository for SQLite
type AdminRepository struct {
	*BaseRepository[models.AdminRecord]
}

// NewAdminRepository creates a new SQLite admin repository
func NewAdminRepository(db *sql.DB, logger *logrus.Logger) repositories.AdminRepository {
	return &AdminRepository{
		BaseRepository: NewBaseRepository[models.AdminRecord](db, adminsTable, logger),
	}
}

// Delete removes the admin record; a missing row is not an error
func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	_, err := r.executeExec(ctx, "delete", "DELETE FROM admins WHERE id = ?", id)
	return err
}

// List returns all admin records ordered by ID
func (r *AdminRepository) List(ctx context.Context) ([]*models.AdminRecord, error) {
	rows, err := r.executeQuery(ctx, "list", "SELECT id FROM admins ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []*models.AdminRecord
	for rows.Next() {
		admin := &models.AdminRecord{}
		if err := rows.Scan(&admin.ID); err != nil {
			return nil, repositories.NewRepositoryError("list", r.table, "", err)
		}
		admins = append(admins, admin)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", r.table, "", classifyError(err))
	}

	return admins, nil
}
