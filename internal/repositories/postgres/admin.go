package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type adminRepository struct {
	base
}

// NewAdminRepository constructs the postgres admin repository
func NewAdminRepository(pool *pgxpool.Pool, logger *logrus.Logger) repositories.AdminRepository {
	return &adminRepository{base: newBase(pool, "admins", logger)}
}

func (r *adminRepository) Exists(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, repositories.NewRepositoryError("exists", r.table, id, repositories.ErrInvalidID)
	}

	const query = `SELECT 1 FROM admins WHERE id::text = $1 LIMIT 1`

	start := time.Now()
	var one int
	err := r.pool.QueryRow(ctx, query, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logQuery("exists", start, nil)
		return false, nil
	}
	r.logQuery("exists", start, err)
	if err != nil {
		return false, r.wrap("exists", id, err)
	}

	return true, nil
}

func (r *adminRepository) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return repositories.NewRepositoryError("delete", r.table, id, repositories.ErrInvalidID)
	}

	const query = `DELETE FROM admins WHERE id::text = $1`

	start := time.Now()
	_, err := r.pool.Exec(ctx, query, id)
	r.logQuery("delete", start, err)
	if err != nil {
		return r.wrap("delete", id, err)
	}
	return nil
}

func (r *adminRepository) List(ctx context.Context) ([]*models.AdminRecord, error) {
	const query = `SELECT id::text FROM admins ORDER BY id`

	start := time.Now()
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logQuery("list", start, err)
		return nil, r.wrap("list", "", err)
	}
	defer rows.Close()

	var admins []*models.AdminRecord
	for rows.Next() {
		admin := &models.AdminRecord{}
		if err := rows.Scan(&admin.ID); err != nil {
			return nil, r.wrap("list", "", err)
		}
		admins = append(admins, admin)
	}
	r.logQuery("list", start, rows.Err())
	if err := rows.Err(); err != nil {
		return nil, r.wrap("list", "", err)
	}

	return admins, nil
}
