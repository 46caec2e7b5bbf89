package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type stubAdminRepo struct {
	mu          sync.Mutex
	ids         map[string]bool
	existsErr   error
	deleteErr   error
	listErr     error
	existsCalls int
	deleteCalls int
}

func newStubAdminRepo(ids ...string) *stubAdminRepo {
	repo := &stubAdminRepo{ids: make(map[string]bool)}
	for _, id := range ids {
		repo.ids[id] = true
	}
	return repo
}

func (r *stubAdminRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existsCalls++
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.ids[id], nil
}

func (r *stubAdminRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.ids, id)
	return nil
}

func (r *stubAdminRepo) List(ctx context.Context) ([]*models.AdminRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	ids := make([]string, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	records := make([]*models.AdminRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, &models.AdminRecord{ID: id})
	}
	return records, nil
}

func (r *stubAdminRepo) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[id]
}

// stubPricingRepo filters its bands with the same predicate the SQL drivers use
type stubPricingRepo struct {
	bands []*models.PricingBand
	err   error
	calls int
}

func (r *stubPricingRepo) FindActiveBands(ctx context.Context, quantity, colorCount int) ([]*models.PricingBand, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	query := models.PricingQuery{Quantity: quantity, ColorCount: colorCount}
	var matches []*models.PricingBand
	for _, band := range r.bands {
		if band.Covers(query) {
			matches = append(matches, band)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MinQuantity != matches[j].MinQuantity {
			return matches[i].MinQuantity < matches[j].MinQuantity
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func band(id int64, minQty, maxQty, colors int, price string, active bool) *models.PricingBand {
	return &models.PricingBand{
		ID:            id,
		MinQuantity:   minQty,
		MaxQuantity:   maxQty,
		ColorCount:    colors,
		PricePerPiece: decimal.RequireFromString(price),
		Active:        active,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func fastServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		CleanupRetry: &repositories.RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			MaxDelay:      2 * time.Millisecond,
			BackoffFactor: 2.0,
		},
		CleanupTimeout: time.Second,
	}
}
