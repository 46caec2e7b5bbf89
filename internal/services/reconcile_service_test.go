package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hightechgrafix/htg-shipping-tools/internal/adapters/identity"
	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyLookup fails GetAccount for one ID with a non-404 error
type flakyLookup struct {
	*identity.MockProvider
	failID string
}

func (f *flakyLookup) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	if id == f.failID {
		return nil, &identity.ProviderError{Status: 502, Message: "bad gateway"}
	}
	return f.MockProvider.GetAccount(ctx, id)
}

func TestAdminReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesOnlyMissingAccounts", func(t *testing.T) {
		provider := identity.NewMockProvider()
		provider.AddAccount("admin-1", "admin@example.com", "")
		provider.AddAccount("admin-3", "third@example.com", "")
		admins := newStubAdminRepo("admin-1", "admin-2", "admin-3", "admin-4")

		reconciler := NewAdminReconciler(&flakyLookup{MockProvider: provider, failID: "admin-4"}, admins, fastServiceConfig(), quietLogger())
		report, err := reconciler.Reconcile(ctx)
		require.NoError(t, err)

		assert.Equal(t, 4, report.Checked)
		assert.Equal(t, 1, report.Removed)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, []string{"admin-2"}, report.RemovedIDs)
		assert.False(t, admins.has("admin-2"))
		assert.True(t, admins.has("admin-4"), "lookup failures must not remove records")
	})

	t.Run("DeleteFailureCountsAsFailed", func(t *testing.T) {
		provider := identity.NewMockProvider()
		admins := newStubAdminRepo("orphan")
		admins.deleteErr = repositories.NewRepositoryError("delete", "admins", "orphan", repositories.ErrUnavailable)

		report, err := NewAdminReconciler(provider, admins, fastServiceConfig(), quietLogger()).Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Removed)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, 3, admins.deleteCalls)
	})

	t.Run("ListFailureIsReturned", func(t *testing.T) {
		admins := newStubAdminRepo()
		admins.listErr = errors.New("database is closed")
		_, err := NewAdminReconciler(identity.NewMockProvider(), admins, fastServiceConfig(), quietLogger()).Reconcile(ctx)
		require.Error(t, err)
	})
}

func TestNewServiceContainer(t *testing.T) {
	provider := identity.NewMockProvider()
	repos := repositories.NewRepositoryContainer("stub", newStubAdminRepo(), &stubPricingRepo{}, nil, nil)

	services, err := NewServiceContainer(provider, repos, nil, quietLogger())
	require.NoError(t, err)
	assert.NotNil(t, services.Gate)
	assert.NotNil(t, services.UserAdmin)
	assert.NotNil(t, services.Pricing)
	assert.NotNil(t, services.Reconciler)

	_, err = NewServiceContainer(nil, repos, nil, quietLogger())
	assert.Error(t, err)

	_, err = NewServiceContainer(provider, nil, nil, quietLogger())
	assert.Error(t, err)
}
