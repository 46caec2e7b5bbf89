package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hightechgrafix/htg-shipping-tools/internal/adapters/identity"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		code   Code
	}{
		{name: "valid", header: "Bearer abc.def", token: "abc.def"},
		{name: "lowercase scheme", header: "bearer abc", token: "abc"},
		{name: "extra spaces", header: "  Bearer   abc  ", token: "abc"},
		{name: "empty", header: "", code: CodeMissingCredentials},
		{name: "whitespace only", header: "   ", code: CodeMissingCredentials},
		{name: "scheme only", header: "Bearer", code: CodeMissingCredentials},
		{name: "scheme with blank token", header: "Bearer    ", code: CodeMissingCredentials},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", code: CodeInvalidSession},
		{name: "bare token", header: "abc.def", code: CodeInvalidSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ParseBearerToken(tt.header)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, IsCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestGateAuthorize(t *testing.T) {
	ctx := context.Background()

	newGate := func() (*Gate, *identity.MockProvider, *stubAdminRepo) {
		provider := identity.NewMockProvider()
		provider.AddAccount("admin-1", "admin@example.com", "admin-token")
		provider.AddAccount("user-1", "user@example.com", "user-token")
		admins := newStubAdminRepo("admin-1")
		return NewGate(provider, admins, quietLogger()), provider, admins
	}

	t.Run("MissingHeaderTouchesNothing", func(t *testing.T) {
		gate, provider, admins := newGate()
		_, err := gate.Authorize(ctx, "")
		assert.True(t, IsCode(err, CodeMissingCredentials))
		assert.Equal(t, 401, AsError(err).Metadata().HTTPStatus)
		assert.Zero(t, provider.CallCount("verify_token"))
		assert.Zero(t, admins.existsCalls)
	})

	t.Run("InvalidTokenSkipsAdminLookup", func(t *testing.T) {
		gate, _, admins := newGate()
		_, err := gate.Authorize(ctx, "Bearer not-a-token")
		assert.True(t, IsCode(err, CodeInvalidSession))
		assert.Equal(t, "Invalid session", AsError(err).PublicMessage())
		assert.Zero(t, admins.existsCalls)
	})

	t.Run("ProviderFailureIsInvalidSession", func(t *testing.T) {
		gate, provider, _ := newGate()
		provider.Fail = errors.New("connection refused")
		_, err := gate.Authorize(ctx, "Bearer admin-token")
		assert.True(t, IsCode(err, CodeInvalidSession))
	})

	t.Run("NonAdminIsForbidden", func(t *testing.T) {
		gate, _, _ := newGate()
		_, err := gate.Authorize(ctx, "Bearer user-token")
		assert.True(t, IsCode(err, CodeNotAdmin))
		assert.Equal(t, 403, AsError(err).Metadata().HTTPStatus)
		assert.Equal(t, "Admin access required", AsError(err).PublicMessage())
	})

	t.Run("LookupFailureIsMaskedServerError", func(t *testing.T) {
		gate, _, admins := newGate()
		admins.existsErr = repositories.NewRepositoryError("exists", "admins", "admin-1", repositories.ErrConnection)
		_, err := gate.Authorize(ctx, "Bearer admin-token")
		assert.True(t, IsCode(err, CodeInternal))
		assert.Equal(t, 500, AsError(err).Metadata().HTTPStatus)
		assert.Equal(t, "Server error", AsError(err).PublicMessage())
	})

	t.Run("AdminIsAuthorized", func(t *testing.T) {
		gate, _, _ := newGate()
		caller, err := gate.Authorize(ctx, "Bearer admin-token")
		require.NoError(t, err)
		assert.Equal(t, "admin-1", caller.ID)
		assert.Equal(t, "admin@example.com", caller.Email)
	})
}
