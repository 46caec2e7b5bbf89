package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/adapters/identity"
	"github.com/hightechgrafix/htg-shipping-tools/internal/database"
	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories/sqlite"
	"github.com/hightechgrafix/htg-shipping-tools/internal/services"
	"github.com/hightechgrafix/htg-shipping-tools/pkg/lambda"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	api      *API
	provider *identity.MockProvider
	db       *sql.DB
	health   repositories.HealthChecker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := repositories.DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "handlers.db")

	ctx := context.Background()
	require.NoError(t, database.NewMigrationManager(cfg, logger).RunMigrations(ctx))
	db, err := database.OpenSQLite(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`INSERT INTO admins (id) VALUES ('admin-1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO screen_print_pricing_grid
		(min_quantity, max_quantity, color_count, price_per_piece, active) VALUES
		(1, 49, 1, '2.50', 1),
		(50, 499, 1, '1.90', 1),
		(1, 50, 2, '3.00', 1),
		(25, 100, 2, '2.75', 1)`)
	require.NoError(t, err)

	provider := identity.NewMockProvider()
	provider.AddAccount("admin-1", "admin@example.com", "admin-token")
	provider.AddAccount("user-1", "user@example.com", "user-token")

	svcCfg := services.DefaultServiceConfig()
	svcCfg.CleanupRetry.InitialDelay = time.Millisecond
	repos := sqlite.NewRepositoryContainer(db, logger)
	svcs, err := services.NewServiceContainer(provider, repos, svcCfg, logger)
	require.NoError(t, err)

	api := NewAPI(svcs.Gate, logger)
	api.Register(NewAdminHandler(svcs.UserAdmin).Endpoints()...)
	api.Register(NewPricingHandler(svcs.Pricing).Endpoints()...)

	return &fixture{api: api, provider: provider, db: db, health: repos.Health}
}

func (f *fixture) call(t *testing.T, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["authorization"] = "Bearer " + token
	}
	resp := f.api.Dispatch(context.Background(), &lambda.Request{
		Method:  method,
		Path:    path,
		Headers: headers,
		Body:    []byte(body),
	})
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.Headers["X-Request-ID"])
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body, &decoded), string(resp.Body))
	return resp.StatusCode, decoded
}

func (f *fixture) adminExists(t *testing.T, id string) bool {
	t.Helper()
	var count int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM admins WHERE id = ?`, id).Scan(&count))
	return count > 0
}

func TestAdminEndpointsRequireCredentials(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		method string
		path   string
	}{
		{"POST", PathCreateUser},
		{"POST", PathDeleteUser},
		{"GET", PathListUsers},
		{"POST", PathSendReset},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			status, body := f.call(t, tc.method, tc.path, "", `{}`)
			assert.Equal(t, 401, status)
			assert.Equal(t, "Missing Authorization header", body["error"])

			status, body = f.call(t, tc.method, tc.path, "garbage", `{}`)
			assert.Equal(t, 401, status)
			assert.Equal(t, "Invalid session", body["error"])

			status, body = f.call(t, tc.method, tc.path, "user-token", `{}`)
			assert.Equal(t, 403, status)
			assert.Equal(t, "Admin access required", body["error"])
		})
	}

	assert.Zero(t, f.provider.CallCount("create_account"))
	assert.Zero(t, f.provider.CallCount("delete_account"))
	assert.Zero(t, f.provider.CallCount("list_accounts"))
}

func TestMethodCheckRunsBeforeGate(t *testing.T) {
	f := newFixture(t)

	status, body := f.call(t, "GET", PathCreateUser, "", "")
	assert.Equal(t, 405, status)
	assert.Equal(t, "Method not allowed", body["error"])
	assert.Zero(t, f.provider.CallCount("verify_token"))

	status, body = f.call(t, "POST", PathListUsers, "admin-token", "")
	assert.Equal(t, 405, status)
	assert.Equal(t, "Method not allowed", body["error"])

	status, body = f.call(t, "GET", PathScreenPrint, "", "")
	assert.Equal(t, 405, status)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body["error"])
}

func TestUnknownPath(t *testing.T) {
	f := newFixture(t)
	status, body := f.call(t, "GET", "/api/admin/unknown", "", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, "Not found", body["error"])
}

func TestCreateUserEndpoint(t *testing.T) {
	f := newFixture(t)

	status, body := f.call(t, "POST", PathCreateUser, "admin-token", `{"email":"new@example.com","password":"secret123"}`)
	require.Equal(t, 200, status, body)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	assert.NotEmpty(t, user["id"])

	status, body = f.call(t, "POST", PathCreateUser, "admin-token", `{"email":"new@example.com"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Email and password required", body["error"])

	status, body = f.call(t, "POST", PathCreateUser, "admin-token", `{not json`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Email and password required", body["error"])

	status, body = f.call(t, "POST", PathCreateUser, "admin-token", `{"email":"new@example.com","password":"again"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "A user with this email address has already been registered", body["error"])
}

func TestDeleteUserEndpoint(t *testing.T) {
	f := newFixture(t)

	status, body := f.call(t, "POST", PathDeleteUser, "admin-token", `{"userId":"admin-1"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Cannot delete yourself", body["error"])
	assert.Zero(t, f.provider.CallCount("delete_account"))
	assert.True(t, f.provider.HasAccount("admin-1"))

	status, body = f.call(t, "POST", PathDeleteUser, "admin-token", `{}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "User ID required", body["error"])

	f.provider.AddAccount("admin-2", "second@example.com", "")
	_, err := f.db.Exec(`INSERT INTO admins (id) VALUES ('admin-2')`)
	require.NoError(t, err)

	status, body = f.call(t, "POST", PathDeleteUser, "admin-token", `{"userId":"admin-2"}`)
	require.Equal(t, 200, status, body)
	assert.Equal(t, map[string]interface{}{"success": true}, body)
	assert.False(t, f.provider.HasAccount("admin-2"))
	assert.False(t, f.adminExists(t, "admin-2"))
}

func TestListUsersEndpoint(t *testing.T) {
	f := newFixture(t)

	status, body := f.call(t, "GET", PathListUsers, "admin-token", "")
	require.Equal(t, 200, status, body)

	users := body["users"].([]interface{})
	require.Len(t, users, 2)
	for _, raw := range users {
		user := raw.(map[string]interface{})
		keys := make([]string, 0, len(user))
		for key := range user {
			keys = append(keys, key)
		}
		assert.ElementsMatch(t, []string{"id", "email", "created_at", "last_sign_in_at"}, keys)
	}
}

func TestSendResetEndpoint(t *testing.T) {
	f := newFixture(t)

	status, body := f.call(t, "POST", PathSendReset, "admin-token", `{"email":"user@example.com"}`)
	require.Equal(t, 200, status, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"user@example.com"}, f.provider.Resets)

	status, body = f.call(t, "POST", PathSendReset, "admin-token", `{"email":""}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Email required", body["error"])
}

func TestScreenPrintEndpoint(t *testing.T) {
	f := newFixture(t)

	t.Run("SingleBand", func(t *testing.T) {
		status, body := f.call(t, "POST", PathScreenPrint, "", `{"quantity":50,"colorCount":1}`)
		require.Equal(t, 200, status, body)
		assert.Equal(t, 50.0, body["quantity"])
		assert.Equal(t, 1.0, body["colorCount"])
		assert.Equal(t, 1.9, body["pricePerPiece"])
		assert.Equal(t, map[string]interface{}{"min": 50.0, "max": 499.0}, body["band"])
	})

	t.Run("Idempotent", func(t *testing.T) {
		_, first := f.call(t, "POST", PathScreenPrint, "", `{"quantity":"75","colorCount":"1"}`)
		_, second := f.call(t, "POST", PathScreenPrint, "", `{"quantity":"75","colorCount":"1"}`)
		assert.Equal(t, first, second)
	})

	t.Run("NoMatch", func(t *testing.T) {
		status, body := f.call(t, "POST", PathScreenPrint, "", `{"quantity":1000,"colorCount":1}`)
		assert.Equal(t, 404, status)
		assert.Equal(t, "NO_MATCH", body["error"])
	})

	t.Run("MultipleMatches", func(t *testing.T) {
		status, body := f.call(t, "POST", PathScreenPrint, "", `{"quantity":30,"colorCount":2}`)
		assert.Equal(t, 409, status)
		assert.Equal(t, "MULTIPLE_MATCHES", body["error"])
		matches := body["matches"].([]interface{})
		require.Len(t, matches, 2)
		assert.Equal(t, map[string]interface{}{
			"min_quantity": 1.0, "max_quantity": 50.0, "color_count": 2.0, "price_per_piece": 3.0,
		}, matches[0])
	})

	t.Run("InvalidInput", func(t *testing.T) {
		status, body := f.call(t, "POST", PathScreenPrint, "", `{"quantity":2.5,"colorCount":1}`)
		assert.Equal(t, 400, status)
		assert.Equal(t, "INVALID_QUANTITY", body["error"])

		status, body = f.call(t, "POST", PathScreenPrint, "", `{"quantity":10,"colorCount":-1}`)
		assert.Equal(t, 400, status)
		assert.Equal(t, "INVALID_COLOR_COUNT", body["error"])

		status, body = f.call(t, "POST", PathScreenPrint, "", ``)
		assert.Equal(t, 400, status)
		assert.Equal(t, "INVALID_QUANTITY", body["error"])
	})

	t.Run("HugeExponent", func(t *testing.T) {
		start := time.Now()
		status, body := f.call(t, "POST", PathScreenPrint, "", `{"quantity":1e40000000,"colorCount":1}`)
		assert.Equal(t, 400, status)
		assert.Equal(t, "INVALID_QUANTITY", body["error"])

		status, body = f.call(t, "POST", PathScreenPrint, "", `{"quantity":5,"colorCount":"1e-999999999"}`)
		assert.Equal(t, 400, status)
		assert.Equal(t, "INVALID_COLOR_COUNT", body["error"])
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		_, err := f.db.Exec(`DROP TABLE screen_print_pricing_grid`)
		require.NoError(t, err)

		status, body := f.call(t, "POST", PathScreenPrint, "", `{"quantity":50,"colorCount":1}`)
		assert.Equal(t, 500, status)
		assert.Equal(t, "DB_ERROR", body["error"])
		assert.NotEmpty(t, body["details"])
	})
}

func TestDispatchRecoversFromPanics(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	api := NewAPI(nil, logger)
	api.Register(&Endpoint{
		Name:   "boom",
		Path:   "/boom",
		Method: "POST",
		Action: func(ctx context.Context, _ *models.AuthorizedCaller, _ []byte) (interface{}, error) {
			panic("unexpected")
		},
	})

	resp := api.Dispatch(context.Background(), &lambda.Request{Method: "POST", Path: "/boom"})
	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Server error","code":"INTERNAL_ERROR"}`, string(resp.Body))
}

func TestInternalErrorsAreMasked(t *testing.T) {
	f := newFixture(t)

	t.Run("AdminLookupFailure", func(t *testing.T) {
		_, err := f.db.Exec(`ALTER TABLE admins RENAME TO admins_moved`)
		require.NoError(t, err)
		t.Cleanup(func() {
			_, _ = f.db.Exec(`ALTER TABLE admins_moved RENAME TO admins`)
		})

		status, body := f.call(t, "GET", PathListUsers, "admin-token", "")
		assert.Equal(t, 500, status)
		assert.Equal(t, map[string]interface{}{"error": "Server error", "code": "INTERNAL_ERROR"}, body)
	})

	t.Run("ProviderFault", func(t *testing.T) {
		f.provider.Fail = errors.New("dial tcp 10.0.0.1:443: i/o timeout")
		defer func() { f.provider.Fail = nil }()

		status, body := f.call(t, "GET", PathListUsers, "admin-token", "")
		assert.Equal(t, 401, status, "verification faults are session errors")
		assert.Equal(t, "Invalid session", body["error"])
	})
}
