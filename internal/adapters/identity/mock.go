package identity

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"

	"github.com/google/uuid"
)

// MockProvider is an in-memory Provider for tests and local development
type MockProvider struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	tokens   map[string]string // token -> account ID

	// Fail, when set, is returned by every call before any state changes
	Fail error

	// Calls records operation names in order
	Calls []string

	// Resets records emails passed to SendPasswordReset
	Resets []string
}

// NewMockProvider creates an empty MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		accounts: make(map[string]*models.Account),
		tokens:   make(map[string]string),
	}
}

// AddAccount stores an account and returns it; token, when non-empty, signs in as it
func (m *MockProvider) AddAccount(id, email, token string) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := time.Now().UTC()
	account := &models.Account{ID: id, Email: email, CreatedAt: &created}
	m.accounts[id] = account
	if token != "" {
		m.tokens[token] = id
	}
	return account
}

// HasAccount reports whether the account exists
func (m *MockProvider) HasAccount(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[id]
	return ok
}

func (m *MockProvider) call(name string) error {
	m.Calls = append(m.Calls, name)
	return m.Fail
}

// VerifyToken implements TokenVerifier
func (m *MockProvider) VerifyToken(ctx context.Context, token string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("verify_token"); err != nil {
		return nil, err
	}

	id, ok := m.tokens[token]
	if !ok {
		return nil, &ProviderError{Status: http.StatusUnauthorized, Code: "bad_jwt", Message: "invalid JWT"}
	}
	account, ok := m.accounts[id]
	if !ok {
		return nil, &ProviderError{Status: http.StatusForbidden, Code: "user_not_found", Message: "User from sub claim in JWT does not exist"}
	}
	copied := *account
	return &copied, nil
}

// CreateAccount implements AccountAdmin
func (m *MockProvider) CreateAccount(ctx context.Context, req *models.NewAccountRequest) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("create_account"); err != nil {
		return nil, err
	}

	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Email, req.Email) {
			return nil, &ProviderError{
				Status:  http.StatusUnprocessableEntity,
				Code:    "email_exists",
				Message: "A user with this email address has already been registered",
			}
		}
	}

	created := time.Now().UTC()
	account := &models.Account{ID: uuid.New().String(), Email: req.Email, CreatedAt: &created}
	if req.EmailConfirm {
		account.EmailConfirmedAt = &created
	}
	m.accounts[account.ID] = account

	copied := *account
	return &copied, nil
}

// DeleteAccount implements AccountAdmin
func (m *MockProvider) DeleteAccount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("delete_account"); err != nil {
		return err
	}

	if _, ok := m.accounts[id]; !ok {
		return &ProviderError{Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"}
	}
	delete(m.accounts, id)
	return nil
}

// ListAccounts implements AccountAdmin; accounts are ordered by ID
func (m *MockProvider) ListAccounts(ctx context.Context, page, perPage int) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("list_accounts"); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(ids) {
		return []*models.Account{}, nil
	}
	end := start + perPage
	if end > len(ids) {
		end = len(ids)
	}

	accounts := make([]*models.Account, 0, end-start)
	for _, id := range ids[start:end] {
		copied := *m.accounts[id]
		accounts = append(accounts, &copied)
	}
	return accounts, nil
}

// GetAccount implements AccountAdmin
func (m *MockProvider) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("get_account"); err != nil {
		return nil, err
	}

	account, ok := m.accounts[id]
	if !ok {
		return nil, &ProviderError{Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"}
	}
	copied := *account
	return &copied, nil
}

// SendPasswordReset implements AccountAdmin
func (m *MockProvider) SendPasswordReset(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("send_password_reset"); err != nil {
		return err
	}

	m.Resets = append(m.Resets, email)
	return nil
}

// CallCount returns how many times the named operation ran
func (m *MockProvider) CallCount(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, call := range m.Calls {
		if call == name {
			count++
		}
	}
	return count
}
