package services

import (
	"context"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/adapters/identity"
	"github.com/hightechgrafix/htg-shipping-tools/internal/metrics"
	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ListUsersPageSize is the single page of accounts returned by ListUsers
const ListUsersPageSize = 100

// CreateUserRequest represents a request to provision an account
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DeleteUserRequest represents a request to delete an account
type DeleteUserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// PasswordResetRequest represents a request to send a recovery email
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// UserAdminService defines the admin operations on identity-provider accounts.
// Every method expects a caller already authorized by the Gate.
type UserAdminService interface {
	CreateUser(ctx context.Context, caller *models.AuthorizedCaller, req *CreateUserRequest) (*models.Account, error)
	DeleteUser(ctx context.Context, caller *models.AuthorizedCaller, req *DeleteUserRequest) error
	ListUsers(ctx context.Context, caller *models.AuthorizedCaller) ([]models.AccountSummary, error)
	SendPasswordReset(ctx context.Context, caller *models.AuthorizedCaller, req *PasswordResetRequest) error
}

// userAdminService implements the UserAdminService interface
type userAdminService struct {
	accounts       identity.AccountAdmin
	admins         repositories.AdminRepository
	validator      *validator.Validate
	cleanupRetry   *repositories.RetryConfig
	cleanupTimeout time.Duration
	logger         *logrus.Logger
}

// NewUserAdminService creates a new user admin service instance
func NewUserAdminService(accounts identity.AccountAdmin, admins repositories.AdminRepository, cfg *ServiceConfig, logger *logrus.Logger) UserAdminService {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logrus.New()
	}
	return &userAdminService{
		accounts:       accounts,
		admins:         admins,
		validator:      validator.New(),
		cleanupRetry:   cfg.CleanupRetry,
		cleanupTimeout: cfg.CleanupTimeout,
		logger:         logger,
	}
}

// CreateUser provisions an account with a confirmed email
func (s *userAdminService) CreateUser(ctx context.Context, caller *models.AuthorizedCaller, req *CreateUserRequest) (*models.Account, error) {
	if req == nil || s.validator.Struct(req) != nil {
		return nil, NewError(CodeValidation, "Email and password required")
	}

	account, err := s.accounts.CreateAccount(ctx, &models.NewAccountRequest{
		Email:        req.Email,
		Password:     req.Password,
		EmailConfirm: true,
	})
	if err != nil {
		return nil, s.identityError(err, "create_user", caller)
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id":   caller.ID,
		"account_id": account.ID,
	}).Info("Account created")

	return account, nil
}

// DeleteUser deletes the account, then removes its admin record if one exists.
// The record removal is best effort: failures are logged and counted, never returned.
func (s *userAdminService) DeleteUser(ctx context.Context, caller *models.AuthorizedCaller, req *DeleteUserRequest) error {
	if req == nil || s.validator.Struct(req) != nil {
		return NewError(CodeValidation, "User ID required")
	}

	if req.UserID == caller.ID {
		return NewError(CodeValidation, "Cannot delete yourself")
	}

	if err := s.accounts.DeleteAccount(ctx, req.UserID); err != nil {
		return s.identityError(err, "delete_user", caller)
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id":   caller.ID,
		"account_id": req.UserID,
	}).Info("Account deleted")

	s.removeAdminRecord(ctx, req.UserID)

	return nil
}

// removeAdminRecord runs detached from request cancellation so an aborted
// client does not leave the record behind
func (s *userAdminService) removeAdminRecord(ctx context.Context, userID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cleanupTimeout)
	defer cancel()

	err := repositories.WithRetry(cleanupCtx, s.cleanupRetry, func(ctx context.Context) error {
		return s.admins.Delete(ctx, userID)
	})
	if err != nil {
		metrics.AdminCleanupFailuresTotal.Inc()
		s.logger.WithFields(logrus.Fields{
			"account_id": userID,
			"error":      err.Error(),
		}).Warn("Admin record cleanup failed; reconciliation will remove it")
	}
}

// ListUsers returns the first page of accounts, projected to summaries
func (s *userAdminService) ListUsers(ctx context.Context, caller *models.AuthorizedCaller) ([]models.AccountSummary, error) {
	accounts, err := s.accounts.ListAccounts(ctx, 1, ListUsersPageSize)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"admin_id": caller.ID,
			"error":    err.Error(),
		}).Error("Listing accounts failed")
		return nil, WrapError(err, CodeInternal, "list accounts failed")
	}

	if len(accounts) > ListUsersPageSize {
		accounts = accounts[:ListUsersPageSize]
	}

	summaries := make([]models.AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		if account == nil {
			continue
		}
		summaries = append(summaries, account.Summary())
	}

	return summaries, nil
}

// SendPasswordReset triggers the provider's recovery email
func (s *userAdminService) SendPasswordReset(ctx context.Context, caller *models.AuthorizedCaller, req *PasswordResetRequest) error {
	if req == nil || s.validator.Struct(req) != nil {
		return NewError(CodeValidation, "Email required")
	}

	if err := s.accounts.SendPasswordReset(ctx, req.Email); err != nil {
		return s.identityError(err, "send_reset", caller)
	}

	s.logger.WithField("admin_id", caller.ID).Info("Password reset sent")
	return nil
}

// identityError passes provider rejections through and masks everything else
func (s *userAdminService) identityError(err error, operation string, caller *models.AuthorizedCaller) error {
	fields := logrus.Fields{
		"operation": operation,
		"admin_id":  caller.ID,
		"error":     err.Error(),
	}

	if providerErr, ok := identity.AsProviderError(err); ok && providerErr.IsClientError() {
		s.logger.WithFields(fields).Warn("Identity provider rejected request")
		return WrapError(err, CodeIdentityRejected, providerErr.Message)
	}

	s.logger.WithFields(fields).Error("Identity provider call failed")
	return WrapError(err, CodeInternal, operation+" failed")
}
