package services

import (
	"context"
	"strings"

	"github.com/hightechgrafix/htg-shipping-tools/internal/adapters/identity"
	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Gate authorizes admin callers: bearer token, verified identity, admin record
type Gate struct {
	verifier identity.TokenVerifier
	admins   repositories.AdminRepository
	logger   *logrus.Logger
}

// NewGate creates a new authorization gate
func NewGate(verifier identity.TokenVerifier, admins repositories.AdminRepository, logger *logrus.Logger) *Gate {
	if logger == nil {
		logger = logrus.New()
	}
	return &Gate{
		verifier: verifier,
		admins:   admins,
		logger:   logger,
	}
}

// Authorize resolves the Authorization header to an admin caller.
// Checks run in order and stop at the first failure, so the admin
// table is never read for an unauthenticated caller.
func (g *Gate) Authorize(ctx context.Context, authorization string) (*models.AuthorizedCaller, error) {
	token, err := ParseBearerToken(authorization)
	if err != nil {
		return nil, err
	}

	account, verifyErr := g.verifier.VerifyToken(ctx, token)
	if verifyErr != nil {
		g.logger.WithError(verifyErr).Debug("Token verification failed")
		return nil, WrapError(verifyErr, CodeInvalidSession, "token verification failed")
	}
	if account == nil || account.ID == "" {
		return nil, NewError(CodeInvalidSession, "token resolved to no account")
	}

	isAdmin, lookupErr := g.admins.Exists(ctx, account.ID)
	if lookupErr != nil {
		g.logger.WithFields(logrus.Fields{
			"user_id": account.ID,
			"error":   lookupErr.Error(),
		}).Error("Admin lookup failed")
		return nil, WrapError(lookupErr, CodeInternal, "admin lookup failed")
	}
	if !isAdmin {
		g.logger.WithField("user_id", account.ID).Warn("Non-admin caller rejected")
		return nil, NewError(CodeNotAdmin, "caller is not an admin")
	}

	return &models.AuthorizedCaller{ID: account.ID, Email: account.Email}, nil
}

// ParseBearerToken extracts the token from a "Bearer <token>" header.
// The scheme is matched case-insensitively.
func ParseBearerToken(authorization string) (string, error) {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return "", NewError(CodeMissingCredentials, "authorization header is empty")
	}

	scheme, token, found := strings.Cut(authorization, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", NewError(CodeInvalidSession, "unsupported authorization scheme")
	}

	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", NewError(CodeMissingCredentials, "bearer token is empty")
	}

	return token, nil
}
