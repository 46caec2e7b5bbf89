package identity

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Token verification modes
const (
	VerifyModeRemote = "remote"
	VerifyModeJWT    = "jwt"
)

// Config selects and configures the identity provider
type Config struct {
	BaseURL    string
	ServiceKey string
	JWTSecret  string
	VerifyMode string
	Timeout    time.Duration
	RedirectTo string
}

type provider struct {
	TokenVerifier
	AccountAdmin
}

// NewProvider builds the GoTrue-backed Provider. In jwt mode caller tokens are
// verified locally while admin operations still go to GoTrue.
func NewProvider(cfg Config, httpClient *http.Client, logger *logrus.Logger) (Provider, error) {
	client, err := NewClient(ClientConfig{
		BaseURL:    cfg.BaseURL,
		ServiceKey: cfg.ServiceKey,
		Timeout:    cfg.Timeout,
		RedirectTo: cfg.RedirectTo,
	}, httpClient, logger)
	if err != nil {
		return nil, err
	}

	switch cfg.VerifyMode {
	case "", VerifyModeRemote:
		return client, nil
	case VerifyModeJWT:
		verifier, err := NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return &provider{TokenVerifier: verifier, AccountAdmin: client}, nil
	default:
		return nil, fmt.Errorf("unsupported identity verify mode: %s", cfg.VerifyMode)
	}
}
