package np

import (
	"context"
	"errors"
	"fmt"
)

// ErrLoginRequired is returned when no Nike+ token is stored
var ErrLoginRequired = errors.New("login to Nike+ required")

// LoginRequiredError carries the URL the user has to visit
type LoginRequiredError struct {
	AuthorizationURL string
}

func (e *LoginRequiredError) Error() string {
	return fmt.Sprintf("%s: visit %s", ErrLoginRequired, e.AuthorizationURL)
}

func (e *LoginRequiredError) Unwrap() error {
	return ErrLoginRequired
}

// AuthService handles authentication and session management
type AuthService struct {
	auth   Authenticator
	logger Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(auth Authenticator, logger Logger) *AuthService {
	return &AuthService{
		auth:   auth,
		logger: logger,
	}
}

// EnsureAuthenticated succeeds when a token is stored. Otherwise it starts a
// login and returns a *LoginRequiredError with the authorization URL.
func (a *AuthService) EnsureAuthenticated(ctx context.Context) error {
	a.logger.Debug("checking for stored token")

	ok, err := a.auth.IsAuthorized(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authorization: %w", err)
	}
	if ok {
		a.logger.Info("using existing Nike+ session")
		return nil
	}

	a.logger.Info("starting Nike+ login")
	signal, err := a.auth.InitiateLogin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}
	return &LoginRequiredError{AuthorizationURL: signal.Location}
}

// CompleteLogin exchanges the code from the OAuth callback for a token
func (a *AuthService) CompleteLogin(ctx context.Context, code, state string) error {
	if code == "" {
		return errors.New("authorization code is required")
	}
	if _, err := a.auth.AuthenticateUser(ctx, code, state); err != nil {
		return fmt.Errorf("failed to complete login: %w", err)
	}
	a.logger.Info("successfully logged in to Nike+")
	return nil
}

// Logout clears the stored token
func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.auth.ResetSession(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	a.logger.Info("logged out of Nike+")
	return nil
}
