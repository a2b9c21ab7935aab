package np

import (
	"context"
	"errors"
	"testing"
)

func TestAuthService_EnsureAuthenticated_ExistingSession(t *testing.T) {
	auth := &MockAuthenticator{Authorized: true}
	logger := &MockLogger{}
	service := NewAuthService(auth, logger)

	if err := service.EnsureAuthenticated(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if auth.LoginCalled {
		t.Error("Expected no login to be started")
	}

	found := false
	for _, call := range logger.InfoCalls {
		if call.Message == "using existing Nike+ session" {
			found = true
		}
	}
	if !found {
		t.Error("Expected info log about the existing session")
	}
}

func TestAuthService_EnsureAuthenticated_LoginRequired(t *testing.T) {
	auth := &MockAuthenticator{LoginURL: "https://api.nike.com/oauth/2.0/authorize?state=abc"}
	service := NewAuthService(auth, &MockLogger{})

	err := service.EnsureAuthenticated(context.Background())

	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("Expected ErrLoginRequired, got %v", err)
	}
	var loginErr *LoginRequiredError
	if !errors.As(err, &loginErr) {
		t.Fatalf("Expected *LoginRequiredError, got %T", err)
	}
	if loginErr.AuthorizationURL != auth.LoginURL {
		t.Errorf("AuthorizationURL = %q, want %q", loginErr.AuthorizationURL, auth.LoginURL)
	}
}

func TestAuthService_EnsureAuthenticated_Errors(t *testing.T) {
	tests := []struct {
		name string
		auth *MockAuthenticator
	}{
		{name: "lookup fails", auth: &MockAuthenticator{LookupError: errUpstream}},
		{name: "login fails", auth: &MockAuthenticator{LoginError: errUpstream}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAuthService(tt.auth, &MockLogger{}).EnsureAuthenticated(context.Background())
			if !errors.Is(err, errUpstream) {
				t.Errorf("Expected wrapped upstream error, got %v", err)
			}
			if errors.Is(err, ErrLoginRequired) {
				t.Error("Did not expect ErrLoginRequired")
			}
		})
	}
}

func TestAuthService_CompleteLogin(t *testing.T) {
	auth := &MockAuthenticator{}
	service := NewAuthService(auth, &MockLogger{})

	if err := service.CompleteLogin(context.Background(), "", "state"); err == nil {
		t.Error("Expected an error for an empty code")
	}
	if len(auth.Codes) != 0 {
		t.Error("Expected no exchange for an empty code")
	}

	if err := service.CompleteLogin(context.Background(), "code-1", "state"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !auth.Authorized {
		t.Error("Expected authenticator to be authorized")
	}

	auth.ExchangeError = errUpstream
	if err := service.CompleteLogin(context.Background(), "code-2", "state"); !errors.Is(err, errUpstream) {
		t.Errorf("Expected wrapped exchange error, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	auth := &MockAuthenticator{Authorized: true}
	service := NewAuthService(auth, &MockLogger{})

	if err := service.Logout(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !auth.ResetCalled || auth.Authorized {
		t.Error("Expected session to be reset")
	}

	auth.ResetError = errUpstream
	if err := service.Logout(context.Background()); !errors.Is(err, errUpstream) {
		t.Errorf("Expected wrapped reset error, got %v", err)
	}
}
