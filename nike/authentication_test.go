package nike

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthentication(t *testing.T, svc *MockService) *AuthenticationGateway {
	t.Helper()
	g := NewAuthenticationGateway(nil, nil)
	require.NoError(t, g.SetService(svc))
	return g
}

func TestAuthenticationGateway_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newMockService()
	g := newTestAuthentication(t, svc)

	authorized, err := g.IsAuthorized(ctx)
	require.NoError(t, err)
	assert.False(t, authorized)

	_, err = g.VerifyToken(ctx)
	assert.Equal(t, CodeTokenVerification, CodeOf(err))

	token, err := g.AuthenticateUser(ctx, "code123", "state")
	require.NoError(t, err)
	assert.Equal(t, "token-code123", token.AccessToken)

	authorized, err = g.IsAuthorized(ctx)
	require.NoError(t, err)
	assert.True(t, authorized)

	ok, err := g.VerifyToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, g.ResetSession(ctx))
	authorized, err = g.IsAuthorized(ctx)
	require.NoError(t, err)
	assert.False(t, authorized)
}

func TestAuthenticationGateway_InitiateLogin(t *testing.T) {
	tests := []struct {
		name     string
		uriFunc  func() (string, error)
		wantCode Code
	}{
		{
			name:    "valid url",
			uriFunc: func() (string, error) { return "https://api.nike.com/oauth/2.0/authorize?state=abc", nil },
		},
		{
			name:     "relative url",
			uriFunc:  func() (string, error) { return "/authorize", nil },
			wantCode: CodeInvalidAuthorizationURL,
		},
		{
			name:     "service failure",
			uriFunc:  func() (string, error) { return "", errors.New("boom") },
			wantCode: CodeInvalidAuthorizationURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockService()
			svc.AuthorizationURIFunc = tt.uriFunc
			g := newTestAuthentication(t, svc)

			signal, err := g.InitiateLogin(context.Background())
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusFound, signal.StatusCode)
			assert.Equal(t, "https://api.nike.com/oauth/2.0/authorize?state=abc", signal.Location)
		})
	}
}

func TestAuthenticationGateway_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup failure", func(t *testing.T) {
		svc := newMockService()
		svc.storage = BrokenStorage{Err: errBroken}
		g := newTestAuthentication(t, svc)

		_, err := g.IsAuthorized(ctx)
		assert.Equal(t, CodeTokenLookup, CodeOf(err))
		assert.ErrorIs(t, err, errBroken)

		_, err = g.VerifyToken(ctx)
		assert.Equal(t, CodeTokenVerification, CodeOf(err))
		assert.True(t, HasCode(err, CodeTokenLookup))
	})

	t.Run("retrieval failure", func(t *testing.T) {
		svc := newMockService()
		svc.storage = BrokenStorage{Err: errBroken}
		g := newTestAuthentication(t, svc)

		_, err := g.AuthenticateUser(ctx, "code", "")
		assert.Equal(t, CodeTokenRetrieval, CodeOf(err))
	})

	t.Run("exchange failure", func(t *testing.T) {
		svc := newMockService()
		svc.RequestAccessTokenFunc = func(context.Context, string, string) (*Token, error) {
			return nil, errors.New("invalid_grant")
		}
		g := newTestAuthentication(t, svc)

		_, err := g.AuthenticateUser(ctx, "code", "")
		assert.Equal(t, CodeTokenExchange, CodeOf(err))
	})

	t.Run("clear failure", func(t *testing.T) {
		svc := newMockService()
		svc.storage = BrokenStorage{Err: errBroken}
		g := newTestAuthentication(t, svc)

		err := g.ResetSession(ctx)
		assert.Equal(t, CodeTokenClear, CodeOf(err))
	})
}

func TestAuthenticationGateway_WithoutService(t *testing.T) {
	ctx := context.Background()
	g := NewAuthenticationGateway(nil, nil)

	_, err := g.IsAuthorized(ctx)
	assert.Equal(t, CodeTokenLookup, CodeOf(err))
	assert.ErrorIs(t, err, ErrNoService)

	_, err = g.VerifyToken(ctx)
	assert.Equal(t, CodeTokenVerification, CodeOf(err))
	assert.ErrorIs(t, err, ErrNoService)

	_, err = g.InitiateLogin(ctx)
	assert.Equal(t, CodeInvalidAuthorizationURL, CodeOf(err))
	assert.ErrorIs(t, err, ErrNoService)

	_, err = g.AuthenticateUser(ctx, "code", "state")
	assert.Equal(t, CodeTokenRetrieval, CodeOf(err))
	assert.ErrorIs(t, err, ErrNoService)

	err = g.ResetSession(ctx)
	assert.Equal(t, CodeTokenClear, CodeOf(err))
	assert.ErrorIs(t, err, ErrNoService)
}
