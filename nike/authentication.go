package nike

import (
	"context"
	"errors"
	"net/http"
)

// RedirectSignal tells the hosting application where to send the user.
// Performing the redirect is left to the caller.
type RedirectSignal struct {
	Location   string
	StatusCode int
}

// AuthenticationGateway drives the OAuth2 login and the token lifecycle.
type AuthenticationGateway struct {
	EndpointGateway
}

// NewAuthenticationGateway is the registry constructor for "Authentication".
func NewAuthenticationGateway(configuration map[string]any, logger Logger) *AuthenticationGateway {
	return &AuthenticationGateway{EndpointGateway: NewEndpointGateway(configuration, logger)}
}

// IsAuthorized reports whether a token is stored.
func (g *AuthenticationGateway) IsAuthorized(ctx context.Context) (bool, error) {
	if g.service == nil {
		return false, missingService(CodeTokenLookup)
	}
	ok, err := g.service.Storage().HasAccessToken(ServiceName)
	if err != nil {
		return false, wrapError(err, CodeTokenLookup, "Could not look up the access token.")
	}
	return ok, nil
}

// InitiateLogin returns the redirect to the provider's authorization page.
func (g *AuthenticationGateway) InitiateLogin(ctx context.Context) (*RedirectSignal, error) {
	if g.service == nil {
		return nil, missingService(CodeInvalidAuthorizationURL)
	}
	uri, err := g.service.AuthorizationURI()
	if err != nil {
		return nil, wrapError(err, CodeInvalidAuthorizationURL, "Could not build the authorization URL.")
	}
	if !isAbsoluteURL(uri) {
		return nil, newError(CodeInvalidAuthorizationURL, "Invalid authorization URL.").
			WithMetadata(map[string]any{"url": uri})
	}
	g.logger.Info("redirecting to authorization page", "url", uri)
	return &RedirectSignal{Location: uri, StatusCode: http.StatusFound}, nil
}

// AuthenticateUser exchanges an authorization code for a token and stores it.
func (g *AuthenticationGateway) AuthenticateUser(ctx context.Context, code, state string) (*Token, error) {
	if g.service == nil {
		return nil, missingService(CodeTokenRetrieval)
	}
	storage := g.service.Storage()
	existing, err := storage.RetrieveAccessToken(ServiceName)
	switch {
	case errors.Is(err, ErrTokenNotFound):
	case err != nil:
		return nil, wrapError(err, CodeTokenRetrieval, "Could not retrieve the stored access token.")
	default:
		g.logger.Debug("replacing stored token", "had_refresh_token", existing.RefreshToken != "")
	}

	token, err := g.service.RequestAccessToken(ctx, code, state)
	if err != nil {
		return nil, wrapError(err, CodeTokenExchange, "Could not exchange the authorization code.")
	}
	return token, nil
}

// ResetSession clears the stored token.
func (g *AuthenticationGateway) ResetSession(ctx context.Context) error {
	if g.service == nil {
		return missingService(CodeTokenClear)
	}
	if err := g.service.Storage().ClearToken(ServiceName); err != nil {
		return wrapError(err, CodeTokenClear, "Could not clear the access token.")
	}
	return nil
}

// VerifyToken succeeds only when a token is stored.
func (g *AuthenticationGateway) VerifyToken(ctx context.Context) (bool, error) {
	ok, err := g.IsAuthorized(ctx)
	if err != nil {
		return false, wrapError(err, CodeTokenVerification, "Could not verify the access token.")
	}
	if !ok {
		return false, newError(CodeTokenVerification, "No access token is stored.")
	}
	return true, nil
}
