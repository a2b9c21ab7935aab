package nike

import (
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// ServiceName is the fixed key every token is stored under.
const ServiceName = "Nike"

// ErrTokenNotFound is returned by storage backends when no token is stored.
var ErrTokenNotFound = errors.New("nike: token not stored")

// ErrStateNotFound is returned by storage backends when no authorization state is pending.
var ErrStateNotFound = errors.New("nike: authorization state not stored")

// Token is an OAuth2 access token as persisted by a TokenStorage.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// Lifetime in seconds. Zero means the token never expires.
	Lifetime  int       `json:"lifetime,omitempty"`
	EndOfLife time.Time `json:"end_of_life,omitempty"`
}

// SetLifetime sets the lifetime and the derived end of life.
func (t *Token) SetLifetime(seconds int, now time.Time) {
	t.Lifetime = seconds
	if seconds > 0 {
		t.EndOfLife = now.Add(time.Duration(seconds) * time.Second)
	} else {
		t.EndOfLife = time.Time{}
	}
}

// Expired reports whether the token has passed its end of life.
func (t *Token) Expired(now time.Time) bool {
	return !t.EndOfLife.IsZero() && now.After(t.EndOfLife)
}

func (t *Token) oauth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.EndOfLife,
	}
}

func tokenFromOAuth2(tok *oauth2.Token, now time.Time) *Token {
	t := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	switch {
	case tok.ExpiresIn > 0:
		t.SetLifetime(int(tok.ExpiresIn), now)
	case !tok.Expiry.IsZero():
		t.Lifetime = int(tok.Expiry.Sub(now).Seconds())
		t.EndOfLife = tok.Expiry
	}
	return t
}

// TokenStorage is the backend a TokenStore keeps its token in. It also holds
// the pending OAuth state between the login redirect and the callback.
type TokenStorage interface {
	HasAccessToken(service string) (bool, error)
	RetrieveAccessToken(service string) (*Token, error)
	StoreAccessToken(service string, token *Token) error
	ClearToken(service string) error

	StoreAuthorizationState(service, state string) error
	RetrieveAuthorizationState(service string) (string, error)
	ClearAuthorizationState(service string) error
}
