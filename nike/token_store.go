package nike

import (
	"time"
)

// Recognised storage backends.
const (
	BackendMemory  = "memory"
	BackendSession = "session"
)

// TokenStore holds the single Nike+ token of an application in a pluggable backend.
type TokenStore struct {
	backend string
	token   *Token
	adapter TokenStorage
}

type tokenStoreOptions struct {
	accessToken  *string
	lifetime     *int
	refreshToken *string
	sessionPath  string
	logger       Logger
	now          func() time.Time
}

// TokenStoreOption configures NewTokenStore.
type TokenStoreOption func(*tokenStoreOptions)

// WithAccessToken pre-seeds the store with an access token. The token is only
// persisted when WithLifetime is given as well.
func WithAccessToken(accessToken string) TokenStoreOption {
	return func(o *tokenStoreOptions) { o.accessToken = &accessToken }
}

// WithLifetime sets the lifetime in seconds of the pre-seeded token.
func WithLifetime(seconds int) TokenStoreOption {
	return func(o *tokenStoreOptions) { o.lifetime = &seconds }
}

// WithRefreshToken attaches a refresh token to the pre-seeded token.
func WithRefreshToken(refreshToken string) TokenStoreOption {
	return func(o *tokenStoreOptions) { o.refreshToken = &refreshToken }
}

// WithSessionPath sets the session file used by the session backend.
func WithSessionPath(path string) TokenStoreOption {
	return func(o *tokenStoreOptions) { o.sessionPath = path }
}

// WithStoreLogger sets the logger handed to the backend.
func WithStoreLogger(logger Logger) TokenStoreOption {
	return func(o *tokenStoreOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewTokenStore creates a store on the named backend ("memory" or "session").
func NewTokenStore(backend string, opts ...TokenStoreOption) (*TokenStore, error) {
	o := tokenStoreOptions{
		logger: nopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	store := &TokenStore{
		backend: backend,
		token:   &Token{},
	}

	switch backend {
	case BackendMemory:
		store.adapter = NewMemoryStorage()
	case BackendSession:
		session, err := NewSessionStorage(o.sessionPath, o.logger)
		if err != nil {
			return nil, wrapError(err, CodeTokenStorageInit, "Could not initialise the session token storage.")
		}
		store.adapter = session
	default:
		return nil, newError(CodeInvalidBackend, "Invalid token storage provider.").
			WithMetadata(map[string]any{"backend": backend})
	}

	if o.accessToken != nil && o.lifetime != nil {
		store.token.AccessToken = *o.accessToken
		store.token.SetLifetime(*o.lifetime, o.now())
		if o.refreshToken != nil {
			store.token.RefreshToken = *o.refreshToken
		}
		if err := store.adapter.StoreAccessToken(ServiceName, store.token); err != nil {
			return nil, wrapError(err, CodeTokenPersist, "Could not store token details.")
		}
	}

	return store, nil
}

// Backend returns the backend name the store was created with.
func (s *TokenStore) Backend() string {
	return s.backend
}

// Adapter returns the live backend.
func (s *TokenStore) Adapter() TokenStorage {
	return s.adapter
}
