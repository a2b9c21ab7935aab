package np

import (
	"fmt"
	"net/http"

	"github.com/roessland/nikeplus/nike"
)

// Config holds everything needed to talk to Nike+
type Config struct {
	ClientID     string
	ClientSecret string
	Callback     string

	// BaseURL resolves a root-relative Callback, e.g. https://example.com
	BaseURL string

	Backend     string
	SessionPath string

	// Configuration is handed unmodified to every gateway
	Configuration map[string]any

	// Endpoint overrides, mainly for tests
	AuthURL    string
	TokenURL   string
	APIBaseURL string
	HTTPClient *http.Client
}

// Client bundles the gateway factory with its token store
type Client struct {
	Factory *nike.GatewayFactory
	Store   *nike.TokenStore
}

// Setup builds the token store and the gateway factory from cfg
func Setup(cfg Config, logger Logger) (*Client, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = nike.BackendSession
	}

	store, err := nike.NewTokenStore(backend,
		nike.WithSessionPath(cfg.SessionPath),
		nike.WithStoreLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	var resolver nike.BaseURLResolver
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		resolver = nike.BaseURLResolverFunc(func() (string, error) { return base, nil })
	}

	factory, err := nike.NewGatewayFactory(nike.FactoryConfig{
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		Callback:      cfg.Callback,
		Configuration: cfg.Configuration,
		BaseURL:       resolver,
	},
		nike.WithLogger(logger),
		nike.WithTokenStore(store),
		nike.WithHTTPClient(cfg.HTTPClient),
		nike.WithServiceFactory(nike.OAuth2ServiceFactory{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
			BaseURL:  cfg.APIBaseURL,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway factory: %w", err)
	}

	return &Client{Factory: factory, Store: store}, nil
}
