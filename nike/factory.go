package nike

import (
	"net/http"
	"regexp"
	"strings"
	"sync"
)

// Gateway names known to every factory.
const (
	GatewayAuthentication = "Authentication"
	GatewayActivity       = "Activity"
	GatewayAggregation    = "Aggregation"
)

var accessorPattern = regexp.MustCompile(`^get(\w+)Gateway$`)

// BaseURLResolver supplies the absolute base that root-relative callback paths
// are resolved against, e.g. the base URL of the current request.
type BaseURLResolver interface {
	ResolveBaseURL() (string, error)
}

// BaseURLResolverFunc adapts a function to BaseURLResolver.
type BaseURLResolverFunc func() (string, error)

func (fn BaseURLResolverFunc) ResolveBaseURL() (string, error) {
	if fn == nil {
		return "", nil
	}
	base, err := fn()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(base), nil
}

// GatewayConstructor creates an uninitialised gateway. The factory injects the
// service afterwards.
type GatewayConstructor func(configuration map[string]any, logger Logger) (Gateway, error)

// FactoryConfig is the configuration surface consumed from the hosting application.
type FactoryConfig struct {
	ClientID     string
	ClientSecret string

	// Callback is an absolute URL or a root-relative path.
	Callback      string
	Configuration map[string]any
	BaseURL       BaseURLResolver
}

// FactoryOption configures a GatewayFactory.
type FactoryOption func(*GatewayFactory)

// WithLogger sets the logger handed to every gateway.
func WithLogger(logger Logger) FactoryOption {
	return func(f *GatewayFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithServiceFactory replaces the OAuth2 service factory.
func WithServiceFactory(serviceFactory ServiceFactory) FactoryOption {
	return func(f *GatewayFactory) { f.serviceFactory = serviceFactory }
}

// WithHTTPClient sets the transport the service is built with.
func WithHTTPClient(client *http.Client) FactoryOption {
	return func(f *GatewayFactory) { f.httpClient = client }
}

// WithTokenStore sets the token store.
func WithTokenStore(store *TokenStore) FactoryOption {
	return func(f *GatewayFactory) { f.tokenStore = store }
}

// GatewayFactory builds the OAuth service once and hands out gateways sharing it.
type GatewayFactory struct {
	clientID      string
	clientSecret  string
	callbackURL   string
	configuration map[string]any
	baseURL       BaseURLResolver

	tokenStore     *TokenStore
	httpClient     *http.Client
	serviceFactory ServiceFactory
	logger         Logger

	registryMu sync.RWMutex
	registry   map[string]GatewayConstructor

	serviceMu sync.Mutex
	service   OAuthService
}

// NewGatewayFactory creates a factory with the Authentication, Activity and
// Aggregation gateways registered.
func NewGatewayFactory(cfg FactoryConfig, opts ...FactoryOption) (*GatewayFactory, error) {
	f := &GatewayFactory{
		clientID:       cfg.ClientID,
		clientSecret:   cfg.ClientSecret,
		configuration:  cfg.Configuration,
		baseURL:        cfg.BaseURL,
		serviceFactory: OAuth2ServiceFactory{},
		logger:         nopLogger{},
		registry:       make(map[string]GatewayConstructor),
	}
	if f.configuration == nil {
		f.configuration = make(map[string]any)
	}
	for _, opt := range opts {
		opt(f)
	}

	f.Register(GatewayAuthentication, func(configuration map[string]any, logger Logger) (Gateway, error) {
		return NewAuthenticationGateway(configuration, logger), nil
	})
	f.Register(GatewayActivity, func(configuration map[string]any, logger Logger) (Gateway, error) {
		return NewActivityGateway(configuration, logger), nil
	})
	f.Register(GatewayAggregation, func(configuration map[string]any, logger Logger) (Gateway, error) {
		return NewAggregationGateway(configuration, logger), nil
	})

	if cfg.Callback != "" {
		if _, err := f.SetCallbackURL(cfg.Callback); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SetCredentials sets the client id and secret used for future service construction.
func (f *GatewayFactory) SetCredentials(clientID, clientSecret string) *GatewayFactory {
	f.clientID = clientID
	f.clientSecret = clientSecret
	return f
}

// SetCallbackURL sets the OAuth2 redirect URL. A root-relative path is
// resolved against the factory's BaseURLResolver first.
func (f *GatewayFactory) SetCallbackURL(callback string) (*GatewayFactory, error) {
	resolved := callback
	if strings.HasPrefix(callback, "/") && !strings.HasPrefix(callback, "//") {
		if f.baseURL == nil {
			return nil, newError(CodeInvalidCallbackURL, "Cannot resolve a relative callback URL without a base URL.").
				WithMetadata(map[string]any{"callback": callback})
		}
		base, err := f.baseURL.ResolveBaseURL()
		if err != nil {
			return nil, wrapError(err, CodeInvalidCallbackURL, "Could not resolve the base URL for the callback.").
				WithMetadata(map[string]any{"callback": callback})
		}
		resolved = strings.TrimRight(base, "/") + callback
	}

	if !isAbsoluteURL(resolved) {
		return nil, newError(CodeInvalidCallbackURL, "Invalid callback URL.").
			WithMetadata(map[string]any{"callback": resolved})
	}
	f.callbackURL = resolved
	return f, nil
}

// CallbackURL returns the resolved callback URL.
func (f *GatewayFactory) CallbackURL() string {
	return f.callbackURL
}

func (f *GatewayFactory) SetTokenStore(store *TokenStore) *GatewayFactory {
	f.tokenStore = store
	return f
}

func (f *GatewayFactory) TokenStore() *TokenStore {
	return f.tokenStore
}

// SetHTTPClient overrides the default transport of the service.
func (f *GatewayFactory) SetHTTPClient(client *http.Client) *GatewayFactory {
	f.httpClient = client
	return f
}

// Register adds or replaces a gateway constructor under name.
func (f *GatewayFactory) Register(name string, constructor GatewayConstructor) {
	f.registryMu.Lock()
	defer f.registryMu.Unlock()
	f.registry[name] = constructor
}

// Open resolves an accessor of the form get<Name>Gateway. Accessors take no
// arguments.
func (f *GatewayFactory) Open(accessor string, args ...any) (Gateway, error) {
	match := accessorPattern.FindStringSubmatch(accessor)
	if match == nil {
		return nil, newError(CodeUnknownGateway, "Unknown gateway accessor.").
			WithMetadata(map[string]any{"accessor": accessor})
	}
	if len(args) > 0 {
		return nil, newError(CodeInvalidGatewayCall, "Gateway accessors take no arguments.").
			WithMetadata(map[string]any{"accessor": accessor, "args": len(args)})
	}
	return f.Gateway(match[1])
}

// Gateway creates a new gateway registered under name with the shared service injected.
func (f *GatewayFactory) Gateway(name string) (Gateway, error) {
	f.registryMu.RLock()
	constructor, ok := f.registry[name]
	f.registryMu.RUnlock()
	if !ok {
		return nil, newError(CodeUnknownGateway, "Unknown gateway.").
			WithMetadata(map[string]any{"gateway": name})
	}

	service, err := f.resolveService()
	if err != nil {
		return nil, wrapError(err, CodeDependencyInjection, "Could not resolve the service for the gateway.").
			WithMetadata(map[string]any{"gateway": name})
	}

	if constructor == nil {
		return nil, newError(CodeGatewayConstruction, "Gateway has no constructor.").
			WithMetadata(map[string]any{"gateway": name})
	}
	gateway, err := constructor(f.configuration, f.logger)
	if err != nil {
		return nil, wrapError(err, CodeGatewayConstruction, "Could not construct the gateway.").
			WithMetadata(map[string]any{"gateway": name})
	}
	if gateway == nil {
		return nil, newError(CodeGatewayConstruction, "Gateway constructor returned nothing.").
			WithMetadata(map[string]any{"gateway": name})
	}

	if err := gateway.SetService(service); err != nil {
		return nil, wrapError(err, CodeDependencyInjection, "Could not inject the service into the gateway.").
			WithMetadata(map[string]any{"gateway": name})
	}
	f.logger.Debug("created gateway", "gateway", name)
	return gateway, nil
}

func (f *GatewayFactory) Authentication() (*AuthenticationGateway, error) {
	gateway, err := f.Open("get" + GatewayAuthentication + "Gateway")
	if err != nil {
		return nil, err
	}
	return gatewayAs[*AuthenticationGateway](gateway, GatewayAuthentication)
}

func (f *GatewayFactory) Activity() (*ActivityGateway, error) {
	gateway, err := f.Open("get" + GatewayActivity + "Gateway")
	if err != nil {
		return nil, err
	}
	return gatewayAs[*ActivityGateway](gateway, GatewayActivity)
}

func (f *GatewayFactory) Aggregation() (*AggregationGateway, error) {
	gateway, err := f.Open("get" + GatewayAggregation + "Gateway")
	if err != nil {
		return nil, err
	}
	return gatewayAs[*AggregationGateway](gateway, GatewayAggregation)
}

func gatewayAs[T Gateway](gateway Gateway, name string) (T, error) {
	typed, ok := gateway.(T)
	if !ok {
		var zero T
		return zero, newError(CodeGatewayConstruction, "Registered gateway has an unexpected type.").
			WithMetadata(map[string]any{"gateway": name})
	}
	return typed, nil
}

// ResolveService returns the shared service, building it on first use.
func (f *GatewayFactory) ResolveService() (OAuthService, error) {
	return f.resolveService()
}

func (f *GatewayFactory) resolveService() (OAuthService, error) {
	f.serviceMu.Lock()
	defer f.serviceMu.Unlock()

	if f.service != nil {
		return f.service, nil
	}

	switch {
	case f.clientID == "":
		return nil, newError(CodeMissingClientID, "Client id is missing.")
	case f.clientSecret == "":
		return nil, newError(CodeMissingClientSecret, "Client secret is missing.")
	case f.callbackURL == "":
		return nil, newError(CodeMissingCallbackURL, "Callback URL is missing.")
	case f.tokenStore == nil:
		return nil, newError(CodeMissingTokenStore, "Token store is missing.")
	}

	creds, err := NewCredentials(f.clientID, f.clientSecret, f.callbackURL)
	if err != nil {
		return nil, wrapError(err, CodeCredentials, "Could not create credentials.")
	}

	service, err := f.serviceFactory.CreateService(creds, f.tokenStore.Adapter(), f.httpClient)
	if err != nil {
		return nil, wrapError(err, CodeServiceFactory, "Could not create the OAuth service.")
	}

	f.service = service
	f.logger.Info("created OAuth service", "service", ServiceName, "callback", f.callbackURL)
	return service, nil
}
