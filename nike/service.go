package nike

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/oauth2"
)

// Nike+ endpoints used when an OAuth2ServiceFactory leaves them empty.
const (
	DefaultAuthURL  = "https://api.nike.com/oauth/2.0/authorize"
	DefaultTokenURL = "https://api.nike.com/oauth/2.0/token"
	DefaultBaseURL  = "https://api.nike.com/v1/"
)

// OAuthService performs OAuth2 authorised calls against the Nike+ API.
type OAuthService interface {
	AuthorizationURI() (string, error)
	RequestAccessToken(ctx context.Context, code, state string) (*Token, error)
	Storage() TokenStorage
	Request(ctx context.Context, path, method string, body Params, headers map[string]string) ([]byte, error)
}

// ServiceFactory builds an OAuthService from credentials, a token backend and
// an HTTP client.
type ServiceFactory interface {
	CreateService(creds Credentials, storage TokenStorage, client *http.Client) (OAuthService, error)
}

// Credentials identify the application against the OAuth2 provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// NewCredentials validates and bundles the application credentials.
func NewCredentials(clientID, clientSecret, callbackURL string) (Credentials, error) {
	if clientID == "" || clientSecret == "" {
		return Credentials{}, errors.New("client id and secret are required")
	}
	if !isAbsoluteURL(callbackURL) {
		return Credentials{}, fmt.Errorf("callback %q is not an absolute URL", callbackURL)
	}
	return Credentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CallbackURL:  callbackURL,
	}, nil
}

const responsePreviewLen = 200

// ResponseError is returned by Request when the API answers with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	preview := e.Body
	suffix := ""
	if len(preview) > responsePreviewLen {
		cut := responsePreviewLen
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
		suffix = "..."
	}
	return fmt.Sprintf("unexpected status %d: %s%s", e.StatusCode, preview, suffix)
}

// OAuth2ServiceFactory builds services on golang.org/x/oauth2.
type OAuth2ServiceFactory struct {
	AuthURL  string
	TokenURL string
	BaseURL  string
	Scopes   []string
}

func (f OAuth2ServiceFactory) CreateService(creds Credentials, storage TokenStorage, client *http.Client) (OAuthService, error) {
	if storage == nil {
		return nil, errors.New("token storage is required")
	}

	base := f.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}

	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}

	return &oauthService{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.CallbackURL,
			Scopes:       f.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  firstNonEmpty(f.AuthURL, DefaultAuthURL),
				TokenURL: firstNonEmpty(f.TokenURL, DefaultTokenURL),
			},
		},
		baseURL: baseURL,
		storage: storage,
		client:  client,
		now:     time.Now,
	}, nil
}

type oauthService struct {
	config  *oauth2.Config
	baseURL *url.URL
	storage TokenStorage
	client  *http.Client
	now     func() time.Time
}

func (s *oauthService) Storage() TokenStorage {
	return s.storage
}

func (s *oauthService) AuthorizationURI() (string, error) {
	state := uuid.NewString()
	if err := s.storage.StoreAuthorizationState(ServiceName, state); err != nil {
		return "", fmt.Errorf("failed to store authorization state: %w", err)
	}
	return s.config.AuthCodeURL(state), nil
}

func (s *oauthService) RequestAccessToken(ctx context.Context, code, state string) (*Token, error) {
	pending, err := s.storage.RetrieveAuthorizationState(ServiceName)
	switch {
	case errors.Is(err, ErrStateNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to retrieve authorization state: %w", err)
	case pending != state:
		return nil, errors.New("authorization state mismatch")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	tok, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	token := tokenFromOAuth2(tok, s.now())
	if err := s.storage.StoreAccessToken(ServiceName, token); err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}
	if pending != "" {
		if err := s.storage.ClearAuthorizationState(ServiceName); err != nil {
			return nil, fmt.Errorf("failed to clear authorization state: %w", err)
		}
	}
	return token, nil
}

func (s *oauthService) Request(ctx context.Context, path, method string, body Params, headers map[string]string) ([]byte, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid resource %q: %w", path, err)
	}
	target := s.baseURL.ResolveReference(ref)

	var reader io.Reader
	if method != http.MethodGet && len(body) > 0 {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	token, err := s.storage.RetrieveAccessToken(ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve access token: %w", err)
	}

	clientCtx := context.WithValue(ctx, oauth2.HTTPClient, s.client)
	source := s.config.TokenSource(clientCtx, token.oauth2())
	resp, err := oauth2.NewClient(clientCtx, source).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := s.persistRefreshedToken(source, token); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: raw}
	}
	return raw, nil
}

// persistRefreshedToken stores the token the source ended up using when it
// differs from the stored one, so a rotated refresh token is not lost.
func (s *oauthService) persistRefreshedToken(source oauth2.TokenSource, stored *Token) error {
	current, err := source.Token()
	if err != nil || current.AccessToken == stored.AccessToken {
		return nil
	}
	if err := s.storage.StoreAccessToken(ServiceName, tokenFromOAuth2(current, s.now())); err != nil {
		return fmt.Errorf("failed to store refreshed access token: %w", err)
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
