package nike

import (
	"context"
	"errors"
	"net/http"
)

type serviceCall struct {
	Path    string
	Method  string
	Body    Params
	Headers map[string]string
}

// MockService records requests and answers with canned values.
type MockService struct {
	storage TokenStorage

	AuthorizationURIFunc   func() (string, error)
	RequestAccessTokenFunc func(ctx context.Context, code, state string) (*Token, error)
	Response               []byte
	RequestErr             error

	Calls []serviceCall
}

func newMockService() *MockService {
	return &MockService{storage: NewMemoryStorage(), Response: []byte(`{}`)}
}

func (m *MockService) AuthorizationURI() (string, error) {
	if m.AuthorizationURIFunc != nil {
		return m.AuthorizationURIFunc()
	}
	return "https://auth.example.com/authorize?state=s", nil
}

func (m *MockService) RequestAccessToken(ctx context.Context, code, state string) (*Token, error) {
	if m.RequestAccessTokenFunc != nil {
		return m.RequestAccessTokenFunc(ctx, code, state)
	}
	token := &Token{AccessToken: "token-" + code}
	if err := m.storage.StoreAccessToken(ServiceName, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (m *MockService) Storage() TokenStorage {
	return m.storage
}

func (m *MockService) Request(ctx context.Context, path, method string, body Params, headers map[string]string) ([]byte, error) {
	m.Calls = append(m.Calls, serviceCall{Path: path, Method: method, Body: body, Headers: headers})
	if m.RequestErr != nil {
		return nil, m.RequestErr
	}
	return m.Response, nil
}

func (m *MockService) lastCall() serviceCall {
	if len(m.Calls) == 0 {
		return serviceCall{}
	}
	return m.Calls[len(m.Calls)-1]
}

// MockServiceFactory counts CreateService calls.
type MockServiceFactory struct {
	Service OAuthService
	Err     error
	Created int
	Creds   Credentials
}

func (m *MockServiceFactory) CreateService(creds Credentials, storage TokenStorage, client *http.Client) (OAuthService, error) {
	m.Created++
	m.Creds = creds
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Service != nil {
		return m.Service, nil
	}
	svc := newMockService()
	svc.storage = storage
	return svc, nil
}

// BrokenStorage fails every operation with Err.
type BrokenStorage struct {
	Err error
}

func (b BrokenStorage) HasAccessToken(string) (bool, error)               { return false, b.Err }
func (b BrokenStorage) RetrieveAccessToken(string) (*Token, error)        { return nil, b.Err }
func (b BrokenStorage) StoreAccessToken(string, *Token) error             { return b.Err }
func (b BrokenStorage) ClearToken(string) error                           { return b.Err }
func (b BrokenStorage) StoreAuthorizationState(string, string) error      { return b.Err }
func (b BrokenStorage) RetrieveAuthorizationState(string) (string, error) { return "", b.Err }
func (b BrokenStorage) ClearAuthorizationState(string) error              { return b.Err }

var errBroken = errors.New("storage unavailable")
