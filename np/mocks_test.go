package np

import (
	"context"
	"errors"
	"time"

	"github.com/roessland/nikeplus/nike"
)

// MockActivityAPI implements ActivityAPI for testing
type MockActivityAPI struct {
	ActivitiesFunc func(query nike.ActivityQuery) (any, error)
	Detail         any
	DetailError    error
	GPS            any
	GPSError       error

	Queries     []nike.ActivityQuery
	DetailCalls []string
	GPSCalls    []string
}

func (m *MockActivityAPI) Activities(ctx context.Context, query nike.ActivityQuery) (any, error) {
	m.Queries = append(m.Queries, query)
	if m.ActivitiesFunc != nil {
		return m.ActivitiesFunc(query)
	}
	return map[string]any{"data": []any{}}, nil
}

func (m *MockActivityAPI) Activity(ctx context.Context, activityID string) (any, error) {
	m.DetailCalls = append(m.DetailCalls, activityID)
	if m.DetailError != nil {
		return nil, m.DetailError
	}
	return m.Detail, nil
}

func (m *MockActivityAPI) ActivityGPS(ctx context.Context, activityID string) (any, error) {
	m.GPSCalls = append(m.GPSCalls, activityID)
	if m.GPSError != nil {
		return nil, m.GPSError
	}
	return m.GPS, nil
}

// MockAuthenticator implements Authenticator for testing
type MockAuthenticator struct {
	Authorized    bool
	LookupError   error
	LoginURL      string
	LoginError    error
	ExchangeError error
	ResetError    error

	LoginCalled bool
	Codes       []string
	ResetCalled bool
}

func (m *MockAuthenticator) IsAuthorized(ctx context.Context) (bool, error) {
	return m.Authorized, m.LookupError
}

func (m *MockAuthenticator) InitiateLogin(ctx context.Context) (*nike.RedirectSignal, error) {
	m.LoginCalled = true
	if m.LoginError != nil {
		return nil, m.LoginError
	}
	return &nike.RedirectSignal{Location: m.LoginURL, StatusCode: 302}, nil
}

func (m *MockAuthenticator) AuthenticateUser(ctx context.Context, code, state string) (*nike.Token, error) {
	m.Codes = append(m.Codes, code)
	if m.ExchangeError != nil {
		return nil, m.ExchangeError
	}
	m.Authorized = true
	return &nike.Token{AccessToken: "token"}, nil
}

func (m *MockAuthenticator) ResetSession(ctx context.Context) error {
	m.ResetCalled = true
	if m.ResetError != nil {
		return m.ResetError
	}
	m.Authorized = false
	return nil
}

// MockFileSystem implements FileSystem for testing
type MockFileSystem struct {
	Files      map[string][]byte
	WriteError error
	MkdirError error
	WriteCalls []WriteCall
	MkdirCalls []string
}

type WriteCall struct {
	Path string
	Data []byte
	Perm int
}

func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files: make(map[string][]byte),
	}
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm int) error {
	m.WriteCalls = append(m.WriteCalls, WriteCall{Path: path, Data: data, Perm: perm})
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Files[path] = data
	return nil
}

func (m *MockFileSystem) Exists(path string) bool {
	_, exists := m.Files[path]
	return exists
}

func (m *MockFileSystem) MkdirAll(path string, perm int) error {
	m.MkdirCalls = append(m.MkdirCalls, path)
	return m.MkdirError
}

// MockLogger implements Logger for testing
type MockLogger struct {
	InfoCalls  []LogCall
	DebugCalls []LogCall
	WarnCalls  []LogCall
}

type LogCall struct {
	Message string
	Args    []any
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.InfoCalls = append(m.InfoCalls, LogCall{Message: msg, Args: args})
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.DebugCalls = append(m.DebugCalls, LogCall{Message: msg, Args: args})
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.WarnCalls = append(m.WarnCalls, LogCall{Message: msg, Args: args})
}

func weekDocument(ids ...string) map[string]any {
	data := make([]any, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]any{
			"activityId":   id,
			"activityType": "RUN",
			"startTime":    "2024-03-05T07:00:00Z",
		})
	}
	return map[string]any{"data": data}
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var errUpstream = errors.New("upstream unavailable")
