package nike

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
)

// DefaultSessionPath is where the session backend keeps its file unless told otherwise.
const DefaultSessionPath = "~/.nikeplus/session.json"

// SessionStorage persists tokens to a session file so they survive across
// process runs and across requests of a hosted server.
type SessionStorage struct {
	path   string
	mu     sync.Mutex
	loaded bool
	data   sessionFile
	logger Logger
}

// sessionFile is the on-disk layout of the session.
type sessionFile struct {
	Tokens map[string]Token  `json:"tokens"`
	States map[string]string `json:"states,omitempty"`
}

// NewSessionStorage creates a session backend at path. The file is not read
// until the first access.
func NewSessionStorage(path string, logger Logger) (*SessionStorage, error) {
	if path == "" {
		path = DefaultSessionPath
	}
	expandedPath, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand session path: %w", err)
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &SessionStorage{
		path:   expandedPath,
		logger: logger,
		data: sessionFile{
			Tokens: make(map[string]Token),
			States: make(map[string]string),
		},
	}, nil
}

// Path returns the expanded session file path.
func (s *SessionStorage) Path() string {
	return s.path
}

func (s *SessionStorage) HasAccessToken(service string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	_, ok := s.data.Tokens[service]
	return ok, nil
}

func (s *SessionStorage) RetrieveAccessToken(service string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	tok, ok := s.data.Tokens[service]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &tok, nil
}

func (s *SessionStorage) StoreAccessToken(service string, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.data.Tokens[service] = *token
	return s.save()
}

func (s *SessionStorage) ClearToken(service string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	delete(s.data.Tokens, service)
	return s.save()
}

func (s *SessionStorage) StoreAuthorizationState(service, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.data.States[service] = state
	return s.save()
}

func (s *SessionStorage) RetrieveAuthorizationState(service string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}
	state, ok := s.data.States[service]
	if !ok {
		return "", ErrStateNotFound
	}
	return state, nil
}

func (s *SessionStorage) ClearAuthorizationState(service string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	delete(s.data.States, service)
	return s.save()
}

// ensureLoaded reads the session file once. A missing file is an empty session.
func (s *SessionStorage) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	s.logger.Debug("loading session", "path", s.path)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("session file does not exist", "path", s.path)
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read session: %w", err)
	}

	var data sessionFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if data.Tokens == nil {
		data.Tokens = make(map[string]Token)
	}
	if data.States == nil {
		data.States = make(map[string]string)
	}
	s.data = data
	s.loaded = true

	s.logger.Debug("loaded session", "tokens", len(data.Tokens), "pending_states", len(data.States))
	return nil
}

// save writes the session file with owner-only permissions.
func (s *SessionStorage) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	s.logger.Debug("saved session", "path", s.path)
	return nil
}
