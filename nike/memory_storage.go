package nike

import "sync"

// MemoryStorage keeps tokens for the lifetime of the process.
type MemoryStorage struct {
	mu     sync.Mutex
	tokens map[string]Token
	states map[string]string
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tokens: make(map[string]Token),
		states: make(map[string]string),
	}
}

func (m *MemoryStorage) HasAccessToken(service string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[service]
	return ok, nil
}

func (m *MemoryStorage) RetrieveAccessToken(service string) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[service]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &tok, nil
}

func (m *MemoryStorage) StoreAccessToken(service string, token *Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[service] = *token
	return nil
}

func (m *MemoryStorage) ClearToken(service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, service)
	return nil
}

func (m *MemoryStorage) StoreAuthorizationState(service, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[service] = state
	return nil
}

func (m *MemoryStorage) RetrieveAuthorizationState(service string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[service]
	if !ok {
		return "", ErrStateNotFound
	}
	return state, nil
}

func (m *MemoryStorage) ClearAuthorizationState(service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, service)
	return nil
}
