package gate

import (
	"sync"

	"github.com/erpdesk/erpdesk/internal/shared"
)

// CredentialStore persists the bearer credential between requests.
type CredentialStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// MemoryStore keeps the credential in memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// SessionStore keeps the credential in the redis-backed web session.
type SessionStore struct {
	mu   sync.Mutex
	sess *shared.Session
}

// NewSessionStore wraps sess.
func NewSessionStore(sess *shared.Session) *SessionStore {
	return &SessionStore{sess: sess}
}

func (s *SessionStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return "", nil
	}
	return s.sess.Get(shared.CredentialSessionKey), nil
}

func (s *SessionStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return shared.ErrSessionMissing
	}
	s.sess.Set(shared.CredentialSessionKey, token)
	return nil
}

func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil
	}
	s.sess.Delete(shared.CredentialSessionKey)
	s.sess.Delete(shared.ProfileSessionKey)
	return nil
}
