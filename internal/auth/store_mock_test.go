package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	_ adminStore   = (*adminStoreMock)(nil)
	_ sessionStore = (*sessionStoreMock)(nil)
)

type adminStoreMock struct {
	mutex  sync.Mutex
	admins map[string]*AdminUser
	err    error
}

func newAdminStoreMock(admins ...*AdminUser) *adminStoreMock {
	m := &adminStoreMock{admins: map[string]*AdminUser{}}
	for _, a := range admins {
		m.admins[a.Username] = a
	}
	return m
}

func (m *adminStoreMock) GetByUsername(_ context.Context, username string) (*AdminUser, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	admin, ok := m.admins[username]
	if !ok {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

type sessionStoreMock struct {
	mutex    sync.Mutex
	sessions map[string]*Session // by token
	err      error
	calls    int
}

func newSessionStoreMock() *sessionStoreMock {
	return &sessionStoreMock{sessions: map[string]*Session{}}
}

func (m *sessionStoreMock) Create(_ context.Context, session *Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++

	if m.err != nil {
		return m.err
	}
	if _, ok := m.sessions[session.Token]; ok {
		return errors.New("duplicate token")
	}
	session.CreatedAt = time.Now()
	stored := *session
	m.sessions[session.Token] = &stored
	return nil
}

func (m *sessionStoreMock) GetByToken(_ context.Context, token string) (*Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	found := *s
	return &found, nil
}

func (m *sessionStoreMock) DeleteByID(_ context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++

	if m.err != nil {
		return m.err
	}
	for token, s := range m.sessions {
		if s.ID == id {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *sessionStoreMock) DeleteByToken(_ context.Context, token string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++

	if m.err != nil {
		return false, m.err
	}
	_, ok := m.sessions[token]
	delete(m.sessions, token)
	return ok, nil
}

func (m *sessionStoreMock) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++

	if m.err != nil {
		return 0, m.err
	}
	var count int64
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
			count++
		}
	}
	return count, nil
}

func (m *sessionStoreMock) count() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.sessions)
}

func (m *sessionStoreMock) has(token string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, ok := m.sessions[token]
	return ok
}

func (m *sessionStoreMock) callsCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.calls
}
