package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Session holds the admin token for one API client. It is safe for concurrent use.
type Session struct {
	client *Client
	store  TokenStore

	mutex sync.RWMutex
	token string
}

// NewSession creates a session, restoring the token kept in store.
func NewSession(client *Client, store TokenStore) (*Session, error) {
	token, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &Session{
		client: client,
		store:  store,
		token:  token,
	}, nil
}

func (s *Session) CurrentToken() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is held locally. Use Check to ask the server.
func (s *Session) IsAuthenticated() bool {
	return s.CurrentToken() != ""
}

func (s *Session) Login(ctx context.Context, username, password string) (*Identity, error) {
	var result loginResult
	err := s.client.do(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, errors.New("login response without token")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.token = result.Token
	if err := s.store.Save(result.Token); err != nil {
		return &result.User, fmt.Errorf("save token: %w", err)
	}
	return &result.User, nil
}

// Logout revokes the token on the server and always forgets it locally.
func (s *Session) Logout(ctx context.Context) error {
	token := s.CurrentToken()
	if token == "" {
		return s.clear()
	}

	logoutErr := s.client.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
	if logoutErr != nil {
		log.Debugf("logout request failed, clearing local session anyway: %s", logoutErr)
	}
	return multierr.Append(logoutErr, s.clear())
}

// Check asks the server whether the held token is still valid.
// A rejected token is forgotten; other failures leave the session as is.
func (s *Session) Check(ctx context.Context) (bool, error) {
	token := s.CurrentToken()
	if token == "" {
		return false, nil
	}

	var me struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &me); err != nil {
		if IsUnauthorized(err) {
			return false, s.clearIf(token)
		}
		return false, err
	}

	if !me.Authenticated {
		return false, s.clearIf(token)
	}
	return true, nil
}

func (s *Session) ListMessages(ctx context.Context) ([]*ContactMessage, error) {
	var list []*ContactMessage
	if err := s.authorized(ctx, http.MethodGet, "/api/admin/messages", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Session) MarkMessageRead(ctx context.Context, id string) (*ContactMessage, error) {
	var m ContactMessage
	path := "/api/admin/messages/" + url.PathEscape(id) + "/read"
	if err := s.authorized(ctx, http.MethodPut, path, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Session) DeleteMessage(ctx context.Context, id string) error {
	return s.authorized(ctx, http.MethodDelete, "/api/admin/messages/"+url.PathEscape(id), nil, nil)
}

func (s *Session) ListProducts(ctx context.Context) ([]*Product, error) {
	var list []*Product
	if err := s.authorized(ctx, http.MethodGet, "/api/admin/products", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Session) ListEssays(ctx context.Context) ([]*Essay, error) {
	var list []*Essay
	if err := s.authorized(ctx, http.MethodGet, "/api/admin/essays", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Session) authorized(ctx context.Context, method, path string, body, out any) error {
	token := s.CurrentToken()
	if token == "" {
		return ErrNotAuthenticated
	}

	err := s.client.do(ctx, method, path, token, body, out)
	if IsUnauthorized(err) {
		return multierr.Append(err, s.clearIf(token))
	}
	return err
}

func (s *Session) clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.clearLocked()
}

// clearIf forgets the token only if it is still the rejected one,
// a login that finished in the meantime is kept.
func (s *Session) clearIf(rejected string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.token != rejected {
		return nil
	}
	return s.clearLocked()
}

func (s *Session) clearLocked() error {
	s.token = ""
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
