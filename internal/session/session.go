// Package session holds the authenticated identity and bearer credential
// for the lifetime of a run, and persists both so the next run restores
// the session without re-authenticating.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"medtrack/internal/model"
	"medtrack/internal/portal"
	"medtrack/internal/transport"
)

// state is what hits disk: the two entries the browser build kept in
// local storage, cleared together on logout.
type state struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type Session struct {
	mu    sync.Mutex
	user  *model.User
	token string

	path string
	api  *transport.Client
}

type Option func(*Session)

// WithStatePath overrides where the session file lives. Tests point this
// at a temp dir.
func WithStatePath(path string) Option {
	return func(s *Session) { s.path = path }
}

// New builds a session bound to the backend at base. Any state persisted
// by a previous run is restored; a corrupt or missing file just means no
// session.
func New(base string, opts ...Option) (*Session, error) {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("session state dir: %w", err)
		}
		s.path = filepath.Join(dir, "medtrack", "session.json")
	}
	s.api = transport.New(base, s)
	s.restore()
	return s, nil
}

// Client exposes the record transport carrying this session's credential,
// for the rest of the client to share.
func (s *Session) Client() *transport.Client { return s.api }

type authResponse struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

func (s *Session) Login(ctx context.Context, email, password string) (*model.User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := s.api.Do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, authError(err)
	}
	return s.establish(&resp)
}

func (s *Session) Register(ctx context.Context, email, password, name string, role model.Role) (*model.User, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
		"role":     string(role),
	}
	var resp authResponse
	if err := s.api.Do(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return nil, authError(err)
	}
	return s.establish(&resp)
}

func (s *Session) establish(resp *authResponse) (*model.User, error) {
	s.mu.Lock()
	u := resp.User
	s.user = &u
	s.token = resp.AccessToken
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		return nil, err
	}
	cp := u
	return &cp, nil
}

// Logout drops the identity and credential, in memory and on disk. It
// never talks to the network, so nothing can block a local logout.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	_ = os.Remove(s.path)
}

// Current returns the authenticated user, or nil when logged out.
func (s *Session) Current() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// Token implements transport.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) persist() error {
	s.mu.Lock()
	st := state{User: s.user, Token: s.token}
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	buf, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if err := os.WriteFile(s.path, buf, 0o600); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *Session) restore() {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var st state
	if err := json.Unmarshal(buf, &st); err != nil || st.User == nil || st.Token == "" {
		return
	}
	s.user = st.User
	s.token = st.Token
}

// authError surfaces the identity service's own message verbatim; a
// transport-level failure (unreachable host, timeout) keeps its error
// text so the user sees why.
func authError(err error) error {
	var api *transport.APIError
	if errors.As(err, &api) {
		return &portal.AuthError{Message: api.Message}
	}
	return &portal.AuthError{Message: err.Error()}
}
