// Package session holds the bearer credential used against the backend and
// tears it down on sign-out or when the backend rejects it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"wikitrans/internal/domain"
	"wikitrans/internal/ports"
)

const tokenKey = "session.token"

type Options struct {
	BaseURL   string
	LoginPath string
	Timeout   time.Duration
	// Settings persists the token between runs; optional.
	Settings ports.SettingsRepository
	Logger   *slog.Logger
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Session struct {
	mu       sync.RWMutex
	token    string
	hooks    []func()
	settings ports.SettingsRepository
	http     *resty.Client
	loginURL string
	log      *slog.Logger
}

func New(o Options) *Session {
	if o.LoginPath == "" {
		o.LoginPath = "/login/"
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Session{
		settings: o.Settings,
		http:     resty.New().SetTimeout(o.Timeout),
		loginURL: strings.TrimRight(o.BaseURL, "/") + o.LoginPath,
		log:      o.Logger,
	}
}

// Restore loads a token saved by a previous run. A missing token is not an
// error.
func (s *Session) Restore(ctx context.Context) error {
	if s.settings == nil {
		return nil
	}
	v, err := s.settings.Get(ctx, tokenKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = v
	s.mu.Unlock()
	return nil
}

// Init starts a session with token.
func (s *Session) Init(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrNoSession
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if s.settings != nil {
		return s.settings.Set(ctx, tokenKey, token)
	}
	return nil
}

func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Session) Active() bool {
	_, ok := s.Token()
	return ok
}

// OnExpire registers fn to run every time the session expires.
func (s *Session) OnExpire(fn func()) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Clear drops the credential without running expiry hooks.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if s.settings != nil {
		return s.settings.Delete(ctx, tokenKey)
	}
	return nil
}

// Expire clears the credential and runs the expiry hooks.
func (s *Session) Expire() {
	if err := s.Clear(context.Background()); err != nil {
		s.log.Error("clear session token", "err", err)
	}
	s.mu.RLock()
	hooks := append([]func(){}, s.hooks...)
	s.mu.RUnlock()
	s.log.Info("session expired")
	for _, fn := range hooks {
		fn()
	}
}

// Login exchanges username and password for a token pair and starts a
// session with the access token.
func (s *Session) Login(ctx context.Context, username, password string) (Tokens, error) {
	var tok Tokens
	var failure struct {
		Error string `json:"error"`
	}
	rr, err := s.http.R().SetContext(ctx).
		SetFormData(map[string]string{"username": username, "password": password}).
		SetResult(&tok).SetError(&failure).
		Post(s.loginURL)
	if err != nil {
		return Tokens{}, err
	}
	if rr.IsError() {
		if failure.Error != "" {
			return Tokens{}, errors.New(failure.Error)
		}
		return Tokens{}, fmt.Errorf("login: %s", rr.Status())
	}
	if tok.Access == "" {
		return Tokens{}, errors.New("login: response carries no access token")
	}
	if err := s.Init(ctx, tok.Access); err != nil {
		return Tokens{}, err
	}
	return tok, nil
}
