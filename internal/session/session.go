// Package session owns the client identity and the access/refresh token
// lifecycle: credential exchange, on-demand refresh with fallback to the
// original credentials, and persistence of the encrypted token bundle.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/lunarhue/anylist/internal/credstore"
	"github.com/lunarhue/anylist/internal/errs"
	"github.com/lunarhue/anylist/internal/ids"
)

// APIVersion is sent as X-AnyLeaf-API-Version on every call.
const APIVersion = "3"

const (
	tokenEndpoint   = "auth/token"
	refreshEndpoint = "auth/token/refresh"
)

// Config collects the manager's dependencies.
type Config struct {
	Email    string
	Password string
	BaseURL  string // e.g. https://www.anylist.com
	HTTP     *http.Client
	Store    *credstore.Store
	Logger   *zap.Logger
}

// Manager holds the session state. The token pair is shared mutable state:
// all reads and replacements go through one mutex, and the generation
// counter lets a 401 handler detect that another caller already refreshed.
type Manager struct {
	email    string
	password string
	base     string
	http     *http.Client
	store    *credstore.Store
	log      *zap.Logger

	mu       sync.Mutex
	clientID string
	access   string
	refresh  string
	gen      uint64
}

// New builds a manager. It performs no I/O; call Login to authenticate.
func New(cfg Config) *Manager {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	httpc := cfg.HTTP
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	store := cfg.Store
	if store == nil {
		store = credstore.New("", cfg.Password, log)
	}
	return &Manager{
		email:    cfg.Email,
		password: cfg.Password,
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpc,
		store:    store,
		log:      log,
	}
}

// Login restores persisted credentials, ensures a client id, and fetches
// tokens when none were restored.
func (m *Manager) Login(ctx context.Context) error {
	if creds, ok := m.store.Load(); ok {
		m.mu.Lock()
		m.clientID = creds.ClientID
		m.access = creds.AccessToken
		m.refresh = creds.RefreshToken
		m.mu.Unlock()
	}
	m.EnsureClientID()

	m.mu.Lock()
	haveTokens := m.access != "" && m.refresh != ""
	m.mu.Unlock()
	if !haveTokens {
		m.log.Info("no saved tokens found, fetching new tokens using credentials")
		return m.FetchTokens(ctx)
	}
	return nil
}

// EnsureClientID generates and persists a client id if none is cached.
// Persistence failure is non-fatal: the store logs it and the session
// continues with the in-memory id.
func (m *Manager) EnsureClientID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clientID == "" {
		m.log.Info("no saved clientId found, generating new clientId")
		m.clientID = ids.New()
		m.persistLocked()
	}
	return m.clientID
}

// ClientID returns the cached client id ("" before EnsureClientID).
func (m *Manager) ClientID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientID
}

// AccessToken returns the current access token together with its
// generation. The generation is handed back to RefreshForGeneration so a
// 401 retry refreshes at most once across concurrent callers.
func (m *Manager) AccessToken() (token string, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.gen
}

// Authenticated reports whether an access token is present.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access != ""
}

// TokenExpiry reports the access token's expiry claim, when present. The
// token is not verified locally; the claim is informational.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	m.mu.Lock()
	token := m.access
	m.mu.Unlock()
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// FetchTokens exchanges the account credentials for a fresh token pair.
// It is never retried automatically: a non-2xx response is an
// authentication error for the caller.
func (m *Manager) FetchTokens(ctx context.Context) error {
	form := url.Values{}
	form.Set("email", m.email)
	form.Set("password", m.password)

	tokens, status, err := m.postForm(ctx, tokenEndpoint, form)
	if err != nil {
		return err
	}
	if status != 0 {
		return &errs.AuthError{Endpoint: tokenEndpoint, Status: status}
	}

	m.mu.Lock()
	m.setTokensLocked(tokens)
	m.mu.Unlock()
	return nil
}

// RefreshTokens exchanges the refresh token for a new pair. A 401 means
// the refresh token was revoked or expired; the original credentials are
// still valid, so it falls back to FetchTokens. Any other failure
// propagates untouched.
func (m *Manager) RefreshTokens(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

// RefreshForGeneration refreshes only if the token generation still equals
// gen. Concurrent 401 handlers that observed the same stale token
// serialize here, and all but the first find the generation advanced and
// return immediately with the already-fresh token.
func (m *Manager) RefreshForGeneration(ctx context.Context, gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return nil
	}
	return m.refreshLocked(ctx)
}

func (m *Manager) refreshLocked(ctx context.Context) error {
	form := url.Values{}
	form.Set("refresh_token", m.refresh)

	tokens, status, err := m.postForm(ctx, refreshEndpoint, form)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		m.log.Info("failed to refresh access token, fetching new tokens using credentials")
		form := url.Values{}
		form.Set("email", m.email)
		form.Set("password", m.password)
		tokens, status, err = m.postForm(ctx, tokenEndpoint, form)
		if err != nil {
			return err
		}
		if status != 0 {
			return &errs.AuthError{Endpoint: tokenEndpoint, Status: status}
		}
	} else if status != 0 {
		return &errs.StatusError{Endpoint: refreshEndpoint, Code: status}
	}

	m.setTokensLocked(tokens)
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// postForm returns either a decoded token pair (status 0) or the non-2xx
// status code for the caller to classify.
func (m *Manager) postForm(ctx context.Context, endpoint string, form url.Values) (tokenResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/"+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-AnyLeaf-API-Version", APIVersion)

	resp, err := m.http.Do(req)
	if err != nil {
		return tokenResponse{}, 0, fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.log.Error("endpoint returned uncaught status code",
			zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
		return tokenResponse{}, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tokenResponse{}, 0, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	var tokens tokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return tokenResponse{}, 0, &errs.DecodeError{Message: endpoint, Err: err}
	}
	return tokens, 0, nil
}

// setTokensLocked replaces the pair wholesale, bumps the generation, and
// persists the bundle. Callers hold m.mu.
func (m *Manager) setTokensLocked(t tokenResponse) {
	m.access = t.AccessToken
	m.refresh = t.RefreshToken
	m.gen++
	m.persistLocked()
	if exp, err := tokenExpiry(t.AccessToken); err == nil {
		m.log.Info("access token replaced", zap.Time("expiresAt", exp))
	}
}

func (m *Manager) persistLocked() {
	m.store.Save(credstore.Credentials{
		ClientID:     m.clientID,
		AccessToken:  m.access,
		RefreshToken: m.refresh,
	})
}

func tokenExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}
