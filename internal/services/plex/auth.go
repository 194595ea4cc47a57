package plex

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"plexgraph/internal/config"
)

var (
	// ErrAuthorizationMissing is returned when no Plex authorization token has been linked yet.
	ErrAuthorizationMissing = errors.New("plex authorization token not linked")
)

const (
	defaultBaseURL = "https://plex.tv"
	productName    = "plex-graph"
	productVersion = "0.1.0"
)

// AuthManagerOption customises AuthManager construction.
type AuthManagerOption func(*AuthManager)

// WithHTTPClient overrides the HTTP client used for plex.tv calls.
func WithHTTPClient(client HTTPDoer) AuthManagerOption {
	return func(m *AuthManager) {
		m.httpClient = client
		m.linkClient = nil
	}
}

// WithBaseURL overrides the base URL for plex.tv calls (used in tests).
func WithBaseURL(baseURL string) AuthManagerOption {
	return func(m *AuthManager) {
		m.baseURL = strings.TrimRight(baseURL, "/")
		m.linkClient = nil
	}
}

// WithAuthStore injects a custom persistence layer.
func WithAuthStore(store AuthStore) AuthManagerOption {
	return func(m *AuthManager) {
		m.store = store
	}
}

// WithLinkClient injects a prebuilt plex.tv client.
func WithLinkClient(client LinkClient) AuthManagerOption {
	return func(m *AuthManager) {
		m.linkClient = client
	}
}

// AuthManager persists plex.tv authentication state and drives the link flow.
type AuthManager struct {
	httpClient HTTPDoer
	baseURL    string
	store      AuthStore
	linkClient LinkClient

	stateMu sync.RWMutex
	state   authState
}

// NewAuthManager builds an AuthManager using the provided configuration.
func NewAuthManager(cfg *config.Config, opts ...AuthManagerOption) (*AuthManager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	mgr := &AuthManager{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Plex.RequestTimeout) * time.Second},
		store:      NewFileAuthStore(cfg.Plex.AuthStatePath),
	}

	for _, opt := range opts {
		opt(mgr)
	}

	if mgr.httpClient == nil {
		mgr.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if mgr.store == nil {
		mgr.store = NewFileAuthStore(cfg.Plex.AuthStatePath)
	}
	if mgr.linkClient == nil {
		mgr.linkClient = NewHTTPLinkClient(mgr.baseURL, mgr.httpClient)
	}

	if err := mgr.loadInitialState(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *AuthManager) loadInitialState() error {
	state, err := m.store.Load()
	if err != nil {
		return err
	}

	dirty := false
	if state.ClientIdentifier == "" {
		state.ClientIdentifier = strings.ReplaceAll(uuid.New().String(), "-", "")
		dirty = true
	}
	m.state = state

	if dirty {
		if err := m.store.Save(m.state); err != nil {
			return err
		}
	}
	return nil
}

// HasAuthorization reports whether a plex.tv authorization token is available.
func (m *AuthManager) HasAuthorization() bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return strings.TrimSpace(m.state.AuthorizationToken) != ""
}

// AuthorizationToken returns the linked account token.
func (m *AuthManager) AuthorizationToken() (string, error) {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	token := strings.TrimSpace(m.state.AuthorizationToken)
	if token == "" {
		return "", ErrAuthorizationMissing
	}
	return token, nil
}

// ClientIdentifier returns the persistent device identifier sent to Plex.
func (m *AuthManager) ClientIdentifier() string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.ClientIdentifier
}

// SetAuthorizationToken stores the token obtained from the link flow.
func (m *AuthManager) SetAuthorizationToken(token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return errors.New("authorization token is empty")
	}

	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	updated := m.state
	updated.AuthorizationToken = trimmed

	if err := m.store.Save(updated); err != nil {
		return err
	}
	m.state = updated
	return nil
}

// RequestPin starts the Plex device linking flow.
func (m *AuthManager) RequestPin(ctx context.Context) (*Pin, error) {
	return m.linkClient.RequestPin(ctx, m.ClientIdentifier())
}

// PollPin checks whether the user has approved the Plex link code.
func (m *AuthManager) PollPin(ctx context.Context, id int64) (*PinStatus, error) {
	return m.linkClient.PollPin(ctx, m.ClientIdentifier(), id)
}
