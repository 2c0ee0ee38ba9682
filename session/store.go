// Package session holds the signed-in identity and its tokens. The Store is
// the single authoritative owner of persisted session state and of the
// presence heartbeat lifecycle.
package session

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sstcp-ops/maintops-go/storage"
	"github.com/sstcp-ops/maintops-go/types"
)

// DefaultHeartbeatInterval is how often the liveness signal fires while a
// token is set.
const DefaultHeartbeatInterval = time.Minute

const presenceTimeout = 10 * time.Second

// PresenceNotifier receives login/logout/heartbeat signals. Every call is
// best-effort: the store invokes them asynchronously and swallows errors, so
// implementations must never be able to fail or roll back a session mutation.
type PresenceNotifier interface {
	RecordLogin(ctx context.Context, device string, userID int, userName string) error
	RecordLogout(ctx context.Context, device string, userID int) error
	Heartbeat(ctx context.Context, device string) error
}

// Ticker abstracts time.Ticker so tests can drive the heartbeat with a fake
// clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a Ticker for the given interval.
type TickerFactory func(time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Config configures a Store. Storage is required; everything else has a
// usable default.
type Config struct {
	Storage           storage.Store
	Presence          PresenceNotifier
	Device            string // presence device tag, "pc" or "h5"
	HeartbeatInterval time.Duration
	TickerFactory     TickerFactory
	Logger            *log.Logger
}

// Store is the process-wide session holder. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	storage  storage.Store
	presence PresenceNotifier
	device   string
	interval time.Duration
	ticker   TickerFactory
	logger   *log.Logger

	user         *types.User
	token        string
	refreshToken string
	expiry       time.Time

	heartbeatStop chan struct{}
	subscribers   []func(*types.User)
}

// NewStore builds a Store and hydrates it from persistent storage. Corrupt
// stored state is treated as no stored session.
func NewStore(cfg Config) *Store {
	if cfg.Storage == nil {
		cfg.Storage = storage.NewMemory()
	}
	if cfg.Device == "" {
		cfg.Device = "pc"
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.TickerFactory == nil {
		cfg.TickerFactory = newRealTicker
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := &Store{
		storage:  cfg.Storage,
		presence: cfg.Presence,
		device:   cfg.Device,
		interval: cfg.HeartbeatInterval,
		ticker:   cfg.TickerFactory,
		logger:   cfg.Logger,
	}
	s.hydrate()

	if s.token != "" {
		s.startHeartbeat()
	}
	return s
}

func (s *Store) hydrate() {
	if tok, ok := s.storage.Get(storage.KeyToken); ok {
		s.token = tok
	}
	if tok, ok := s.storage.Get(storage.KeyRefreshToken); ok {
		s.refreshToken = tok
	}
	if raw, ok := s.storage.Get(storage.KeyUser); ok {
		var u types.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.user = &u
		}
	}
	if raw, ok := s.storage.Get(storage.KeyTokenExpiry); ok {
		if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.expiry = time.Unix(sec, 0)
		}
	}
}

// User returns the current identity, or nil when signed out.
func (s *Store) User() *types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// RefreshToken returns the stored refresh token (desktop variant only).
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// TokenExpiry returns the recorded token expiry; zero when unknown.
func (s *Store) TokenExpiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiry
}

// IsLoggedIn reports whether a token is present.
func (s *Store) IsLoggedIn() bool {
	return s.Token() != ""
}

// SetPresence wires the presence notifier after construction. The session
// store and the API client depend on each other at bootstrap; the client is
// built against the store first, then its online service is attached here.
func (s *Store) SetPresence(p PresenceNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence = p
}

// Subscribe registers a callback invoked after every identity change. The
// payload is nil when the session is cleared.
func (s *Store) Subscribe(fn func(*types.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SetUser replaces the current identity, persisting it and notifying the
// presence collaborator. A previously active different user gets a logout
// notification first.
func (s *Store) SetUser(u types.User) {
	s.mu.Lock()
	previous := s.user
	s.user = &u
	if raw, err := json.Marshal(u); err == nil {
		s.storage.Set(storage.KeyUser, string(raw))
	}
	subscribers := append([]func(*types.User){}, s.subscribers...)
	s.mu.Unlock()

	if previous != nil && previous.ID != u.ID {
		s.notifyLogout(previous.ID)
	}
	s.notifyChanged(subscribers, &u)
	s.notifyLogin(u.ID, u.Name)
}

// SetToken stores the token, records its expiry when the JWT carries one,
// and (re)starts the heartbeat. Any running heartbeat is cancelled first so
// at most one timer exists.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.storage.Set(storage.KeyToken, token)
	if exp, ok := tokenExpiry(token); ok {
		s.expiry = exp
		s.storage.Set(storage.KeyTokenExpiry, strconv.FormatInt(exp.Unix(), 10))
	}
	s.mu.Unlock()

	s.startHeartbeat()
}

// SetRefreshToken stores the refresh token (desktop variant).
func (s *Store) SetRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshToken = token
	s.storage.Set(storage.KeyRefreshToken, token)
}

// ClearUser stops the heartbeat, erases in-memory and persisted session
// state, and emits a logout notification if a user was active. Calling it on
// an already-empty store is a no-op apart from the user-changed callback.
func (s *Store) ClearUser() {
	s.stopHeartbeat()

	s.mu.Lock()
	previous := s.user
	s.user = nil
	s.token = ""
	s.refreshToken = ""
	s.expiry = time.Time{}
	s.storage.Delete(storage.KeyToken)
	s.storage.Delete(storage.KeyRefreshToken)
	s.storage.Delete(storage.KeyUser)
	s.storage.Delete(storage.KeyTokenExpiry)
	subscribers := append([]func(*types.User){}, s.subscribers...)
	s.mu.Unlock()

	if previous != nil {
		s.notifyLogout(previous.ID)
	}
	s.notifyChanged(subscribers, nil)
}

// Close stops the heartbeat without touching session state.
func (s *Store) Close() {
	s.stopHeartbeat()
}

func (s *Store) startHeartbeat() {
	s.stopHeartbeat()

	s.mu.Lock()
	stop := make(chan struct{})
	s.heartbeatStop = stop
	s.mu.Unlock()

	// Immediate liveness signal, then one per interval while a token is set.
	s.notifyHeartbeat()

	ticker := s.ticker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				if s.Token() != "" {
					s.notifyHeartbeat()
				}
			}
		}
	}()
}

func (s *Store) stopHeartbeat() {
	s.mu.Lock()
	stop := s.heartbeatStop
	s.heartbeatStop = nil
	s.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

func (s *Store) notifyChanged(subscribers []func(*types.User), u *types.User) {
	for _, fn := range subscribers {
		fn(u)
	}
}

func (s *Store) presenceNotifier() PresenceNotifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presence
}

func (s *Store) notifyLogin(userID int, userName string) {
	p := s.presenceNotifier()
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
		defer cancel()
		if err := p.RecordLogin(ctx, s.device, userID, userName); err != nil {
			s.logger.Printf("session: presence login notification failed: %v", err)
		}
	}()
}

func (s *Store) notifyLogout(userID int) {
	p := s.presenceNotifier()
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
		defer cancel()
		if err := p.RecordLogout(ctx, s.device, userID); err != nil {
			s.logger.Printf("session: presence logout notification failed: %v", err)
		}
	}()
}

func (s *Store) notifyHeartbeat() {
	p := s.presenceNotifier()
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
		defer cancel()
		if err := p.Heartbeat(ctx, s.device); err != nil {
			s.logger.Printf("session: presence heartbeat failed: %v", err)
		}
	}()
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature; the client only needs the timestamp, not trust in it.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
