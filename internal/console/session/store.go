// Package session keeps one backend client and feedback bus per signed-in
// operator.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/metrics"
	"github.com/sagipero/admin-console/internal/realtime"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// DefaultTTL is how long an idle session stays valid.
const DefaultTTL = 12 * time.Hour

// Session is one operator's view of the backend.
type Session struct {
	ID        string
	Client    *sagipero.Client
	User      *sagipero.User
	Toasts    *bus.Toasts
	Confirms  *bus.Confirms
	Realtime  *realtime.Client
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	cancel   context.CancelFunc
	store    *Store
}

// notificationToast shows a pushed notification as an info toast.
func (s *Session) notificationToast(payload json.RawMessage) {
	var n struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(payload, &n)
	if n.Title == "" {
		n.Title = "Notification"
	}
	s.Toasts.Info(n.Title, n.Message)
}

// End signs the session out.
func (s *Session) End() {
	s.store.Delete(s.ID)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Options configures a Store.
type Options struct {
	// SocketURL maps a session's API base to its realtime server. Nil or
	// an empty result disables realtime.
	SocketURL func(apiBase string) string
	TTL       time.Duration
	Logger    zerolog.Logger
}

// Store holds the active sessions.
type Store struct {
	opts Options
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	opts.Logger = opts.Logger.With().Str("component", "sessions").Logger()
	return &Store{
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create registers a session for an authenticated client. When realtime is
// configured, the session subscribes to backend events until it ends.
func (st *Store) Create(client *sagipero.Client, user *sagipero.User) *Session {
	now := st.now()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        uuid.NewString(),
		Client:    client,
		User:      user,
		Toasts:    bus.NewToasts(),
		Confirms:  bus.NewConfirms(),
		CreatedAt: now,
		lastSeen:  now,
		cancel:    cancel,
		store:     st,
	}

	var socketURL string
	if st.opts.SocketURL != nil {
		socketURL = st.opts.SocketURL(client.BaseURL())
	}
	if socketURL != "" {
		s.Realtime = realtime.NewClient(socketURL, client.Token(), st.opts.Logger)
		s.Realtime.On(realtime.EventNotificationNew, s.notificationToast)
		go func() {
			if err := s.Realtime.Run(ctx); err != nil && ctx.Err() == nil {
				st.opts.Logger.Warn().Err(err).Str("session", s.ID).Msg("realtime stopped")
				s.Toasts.Error("Realtime", "Live updates are unavailable: "+err.Error())
			}
		}()
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))

	st.opts.Logger.Info().Str("session", s.ID).Msg("session created")
	return s
}

// Get returns a live session and marks it used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(s.idleSince()) > st.opts.TTL {
		st.Delete(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Delete ends a session. It is a no-op for unknown ids.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()
	if !ok {
		return
	}
	metrics.ActiveSessions.Set(float64(n))

	s.cancel()
	s.Toasts.Close()
	s.Client.Logout()
	st.opts.Logger.Info().Str("session", id).Msg("session ended")
}

// Sweep ends sessions idle for longer than the TTL.
func (st *Store) Sweep() int {
	now := st.now()
	st.mu.RLock()
	var expired []string
	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.opts.TTL {
			expired = append(expired, id)
		}
	}
	st.mu.RUnlock()

	for _, id := range expired {
		st.Delete(id)
	}
	return len(expired)
}

// RunSweeper sweeps periodically until ctx ends.
func (st *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.opts.Logger.Info().Int("expired", n).Msg("swept idle sessions")
			}
		}
	}
}

// Len returns the number of active sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CloseAll ends every session.
func (st *Store) CloseAll() {
	st.mu.RLock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	st.mu.RUnlock()
	for _, id := range ids {
		st.Delete(id)
	}
}
