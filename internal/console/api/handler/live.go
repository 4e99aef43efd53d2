package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/console/session"
	"github.com/sagipero/admin-console/internal/health"
	"github.com/sagipero/admin-console/internal/realtime"
)

const (
	liveBuffer       = 64
	livePingInterval = 30 * time.Second
	liveWriteTimeout = 5 * time.Second
)

// Live frame types.
const (
	FrameToast   = "toast"
	FrameConfirm = "confirm"
	FrameEvent   = "event"
	FrameHealth  = "health"
	FrameDismiss = "dismiss"
)

// HealthSource is the backend status the live feed relays.
type HealthSource interface {
	Snapshot() health.Snapshot
	Subscribe(fn func(health.Snapshot)) func()
}

type liveFrame struct {
	Type    string            `json:"type"`
	Toast   *bus.ToastEvent   `json:"toast,omitempty"`
	Confirm *bus.ConfirmEvent `json:"confirm,omitempty"`
	Event   string            `json:"event,omitempty"`
	Payload json.RawMessage   `json:"payload,omitempty"`
	Health  *health.Snapshot  `json:"health,omitempty"`
}

type liveCommand struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Result bool   `json:"result"`
}

type Live struct {
	store  *session.Store
	health HealthSource
}

func NewLive(store *session.Store, hs HealthSource) *Live {
	return &Live{store: store, health: hs}
}

// Connect streams a session's toasts, confirm prompts, backend events and
// health changes over a WebSocket, and accepts prompt answers and toast
// dismissals. The session token is passed as a query parameter.
func (h *Live) Connect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	sess, ok := h.store.Get(token)
	if !ok {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("live: failed to accept websocket")
		return
	}
	defer conn.CloseNow()

	logger := zerolog.Ctx(r.Context()).With().Str("session", sess.ID).Logger()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := make(chan liveFrame, liveBuffer)
	send := func(f liveFrame) {
		select {
		case out <- f:
		default:
			logger.Warn().Str("frame", f.Type).Msg("live: client too slow, dropping frame")
		}
	}

	for _, unsub := range h.subscribe(sess, send) {
		defer unsub()
	}
	for _, f := range h.initialFrames(sess) {
		send(f)
	}

	go h.readLoop(ctx, cancel, conn, sess, logger)

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ping.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case f := <-out:
			wctx, wcancel := context.WithTimeout(ctx, liveWriteTimeout)
			err := wsjson.Write(wctx, conn, f)
			wcancel()
			if err != nil {
				logger.Debug().Err(err).Msg("live: write failed")
				return
			}
		}
	}
}

func (h *Live) subscribe(sess *session.Session, send func(liveFrame)) []func() {
	unsubs := []func(){
		sess.Toasts.Subscribe(func(ev bus.ToastEvent) {
			send(liveFrame{Type: FrameToast, Toast: &ev})
		}),
		sess.Confirms.Subscribe(func(ev bus.ConfirmEvent) {
			send(liveFrame{Type: FrameConfirm, Confirm: &ev})
		}),
	}
	if h.health != nil {
		unsubs = append(unsubs, h.health.Subscribe(func(s health.Snapshot) {
			send(liveFrame{Type: FrameHealth, Health: &s})
		}))
	}
	if sess.Realtime != nil {
		for _, event := range realtime.Events {
			unsubs = append(unsubs, sess.Realtime.On(event, func(payload json.RawMessage) {
				send(liveFrame{Type: FrameEvent, Event: event, Payload: payload})
			}))
		}
	}
	return unsubs
}

// initialFrames replays state a freshly opened page has missed.
func (h *Live) initialFrames(sess *session.Session) []liveFrame {
	var frames []liveFrame
	if h.health != nil {
		s := h.health.Snapshot()
		frames = append(frames, liveFrame{Type: FrameHealth, Health: &s})
	}
	for _, t := range sess.Toasts.Active() {
		frames = append(frames, liveFrame{Type: FrameToast, Toast: &bus.ToastEvent{Kind: bus.ToastShown, Toast: t}})
	}
	for _, p := range sess.Confirms.Pending() {
		frames = append(frames, liveFrame{Type: FrameConfirm, Confirm: &bus.ConfirmEvent{Kind: bus.ConfirmOpen, Prompt: p}})
	}
	return frames
}

func (h *Live) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess *session.Session, logger zerolog.Logger) {
	defer cancel()
	for {
		var cmd liveCommand
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				logger.Debug().Err(err).Msg("live: read failed")
			}
			return
		}
		switch cmd.Type {
		case FrameConfirm:
			if err := sess.Confirms.Resolve(cmd.ID, cmd.Result); err != nil && !errors.Is(err, bus.ErrUnknownPrompt) {
				logger.Warn().Err(err).Msg("live: resolve prompt")
			}
		case FrameDismiss:
			sess.Toasts.Remove(cmd.ID)
		default:
			logger.Debug().Str("type", cmd.Type).Msg("live: ignoring unknown command")
		}
	}
}
