// Package bus carries operator feedback: transient toasts and blocking
// confirmation prompts. Each console session and CLI process owns its own
// instances.
package bus

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is how long a toast stays up when no timeout is given.
const DefaultTimeout = 4 * time.Second

// Persistent keeps a toast up until it is removed.
const Persistent time.Duration = -1

// Toast levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

type Toast struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Title     string        `json:"title,omitempty"`
	Message   string        `json:"message"`
	Timeout   time.Duration `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Toast event kinds.
const (
	ToastShown   = "shown"
	ToastRemoved = "removed"
)

type ToastEvent struct {
	Kind  string `json:"kind"`
	Toast Toast  `json:"toast"`
}

// Toasts is a publish/subscribe channel for toast notifications.
type Toasts struct {
	mu     sync.Mutex
	subs   map[int]func(ToastEvent)
	nextID int
	active map[string]Toast
	timers map[string]*time.Timer
}

func NewToasts() *Toasts {
	return &Toasts{
		subs:   make(map[int]func(ToastEvent)),
		active: make(map[string]Toast),
		timers: make(map[string]*time.Timer),
	}
}

// Subscribe registers fn for every toast event and returns a function that
// removes it. fn is called synchronously and must not block.
func (b *Toasts) Subscribe(fn func(ToastEvent)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Notify shows a toast and returns its id. A zero Timeout uses
// DefaultTimeout; Persistent disables auto-removal.
func (b *Toasts) Notify(t Toast) string {
	t.ID = uuid.NewString()
	if t.Type == "" {
		t.Type = LevelInfo
	}
	if t.Timeout == 0 {
		t.Timeout = DefaultTimeout
	}
	t.CreatedAt = time.Now()

	b.mu.Lock()
	b.active[t.ID] = t
	if t.Timeout > 0 {
		id := t.ID
		b.timers[id] = time.AfterFunc(t.Timeout, func() { b.Remove(id) })
	}
	subs := b.subscribers()
	b.mu.Unlock()

	publish(subs, ToastEvent{Kind: ToastShown, Toast: t})
	return t.ID
}

// Success, Error and Info are shorthands for Notify.
func (b *Toasts) Success(title, message string) string {
	return b.Notify(Toast{Type: LevelSuccess, Title: title, Message: message})
}

func (b *Toasts) Error(title, message string) string {
	return b.Notify(Toast{Type: LevelError, Title: title, Message: message})
}

func (b *Toasts) Info(title, message string) string {
	return b.Notify(Toast{Type: LevelInfo, Title: title, Message: message})
}

// Remove dismisses a toast. It reports false if the toast is already gone.
func (b *Toasts) Remove(id string) bool {
	b.mu.Lock()
	t, ok := b.active[id]
	if !ok {
		b.mu.Unlock()
		return false
	}
	delete(b.active, id)
	if timer, ok := b.timers[id]; ok {
		timer.Stop()
		delete(b.timers, id)
	}
	subs := b.subscribers()
	b.mu.Unlock()

	publish(subs, ToastEvent{Kind: ToastRemoved, Toast: t})
	return true
}

// Active returns the visible toasts, oldest first.
func (b *Toasts) Active() []Toast {
	b.mu.Lock()
	out := make([]Toast, 0, len(b.active))
	for _, t := range b.active {
		out = append(out, t)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Close stops pending auto-removals.
func (b *Toasts) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
}

func (b *Toasts) subscribers() []func(ToastEvent) {
	subs := make([]func(ToastEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	return subs
}

func publish[E any](subs []func(E), ev E) {
	for _, fn := range subs {
		fn(ev)
	}
}
