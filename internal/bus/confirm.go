package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownPrompt is returned when resolving a prompt that is not open.
var ErrUnknownPrompt = errors.New("unknown or already answered prompt")

type Prompt struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	ConfirmText string `json:"confirmText"`
	CancelText  string `json:"cancelText"`
}

func (p *Prompt) applyDefaults() {
	if p.Title == "" {
		p.Title = "Confirm"
	}
	if p.Message == "" {
		p.Message = "Are you sure?"
	}
	if p.ConfirmText == "" {
		p.ConfirmText = "Confirm"
	}
	if p.CancelText == "" {
		p.CancelText = "Cancel"
	}
}

// Confirm event kinds.
const (
	ConfirmOpen  = "open"
	ConfirmClose = "close"
)

type ConfirmEvent struct {
	Kind   string `json:"kind"`
	Prompt Prompt `json:"prompt"`
	Result bool   `json:"result"`
}

// Confirms hands yes/no questions to whoever renders them and waits for the
// answer.
type Confirms struct {
	mu      sync.Mutex
	subs    map[int]func(ConfirmEvent)
	nextID  int
	pending map[string]pendingPrompt
}

type pendingPrompt struct {
	prompt Prompt
	answer chan bool
}

func NewConfirms() *Confirms {
	return &Confirms{
		subs:    make(map[int]func(ConfirmEvent)),
		pending: make(map[string]pendingPrompt),
	}
}

// Subscribe registers fn for open and close events. fn must not block.
func (c *Confirms) Subscribe(fn func(ConfirmEvent)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Ask opens a prompt and blocks until it is resolved or ctx ends. A
// cancelled prompt is closed with a false result.
func (c *Confirms) Ask(ctx context.Context, p Prompt) (bool, error) {
	p.ID = uuid.NewString()
	p.applyDefaults()
	answer := make(chan bool, 1)

	c.mu.Lock()
	c.pending[p.ID] = pendingPrompt{prompt: p, answer: answer}
	subs := c.subscribers()
	c.mu.Unlock()

	publish(subs, ConfirmEvent{Kind: ConfirmOpen, Prompt: p})

	select {
	case result := <-answer:
		return result, nil
	case <-ctx.Done():
		c.mu.Lock()
		_, stillOpen := c.pending[p.ID]
		delete(c.pending, p.ID)
		subs := c.subscribers()
		c.mu.Unlock()
		if stillOpen {
			publish(subs, ConfirmEvent{Kind: ConfirmClose, Prompt: p})
		}
		return false, ctx.Err()
	}
}

// Resolve answers an open prompt.
func (c *Confirms) Resolve(id string, result bool) error {
	c.mu.Lock()
	pp, ok := c.pending[id]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownPrompt
	}
	delete(c.pending, id)
	subs := c.subscribers()
	c.mu.Unlock()

	pp.answer <- result
	publish(subs, ConfirmEvent{Kind: ConfirmClose, Prompt: pp.prompt, Result: result})
	return nil
}

// Pending returns the prompts awaiting an answer.
func (c *Confirms) Pending() []Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Prompt, 0, len(c.pending))
	for _, pp := range c.pending {
		out = append(out, pp.prompt)
	}
	return out
}

func (c *Confirms) subscribers() []func(ConfirmEvent) {
	subs := make([]func(ConfirmEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}
