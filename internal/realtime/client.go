// Package realtime subscribes to the backend's Socket.IO event stream.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/sagipero/admin-console/internal/config"
	"github.com/sagipero/admin-console/internal/metrics"
)

// Handler receives the payload of one event.
type Handler func(payload json.RawMessage)

// ErrConnectRejected is returned when the server refuses the namespace
// connection, usually because the token is invalid.
var ErrConnectRejected = errors.New("socket.io connect rejected")

const handshakeTimeout = 10 * time.Second

// Client is a Socket.IO v4 client over websocket. It holds at most one
// connection; connecting again replaces the previous one.
type Client struct {
	endpoint string
	token    string
	logger   zerolog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]map[int]Handler
	nextID   int
	onState  []func(connected bool)
}

// NewClient builds a client for a server base URL such as
// "https://host". The token is sent in the connect auth payload.
func NewClient(base, token string, logger zerolog.Logger) *Client {
	return &Client{
		endpoint: Endpoint(base),
		token:    token,
		logger:   logger.With().Str("component", "realtime").Logger(),
		handlers: make(map[string]map[int]Handler),
	}
}

// Endpoint returns the websocket URL of the Socket.IO server at base.
func Endpoint(base string) string {
	u := config.WSScheme(strings.TrimRight(base, "/"))
	q := url.Values{"EIO": {"4"}, "transport": {"websocket"}}
	return u + "/socket.io/?" + q.Encode()
}

// On registers h for event and returns a function that unregisters it.
func (c *Client) On(event string, h Handler) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]Handler)
	}
	c.handlers[event][id] = h
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.handlers[event], id)
		c.mu.Unlock()
	}
}

// OnState registers fn to be told when the connection comes up or drops.
func (c *Client) OnState(fn func(connected bool)) {
	c.mu.Lock()
	c.onState = append(c.onState, fn)
	c.mu.Unlock()
}

// Connect dials the server and completes the Engine.IO and Socket.IO
// handshakes. Any previous connection is closed first.
func (c *Client) Connect(ctx context.Context) (*websocket.Conn, error) {
	c.Close()

	hctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(hctx, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.endpoint, err)
	}

	if err := c.handshake(hctx, conn); err != nil {
		conn.CloseNow()
		return nil, err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setState(true)
	c.logger.Info().Str("endpoint", c.endpoint).Msg("realtime connected")
	return conn, nil
}

func (c *Client) handshake(ctx context.Context, conn *websocket.Conn) error {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("read open packet: %w", err)
	}
	if len(data) == 0 || data[0] != engineOpen {
		return fmt.Errorf("expected open packet, got %q", data)
	}

	pkt, err := connectPacket(c.token)
	if err != nil {
		return fmt.Errorf("encode connect: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(pkt)); err != nil {
		return fmt.Errorf("send connect: %w", err)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read connect ack: %w", err)
		}
		msg := string(data)
		switch {
		case msg == string(enginePing):
			if err := conn.Write(ctx, websocket.MessageText, []byte{enginePong}); err != nil {
				return fmt.Errorf("send pong: %w", err)
			}
		case len(msg) >= 2 && msg[0] == engineMessage:
			p, err := parseSocketPacket(msg[1:])
			if err != nil {
				return err
			}
			switch p.Type {
			case socketConnect:
				return nil
			case socketConnectError:
				return fmt.Errorf("%w: %s", ErrConnectRejected, connectError(p.Data))
			}
		}
	}
}

// Listen reads packets from conn until it fails or ctx ends, answering
// pings and dispatching events.
func (c *Client) Listen(ctx context.Context, conn *websocket.Conn) error {
	defer c.setState(false)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		if len(data) == 0 {
			continue
		}
		switch data[0] {
		case enginePing:
			if err := conn.Write(ctx, websocket.MessageText, []byte{enginePong}); err != nil {
				return fmt.Errorf("send pong: %w", err)
			}
		case engineClose:
			return errors.New("server closed the session")
		case engineMessage:
			if err := c.handleMessage(string(data[1:])); err != nil {
				if errors.Is(err, errServerDisconnect) {
					return err
				}
				c.logger.Warn().Err(err).Msg("ignoring realtime packet")
			}
		case engineNoop, enginePong:
		}
	}
}

var errServerDisconnect = errors.New("server disconnected the namespace")

func (c *Client) handleMessage(msg string) error {
	p, err := parseSocketPacket(msg)
	if err != nil {
		return err
	}
	switch p.Type {
	case socketDisconnect:
		return errServerDisconnect
	case socketEvent:
		name, payload, err := eventOf(p.Data)
		if err != nil {
			return err
		}
		c.dispatch(name, payload)
	case socketAck:
	}
	return nil
}

func (c *Client) dispatch(event string, payload json.RawMessage) {
	c.mu.Lock()
	hs := make([]Handler, 0, len(c.handlers[event]))
	for _, h := range c.handlers[event] {
		hs = append(hs, h)
	}
	c.mu.Unlock()

	metrics.RealtimeEvents.WithLabelValues(event).Inc()
	c.logger.Debug().Str("event", event).Int("handlers", len(hs)).Msg("realtime event")
	for _, h := range hs {
		h(payload)
	}
}

// Run keeps the client connected until ctx ends, reconnecting with
// exponential backoff after failures.
func (c *Client) Run(ctx context.Context) error {
	defer c.Close()
	for {
		var conn *websocket.Conn
		backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			var err error
			conn, err = c.Connect(ctx)
			if err != nil {
				c.logger.Warn().Err(err).Msg("realtime connect failed")
				if errors.Is(err, ErrConnectRejected) {
					return err
				}
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		err = c.Listen(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn().Err(err).Msg("realtime connection lost")
	}
}

// Close drops the current connection, if any.
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (c *Client) setState(connected bool) {
	c.mu.Lock()
	fns := append([]func(bool){}, c.onState...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(connected)
	}
}
