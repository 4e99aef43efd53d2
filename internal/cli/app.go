// Package cli implements the sagictl operator commands. Each command talks
// to the Sagipero backend through one typed client and reports through a
// process-wide toast and confirm bus rendered on the terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/config"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// ErrNotSignedIn is returned by commands that need a saved token.
var ErrNotSignedIn = errors.New("not signed in, run: sagictl login")

// App carries the state shared by all commands of one sagictl process.
type App struct {
	Settings *config.Settings
	Fallback string
	Loc      *time.Location
	Logger   zerolog.Logger

	Toasts   *bus.Toasts
	Confirms *bus.Confirms

	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
	opts   []sagipero.Option
	now    func() time.Time
	unsubs []func()

	mu   sync.Mutex // guards errOut
	inMu sync.Mutex // serializes prompt reads from in
}

// Options configure an App.
type Options struct {
	Settings *config.Settings
	Fallback string
	Loc      *time.Location
	Logger   zerolog.Logger
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
	Client   []sagipero.Option
}

func New(o Options) *App {
	if o.Settings == nil {
		o.Settings = &config.Settings{}
	}
	if o.Loc == nil {
		o.Loc = time.Local
	}
	a := &App{
		Settings: o.Settings,
		Fallback: o.Fallback,
		Loc:      o.Loc,
		Logger:   o.Logger,
		Toasts:   bus.NewToasts(),
		Confirms: bus.NewConfirms(),
		out:      o.Out,
		errOut:   o.Err,
		in:       bufio.NewReader(o.In),
		opts:     o.Client,
		now:      time.Now,
	}
	a.unsubs = append(a.unsubs,
		a.Toasts.Subscribe(a.printToast),
		a.Confirms.Subscribe(a.promptConfirm),
	)
	return a
}

// Close detaches the terminal from the buses.
func (a *App) Close() {
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.Toasts.Close()
}

func (a *App) printToast(ev bus.ToastEvent) {
	if ev.Kind != bus.ToastShown {
		return
	}
	t := ev.Toast
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.Title != "" {
		fmt.Fprintf(a.errOut, "[%s] %s: %s\n", t.Type, t.Title, t.Message)
		return
	}
	fmt.Fprintf(a.errOut, "[%s] %s\n", t.Type, t.Message)
}

// promptConfirm prints an open prompt and answers it from stdin. Anything
// but y or yes declines.
func (a *App) promptConfirm(ev bus.ConfirmEvent) {
	if ev.Kind != bus.ConfirmOpen {
		return
	}
	p := ev.Prompt
	go func() {
		a.mu.Lock()
		fmt.Fprintf(a.errOut, "%s: %s [y/N] ", p.Title, p.Message)
		a.mu.Unlock()

		a.inMu.Lock()
		line, _ := a.in.ReadString('\n')
		a.inMu.Unlock()
		answer := strings.ToLower(strings.TrimSpace(line))
		a.Confirms.Resolve(p.ID, answer == "y" || answer == "yes")
	}()
}

// APIBase is the backend the commands talk to.
func (a *App) APIBase() string {
	return a.Settings.ResolveAPIBase(a.Fallback)
}

func (a *App) client() *sagipero.Client {
	return sagipero.NewClient(a.APIBase(), a.opts...)
}

// authed returns a client carrying the saved token.
func (a *App) authed() (*sagipero.Client, error) {
	if a.Settings.Token == "" {
		return nil, ErrNotSignedIn
	}
	c := a.client()
	c.SetToken(a.Settings.Token)
	return c, nil
}

// check turns a failed call into a toast. A rejected token is forgotten so
// the next command asks for a new login.
func (a *App) check(ctx context.Context, title string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}
	msg := sagipero.UserMessage(err)
	var apiErr *sagipero.APIError
	if errors.As(err, &apiErr) && apiErr.RetryCount > 0 {
		msg += fmt.Sprintf(" (after %d %s)", apiErr.RetryCount, plural(apiErr.RetryCount, "retry", "retries"))
	}
	a.Toasts.Error(title, msg)
	if sagipero.IsAuth(err) {
		a.Settings.Token = ""
		if serr := a.Settings.Save(); serr != nil {
			a.Logger.Warn().Err(serr).Msg("could not clear saved token")
		}
	}
	if apiErr != nil && apiErr.RetryCount > 0 {
		return fmt.Errorf("%s after %d %s: %w", strings.ToLower(title), apiErr.RetryCount, plural(apiErr.RetryCount, "retry", "retries"), err)
	}
	return fmt.Errorf("%s: %w", strings.ToLower(title), err)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
