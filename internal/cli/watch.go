package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sagipero/admin-console/internal/config"
	"github.com/sagipero/admin-console/internal/health"
	"github.com/sagipero/admin-console/internal/realtime"
)

// ErrOffline is returned when the backend health check fails.
var ErrOffline = errors.New("backend offline")

// Health checks the backend once and prints the connectivity state.
func (a *App) Health(ctx context.Context) error {
	m := health.NewMonitor(a.client(), 0, a.Logger)
	snap := m.Check(ctx)
	if snap.Error != "" {
		fmt.Fprintf(a.out, "%s (%s)\n", snap.Text, snap.Error)
	} else {
		fmt.Fprintln(a.out, snap.Text)
	}
	if snap.Status != health.StatusOnline {
		return ErrOffline
	}
	return nil
}

// Watch streams backend events until ctx ends.
func (a *App) Watch(ctx context.Context) error {
	if a.Settings.Token == "" {
		return ErrNotSignedIn
	}
	rt := realtime.NewClient(config.SocketBase(a.APIBase()), a.Settings.Token, a.Logger)
	rt.OnState(func(connected bool) {
		if connected {
			a.Toasts.Info("", "Live updates connected")
			return
		}
		a.Toasts.Info("", "Live updates disconnected")
	})
	for _, event := range realtime.Events {
		rt.On(event, a.printEvent(event))
	}

	err := rt.Run(ctx)
	if errors.Is(err, realtime.ErrConnectRejected) {
		a.Toasts.Error("Live updates", "Session rejected, sign in again")
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *App) printEvent(event string) realtime.Handler {
	return func(payload json.RawMessage) {
		a.mu.Lock()
		defer a.mu.Unlock()
		stamp := a.now().In(a.Loc).Format("15:04:05")
		if len(payload) == 0 {
			fmt.Fprintf(a.out, "%s %s\n", stamp, event)
			return
		}
		fmt.Fprintf(a.out, "%s %-24s %s\n", stamp, event, payload)
	}
}
