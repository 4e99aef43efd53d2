package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/emergency"
)

const confirmTimeout = 2 * time.Minute

// Emergencies prints the emergency history grouped by day.
func (a *App) Emergencies(ctx context.Context, f emergency.Filter) error {
	c, err := a.authed()
	if err != nil {
		return err
	}
	records, err := c.ListEmergencyHistory(ctx)
	if err != nil {
		return a.check(ctx, "Failed to load emergencies", err)
	}
	f.Status = strings.ToUpper(strings.TrimSpace(f.Status))

	buckets := emergency.Group(records, f, a.now().In(a.Loc))
	if len(buckets) == 0 {
		fmt.Fprintln(a.out, "No emergencies found.")
		return nil
	}
	for i, b := range buckets {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		fmt.Fprintf(a.out, "%s (%d)\n", b.Label, len(b.Rows))
		fmt.Fprintf(a.out, "  %-9s %-10s %-12s %-8s %-10s %-20s %s\n",
			"ID", "TIME", "STATUS", "PRIORITY", "TYPE", "RESPONDER", "LAST EVENT")
		for _, row := range b.Rows {
			fmt.Fprintf(a.out, "  %-9s %-10s %-12s %-8s %-10s %-20s %s\n",
				row.ShortID, row.Time, row.StatusPill.Label, row.Priority,
				orDash(row.Type), row.Responder, row.LastEvent)
		}
	}
	return nil
}

// History prints the timeline of one emergency and its response times.
func (a *App) History(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("emergency id is required")
	}
	c, err := a.authed()
	if err != nil {
		return err
	}
	events, err := c.GetEmergencyHistory(ctx, id)
	if err != nil {
		return a.check(ctx, "Failed to load timeline", err)
	}
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No history for this emergency.")
		return nil
	}

	for _, ev := range events {
		when := "-"
		if t, ok := ev.At(); ok {
			when = t.In(a.Loc).Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(a.out, "%-19s  %-18s %s\n", when, strings.ToUpper(ev.EventType),
			emergency.DescribeEvent(ev.EventType, ev.Payload))
	}

	rt := emergency.ComputeResponseTimes(events)
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "%-18s %s\n", "Time to accept:", emergency.FormatSeconds(rt.ToAccept))
	fmt.Fprintf(a.out, "%-18s %s\n", "Accept to arrive:", emergency.FormatSeconds(rt.ToArrive))
	fmt.Fprintf(a.out, "%-18s %s\n", "Total response:", emergency.FormatSeconds(rt.Total))
	return nil
}

// Assign dispatches a responder to an emergency and marks the given vehicles
// as in use. Unless yes is set the operator confirms first.
func (a *App) Assign(ctx context.Context, emergencyID, responderID string, vehicleIDs []string, yes bool) error {
	if emergencyID == "" || responderID == "" {
		return errors.New("emergency and responder ids are required")
	}
	c, err := a.authed()
	if err != nil {
		return err
	}

	if !yes {
		askCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
		defer cancel()
		msg := fmt.Sprintf("Assign responder %s to emergency %s", responderID, emergencyID)
		if len(vehicleIDs) > 0 {
			msg += fmt.Sprintf(" with %d vehicle(s)", len(vehicleIDs))
		}
		ok, err := a.Confirms.Ask(askCtx, bus.Prompt{Title: "Assign responder", Message: msg, ConfirmText: "Assign"})
		if err != nil {
			return err
		}
		if !ok {
			a.Toasts.Info("", "Assignment cancelled")
			return nil
		}
	}

	if err := c.AssignEmergency(ctx, emergencyID, responderID); err != nil {
		return a.check(ctx, "Failed to assign", err)
	}
	for _, vid := range vehicleIDs {
		if err := c.SetVehicleActive(ctx, vid, false); err != nil {
			return a.check(ctx, "Failed to assign", err)
		}
	}
	a.Toasts.Success("", "Assigned and vehicles dispatched")
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
