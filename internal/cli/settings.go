package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sagipero/admin-console/internal/sagipero"
)

// ErrInvalidAPIBase is returned for API bases that are not http(s) URLs.
var ErrInvalidAPIBase = errors.New("API base must be an http or https URL")

// ConfigShow prints the effective settings.
func (a *App) ConfigShow() {
	source := "default"
	if strings.TrimSpace(a.Settings.APIBase) != "" {
		source = "saved"
	}
	signedIn := "no"
	if a.Settings.Token != "" {
		signedIn = "yes"
	}
	fmt.Fprintf(a.out, "%-12s %s (%s)\n", "API base:", a.APIBase(), source)
	fmt.Fprintf(a.out, "%-12s %s\n", "Health:", sagipero.HealthURL(a.APIBase()))
	fmt.Fprintf(a.out, "%-12s %s\n", "Signed in:", signedIn)
}

// SetAPI saves a new API base. An empty value restores the default.
func (a *App) SetAPI(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if err := validateAPIBase(raw); err != nil {
			a.Toasts.Error("Invalid API base", err.Error())
			return err
		}
	}
	a.Settings.APIBase = strings.TrimRight(raw, "/")
	if err := a.Settings.Save(); err != nil {
		return err
	}
	if raw == "" {
		a.Toasts.Success("", "API base reset to "+a.APIBase())
		return nil
	}
	a.Toasts.Success("", "API base saved")
	return nil
}

func validateAPIBase(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAPIBase
	}
	return nil
}

// TestAPI probes the health endpoint of base, or of the current API base
// when base is empty.
func (a *App) TestAPI(ctx context.Context, base string) error {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = a.APIBase()
	} else if err := validateAPIBase(base); err != nil {
		a.Toasts.Error("Invalid API base", err.Error())
		return err
	}
	if err := sagipero.Probe(ctx, nil, base); err != nil {
		return a.check(ctx, "Connection failed", err)
	}
	a.Toasts.Success("", "Connected to "+sagipero.HealthURL(base))
	return nil
}

// Login signs in and saves the token.
func (a *App) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		a.Toasts.Error("Login failed", "Email and password are required")
		return errors.New("email and password are required")
	}

	c := a.client()
	res, err := c.Login(ctx, email, password)
	if err != nil {
		if sagipero.IsAuth(err) {
			a.Toasts.Error("Login failed", "Invalid email or password")
			return fmt.Errorf("login: %w", err)
		}
		return a.check(ctx, "Login failed", err)
	}

	a.Settings.Token = res.Token
	if err := a.Settings.Save(); err != nil {
		return err
	}
	name := email
	if res.User != nil && res.User.DisplayName() != "" {
		name = res.User.DisplayName()
	}
	a.Toasts.Success("", "Signed in as "+name)
	return nil
}

// Logout forgets the saved token.
func (a *App) Logout() error {
	a.Settings.Token = ""
	if err := a.Settings.Save(); err != nil {
		return err
	}
	a.Toasts.Info("", "Signed out")
	return nil
}
