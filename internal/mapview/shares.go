package mapview

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sagipero/admin-console/internal/sagipero"
)

// Share is a resident's last shared location.
type Share struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	UserName  string     `json:"userName"`
	UserEmail string     `json:"userEmail"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	Address   string     `json:"address"`
	Barangay  string     `json:"barangay"`
	Phone     string     `json:"phone"`
	MapURL    string     `json:"mapUrl"`
}

// Shares extracts location shares from residents, newest first.
func Shares(residents []sagipero.User) []Share {
	out := []Share{}
	for _, u := range residents {
		if u.Location == nil || u.Location.Latitude == 0 || u.Location.Longitude == 0 {
			continue
		}
		out = append(out, Share{
			ID:        u.ID,
			UserID:    u.ID,
			UserName:  orDefault(u.Name, "Unknown"),
			UserEmail: u.Email,
			Latitude:  u.Location.Latitude,
			Longitude: u.Location.Longitude,
			UpdatedAt: u.Location.UpdatedAt,
			Address:   orDefault(u.Address, "Not specified"),
			Barangay:  orDefault(u.Barangay, "Not specified"),
			Phone:     orDefault(u.Phone, "Not provided"),
			MapURL:    fmt.Sprintf("https://www.google.com/maps?q=%v,%v", u.Location.Latitude, u.Location.Longitude),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return updatedAt(out[i]).After(updatedAt(out[j]))
	})
	return out
}

func updatedAt(s Share) time.Time {
	if s.UpdatedAt == nil {
		return time.Time{}
	}
	return *s.UpdatedAt
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// RecentWindow separates recent shares from older ones.
const RecentWindow = time.Hour

// ShareFilter narrows the share list. Status is "all", "recent" or "old".
type ShareFilter struct {
	Status string
	Search string
}

func (f ShareFilter) Apply(shares []Share, now time.Time) []Share {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := []Share{}
	for _, s := range shares {
		recent := isRecent(s, now)
		if f.Status == "recent" && !recent {
			continue
		}
		if f.Status == "old" && recent {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.UserName), q) &&
			!strings.Contains(strings.ToLower(s.UserEmail), q) &&
			!strings.Contains(strings.ToLower(s.Barangay), q) &&
			!strings.Contains(strings.ToLower(s.Address), q) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isRecent(s Share, now time.Time) bool {
	return s.UpdatedAt != nil && s.UpdatedAt.After(now.Add(-RecentWindow))
}

// ShareStats are the counters above the share table.
type ShareStats struct {
	Total     int `json:"total"`
	Recent    int `json:"recent"`
	Barangays int `json:"barangays"`
}

func CountShares(shares []Share, now time.Time) ShareStats {
	st := ShareStats{Total: len(shares)}
	seen := map[string]bool{}
	for _, s := range shares {
		if isRecent(s, now) {
			st.Recent++
		}
		if s.Barangay != "Not specified" {
			seen[s.Barangay] = true
		}
	}
	st.Barangays = len(seen)
	return st
}

// TimeAgo renders the age of t relative to now.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	mins := int(d / time.Minute)
	hours := int(d / time.Hour)
	days := int(d / (24 * time.Hour))
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case hours < 24:
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	}
	return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
}

func plural(n int, word string) string {
	if n > 1 {
		return word + "s"
	}
	return word
}
