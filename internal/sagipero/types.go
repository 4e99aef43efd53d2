package sagipero

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Roles.
const (
	RoleAdmin     = "ADMIN"
	RoleResponder = "RESPONDER"
	RoleResident  = "RESIDENT"
)

// Responder availability states.
const (
	ResponderAvailable          = "AVAILABLE"
	ResponderOnDuty             = "ON_DUTY"
	ResponderVehicleUnavailable = "VEHICLE_UNAVAILABLE"
)

// ResponderTypes lists the emergency types a responder can be qualified for.
var ResponderTypes = []string{
	"FIRE",
	"MEDICAL",
	"POLICE",
	"RESCUE",
	"DISASTER_MANAGEMENT",
	"COMMUNITY_RESPONDER",
	"FLOOD",
	"EARTHQUAKE",
}

// Barangays are the service areas users can be assigned to.
var Barangays = []string{
	"Barangay 1",
	"Barangay 2",
	"Barangay 3",
	"Barangay 4",
	"Barangay 5",
}

// StringList decodes either a JSON array of strings or a single string.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var list []any
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		out := make([]string, 0, len(list))
		for _, v := range list {
			if v == nil {
				continue
			}
			out = append(out, strings.TrimSpace(fmt.Sprint(v)))
		}
		*s = out
		return nil
	}
	var single any
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	str := strings.TrimSpace(fmt.Sprint(single))
	if str == "" {
		*s = nil
		return nil
	}
	*s = StringList{str}
	return nil
}

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UserLocation is the last location a resident shared.
type UserLocation struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type User struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name,omitempty"`
	Email                 string        `json:"email,omitempty"`
	Phone                 string        `json:"phone,omitempty"`
	Role                  string        `json:"role,omitempty"`
	Barangay              string        `json:"barangay,omitempty"`
	Address               string        `json:"address,omitempty"`
	ResponderStatus       string        `json:"responderStatus,omitempty"`
	ResponderTypes        StringList    `json:"responderTypes,omitempty"`
	SpecialCircumstances  StringList    `json:"specialCircumstances,omitempty"`
	MedicalConditions     StringList    `json:"medicalConditions,omitempty"`
	Allergies             StringList    `json:"allergies,omitempty"`
	BloodType             string        `json:"bloodType,omitempty"`
	EmergencyContactName  string        `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string        `json:"emergencyContactPhone,omitempty"`
	Location              *UserLocation `json:"Location,omitempty"`
	CreatedAt             *time.Time    `json:"createdAt,omitempty"`
}

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// HasResponderType reports whether the responder is qualified for t.
func (u User) HasResponderType(t string) bool {
	for _, rt := range u.ResponderTypes {
		if rt == t {
			return true
		}
	}
	return false
}

type Vehicle struct {
	ID          string `json:"id,omitempty"`
	ResponderID string `json:"responderId"`
	PlateNumber string `json:"plateNumber"`
	Model       string `json:"model,omitempty"`
	Color       string `json:"color,omitempty"`
	Active      bool   `json:"active"`
}

type EvacuationCenter struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	Capacity int       `json:"capacity,omitempty"`
	Location *Location `json:"location,omitempty"`
}

type InventoryItem struct {
	ID          string `json:"id,omitempty"`
	ResponderID string `json:"responderId"`
	Name        string `json:"name"`
	SKU         string `json:"sku,omitempty"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Available   bool   `json:"available"`
}

// Bounds is a rectangular map area.
type Bounds struct {
	NW Location `json:"nw"`
	SE Location `json:"se"`
}

type WeatherAlert struct {
	ID            string     `json:"id,omitempty"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	Area          *Bounds    `json:"area"`
	HourlyIndexes []int      `json:"hourlyIndexes"`
	Daily         bool       `json:"daily"`
	Scope         *string    `json:"scope"`
	StartAt       *time.Time `json:"startAt"`
	EndAt         *time.Time `json:"endAt"`
	Severity      string     `json:"severity"`
	BroadcastAll  bool       `json:"broadcastAll"`
	TargetRoles   []string   `json:"targetRoles,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// Media review states.
const (
	MediaPending  = "PENDING"
	MediaApproved = "APPROVED"
	MediaRejected = "REJECTED"
)

type MediaSubmission struct {
	ID          string     `json:"id"`
	URL         string     `json:"url,omitempty"`
	Type        string     `json:"type,omitempty"`
	Status      string     `json:"status,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Verified    bool       `json:"verified,omitempty"`
	EmergencyID string     `json:"emergencyId,omitempty"`
	User        *User      `json:"user,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// MediaStats counts submissions per review state.
type MediaStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type Notification struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// ArticlePreview is the backend's summary of a fetched article URL.
type ArticlePreview struct {
	ID          string `json:"id,omitempty"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// decodeList accepts both a bare JSON array and a {"data": [...]} envelope.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}
	if body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}
	var env struct {
		Data  []T `json:"data"`
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if env.Data != nil {
		return env.Data, nil
	}
	if env.Items != nil {
		return env.Items, nil
	}
	return []T{}, nil
}
