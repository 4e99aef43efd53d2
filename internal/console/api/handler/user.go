package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/console/api/middleware"
	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/mapview"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type User struct {
	now func() time.Time
}

func NewUser() *User {
	return &User{now: time.Now}
}

type userListResponse struct {
	Users     []sagipero.User `json:"users"`
	Barangays []string        `json:"barangays"`
	Roles     []string        `json:"roles"`
}

// List returns users filtered by role, barangay and a name/email search.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	users, err := sess.Client.ListUsers(r.Context(), q.Get("role"))
	if err != nil {
		failLoad(w, r, sess, err)
		return
	}

	barangay := q.Get("barangay")
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	out := make([]sagipero.User, 0, len(users))
	for _, u := range users {
		if barangay != "" && u.Barangay != barangay {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}

	response.WriteJSON(w, http.StatusOK, userListResponse{
		Users:     out,
		Barangays: sagipero.Barangays,
		Roles:     []string{sagipero.RoleAdmin, sagipero.RoleResponder, sagipero.RoleResident},
	})
}

type userRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Role     string   `json:"role" validate:"omitempty,oneof=ADMIN RESPONDER RESIDENT"`
	Barangay string   `json:"barangay,omitempty"`
	Address  string   `json:"address,omitempty"`
	Types    []string `json:"responderTypes,omitempty"`
}

func (req userRequest) user() sagipero.User {
	return sagipero.User{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          req.Phone,
		Role:           req.Role,
		Barangay:       req.Barangay,
		Address:        req.Address,
		ResponderTypes: req.Types,
	}
}

func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req userRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	u := req.user()
	if u.Name == "" || u.Email == "" {
		badRequest(w, sess, "Invalid user", "Please provide name and email")
		return
	}
	if u.Role == "" {
		u.Role = sagipero.RoleResident
	}

	created, err := sess.Client.CreateUser(r.Context(), u)
	if err != nil {
		fail(w, r, sess, "Failed to save user", err)
		return
	}
	done(sess, "Saved")
	response.WriteJSON(w, http.StatusCreated, created)
}

// Update merges the request into the stored user and saves it.
func (h *User) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req userRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := sess.Client.GetUser(r.Context(), id)
	if err != nil {
		fail(w, r, sess, "Failed to update user", err)
		return
	}
	merged := *current
	merged.ID = id
	patch := req.user()
	if patch.Name != "" {
		merged.Name = patch.Name
	}
	if patch.Email != "" {
		merged.Email = patch.Email
	}
	if patch.Phone != "" {
		merged.Phone = patch.Phone
	}
	if patch.Role != "" {
		merged.Role = patch.Role
	}
	if patch.Barangay != "" {
		merged.Barangay = patch.Barangay
	}
	if patch.Address != "" {
		merged.Address = patch.Address
	}
	if patch.ResponderTypes != nil {
		merged.ResponderTypes = patch.ResponderTypes
	}

	middleware.ExtendWrite(w, r)
	updated, err := sess.Client.UpdateUser(r.Context(), merged)
	if err != nil {
		fail(w, r, sess, "Failed to update user", err)
		return
	}
	done(sess, "Updated")
	response.WriteJSON(w, http.StatusOK, updated)
}

// Delete removes a user after the operator confirms. Passing
// confirmed=true skips the prompt.
func (h *User) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}

	if !confirmed(w, r, sess, bus.Prompt{
		Title:       "Delete user",
		Message:     "Delete this user? This cannot be undone.",
		ConfirmText: "Delete",
	}) {
		return
	}

	if err := sess.Client.DeleteUser(r.Context(), id); err != nil {
		fail(w, r, sess, "Failed to delete user", err)
		return
	}
	done(sess, "Deleted")
	response.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type locationsResponse struct {
	Shares []mapview.Share    `json:"shares"`
	Stats  mapview.ShareStats `json:"stats"`
}

// Locations lists residents' shared locations.
func (h *User) Locations(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	residents, err := sess.Client.ListUsers(r.Context(), sagipero.RoleResident)
	if err != nil {
		failLoad(w, r, sess, err)
		return
	}

	now := h.now()
	shares := mapview.Shares(residents)
	filter := mapview.ShareFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	response.WriteJSON(w, http.StatusOK, locationsResponse{
		Shares: filter.Apply(shares, now),
		Stats:  mapview.CountShares(shares, now),
	})
}
