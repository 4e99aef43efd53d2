package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/console/api/middleware"
	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/console/session"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type Auth struct {
	backend *Backend
	store   *session.Store
}

func NewAuth(backend *Backend, store *session.Store) *Auth {
	return &Auth{backend: backend, store: store}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  *sagipero.User `json:"user,omitempty"`
}

// Login signs in against the backend and opens a console session.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	client := h.backend.NewClient()
	res, err := client.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		zerolog.Ctx(r.Context()).Info().Err(err).Str("email", req.Email).Msg("login failed")
		if sagipero.IsAuth(err) {
			response.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if errors.Is(err, sagipero.ErrNoToken) {
			response.WriteError(w, http.StatusBadGateway, "No token")
			return
		}
		response.WriteClientError(w, err)
		return
	}

	sess := h.store.Create(client, res.User)
	response.WriteJSON(w, http.StatusOK, loginResponse{Token: sess.ID, User: res.User})
}

// Logout ends the caller's session.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.GetSession(r.Context()); sess != nil {
		sess.End()
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"user":    sess.User,
		"apiBase": sess.Client.BaseURL(),
	})
}
