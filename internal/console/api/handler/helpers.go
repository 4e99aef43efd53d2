package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/console/api/middleware"
	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/console/session"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// requireSession returns the caller's session or writes a 401.
func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing session")
		return nil, false
	}
	return sess, true
}

// requireID reads a chi URL parameter or writes a 400.
func requireID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id, err := request.RequireID(chi.URLParam(r, param))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}

// fail reports a failed backend call: the operator gets an error toast, the
// caller gets the mapped status. A rejected token ends the session.
func fail(w http.ResponseWriter, r *http.Request, sess *session.Session, title string, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Str("action", title).Msg("backend call failed")
	sess.Toasts.Error(title, sagipero.UserMessage(err))
	if sagipero.IsAuth(err) {
		sess.End()
	}
	response.WriteClientError(w, err)
}

// failLoad reports a failed read. Reads do not toast unless the view asks.
func failLoad(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Msg("backend read failed")
	if sagipero.IsAuth(err) {
		sess.End()
	}
	response.WriteClientError(w, err)
}

// badRequest toasts and writes a 400 for input the console rejects itself.
func badRequest(w http.ResponseWriter, sess *session.Session, title, message string) {
	sess.Toasts.Error(title, message)
	response.WriteError(w, http.StatusBadRequest, message)
}

// done confirms a successful mutation with a toast.
func done(sess *session.Session, message string) {
	sess.Toasts.Success("", message)
}

// confirmTimeout bounds how long a destructive action waits for an answer.
const (
	confirmTimeout = 2 * time.Minute
	confirmSlack   = 5 * time.Second
)

// confirmed asks the operator through the session's confirm bus unless the
// request carries confirmed=true. A declined or unanswered prompt writes
// {"deleted": false} and returns false.
func confirmed(w http.ResponseWriter, r *http.Request, sess *session.Session, p bus.Prompt) bool {
	if request.Bool(r, "confirmed") {
		return true
	}
	middleware.HoldWrite(w, confirmTimeout+confirmSlack)
	ctx, cancel := context.WithTimeout(r.Context(), confirmTimeout)
	defer cancel()
	yes, err := sess.Confirms.Ask(ctx, p)
	middleware.ExtendWrite(w, r)
	if err != nil || !yes {
		response.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": false})
		return false
	}
	return true
}
