package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type Media struct{}

func NewMedia() *Media {
	return &Media{}
}

func (h *Media) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	items, err := sess.Client.ListMedia(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		fail(w, r, sess, "Failed to load media", err)
		return
	}
	response.WriteJSON(w, http.StatusOK, items)
}

func (h *Media) Stats(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	stats, err := sess.Client.MediaStats(r.Context())
	if err != nil {
		failLoad(w, r, sess, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, stats)
}

// Verify turns a submission into an emergency. When the reporter already
// has an active emergency the toast names its status.
func (h *Media) Verify(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}

	created, err := sess.Client.VerifyMedia(r.Context(), id)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("media_id", id).Msg("media verification failed")
		msg := "Verification failed"
		var apiErr *sagipero.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		if status, active := sagipero.ActiveEmergencyStatus(err); active {
			msg += "\n\nUser has active emergency: " + status
		}
		sess.Toasts.Error("", msg)
		if sagipero.IsAuth(err) {
			sess.End()
		}
		response.WriteClientError(w, err)
		return
	}

	done(sess, fmt.Sprintf("Media verified! Emergency %s created.", created.ID()))
	response.WriteJSON(w, http.StatusOK, map[string]any{"emergency": created})
}

type mediaStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
	Notes  string `json:"notes"`
}

// SetStatus approves or rejects a submission. Rejections need a reason.
func (h *Media) SetStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req mediaStatusRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rejecting := req.Status == sagipero.MediaRejected
	if rejecting && strings.TrimSpace(req.Notes) == "" {
		badRequest(w, sess, "Invalid review", "Please provide a reason for rejection")
		return
	}

	if err := sess.Client.SetMediaStatus(r.Context(), id, req.Status, req.Notes); err != nil {
		if rejecting {
			fail(w, r, sess, "Failed to reject media", err)
		} else {
			fail(w, r, sess, "Failed to update media status", err)
		}
		return
	}
	if rejecting {
		done(sess, "Media rejected")
	} else {
		done(sess, "Media marked as "+req.Status)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	if err := sess.Client.DeleteMedia(r.Context(), id); err != nil {
		fail(w, r, sess, "Failed to delete submission", err)
		return
	}
	done(sess, "Submission deleted")
	w.WriteHeader(http.StatusNoContent)
}
