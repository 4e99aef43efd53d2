package handler

import (
	"net/http"
	"strings"

	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// Test push text sent by the bell's "test" action.
const (
	testPushTitle   = "Admin test"
	testPushMessage = "Test push from admin web"
)

type Notification struct{}

func NewNotification() *Notification {
	return &Notification{}
}

type notificationListResponse struct {
	Notifications []sagipero.Notification `json:"notifications"`
	Unread        int                     `json:"unread"`
}

func (h *Notification) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	list, err := sess.Client.ListNotifications(r.Context())
	if err != nil {
		failLoad(w, r, sess, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, notificationListResponse{
		Notifications: list,
		Unread:        sagipero.UnreadCount(list),
	})
}

func (h *Notification) MarkRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	if err := sess.Client.MarkNotificationRead(r.Context(), id); err != nil {
		failLoad(w, r, sess, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type composeRequest struct {
	Role    string `json:"role" validate:"omitempty,oneof=ALL ADMIN RESPONDER RESIDENT"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Send delivers a composed notification to one role, or to every device
// when no role (or ALL) is chosen.
func (h *Notification) Send(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req composeRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	title, message := strings.TrimSpace(req.Title), strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		badRequest(w, sess, "Invalid notification", "Title and message required")
		return
	}

	if req.Role != "" && req.Role != "ALL" {
		err := sess.Client.SendNotification(r.Context(), sagipero.Broadcast{Role: req.Role, Title: title, Message: message})
		if err != nil {
			fail(w, r, sess, "Failed to send notification", err)
			return
		}
		done(sess, "Notification sent to role "+req.Role)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := sess.Client.SendTestPush(r.Context(), title, message); err != nil {
		fail(w, r, sess, "Failed to send notification", err)
		return
	}
	done(sess, "Broadcast notification sent")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Notification) TestPush(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.Client.SendTestPush(r.Context(), testPushTitle, testPushMessage); err != nil {
		fail(w, r, sess, "Failed to send test push", err)
		return
	}
	done(sess, "Test push sent to all registered tokens")
	w.WriteHeader(http.StatusNoContent)
}

type articleRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// PreviewArticle asks the backend to fetch and store an article.
func (h *Notification) PreviewArticle(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req articleRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	preview, err := sess.Client.PreviewArticle(r.Context(), req.URL)
	if err != nil {
		fail(w, r, sess, "Failed to fetch preview", err)
		return
	}
	done(sess, "Article saved")
	response.WriteJSON(w, http.StatusOK, preview)
}
