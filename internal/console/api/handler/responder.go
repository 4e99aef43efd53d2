package handler

import (
	"net/http"

	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type Responder struct{}

func NewResponder() *Responder {
	return &Responder{}
}

type responderListResponse struct {
	Responders []sagipero.User                        `json:"responders"`
	Types      []string                               `json:"types"`
	Stats      map[string]sagipero.ResponderTypeStats `json:"stats"`
}

// List returns responders, optionally only those qualified for a type,
// with per-type counts over all responders.
func (h *Responder) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	responders, err := sess.Client.ListUsers(r.Context(), sagipero.RoleResponder)
	if err != nil {
		fail(w, r, sess, "Failed to load responders", err)
		return
	}
	response.WriteJSON(w, http.StatusOK, responderListResponse{
		Responders: sagipero.RespondersFor(responders, r.URL.Query().Get("type")),
		Types:      sagipero.ResponderTypes,
		Stats:      sagipero.CountResponderTypes(responders),
	})
}

type responderTypesRequest struct {
	Types []string `json:"responderTypes" validate:"dive,oneof=FIRE MEDICAL POLICE RESCUE DISASTER_MANAGEMENT COMMUNITY_RESPONDER FLOOD EARTHQUAKE"`
}

func (h *Responder) SetTypes(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req responderTypesRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.Client.SetResponderTypes(r.Context(), id, req.Types); err != nil {
		fail(w, r, sess, "Failed to update responder types", err)
		return
	}
	done(sess, "Responder types updated")
	w.WriteHeader(http.StatusNoContent)
}

type responderStatusRequest struct {
	Current string `json:"current"`
}

// ToggleStatus moves a responder between AVAILABLE and ON_DUTY.
func (h *Responder) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req responderStatusRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	next := sagipero.ToggledResponderStatus(req.Current)
	if err := sess.Client.SetResponderStatus(r.Context(), id, next); err != nil {
		fail(w, r, sess, "Failed to update responder status", err)
		return
	}
	done(sess, "Responder status updated")
	response.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": next})
}

type responderAssignRequest struct {
	EmergencyID string `json:"emergencyId" validate:"required"`
}

func (h *Responder) Assign(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req responderAssignRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.Client.AssignResponder(r.Context(), req.EmergencyID, id); err != nil {
		fail(w, r, sess, "Failed to assign responder", err)
		return
	}
	done(sess, "Responder assigned to emergency")
	w.WriteHeader(http.StatusNoContent)
}
