package handler

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type Vehicle struct{}

func NewVehicle() *Vehicle {
	return &Vehicle{}
}

type vehicleListResponse struct {
	Vehicles   []sagipero.Vehicle  `json:"vehicles"`
	Stats      sagipero.FleetStats `json:"stats"`
	Responders []sagipero.User     `json:"responders"`
	Models     []string            `json:"models"`
}

// List returns the fleet filtered by responder, model, status and search.
func (h *Vehicle) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var (
		vehicles   []sagipero.Vehicle
		responders []sagipero.User
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		vehicles, err = sess.Client.ListVehicles(ctx)
		if err != nil {
			sess.Toasts.Error("Failed to load vehicles", sagipero.UserMessage(err))
		}
		return err
	})
	g.Go(func() error {
		var err error
		responders, err = sess.Client.ListUsers(ctx, sagipero.RoleResponder)
		if err != nil {
			sess.Toasts.Error("Failed to load responders", sagipero.UserMessage(err))
		}
		return err
	})
	if err := g.Wait(); err != nil {
		failLoad(w, r, sess, err)
		return
	}

	q := r.URL.Query()
	filter := sagipero.VehicleFilter{
		ResponderID: q.Get("responderId"),
		Model:       q.Get("model"),
		Status:      q.Get("status"),
		Search:      q.Get("search"),
	}
	response.WriteJSON(w, http.StatusOK, vehicleListResponse{
		Vehicles:   filter.Apply(vehicles, responders),
		Stats:      sagipero.CountFleet(vehicles),
		Responders: responders,
		Models:     sagipero.VehicleTypes,
	})
}

type vehicleRequest struct {
	ResponderID string `json:"responderId" validate:"required"`
	PlateNumber string `json:"plateNumber" validate:"required"`
	Model       string `json:"model"`
	Color       string `json:"color"`
	Active      *bool  `json:"active"`
}

func (req vehicleRequest) vehicle() sagipero.Vehicle {
	v := sagipero.Vehicle{
		ResponderID: req.ResponderID,
		PlateNumber: req.PlateNumber,
		Model:       req.Model,
		Color:       req.Color,
		Active:      true,
	}
	if req.Active != nil {
		v.Active = *req.Active
	}
	return v
}

func (h *Vehicle) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req vehicleRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := sess.Client.CreateVehicle(r.Context(), req.vehicle())
	if err != nil {
		fail(w, r, sess, "Failed to save vehicle", err)
		return
	}
	done(sess, "Vehicle created")
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *Vehicle) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req vehicleRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	v := req.vehicle()
	v.ID = id
	updated, err := sess.Client.UpdateVehicle(r.Context(), v)
	if err != nil {
		fail(w, r, sess, "Failed to save vehicle", err)
		return
	}
	done(sess, "Vehicle updated")
	response.WriteJSON(w, http.StatusOK, updated)
}

type activeRequest struct {
	Active bool `json:"active"`
}

func (h *Vehicle) SetActive(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req activeRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.Client.SetVehicleActive(r.Context(), id, req.Active); err != nil {
		fail(w, r, sess, "Failed to save vehicle", err)
		return
	}
	done(sess, "Vehicle updated")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Vehicle) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	if !confirmed(w, r, sess, bus.Prompt{Title: "Delete vehicle", Message: "Delete vehicle?", ConfirmText: "Delete"}) {
		return
	}
	if err := sess.Client.DeleteVehicle(r.Context(), id); err != nil {
		fail(w, r, sess, "Failed to delete", err)
		return
	}
	done(sess, "Deleted")
	response.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
