package handler

import (
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sagipero/admin-console/internal/bus"
	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type Inventory struct{}

func NewInventory() *Inventory {
	return &Inventory{}
}

type inventoryListResponse struct {
	Items      []sagipero.InventoryItem `json:"items"`
	Responders []sagipero.User          `json:"responders"`
}

// List fetches inventory with the server-side part of the filter applied by
// the backend and the rest applied here.
func (h *Inventory) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := sagipero.InventoryFilter{
		ResponderID:  q.Get("responderId"),
		Availability: q.Get("availability"),
		Unit:         q.Get("unit"),
		Search:       q.Get("search"),
	}

	var (
		items      []sagipero.InventoryItem
		responders []sagipero.User
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		items, err = sess.Client.ListInventory(ctx, filter.Query())
		if err != nil {
			sess.Toasts.Error("Failed to load inventory", sagipero.UserMessage(err))
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

	response.WriteJSON(w, http.StatusOK, inventoryListResponse{
		Items:      filter.Apply(items, responders),
		Responders: responders,
	})
}

type inventoryRequest struct {
	ResponderID string `json:"responderId"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	Unit        string `json:"unit"`
	Notes       string `json:"notes"`
	Available   *bool  `json:"available"`
}

func (req inventoryRequest) item() sagipero.InventoryItem {
	it := sagipero.InventoryItem{
		ResponderID: req.ResponderID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         req.SKU,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Notes:       req.Notes,
		Available:   true,
	}
	if req.Available != nil {
		it.Available = *req.Available
	}
	return it
}

func (h *Inventory) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req inventoryRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	item := req.item()
	if item.Name == "" {
		badRequest(w, sess, "Invalid item", "Name required")
		return
	}
	created, err := sess.Client.CreateInventoryItem(r.Context(), item)
	if err != nil {
		fail(w, r, sess, "Failed to create inventory", err)
		return
	}
	done(sess, "Item created")
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *Inventory) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req inventoryRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	item := req.item()
	item.ID = id
	updated, err := sess.Client.UpdateInventoryItem(r.Context(), item)
	if err != nil {
		fail(w, r, sess, "Failed to save", err)
		return
	}
	done(sess, "Updated")
	response.WriteJSON(w, http.StatusOK, updated)
}

type availableRequest struct {
	Available bool `json:"available"`
}

func (h *Inventory) SetAvailable(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req availableRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.Client.SetInventoryAvailable(r.Context(), id, req.Available); err != nil {
		fail(w, r, sess, "Failed to update availability", err)
		return
	}
	if req.Available {
		done(sess, "Marked available")
	} else {
		done(sess, "Marked unavailable")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Inventory) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	if !confirmed(w, r, sess, bus.Prompt{Title: "Delete item", Message: "Delete this inventory item?", ConfirmText: "Delete"}) {
		return
	}
	if err := sess.Client.DeleteInventoryItem(r.Context(), id); err != nil {
		fail(w, r, sess, "Failed to delete", err)
		return
	}
	done(sess, "Deleted")
	response.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
