package handler

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sagipero/admin-console/internal/console/api/middleware"
	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/emergency"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type Emergency struct {
	loc *time.Location
	now func() time.Time
}

func NewEmergency(loc *time.Location) *Emergency {
	return &Emergency{loc: loc, now: time.Now}
}

func (h *Emergency) clock() time.Time {
	return h.now().In(h.loc)
}

type dashboardResponse struct {
	Summary           emergency.Summary           `json:"summary"`
	Emergencies       []emergency.Record          `json:"emergencies"`
	Barangays         []string                    `json:"barangays"`
	Responders        []sagipero.User             `json:"responders"`
	EvacuationCenters []sagipero.EvacuationCenter `json:"evacuationCenters"`
}

// Dashboard loads emergencies, users and evacuation centers concurrently
// and returns the summary cards with the filtered list.
func (h *Emergency) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var (
		records []emergency.Record
		users   []sagipero.User
		centers []sagipero.EvacuationCenter
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		records, err = sess.Client.ListEmergencies(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = sess.Client.ListUsers(ctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		centers, err = sess.Client.ListEvacuationCenters(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		failLoad(w, r, sess, err)
		return
	}

	states := make([]emergency.ResponderState, len(users))
	responders := []sagipero.User{}
	for i, u := range users {
		states[i] = emergency.ResponderState{Role: u.Role, Status: u.ResponderStatus, Barangay: u.Barangay}
		if u.Role == sagipero.RoleResponder {
			responders = append(responders, u)
		}
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := emergency.DashboardFilter{
		Priority: q.Get("priority"),
		Status:   q.Get("status"),
		Barangay: q.Get("barangay"),
	}

	response.WriteJSON(w, http.StatusOK, dashboardResponse{
		Summary:           emergency.Summarize(records, states),
		Emergencies:       filter.Apply(records, limit),
		Barangays:         emergency.Barangays(states),
		Responders:        responders,
		EvacuationCenters: centers,
	})
}

type historyResponse struct {
	Total       int                    `json:"total"`
	Matched     int                    `json:"matched"`
	Buckets     []emergency.Bucket     `json:"buckets"`
	DateOptions []emergency.DateOption `json:"dateOptions"`
	Types       []string               `json:"types"`
	Priorities  []string               `json:"priorities"`
}

// History returns the grouped emergency history for the given filter.
func (h *Emergency) History(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	records, err := sess.Client.ListEmergencyHistory(r.Context())
	if err != nil {
		failLoad(w, r, sess, err)
		return
	}

	q := r.URL.Query()
	f := emergency.Filter{
		Date:     q.Get("date"),
		Status:   q.Get("status"),
		Type:     q.Get("type"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
	}
	now := h.clock()
	buckets := emergency.Group(records, f, now)
	matched := 0
	for _, b := range buckets {
		matched += len(b.Rows)
	}

	response.WriteJSON(w, http.StatusOK, historyResponse{
		Total:       len(records),
		Matched:     matched,
		Buckets:     buckets,
		DateOptions: emergency.DateOptions(records, now),
		Types:       emergency.UniqueTypes(records),
		Priorities:  emergency.UniquePriorities(records),
	})
}

type timelineEntry struct {
	emergency.HistoryEvent
	Text   string                `json:"text"`
	Detail emergency.EventDetail `json:"detail"`
}

type responseTimesView struct {
	emergency.ResponseTimes
	ToAcceptText string `json:"to_accept"`
	ToArriveText string `json:"accept_to_arrive"`
	TotalText    string `json:"total"`
}

type timelineResponse struct {
	ID            string            `json:"id"`
	Events        []timelineEntry   `json:"events"`
	ResponseTimes responseTimesView `json:"responseTimes"`
}

// Timeline returns one emergency's events with rendered details and the
// measured response times.
func (h *Emergency) Timeline(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}

	events, err := sess.Client.GetEmergencyHistory(r.Context(), id)
	if err != nil {
		failLoad(w, r, sess, err)
		return
	}

	entries := make([]timelineEntry, len(events))
	for i, ev := range events {
		entries[i] = timelineEntry{
			HistoryEvent: ev,
			Text:         emergency.DescribeEvent(ev.EventType, ev.Payload),
			Detail:       emergency.DescribeDetail(ev.EventType, ev.Payload, h.loc),
		}
	}
	rt := emergency.ComputeResponseTimes(events)

	response.WriteJSON(w, http.StatusOK, timelineResponse{
		ID:     id,
		Events: entries,
		ResponseTimes: responseTimesView{
			ResponseTimes: rt,
			ToAcceptText:  emergency.FormatSeconds(rt.ToAccept),
			ToArriveText:  emergency.FormatSeconds(rt.ToArrive),
			TotalText:     emergency.FormatSeconds(rt.Total),
		},
	})
}

type assignOptionsResponse struct {
	Responders []sagipero.User    `json:"responders"`
	Vehicles   []sagipero.Vehicle `json:"vehicles"`
}

// AssignOptions lists responders qualified for an emergency type and, when
// a responder is chosen, that responder's active vehicles.
func (h *Emergency) AssignOptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	responderID := q.Get("responderId")

	var (
		responders []sagipero.User
		vehicles   []sagipero.Vehicle
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		responders, err = sess.Client.ListUsers(ctx, sagipero.RoleResponder)
		return err
	})
	if responderID != "" {
		g.Go(func() error {
			var err error
			vehicles, err = sess.Client.ListVehicles(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		failLoad(w, r, sess, err)
		return
	}

	resp := assignOptionsResponse{
		Responders: sagipero.RespondersFor(responders, q.Get("type")),
		Vehicles:   []sagipero.Vehicle{},
	}
	if responderID != "" {
		resp.Vehicles = sagipero.AvailableVehicles(vehicles, responderID)
	}
	response.WriteJSON(w, http.StatusOK, resp)
}

type assignRequest struct {
	ResponderID string   `json:"responderId" validate:"required"`
	VehicleIDs  []string `json:"vehicleIds" validate:"dive,required"`
}

// Assign dispatches a responder and marks the chosen vehicles inactive.
func (h *Emergency) Assign(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := sess.Client.AssignEmergency(r.Context(), id, req.ResponderID); err != nil {
		fail(w, r, sess, "Failed to assign", err)
		return
	}
	for _, vid := range req.VehicleIDs {
		middleware.ExtendWrite(w, r)
		if err := sess.Client.SetVehicleActive(r.Context(), vid, false); err != nil {
			fail(w, r, sess, "Failed to assign", err)
			return
		}
	}

	done(sess, "Assigned and vehicles dispatched")
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"emergencyId": id,
		"responderId": req.ResponderID,
		"vehicleIds":  req.VehicleIDs,
	})
}

// Fraud lists emergencies flagged as possible fraud.
func (h *Emergency) Fraud(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	records, err := sess.Client.ListFraudFlagged(r.Context())
	if err != nil {
		fail(w, r, sess, "Failed to load fraud list", err)
		return
	}
	response.WriteJSON(w, http.StatusOK, records)
}

func (h *Emergency) UnmarkFraud(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := requireID(w, r, "id")
	if !ok {
		return
	}
	if err := sess.Client.UnmarkFraud(r.Context(), id); err != nil {
		fail(w, r, sess, "Failed to unmark", err)
		return
	}
	done(sess, "Unmarked fraud")
	w.WriteHeader(http.StatusNoContent)
}
