package handler

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/sagipero/admin-console/internal/console/api/request"
	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/emergency"
	"github.com/sagipero/admin-console/internal/mapview"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type Map struct{}

func NewMap() *Map {
	return &Map{}
}

// Markers returns emergencies and evacuation centers as GeoJSON.
func (h *Map) Markers(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var (
		records []emergency.Record
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
		centers, err = sess.Client.ListEvacuationCenters(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		failLoad(w, r, sess, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, mapview.Collection(mapview.Markers(records, centers)))
}

func (h *Map) ListCenters(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	centers, err := sess.Client.ListEvacuationCenters(r.Context())
	if err != nil {
		failLoad(w, r, sess, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, centers)
}

type createCenterRequest struct {
	Lat  float64 `json:"lat" validate:"required,latitude"`
	Lng  float64 `json:"lng" validate:"required,longitude"`
	Name string  `json:"name"`
}

// CreateCenter adds an evacuation center at a clicked map point.
func (h *Map) CreateCenter(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req createCenterRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := sess.Client.CreateEvacuationCenter(r.Context(), mapview.NewEvacCenter(req.Lat, req.Lng, req.Name))
	if err != nil {
		fail(w, r, sess, "Failed to create evac center", err)
		return
	}
	done(sess, "Evacuation center created")
	response.WriteJSON(w, http.StatusCreated, created)
}
