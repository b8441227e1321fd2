package vehicles

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/medfleet/core/fleet"
	"github.com/kilianp07/medfleet/core/model"
)

// FleetReader is the read side of the entity store.
type FleetReader interface {
	List() model.Snapshot
}

type fleetResponse struct {
	Ambulances []model.Ambulance `json:"ambulances"`
	Hospitals  []model.Hospital  `json:"hospitals"`
	Summary    fleet.Summary     `json:"summary"`
}

// NewFleetHandler returns an HTTP handler exposing the fleet via GET /api/fleet.
// The optional zone and status query parameters narrow the ambulance list;
// the summary always covers the whole fleet.
func NewFleetHandler(store FleetReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f := fleet.Filter{Zone: r.URL.Query().Get("zone")}
		if s := r.URL.Query().Get("status"); s != "" {
			st, err := model.ParseStatus(s)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.Status = &st
		}
		snap := store.List()
		out := fleetResponse{
			Ambulances: f.Apply(snap.Ambulances),
			Hospitals:  snap.Hospitals,
			Summary:    fleet.Summarize(snap),
		}
		writeJSON(w, out)
	})
}

// NewHospitalsHandler exposes hospital reference data via GET /api/hospitals.
func NewHospitalsHandler(store FleetReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, store.List().Hospitals)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
