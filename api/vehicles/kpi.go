package vehicles

import (
	"net/http"

	"github.com/kilianp07/medfleet/core/fixtures"
	"github.com/kilianp07/medfleet/core/fleet"
)

type dashboardResponse struct {
	fixtures.Dashboard
	Live fleet.Summary `json:"live"`
}

type routesResponse struct {
	Routes              []fixtures.Route `json:"routes"`
	TotalSavingsMinutes int              `json:"total_savings_minutes"`
}

type predictionsResponse struct {
	Predictions []fixtures.Prediction `json:"predictions"`
	Hotspots    []fixtures.Hotspot    `json:"hotspots"`
	Alerts      []fixtures.Alert      `json:"alerts"`
}

// NewDashboardHandler exposes the dashboard figures via GET /api/dashboard,
// alongside the live fleet summary.
func NewDashboardHandler(set fixtures.Set, store FleetReader) http.Handler {
	return getOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, dashboardResponse{Dashboard: set.Dashboard, Live: fleet.Summarize(store.List())})
	})
}

// NewRoutesHandler exposes the route optimizer data via GET /api/routes.
func NewRoutesHandler(set fixtures.Set) http.Handler {
	return getOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, routesResponse{Routes: set.Routes, TotalSavingsMinutes: set.TotalSavingsMinutes()})
	})
}

// NewPredictionsHandler exposes demand predictions via GET /api/predictions.
func NewPredictionsHandler(set fixtures.Set) http.Handler {
	return getOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, predictionsResponse{Predictions: set.Predictions, Hotspots: set.Hotspots, Alerts: set.Alerts})
	})
}

func getOnly(fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	})
}
