package dispatch

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/medfleet/core/model"
)

// Selector is the operator selection context.
type Selector interface {
	Select(id string)
	Clear()
	Current() (string, bool)
}

// AmbulanceLookup resolves ambulance ids.
type AmbulanceLookup interface {
	Ambulance(id string) (model.Ambulance, bool)
}

type selectionResponse struct {
	AmbulanceID string `json:"ambulance_id"`
	Selected    bool   `json:"selected"`
}

// NewSelectionHandler serves GET, PUT and DELETE on /api/selection.
// PUT refuses ids unknown to the fleet when lookup is non-nil.
func NewSelectionHandler(sel Selector, lookup AmbulanceLookup) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
		case http.MethodPut:
			var body actionRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
				return
			}
			if body.AmbulanceID == "" {
				http.Error(w, "ambulance_id is required", http.StatusBadRequest)
				return
			}
			if lookup != nil {
				if _, ok := lookup.Ambulance(body.AmbulanceID); !ok {
					http.Error(w, "unknown ambulance", http.StatusNotFound)
					return
				}
			}
			sel.Select(body.AmbulanceID)
		case http.MethodDelete:
			sel.Clear()
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id, ok := sel.Current()
		writeJSON(w, http.StatusOK, selectionResponse{AmbulanceID: id, Selected: ok})
	})
}
