package dispatch

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	coredispatch "github.com/kilianp07/medfleet/core/dispatch"
	"github.com/kilianp07/medfleet/core/model"
)

var errBadLimit = errors.New("limit must be a non-negative integer")

// Commander starts coordinator commands.
type Commander interface {
	Submit(kind model.ActionKind, id string) (string, error)
	CallHospital(id string) (string, error)
}

type actionRequest struct {
	AmbulanceID string `json:"ambulance_id"`
}

type actionResponse struct {
	ActionID string `json:"action_id"`
	Action   string `json:"action"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// NewActionHandler serves POST /api/actions/{kind}.
// Dispatch and cancel accept an optional {"ambulance_id"} body that must match the selection.
func NewActionHandler(cmd Commander) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		kind, ok := model.ParseActionKind(r.PathValue("kind"))
		if !ok || kind == model.ActionCall {
			http.NotFound(w, r)
			return
		}
		var body actionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
			return
		}
		id, err := cmd.Submit(kind, body.AmbulanceID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, actionResponse{ActionID: id, Action: string(kind)})
	})
}

// NewHospitalCallHandler serves POST /api/hospitals/{id}/call.
func NewHospitalCallHandler(cmd Commander) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id, err := cmd.CallHospital(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, actionResponse{ActionID: id, Action: string(model.ActionCall)})
	})
}

// statusFor maps coordinator errors to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, coredispatch.ErrSlotBusy):
		return http.StatusConflict, string(coredispatch.ReasonSlotBusy)
	case errors.Is(err, coredispatch.ErrNoSelection):
		return http.StatusPreconditionFailed, string(coredispatch.ReasonNoSelection)
	case errors.Is(err, coredispatch.ErrTargetNotFound):
		return http.StatusNotFound, string(coredispatch.ReasonTargetNotFound)
	case errors.Is(err, coredispatch.ErrClosed):
		return http.StatusServiceUnavailable, "closed"
	default:
		return http.StatusInternalServerError, ""
	}
}

func writeError(w http.ResponseWriter, err error) {
	code, reason := statusFor(err)
	writeJSON(w, code, errorResponse{Error: err.Error(), Reason: reason})
}
