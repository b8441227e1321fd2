package dispatch

import (
	"net/http"

	"github.com/kilianp07/medfleet/core/model"
)

// Notifications exposes the operator notification queue.
type Notifications interface {
	Current() (model.Notification, bool)
	Dismiss()
}

// NewNotificationHandler serves GET and DELETE on /api/notification.
// GET answers 204 when nothing is displayed.
func NewNotificationHandler(q Notifications) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			n, ok := q.Current()
			if !ok {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			writeJSON(w, http.StatusOK, n)
		case http.MethodDelete:
			q.Dismiss()
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
