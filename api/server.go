// Package api assembles the HTTP surface of the fleet service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	apidispatch "github.com/kilianp07/medfleet/api/dispatch"
	apievents "github.com/kilianp07/medfleet/api/events"
	"github.com/kilianp07/medfleet/api/vehicles"
	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/fixtures"
	"github.com/kilianp07/medfleet/core/logger"
	"github.com/kilianp07/medfleet/core/model"
)

// SessionChecker reports whether the request belongs to an active operator session.
type SessionChecker interface {
	Active(r *http.Request) bool
}

// SessionFunc adapts a function to SessionChecker.
type SessionFunc func(r *http.Request) bool

func (f SessionFunc) Active(r *http.Request) bool { return f(r) }

// AlwaysActive treats every request as authenticated.
var AlwaysActive SessionChecker = SessionFunc(func(*http.Request) bool { return true })

// Store is the fleet view needed by the handlers.
type Store interface {
	List() model.Snapshot
	Ambulance(id string) (model.Ambulance, bool)
}

// Deps groups the components served over HTTP.
type Deps struct {
	Store         Store
	Commands      apidispatch.Commander
	Selection     apidispatch.Selector
	Notifications apidispatch.Notifications
	Fixtures      fixtures.Set
	Journal       logging.LogStore
	JournalToken  string
	Events        *apievents.Hub
	Sessions      SessionChecker
}

// NewRouter registers every route on a fresh ServeMux.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/fleet", vehicles.NewFleetHandler(d.Store))
	mux.Handle("/api/hospitals", vehicles.NewHospitalsHandler(d.Store))
	mux.Handle("/api/hospitals/{id}/call", apidispatch.NewHospitalCallHandler(d.Commands))
	mux.Handle("/api/actions/log", apidispatch.NewLogHandler(orNopStore(d.Journal), d.JournalToken))
	mux.Handle("/api/actions/{kind}", apidispatch.NewActionHandler(d.Commands))
	mux.Handle("/api/selection", apidispatch.NewSelectionHandler(d.Selection, d.Store))
	mux.Handle("/api/notification", apidispatch.NewNotificationHandler(d.Notifications))
	mux.Handle("/api/routes", vehicles.NewRoutesHandler(d.Fixtures))
	mux.Handle("/api/predictions", vehicles.NewPredictionsHandler(d.Fixtures))
	mux.Handle("/api/dashboard", vehicles.NewDashboardHandler(d.Fixtures, d.Store))
	if d.Events != nil {
		mux.Handle("/api/events", d.Events)
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return RequireSession(d.Sessions, mux)
}

// RequireSession answers 401 to /api requests without an active session.
func RequireSession(sc SessionChecker, next http.Handler) http.Handler {
	if sc == nil {
		sc = AlwaysActive
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" && !sc.Active(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func orNopStore(s logging.LogStore) logging.LogStore {
	if s == nil {
		return logging.NopStore{}
	}
	return s
}

// Serve runs an HTTP server on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler, readTimeout time.Duration, log logger.Logger) error {
	log = logger.OrNop(log)
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: readTimeout, ReadTimeout: readTimeout}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("api listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
