package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredispatch "github.com/kilianp07/medfleet/core/dispatch"
	"github.com/kilianp07/medfleet/core/fixtures"
	"github.com/kilianp07/medfleet/core/fleet"
	"github.com/kilianp07/medfleet/core/notify"
	"github.com/kilianp07/medfleet/core/selection"
	"github.com/kilianp07/medfleet/infra/logger"
)

func newRouter(t *testing.T, sc SessionChecker) http.Handler {
	t.Helper()
	store := fleet.NewSeededStore(nil)
	sel := selection.New()
	q := notify.NewQueue(notify.Config{}, nil, nil)
	t.Cleanup(q.Close)
	c, err := coredispatch.NewCoordinator(coredispatch.Config{LatencyMS: 20}, store, sel, q, nil, logger.NopLogger{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewRouter(Deps{
		Store:         store,
		Commands:      c,
		Selection:     sel,
		Notifications: q,
		Fixtures:      fixtures.Default(),
		Sessions:      sc,
	})
}

func TestRouterRoutes(t *testing.T) {
	h := newRouter(t, nil)
	cases := []struct {
		method, target string
		code           int
	}{
		{"GET", "/api/fleet", http.StatusOK},
		{"GET", "/api/hospitals", http.StatusOK},
		{"GET", "/api/routes", http.StatusOK},
		{"GET", "/api/predictions", http.StatusOK},
		{"GET", "/api/dashboard", http.StatusOK},
		{"GET", "/api/actions/log", http.StatusOK},
		{"GET", "/api/selection", http.StatusOK},
		{"GET", "/api/notification", http.StatusNoContent},
		{"POST", "/api/actions/cancel", http.StatusPreconditionFailed},
		{"POST", "/api/actions/request", http.StatusAccepted},
		{"POST", "/api/hospitals/HOSP-002/call", http.StatusAccepted},
		{"GET", "/healthz", http.StatusNoContent},
		{"GET", "/api/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.target, strings.NewReader("")))
		assert.Equal(t, tc.code, rr.Code, "%s %s", tc.method, tc.target)
	}
}

func TestRouterSessionGate(t *testing.T) {
	h := newRouter(t, SessionFunc(func(r *http.Request) bool {
		return r.Header.Get("X-Session") == "ok"
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/fleet", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/actions/request", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest("GET", "/api/fleet", nil)
	req.Header.Set("X-Session", "ok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
