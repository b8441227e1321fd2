package dispatch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredispatch "github.com/kilianp07/medfleet/core/dispatch"
	"github.com/kilianp07/medfleet/core/fleet"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/core/notify"
	"github.com/kilianp07/medfleet/core/selection"
	"github.com/kilianp07/medfleet/infra/logger"
)

type env struct {
	coord *coredispatch.Coordinator
	store *fleet.Store
	sel   *selection.Context
	queue *notify.Queue
	mux   *http.ServeMux
}

func newEnv(t *testing.T) env {
	t.Helper()
	store := fleet.NewSeededStore(nil)
	sel := selection.New()
	q := notify.NewQueue(notify.Config{}, nil, nil)
	t.Cleanup(q.Close)
	c, err := coredispatch.NewCoordinator(coredispatch.Config{LatencyMS: 50}, store, sel, q, nil, logger.NopLogger{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	mux := http.NewServeMux()
	mux.Handle("/api/actions/{kind}", NewActionHandler(c))
	mux.Handle("/api/hospitals/{id}/call", NewHospitalCallHandler(c))
	mux.Handle("/api/selection", NewSelectionHandler(sel, store))
	mux.Handle("/api/notification", NewNotificationHandler(q))
	return env{coord: c, store: store, sel: sel, queue: q, mux: mux}
}

func (e env) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func TestActionHandler_StatusCodes(t *testing.T) {
	e := newEnv(t)

	rr := e.do("POST", "/api/actions/dispatch", "")
	assert.Equal(t, http.StatusPreconditionFailed, rr.Code)
	var er errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &er))
	assert.Equal(t, "no_selection", er.Reason)

	rr = e.do("PUT", "/api/selection", `{"ambulance_id":"AMB-001"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = e.do("POST", "/api/actions/dispatch", `{"ambulance_id":"AMB-001"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	var ar actionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ar))
	assert.NotEmpty(t, ar.ActionID)
	assert.Equal(t, "dispatch", ar.Action)

	rr = e.do("POST", "/api/actions/alert", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	e.coord.Wait()
	a, ok := e.store.Ambulance("AMB-001")
	require.True(t, ok)
	assert.Equal(t, model.StatusOnCall, a.Status)

	rr = e.do("POST", "/api/actions/teleport", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = e.do("POST", "/api/actions/request", "{")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do("GET", "/api/actions/request", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestActionHandler_Closed(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.coord.Close())
	rr := e.do("POST", "/api/actions/request", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHospitalCallHandler(t *testing.T) {
	e := newEnv(t)
	rr := e.do("POST", "/api/hospitals/HOSP-001/call", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	n, ok := e.queue.Current()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(n.Message, "Calling "))

	rr = e.do("POST", "/api/hospitals/HOSP-999/call", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSelectionHandler(t *testing.T) {
	e := newEnv(t)

	rr := e.do("GET", "/api/selection", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var sr selectionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sr))
	assert.False(t, sr.Selected)

	assert.Equal(t, http.StatusNotFound, e.do("PUT", "/api/selection", `{"ambulance_id":"AMB-999"}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do("PUT", "/api/selection", `{}`).Code)

	rr = e.do("PUT", "/api/selection", `{"ambulance_id":"AMB-001"}`)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sr))
	assert.Equal(t, selectionResponse{AmbulanceID: "AMB-001", Selected: true}, sr)

	rr = e.do("DELETE", "/api/selection", "")
	require.Equal(t, http.StatusOK, rr.Code)
	_, ok := e.sel.Current()
	assert.False(t, ok)
}

func TestNotificationHandler(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusNoContent, e.do("GET", "/api/notification", "").Code)

	e.queue.Publish(model.NotificationInfo, "hello")
	rr := e.do("GET", "/api/notification", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var n model.Notification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &n))
	assert.Equal(t, "hello", n.Message)

	assert.Equal(t, http.StatusNoContent, e.do("DELETE", "/api/notification", "").Code)
	_, ok := e.queue.Current()
	assert.False(t, ok)
}
