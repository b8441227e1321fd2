package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/medfleet/app"
	"github.com/kilianp07/medfleet/config"
	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/factory"
	"github.com/kilianp07/medfleet/core/model"
	coremqtt "github.com/kilianp07/medfleet/core/mqtt"
	"github.com/kilianp07/medfleet/crewsim"
	"github.com/kilianp07/medfleet/test/util"
)

// junitReport is a minimal JUnit XML report so CI can display results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

// writeJUnit writes rep to E2E_REPORT_DIR when the variable is set.
func writeJUnit(t *testing.T, started time.Time) {
	dir := os.Getenv("E2E_REPORT_DIR")
	if dir == "" {
		return
	}
	tc := junitTestCase{Name: t.Name(), Time: time.Since(started).Seconds()}
	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{tc}}
	if t.Failed() {
		msg := "failed"
		tc.Failure = &msg
		rep.Failures = 1
		rep.Cases[0] = tc
	}
	f, err := os.Create(filepath.Join(dir, "e2e.xml"))
	if err != nil {
		t.Logf("write junit: %v", err)
		return
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func subscribeOrders(t *testing.T, broker string) <-chan coremqtt.Order {
	t.Helper()
	orders := make(chan coremqtt.Order, 16)
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-orders"))
	tok := cli.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	t.Cleanup(func() { cli.Disconnect(250) })
	sub := cli.Subscribe("medfleet/ambulance/+/order", 1, func(_ paho.Client, m paho.Message) {
		var o coremqtt.Order
		if err := json.Unmarshal(m.Payload(), &o); err == nil {
			orders <- o
		}
	})
	require.True(t, sub.WaitTimeout(5*time.Second))
	require.NoError(t, sub.Error())
	return orders
}

func publishReport(t *testing.T, broker, id string, body map[string]any) {
	t.Helper()
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-crew"))
	tok := cli.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer cli.Disconnect(250)
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	pub := cli.Publish("medfleet/ambulance/state/"+id, 1, false, payload)
	require.True(t, pub.WaitTimeout(5*time.Second))
	require.NoError(t, pub.Error())
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// Test_E2E_DispatchFlow runs the whole service against real Mosquitto and
// InfluxDB containers: an operator dispatch goes out as a crew order, the
// simulated crew reports back over telemetry and the outcome lands in Influx.
func Test_E2E_DispatchFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	started := time.Now()
	defer writeJUnit(t, started)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	broker, stopMQTT, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	defer stopMQTT()
	inf, stopInflux, err := util.StartInflux(ctx)
	if err != nil {
		t.Skipf("unable to start influx: %v", err)
	}
	defer stopInflux()

	cfg := config.Default()
	cfg.MQTT.Broker = broker
	cfg.Telemetry.Enabled = true
	cfg.Dispatch.LatencyMS = 50
	cfg.API.Addr = freeAddr(t)
	cfg.Logging = logging.Config{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "actions.log")}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": inf.URL, "token": inf.Token, "org": inf.Org, "bucket": inf.Bucket},
	}}

	orders := subscribeOrders(t, broker)

	svc, err := app.New(&cfg)
	require.NoError(t, err)
	defer svc.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- svc.Run(runCtx) }()

	a1, ok := svc.Store.Ambulance("AMB-001")
	require.True(t, ok)
	crews, err := crewsim.New(crewsim.Config{Broker: broker, Interval: 200 * time.Millisecond, Seed: 1},
		crewsim.FromAmbulances([]model.Ambulance{a1}), nil)
	require.NoError(t, err)
	go func() { _ = crews.Run(runCtx) }()

	base := "http://" + cfg.API.Addr
	require.NoError(t, util.WaitForHTTP(ctx, base+"/healthz"))

	resp := doJSON(t, http.MethodPut, base+"/api/selection", map[string]string{"ambulance_id": "AMB-001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, base+"/api/actions/dispatch", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case o := <-orders:
		assert.Equal(t, model.ActionDispatch, o.Action)
		assert.Equal(t, "AMB-001", o.AmbulanceID)
	case <-time.After(10 * time.Second):
		t.Fatal("no crew order received")
	}

	require.Eventually(t, func() bool {
		a, _ := svc.Store.Ambulance("AMB-001")
		return a.Status == model.StatusOnCall
	}, 10*time.Second, 50*time.Millisecond)

	// A crew outside the simulator reports itself free again.
	publishReport(t, broker, "AMB-004", map[string]any{"status": "available"})
	require.Eventually(t, func() bool {
		a, _ := svc.Store.Ambulance("AMB-004")
		return a.Status == model.StatusAvailable
	}, 10*time.Second, 50*time.Millisecond)

	cli := NewInfluxClient(inf.URL, inf.Org, inf.Bucket, inf.Token)
	defer cli.Close()
	require.Eventually(t, func() bool {
		n, err := cli.CountActionResults(ctx, string(model.ActionDispatch), "success")
		return err == nil && n >= 1
	}, 30*time.Second, 500*time.Millisecond)

	stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not stop")
	}
}
