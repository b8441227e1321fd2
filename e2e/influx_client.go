package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient wraps the InfluxDB v2 client for reading back what the
// service wrote during a run.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for a running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		org:    org,
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// Query runs a Flux query. The caller closes the result.
func (c *InfluxClient) Query(ctx context.Context, flux string) (*api.QueryTableResult, error) {
	return c.query.Query(ctx, flux)
}

// CountActionResults returns the number of action_result points recorded
// for action with the given outcome over the last hour.
func (c *InfluxClient) CountActionResults(ctx context.Context, action, outcome string) (int, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: -1h)
  |> filter(fn: (r) => r._measurement == "action_result" and r.action == %q and r.outcome == %q)`,
		c.bucket, action, outcome)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	seen := make(map[string]struct{})
	for res.Next() {
		rec := res.Record()
		seen[rec.Time().String()] = struct{}{}
	}
	if err := res.Err(); err != nil {
		return 0, err
	}
	return len(seen), nil
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
