// Package export writes fleet snapshots and action journals as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/model"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates s.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAmbulancesCSV writes one row per ambulance.
func WriteAmbulancesCSV(w io.Writer, as []model.Ambulance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "status", "zone", "lat", "lng", "response_minutes", "driver", "vehicle_type"}); err != nil {
		return err
	}
	for _, a := range as {
		rec := []string{
			a.ID,
			a.Status.String(),
			a.Zone,
			strconv.FormatFloat(a.Position.Lat, 'f', -1, 64),
			strconv.FormatFloat(a.Position.Lng, 'f', -1, 64),
			strconv.FormatFloat(a.ResponseTimeMinutes, 'f', -1, 64),
			a.Driver,
			a.VehicleType,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteActionsCSV writes the journal records with an RFC3339 timestamp column.
func WriteActionsCSV(w io.Writer, recs []logging.LogRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "action_id", "action", "ambulance_id", "outcome", "latency_ms", "error"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.ActionID,
			string(r.Action),
			r.AmbulanceID,
			r.Outcome,
			strconv.FormatInt(r.LatencyMS, 10),
			r.Error,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
