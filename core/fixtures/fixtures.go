// Package fixtures provides the static reference data shown next to the live
// fleet: optimized routes, demand predictions, hotspots and dashboard figures.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultData []byte

type Route struct {
	ID               string  `yaml:"id" json:"id"`
	AmbulanceID      string  `yaml:"ambulance_id" json:"ambulance_id"`
	From             string  `yaml:"from" json:"from"`
	To               string  `yaml:"to" json:"to"`
	DistanceKM       float64 `yaml:"distance_km" json:"distance_km"`
	EstimatedMinutes int     `yaml:"estimated_minutes" json:"estimated_minutes"`
	OptimizedMinutes int     `yaml:"optimized_minutes" json:"optimized_minutes"`
	Traffic          string  `yaml:"traffic" json:"traffic"`
	Status           string  `yaml:"status" json:"status"`
}

// SavingsMinutes is the time gained by the optimized route.
func (r Route) SavingsMinutes() int { return r.EstimatedMinutes - r.OptimizedMinutes }

type Prediction struct {
	Hour       int     `yaml:"hour" json:"hour"`
	Predicted  int     `yaml:"predicted" json:"predicted"`
	Actual     int     `yaml:"actual" json:"actual"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
}

type Hotspot struct {
	Zone      string  `yaml:"zone" json:"zone"`
	Lat       float64 `yaml:"lat" json:"lat"`
	Lng       float64 `yaml:"lng" json:"lng"`
	Incidents int     `yaml:"incidents" json:"incidents"`
	Severity  string  `yaml:"severity" json:"severity"`
}

type Alert struct {
	ID         int    `yaml:"id" json:"id"`
	Type       string `yaml:"type" json:"type"`
	Zone       string `yaml:"zone" json:"zone"`
	MinutesAgo int    `yaml:"minutes_ago" json:"minutes_ago"`
	Severity   string `yaml:"severity" json:"severity"`
}

type KPIs struct {
	ActiveAmbulances   int     `yaml:"active_ambulances" json:"active_ambulances"`
	AvgResponseMinutes float64 `yaml:"avg_response_minutes" json:"avg_response_minutes"`
	PendingCalls       int     `yaml:"pending_calls" json:"pending_calls"`
	SuccessRatePct     float64 `yaml:"success_rate_pct" json:"success_rate_pct"`
}

type DemandPoint struct {
	Time      string `yaml:"time" json:"time"`
	Demand    int    `yaml:"demand" json:"demand"`
	Available int    `yaml:"available" json:"available"`
}

type ZoneResponse struct {
	Zone    string  `yaml:"zone" json:"zone"`
	Minutes float64 `yaml:"minutes" json:"minutes"`
}

type StatusCount struct {
	Name  string `yaml:"name" json:"name"`
	Value int    `yaml:"value" json:"value"`
}

type Dashboard struct {
	KPIs            KPIs           `yaml:"kpis" json:"kpis"`
	Demand          []DemandPoint  `yaml:"demand" json:"demand"`
	ZoneResponse    []ZoneResponse `yaml:"zone_response" json:"zone_response"`
	StatusBreakdown []StatusCount  `yaml:"status_breakdown" json:"status_breakdown"`
}

// Set groups all reference data.
type Set struct {
	Routes      []Route      `yaml:"routes" json:"routes"`
	Predictions []Prediction `yaml:"predictions" json:"predictions"`
	Hotspots    []Hotspot    `yaml:"hotspots" json:"hotspots"`
	Alerts      []Alert      `yaml:"alerts" json:"alerts"`
	Dashboard   Dashboard    `yaml:"dashboard" json:"dashboard"`
}

// Default returns the built-in data set.
func Default() Set {
	s, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("fixtures: embedded data: %v", err))
	}
	return s
}

// Load reads a data set from a YAML file.
func Load(path string) (Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML data set.
func Parse(b []byte) (Set, error) {
	var s Set
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Set{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return s, nil
}

// TotalSavingsMinutes sums the savings across all routes.
func (s Set) TotalSavingsMinutes() int {
	total := 0
	for _, r := range s.Routes {
		total += r.SavingsMinutes()
	}
	return total
}
