package fleet

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/medfleet/core/model"
)

// Summary aggregates the fleet figures shown in the stats bar.
type Summary struct {
	Total                 int     `json:"total"`
	Available             int     `json:"available"`
	OnCall                int     `json:"on_call"`
	Hospitals             int     `json:"hospitals"`
	AvgResponseMinutes    float64 `json:"avg_response_minutes"`
	StdDevResponseMinutes float64 `json:"stddev_response_minutes"`
}

// Summarize computes a Summary for the snapshot.
func Summarize(s model.Snapshot) Summary {
	sum := Summary{Total: len(s.Ambulances), Hospitals: len(s.Hospitals)}
	if len(s.Ambulances) == 0 {
		return sum
	}
	rt := make([]float64, len(s.Ambulances))
	for i, a := range s.Ambulances {
		rt[i] = a.ResponseTimeMinutes
		switch a.Status {
		case model.StatusAvailable:
			sum.Available++
		case model.StatusOnCall:
			sum.OnCall++
		}
	}
	if len(rt) == 1 {
		sum.AvgResponseMinutes = rt[0]
		return sum
	}
	sum.AvgResponseMinutes, sum.StdDevResponseMinutes = stat.MeanStdDev(rt, nil)
	return sum
}

// Summary returns the summary of the current snapshot.
func (s *Store) Summary() Summary { return Summarize(s.List()) }
