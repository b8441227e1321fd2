package simulator

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kilianp07/medfleet/core/logger"
	"github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/core/model"
)

// Fleet is the subset of the entity store used by the simulator.
type Fleet interface {
	UpdateAll(fn func(model.Ambulance) model.Patch)
}

// Simulator perturbs ambulance positions and response times on a fixed period.
type Simulator struct {
	cfg   Config
	fleet Fleet
	log   logger.Logger
	sink  metrics.SimulationTickRecorder

	mu    sync.Mutex
	rng   *rand.Rand
	ticks uint64
}

// New creates a simulator. A zero seed uses the current time.
func New(cfg Config, fleet Fleet, log logger.Logger, sink metrics.MetricsSink) *Simulator {
	cfg.SetDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulator{
		cfg:   cfg,
		fleet: fleet,
		log:   logger.OrNop(log),
		rng:   rand.New(rand.NewSource(seed)),
	}
	if r, ok := sink.(metrics.SimulationTickRecorder); ok {
		s.sink = r
	}
	return s
}

// Run ticks until ctx is canceled. The ticker is released on return.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval())
	defer ticker.Stop()
	s.log.Infof("position simulator started, interval %s", s.cfg.Interval())
	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-ctx.Done():
			s.log.Infof("position simulator stopped after %d ticks", s.Ticks())
			return
		}
	}
}

// Tick applies one random-walk step to every ambulance.
func (s *Simulator) Tick() {
	start := time.Now()
	n := 0
	s.mu.Lock()
	s.fleet.UpdateAll(func(a model.Ambulance) model.Patch {
		n++
		pos := s.cfg.Bounds.Clamp(model.Position{
			Lat: a.Position.Lat + s.uniform(s.cfg.PositionJitterDeg),
			Lng: a.Position.Lng + s.uniform(s.cfg.PositionJitterDeg),
		})
		rt := math.Max(s.cfg.MinResponseMinutes, a.ResponseTimeMinutes+s.uniform(s.cfg.ResponseJitterMin))
		return model.Patch{Position: &pos, ResponseTimeMinutes: &rt}
	})
	s.ticks++
	s.mu.Unlock()
	if s.sink != nil {
		if err := s.sink.RecordSimulationTick(metrics.SimulationTick{Ambulances: n, Duration: time.Since(start), Time: start}); err != nil {
			s.log.Errorf("simulation metrics error: %v", err)
		}
	}
	s.log.Debugw("simulation tick", map[string]any{"ambulances": n})
}

// Ticks returns the number of completed ticks.
func (s *Simulator) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// uniform samples from [-eps, +eps]. Callers hold s.mu.
func (s *Simulator) uniform(eps float64) float64 {
	return (s.rng.Float64()*2 - 1) * eps
}
