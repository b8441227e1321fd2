package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/medfleet/api"
	apievents "github.com/kilianp07/medfleet/api/events"
	"github.com/kilianp07/medfleet/config"
	"github.com/kilianp07/medfleet/core/dispatch"
	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/fixtures"
	"github.com/kilianp07/medfleet/core/fleet"
	coremetrics "github.com/kilianp07/medfleet/core/metrics"
	coremon "github.com/kilianp07/medfleet/core/monitoring"
	"github.com/kilianp07/medfleet/core/notify"
	"github.com/kilianp07/medfleet/core/selection"
	"github.com/kilianp07/medfleet/core/simulator"
	"github.com/kilianp07/medfleet/infra/logger"
	"github.com/kilianp07/medfleet/infra/metrics"
	"github.com/kilianp07/medfleet/infra/monitoring"
	"github.com/kilianp07/medfleet/infra/mqtt"
	"github.com/kilianp07/medfleet/infra/telemetry"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

// Service owns the fleet store and every component operating on it.
type Service struct {
	Store       *fleet.Store
	Selection   *selection.Context
	Queue       *notify.Queue
	Coordinator *dispatch.Coordinator
	Simulator   *simulator.Simulator
	Fixtures    fixtures.Set
	Journal     logging.LogStore
	Hub         *apievents.Hub

	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	publisher *mqtt.PahoClient
	telemetry *telemetry.Manager
	monitor   coremon.Monitor
	log       logger.Logger
	closeOnce sync.Once
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	bus := eventbus.New()

	store, err := newStore(cfg.SeedFile, bus)
	if err != nil {
		return nil, err
	}
	set := fixtures.Default()
	if cfg.FixturesFile != "" {
		if set, err = fixtures.Load(cfg.FixturesFile); err != nil {
			return nil, err
		}
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry, "dispatch_coordinator")
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	sel := selection.New()
	queue := notify.NewQueue(cfg.Notifications, bus, sink)
	queue.SetLogger(logger.New("notify"))
	coord, err := dispatch.NewCoordinator(cfg.Dispatch, store, sel, queue, bus, logger.New("dispatch"), sink)
	if err != nil {
		queue.Close()
		return nil, fmt.Errorf("coordinator: %w", err)
	}
	coord.SetMonitor(monitor)

	journal, err := logging.NewStore(cfg.Logging)
	if err != nil {
		queue.Close()
		return nil, fmt.Errorf("action journal: %w", err)
	}
	coord.SetLogStore(journal)

	svc := &Service{
		Store:       store,
		Selection:   sel,
		Queue:       queue,
		Coordinator: coord,
		Simulator:   simulator.New(cfg.Simulator, store, logger.New("simulator"), sink),
		Fixtures:    set,
		Journal:     journal,
		Hub:         apievents.NewHub(bus, store, logger.New("events")),
		cfg:         cfg,
		bus:         bus,
		sink:        sink,
		monitor:     monitor,
		log:         logg,
	}

	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		pub.SetMonitor(monitor)
		coord.SetPublisher(pub)
		svc.publisher = pub
	}
	if cfg.Telemetry.Enabled {
		tm, err := telemetry.NewManager(cfg.MQTT, cfg.Telemetry, store)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		tm.SetLogStore(journal)
		svc.telemetry = tm
	}
	return svc, nil
}

func newStore(seedFile string, bus eventbus.EventBus) (*fleet.Store, error) {
	if seedFile == "" {
		return fleet.NewSeededStore(bus), nil
	}
	seed, err := fleet.LoadSeed(seedFile)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	store, err := fleet.NewStore(seed.Ambulances, seed.Hospitals, bus)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return store, nil
}

// APIDeps returns the components exposed over HTTP.
func (s *Service) APIDeps() api.Deps {
	return api.Deps{
		Store:         s.Store,
		Commands:      s.Coordinator,
		Selection:     s.Selection,
		Notifications: s.Queue,
		Fixtures:      s.Fixtures,
		Journal:       s.Journal,
		JournalToken:  s.cfg.API.LogToken,
		Events:        s.Hub,
	}
}

// Run starts the background tasks and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer s.monitor.Recover()
	s.Hub.Start(ctx)
	metrics.StartEventCollector(ctx, s.bus, s.sink, s.cfg.Metrics.SnapshotInterval(), logger.New("collector"))
	if s.cfg.Telemetry.Enabled && s.cfg.Telemetry.AcceptPositions {
		s.log.Infof("position simulator disabled: crew telemetry owns positions")
	} else {
		go s.Simulator.Run(ctx)
	}

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, logger.New("prometheus")); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.telemetry != nil {
		go s.telemetry.Start(ctx)
	}

	s.log.Infof("fleet service started with %d ambulances", len(s.Store.List().Ambulances))
	if s.cfg.API.Disabled {
		<-ctx.Done()
		return nil
	}
	readTimeout := time.Duration(s.cfg.API.ReadTimeoutSeconds) * time.Second
	return api.Serve(ctx, s.cfg.API.Addr, api.NewRouter(s.APIDeps()), readTimeout, logger.New("api"))
}

// Close waits for in-flight commands and releases resources held by the service.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.Coordinator.Close()
		s.Queue.Close()
		if s.publisher != nil {
			s.publisher.Disconnect()
		}
		if c, ok := s.sink.(interface{ Close() }); ok {
			c.Close()
		}
		s.monitor.Flush(2 * time.Second)
		s.bus.Close()
	})
	return err
}
