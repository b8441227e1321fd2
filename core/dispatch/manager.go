package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/events"
	"github.com/kilianp07/medfleet/core/logger"
	"github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/core/monitoring"
	"github.com/kilianp07/medfleet/core/mqtt"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

const (
	MsgRequested      = "Ambulance requested successfully! ETA: 4-6 minutes"
	MsgDispatched     = "%s dispatched to location"
	MsgCancelled      = "%s dispatch cancelled"
	MsgEmergencyAlert = "Emergency alert sent to all available units!"
	MsgRouteOptimized = "Route optimized! Estimated time saved: %d%%"
	MsgCallingHosp    = "Calling %s..."
)

// Fleet is the part of the entity store used by the coordinator.
type Fleet interface {
	Ambulance(id string) (model.Ambulance, bool)
	Hospital(id string) (model.Hospital, bool)
	UpdateAmbulance(id string, p model.Patch) bool
}

// Selection exposes the currently targeted ambulance.
type Selection interface {
	Current() (string, bool)
}

// Notifier shows user-facing notifications.
type Notifier interface {
	Publish(kind model.NotificationKind, msg string) model.Notification
	PublishFor(kind model.NotificationKind, msg string, ttl time.Duration) model.Notification
}

// Coordinator runs fleet commands one at a time. Each command holds the
// action slot for the configured latency, then applies its effect and
// releases the slot whatever the outcome.
type Coordinator struct {
	cfg     Config
	fleet   Fleet
	sel     Selection
	notes   Notifier
	bus     eventbus.EventBus
	logger  logger.Logger
	metrics metrics.MetricsSink
	slot    Slot

	mu        sync.Mutex
	store     logging.LogStore
	publisher mqtt.OrderPublisher
	monitor   monitoring.Monitor
	closed    bool
	pending   sync.WaitGroup
}

// NewCoordinator creates a coordinator. bus, log and sink may be nil.
func NewCoordinator(cfg Config, fleet Fleet, sel Selection, notes Notifier, bus eventbus.EventBus, log logger.Logger, sink metrics.MetricsSink) (*Coordinator, error) {
	if fleet == nil || sel == nil || notes == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewCoordinator")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	if bus == nil {
		bus = eventbus.NopBus{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Coordinator{
		cfg:     cfg,
		fleet:   fleet,
		sel:     sel,
		notes:   notes,
		bus:     bus,
		logger:  logger.OrNop(log),
		metrics: sink,
		monitor: monitoring.NopMonitor{},
	}, nil
}

// SetLogStore configures the journal that receives completed commands.
func (c *Coordinator) SetLogStore(store logging.LogStore) {
	c.mu.Lock()
	c.store = store
	c.mu.Unlock()
}

// SetPublisher configures the backend receiving crew orders.
func (c *Coordinator) SetPublisher(p mqtt.OrderPublisher) {
	c.mu.Lock()
	c.publisher = p
	c.mu.Unlock()
}

// SetMonitor configures where failures after the latency phase are reported.
func (c *Coordinator) SetMonitor(m monitoring.Monitor) {
	c.mu.Lock()
	c.monitor = monitoring.OrNop(m)
	c.mu.Unlock()
}

// RequestAmbulance files a generic ambulance request.
func (c *Coordinator) RequestAmbulance() (string, error) {
	return c.submit(model.ActionRequest, "", false)
}

// Dispatch sends the selected ambulance to its incident. An empty id targets
// the current selection; a non-empty id must match it.
func (c *Coordinator) Dispatch(id string) (string, error) {
	return c.submit(model.ActionDispatch, id, true)
}

// CancelDispatch returns the selected ambulance to service.
func (c *Coordinator) CancelDispatch(id string) (string, error) {
	return c.submit(model.ActionCancel, id, true)
}

// SendEmergencyAlert broadcasts an alert to all available units.
func (c *Coordinator) SendEmergencyAlert() (string, error) {
	return c.submit(model.ActionAlert, "", false)
}

// OptimizeRoute runs route optimization.
func (c *Coordinator) OptimizeRoute() (string, error) {
	return c.submit(model.ActionRoute, "", false)
}

// Submit runs the command named by kind.
func (c *Coordinator) Submit(kind model.ActionKind, id string) (string, error) {
	switch kind {
	case model.ActionRequest:
		return c.RequestAmbulance()
	case model.ActionDispatch:
		return c.Dispatch(id)
	case model.ActionCancel:
		return c.CancelDispatch(id)
	case model.ActionAlert:
		return c.SendEmergencyAlert()
	case model.ActionRoute:
		return c.OptimizeRoute()
	case model.ActionCall:
		return c.CallHospital(id)
	default:
		return "", fmt.Errorf("dispatch: unknown action %q", kind)
	}
}

// CallHospital announces a call to the hospital. It does not use the action slot.
func (c *Coordinator) CallHospital(id string) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	c.pending.Add(1)
	c.mu.Unlock()
	defer c.pending.Done()

	started := time.Now()
	actionID := uuid.NewString()
	h, ok := c.fleet.Hospital(id)
	if !ok {
		err := &ActionFailed{Action: model.ActionCall, Target: id, Reason: ReasonTargetNotFound}
		c.finish(actionID, model.ActionCall, id, started, err)
		return "", err
	}
	c.notes.PublishFor(model.NotificationSuccess, fmt.Sprintf(MsgCallingHosp, h.Name), c.cfg.hospitalCall())
	c.finish(actionID, model.ActionCall, id, started, nil)
	return actionID, nil
}

// Busy reports the command holding the slot.
func (c *Coordinator) Busy() (model.ActionKind, bool) {
	return c.slot.Current()
}

// Wait blocks until every started command has completed.
func (c *Coordinator) Wait() {
	c.pending.Wait()
}

// Close refuses new commands, lets pending ones complete and closes the journal.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.pending.Wait()

	c.mu.Lock()
	store := c.store
	c.store = nil
	c.mu.Unlock()
	if store != nil {
		return store.Close()
	}
	return nil
}

func (c *Coordinator) submit(kind model.ActionKind, id string, targeted bool) (string, error) {
	if targeted {
		sel, ok := c.sel.Current()
		if !ok || (id != "" && id != sel) {
			return "", c.reject(&ActionRejected{Action: kind, Reason: ReasonNoSelection})
		}
		id = sel
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	inFlight, ok := c.slot.TryAcquire(kind)
	if !ok {
		c.mu.Unlock()
		return "", c.reject(&ActionRejected{Action: kind, Reason: ReasonSlotBusy, InFlight: inFlight})
	}
	c.pending.Add(1)
	slotBusy.Set(1)
	c.bus.Publish(events.SlotChanged{Busy: true, Action: kind})
	c.mu.Unlock()

	actionID := uuid.NewString()
	started := time.Now()
	c.logger.Debugw("action started", map[string]any{"action_id": actionID, "action": string(kind), "ambulance_id": id})

	time.AfterFunc(c.cfg.latency(), func() {
		defer c.pending.Done()
		c.complete(actionID, kind, id, started)
	})
	return actionID, nil
}

func (c *Coordinator) reject(err *ActionRejected) error {
	rejectionsTotal.WithLabelValues(string(err.Action), string(err.Reason)).Inc()
	if r, ok := c.metrics.(metrics.RejectionRecorder); ok {
		if mErr := r.RecordRejection(metrics.Rejection{Action: err.Action, Reason: string(err.Reason), Time: time.Now()}); mErr != nil {
			c.logger.Errorf("rejection metrics error: %v", mErr)
		}
	}
	c.logger.Debugf("%v", err)
	return err
}

// complete applies the command effect once the latency has elapsed.
func (c *Coordinator) complete(actionID string, kind model.ActionKind, id string, started time.Time) {
	var err error
	func() {
		defer c.release(kind)
		switch kind {
		case model.ActionRequest:
			c.notes.Publish(model.NotificationSuccess, MsgRequested)
		case model.ActionDispatch:
			err = c.transition(actionID, kind, id, model.StatusAvailable, model.StatusOnCall)
			if err == nil {
				c.notes.Publish(model.NotificationSuccess, fmt.Sprintf(MsgDispatched, id))
			}
		case model.ActionCancel:
			err = c.transition(actionID, kind, id, model.StatusOnCall, model.StatusAvailable)
			if err == nil {
				c.notes.Publish(model.NotificationInfo, fmt.Sprintf(MsgCancelled, id))
			}
		case model.ActionAlert:
			err = c.sendOrder(actionID, kind, "", MsgEmergencyAlert)
			if err == nil {
				c.notes.Publish(model.NotificationError, MsgEmergencyAlert)
			}
		case model.ActionRoute:
			c.notes.Publish(model.NotificationSuccess, fmt.Sprintf(MsgRouteOptimized, c.cfg.RouteSavingsPct))
		}
		if err != nil {
			c.notes.Publish(model.NotificationError, failureMessage(err))
		}
	}()
	c.finish(actionID, kind, id, started, err)
}

// transition checks the target, forwards the crew order and flips the status.
func (c *Coordinator) transition(actionID string, kind model.ActionKind, id string, from, to model.Status) error {
	amb, ok := c.fleet.Ambulance(id)
	if !ok {
		return &ActionFailed{Action: kind, Target: id, Reason: ReasonTargetNotFound}
	}
	if !c.cfg.PermissiveTransitions && amb.Status != from {
		return &InvalidTransition{Action: kind, AmbulanceID: id, From: amb.Status, To: to}
	}
	msg := fmt.Sprintf(MsgDispatched, id)
	if kind == model.ActionCancel {
		msg = fmt.Sprintf(MsgCancelled, id)
	}
	if err := c.sendOrder(actionID, kind, id, msg); err != nil {
		return err
	}
	if !c.fleet.UpdateAmbulance(id, model.StatusPatch(to)) {
		return &ActionFailed{Action: kind, Target: id, Reason: ReasonTargetNotFound}
	}
	return nil
}

func (c *Coordinator) sendOrder(actionID string, kind model.ActionKind, id, msg string) error {
	c.mu.Lock()
	pub := c.publisher
	c.mu.Unlock()
	if pub == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.OrderTimeout())
	defer cancel()
	order := mqtt.Order{CommandID: actionID, Action: kind, AmbulanceID: id, Message: msg, Time: time.Now()}
	if err := pub.PublishOrder(ctx, order); err != nil {
		ordersPublished.WithLabelValues("failed").Inc()
		return &ActionFailed{Action: kind, Target: id, Reason: ReasonBackendUnavailable, Err: err}
	}
	ordersPublished.WithLabelValues("success").Inc()
	return nil
}

// release frees the slot. The gauge and the event are updated under c.mu so
// that they cannot overtake the acquisition by the next command.
func (c *Coordinator) release(kind model.ActionKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slot.Release()
	slotBusy.Set(0)
	c.bus.Publish(events.SlotChanged{Busy: false, Action: kind})
}

// finish records the outcome in metrics, the journal and the event bus.
func (c *Coordinator) finish(actionID string, kind model.ActionKind, id string, started time.Time, err error) {
	finished := time.Now()
	ev := events.ActionCompleted{ID: actionID, Action: kind, AmbulanceID: id, Started: started, Finished: finished, Err: err}
	outcome := ev.Outcome()
	latency := finished.Sub(started)

	actionLatency.WithLabelValues(string(kind)).Observe(latency.Seconds())
	actionsTotal.WithLabelValues(string(kind), outcome).Inc()
	if mErr := c.metrics.RecordActionResult(metrics.ActionResult{
		ID:          actionID,
		Action:      kind,
		AmbulanceID: id,
		Outcome:     outcome,
		Reason:      reasonOf(err),
		Latency:     latency,
		Time:        finished,
	}); mErr != nil {
		c.logger.Errorf("action metrics error: %v", mErr)
	}

	c.mu.Lock()
	store := c.store
	mon := c.monitor
	c.mu.Unlock()
	if store != nil {
		rec := logging.LogRecord{
			Timestamp:   finished,
			ActionID:    actionID,
			Action:      kind,
			AmbulanceID: id,
			Outcome:     outcome,
			LatencyMS:   latency.Milliseconds(),
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if lErr := store.Append(context.Background(), rec); lErr != nil {
			c.logger.Errorf("action journal error: %v", lErr)
		}
	}

	if err != nil {
		c.logger.Warnf("action %s failed: %v", kind, err)
		mon.CaptureException(err, map[string]string{
			"module":       "dispatch_coordinator",
			"action":       string(kind),
			"ambulance_id": id,
			"reason":       reasonOf(err),
		})
	} else {
		c.logger.Infof("action %s completed in %s", kind, latency)
	}
	c.bus.Publish(ev)
}

// failureMessage turns a command error into notification text.
func failureMessage(err error) string {
	var inv *InvalidTransition
	if errors.As(err, &inv) {
		return fmt.Sprintf("%s is already %s", inv.AmbulanceID, inv.From)
	}
	var fail *ActionFailed
	if errors.As(err, &fail) {
		switch fail.Reason {
		case ReasonTargetNotFound:
			return fmt.Sprintf("%s not found", fail.Target)
		case ReasonBackendUnavailable:
			return "Dispatch backend unavailable, please retry"
		}
	}
	return "Action failed: " + err.Error()
}
