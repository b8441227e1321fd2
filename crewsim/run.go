package crewsim

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/medfleet/core/logger"
	coremqtt "github.com/kilianp07/medfleet/core/mqtt"
)

// client is the subset of paho.Client used by the simulator.
type client interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newClient = func(opts *paho.ClientOptions) client { return paho.NewClient(opts) }

// Simulator drives a set of crews over one MQTT connection.
type Simulator struct {
	cfg   Config
	crews map[string]*Crew
	log   logger.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	cli      client
	wg       sync.WaitGroup
	stopping bool
}

// New creates a simulator for crews.
func New(cfg Config, crews []*Crew, log logger.Logger) (*Simulator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulator{
		cfg:   cfg,
		crews: make(map[string]*Crew, len(crews)),
		log:   logger.OrNop(log),
		rng:   rand.New(rand.NewSource(seed)),
	}
	for _, c := range crews {
		s.crews[c.ID] = c
	}
	return s, nil
}

// Run connects to the broker, follows orders and reports periodically until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	opts := paho.NewClientOptions().AddBroker(s.cfg.Broker).SetClientID("crewsim-" + uuid.NewString())
	cli := newClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect: %w", token.Error())
	}
	s.cli = cli
	defer cli.Disconnect(250)

	topic := s.cfg.OrderPrefix + "/ambulance/+/order"
	if token := cli.Subscribe(topic, 1, s.onOrder(ctx)); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	s.log.Infof("simulating %d crews, orders on %s", len(s.crews), topic)

	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.stopping = true
			s.mu.Unlock()
			s.wg.Wait()
			return nil
		case <-t.C:
			s.tick()
		}
	}
}

func (s *Simulator) tick() {
	for _, c := range s.crews {
		s.mu.Lock()
		c.Step(s.rng, s.cfg.JitterDeg)
		s.mu.Unlock()
		s.publish(c.PositionReport())
	}
}

func (s *Simulator) onOrder(ctx context.Context) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		var o coremqtt.Order
		if err := json.Unmarshal(msg.Payload(), &o); err != nil {
			s.log.Warnf("decode order on %s: %v", msg.Topic(), err)
			return
		}
		if o.AmbulanceID == "" {
			o.AmbulanceID = idFromTopic(msg.Topic())
		}
		c, ok := s.crews[o.AmbulanceID]
		if !ok {
			return
		}
		if s.drop() {
			s.log.Debugf("%s: dropping order %s", c.ID, o.CommandID)
			return
		}
		if !c.HandleOrder(o) {
			return
		}
		s.mu.Lock()
		if s.stopping {
			s.mu.Unlock()
			return
		}
		s.wg.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.wg.Done()
			if s.cfg.ReportLatency > 0 {
				select {
				case <-time.After(s.cfg.ReportLatency):
				case <-ctx.Done():
					return
				}
			}
			s.publish(c.Ack(o))
		}()
	}
}

func (s *Simulator) drop() bool {
	if s.cfg.DropRate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.cfg.DropRate
}

func (s *Simulator) publish(r Report) {
	payload, err := json.Marshal(r)
	if err != nil {
		s.log.Errorf("encode report: %v", err)
		return
	}
	topic := strings.TrimSuffix(s.cfg.StatePrefix, "/") + "/" + r.AmbulanceID
	token := s.cli.Publish(topic, 0, false, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		s.log.Warnf("%s: publish report: %v", r.AmbulanceID, token.Error())
	}
}

// idFromTopic extracts <id> from <prefix>/ambulance/<id>/order.
func idFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return ""
}
