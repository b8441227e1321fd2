package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step is one operator interaction. Exactly one of Select, Clear, Action,
// Call, Wait, Dismiss or Expect is expected per step.
type Step struct {
	Select  string  `yaml:"select,omitempty"`
	Clear   bool    `yaml:"clear,omitempty"`
	Action  string  `yaml:"action,omitempty"`
	Target  string  `yaml:"target,omitempty"`
	Call    string  `yaml:"call,omitempty"`
	Reject  string  `yaml:"reject,omitempty"`
	Wait    bool    `yaml:"wait,omitempty"`
	Dismiss bool    `yaml:"dismiss,omitempty"`
	Expect  *Expect `yaml:"expect,omitempty"`
}

// Expect checks the observable state after the previous steps.
type Expect struct {
	Status       map[string]string `yaml:"status,omitempty"`
	Notification *string           `yaml:"notification,omitempty"`
	Kind         string            `yaml:"kind,omitempty"`
	Busy         *bool             `yaml:"busy,omitempty"`
}

// Expected holds the totals checked once every step ran.
type Expected struct {
	Rejections int `yaml:"rejections"`
	Failures   int `yaml:"failures"`
	Orders     int `yaml:"orders"`
}

// Scenario is a scripted operator session against the seeded fleet.
type Scenario struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description,omitempty"`
	LatencyMS      int      `yaml:"latency_ms,omitempty"`
	Permissive     bool     `yaml:"permissive,omitempty"`
	FailAmbulances []string `yaml:"fail_ambulances,omitempty"`
	Steps          []Step   `yaml:"steps"`
	Expected       Expected `yaml:"expected"`
}

// ops counts the interactions set on the step.
func (s Step) ops() int {
	n := 0
	for _, set := range []bool{s.Select != "", s.Clear, s.Action != "", s.Call != "", s.Wait, s.Dismiss, s.Expect != nil} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks that the scenario is named and every step does one thing.
func (sc Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%s: no steps", sc.Name)
	}
	for i, st := range sc.Steps {
		if n := st.ops(); n != 1 {
			return fmt.Errorf("%s: step %d has %d interactions", sc.Name, i+1, n)
		}
		if st.Reject != "" && st.Action == "" && st.Call == "" {
			return fmt.Errorf("%s: step %d: reject without a command", sc.Name, i+1)
		}
	}
	return nil
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}
