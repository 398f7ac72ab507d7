package interop

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative description of one orchestration run.
// Scenarios select directions and catalogs; the wire contract and
// entity set are fixed and not configurable here.
type Scenario struct {
	// Name identifies the scenario in reports and golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Directions restricts which round trips run, in order.
	// Empty means both.
	Directions []string `yaml:"directions,omitempty"`

	// Tolerance is the absolute float comparison tolerance.
	// Zero means fixture.DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// LocalCatalog and PeerCatalog name entries in the catalog set.
	// Empty means "local" and "peer".
	LocalCatalog string `yaml:"local_catalog,omitempty"`
	PeerCatalog  string `yaml:"peer_catalog,omitempty"`

	// KeepFiles retains temp files after each direction.
	KeepFiles bool `yaml:"keep_files,omitempty"`
}

// DefaultScenario is the full bidirectional round trip.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:        "default",
		Description: "bidirectional round trip with the default catalogs",
	}
}

// LoadScenario reads and validates a YAML scenario file.
// Unknown fields are rejected to catch typos in hand-written files.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scenario's structural constraints.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	for _, d := range s.Directions {
		if d != DirectionLocalToPeer && d != DirectionPeerToLocal {
			return fmt.Errorf("unknown direction %q (valid: %s, %s)",
				d, DirectionLocalToPeer, DirectionPeerToLocal)
		}
	}
	if s.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative")
	}
	return nil
}
