package interop

import (
	"time"

	"github.com/google/uuid"
)

// Direction names. "local" is this implementation (the Go binding);
// "peer" is the independently built executable under test.
const (
	DirectionLocalToPeer = "go-to-peer" // local writes, peer reads
	DirectionPeerToLocal = "peer-to-go" // peer writes, local verifies
)

// Directions lists both round-trip directions in execution order.
var Directions = []string{DirectionLocalToPeer, DirectionPeerToLocal}

// Result is the outcome of one round-trip direction.
type Result struct {
	Direction string `json:"direction"`
	Passed    bool   `json:"passed"`

	// Detail explains a failure: the mismatched value, the peer's
	// exit code, or the setup problem. Empty on pass.
	Detail string `json:"detail,omitempty"`

	// Output is the peer subprocess's captured stdout and stderr,
	// kept verbatim for the report.
	Output string `json:"output,omitempty"`
}

// Summary aggregates one full orchestration.
type Summary struct {
	RunID    string    `json:"run_id"`
	Library  string    `json:"library"`
	Peer     string    `json:"peer"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Results  []Result  `json:"results"`
}

// AllPassed reports whether every attempted direction passed.
func (s *Summary) AllPassed() bool {
	if len(s.Results) == 0 {
		return false
	}
	for _, r := range s.Results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// RunIDGenerator produces an identifier for one orchestration run.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered RFC 4122 run IDs.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
