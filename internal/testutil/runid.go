package testutil

// FixedRunID generates the same run ID every time, keeping temp file
// names and reports deterministic for golden comparison.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator returning id. An empty id
// defaults to "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
// Implements interop.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
