// Package fixture defines the interop test fixture: a small set of
// typed entities with literal expected values, written by one
// implementation and verified by the other.
//
// The entity set is fixed by the wire contract; the literal values
// come from a catalog. Two catalogs exist: "local" (what this
// implementation writes) and "peer" (what the peer implementation is
// expected to write). Catalogs are defined in CUE and compiled with
// full validation, so the contract values live in one declarative
// place instead of being scattered through writer and verifier code.
package fixture

import (
	_ "embed"
	"fmt"
	"sync"
)

// Entity names, unique within a file. These are the wire contract and
// must match the peer implementation exactly. The scalar text
// attribute is attached to the integers dataset: the Go binding
// exposes attribute operations on datasets rather than the root group.
const (
	AttrName     = "test_attr"
	IntegersName = "integers"
	MatrixName   = "matrix"
	StringsName  = "strings"
)

// DefaultTolerance is the absolute tolerance for float comparison.
const DefaultTolerance = 1e-6

// Matrix is a dense 2-D float64 array in row-major order.
type Matrix struct {
	Rows   int
	Cols   int
	Values []float64 // len == Rows*Cols
}

// At returns the element at (row, col).
func (m Matrix) At(row, col int) float64 {
	return m.Values[row*m.Cols+col]
}

// Catalog holds the literal values for every fixture entity.
// Constructed fresh from CUE per run, never mutated after.
type Catalog struct {
	Name     string
	Attr     string // scalar text attribute value
	Integers []int64
	Matrix   Matrix
	Strings  []string
}

// Validate checks structural invariants the CUE schema cannot express
// on its own after decoding.
func (c *Catalog) Validate() error {
	if c.Attr == "" {
		return fmt.Errorf("catalog %q: attr value is empty", c.Name)
	}
	if len(c.Integers) == 0 {
		return fmt.Errorf("catalog %q: integers dataset is empty", c.Name)
	}
	if c.Matrix.Rows <= 0 || c.Matrix.Cols <= 0 {
		return fmt.Errorf("catalog %q: matrix has no extent", c.Name)
	}
	if len(c.Matrix.Values) != c.Matrix.Rows*c.Matrix.Cols {
		return fmt.Errorf("catalog %q: matrix has %d values, want %d",
			c.Name, len(c.Matrix.Values), c.Matrix.Rows*c.Matrix.Cols)
	}
	if len(c.Strings) == 0 {
		return fmt.Errorf("catalog %q: strings dataset is empty", c.Name)
	}
	return nil
}

// Catalog names in the default catalog set.
const (
	CatalogLocal = "local"
	CatalogPeer  = "peer"
)

//go:embed catalogs.cue
var defaultCatalogsCUE []byte

var defaults = sync.OnceValues(func() (map[string]*Catalog, error) {
	return LoadCatalogs(defaultCatalogsCUE)
})

// Defaults returns the embedded catalog set.
func Defaults() (map[string]*Catalog, error) {
	return defaults()
}

// Local returns the embedded local catalog. The embedded CUE is part
// of the build, so a compile failure here is a programming error.
func Local() *Catalog {
	cats, err := Defaults()
	if err != nil {
		panic(fmt.Sprintf("embedded catalogs: %v", err))
	}
	return cats[CatalogLocal]
}

// Peer returns the embedded peer catalog.
func Peer() *Catalog {
	cats, err := Defaults()
	if err != nil {
		panic(fmt.Sprintf("embedded catalogs: %v", err))
	}
	return cats[CatalogPeer]
}
