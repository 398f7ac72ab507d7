package fixture

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/hdf5"
)

// VerificationError reports a value mismatch for one entity.
type VerificationError struct {
	Entity   string
	Expected any
	Actual   any
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: expected %v, got %v", e.Entity, e.Expected, e.Actual)
}

// Verify opens path read-only and checks every catalog entity.
// Integers and strings are compared exactly (strings after NFC
// normalization, since implementations may differ in how they encode
// non-ASCII text), floats within the given absolute tolerance.
//
// Checking is fail-fast per entity but not per file: the first
// mismatch inside an entity stops that entity's comparison, yet all
// entities are always examined, so the returned error can name every
// failing entity.
func Verify(path string, cat *Catalog, tol float64) error {
	if err := cat.Validate(); err != nil {
		return err
	}

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return errors.Join(
		verifyIntegers(f, cat),
		verifyMatrix(f, cat, tol),
		verifyStrings(f, cat),
	)
}

// verifyIntegers checks the int64 dataset and its text attribute.
func verifyIntegers(f *hdf5.File, cat *Catalog) error {
	dset, err := f.OpenDataset(IntegersName)
	if err != nil {
		return fmt.Errorf("%s: open: %w", IntegersName, err)
	}
	defer dset.Close()

	n, err := extentLen(dset)
	if err != nil {
		return fmt.Errorf("%s: extent: %w", IntegersName, err)
	}
	if n != len(cat.Integers) {
		return &VerificationError{Entity: IntegersName, Expected: len(cat.Integers), Actual: n}
	}

	got := make([]int64, n)
	if err := dset.Read(&got); err != nil {
		return fmt.Errorf("%s: read: %w", IntegersName, err)
	}
	for i, want := range cat.Integers {
		if got[i] != want {
			return &VerificationError{Entity: IntegersName, Expected: want, Actual: got[i]}
		}
	}

	attr, err := dset.OpenAttribute(AttrName)
	if err != nil {
		return fmt.Errorf("%s: open: %w", AttrName, err)
	}
	defer attr.Close()

	var gotAttr string
	if err := attr.Read(&gotAttr, hdf5.T_GO_STRING); err != nil {
		return fmt.Errorf("%s: read: %w", AttrName, err)
	}
	if norm.NFC.String(gotAttr) != norm.NFC.String(cat.Attr) {
		return &VerificationError{Entity: AttrName, Expected: cat.Attr, Actual: gotAttr}
	}
	return nil
}

func verifyMatrix(f *hdf5.File, cat *Catalog, tol float64) error {
	dset, err := f.OpenDataset(MatrixName)
	if err != nil {
		return fmt.Errorf("%s: open: %w", MatrixName, err)
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return fmt.Errorf("%s: extent: %w", MatrixName, err)
	}
	want := []uint{uint(cat.Matrix.Rows), uint(cat.Matrix.Cols)}
	if len(dims) != 2 || dims[0] != want[0] || dims[1] != want[1] {
		return &VerificationError{Entity: MatrixName, Expected: want, Actual: dims}
	}

	got := make([]float64, cat.Matrix.Rows*cat.Matrix.Cols)
	if err := dset.Read(&got); err != nil {
		return fmt.Errorf("%s: read: %w", MatrixName, err)
	}
	for i, want := range cat.Matrix.Values {
		if math.Abs(got[i]-want) > tol {
			return &VerificationError{
				Entity:   fmt.Sprintf("%s[%d,%d]", MatrixName, i/cat.Matrix.Cols, i%cat.Matrix.Cols),
				Expected: want,
				Actual:   got[i],
			}
		}
	}
	return nil
}

func verifyStrings(f *hdf5.File, cat *Catalog) error {
	dset, err := f.OpenDataset(StringsName)
	if err != nil {
		return fmt.Errorf("%s: open: %w", StringsName, err)
	}
	defer dset.Close()

	n, err := extentLen(dset)
	if err != nil {
		return fmt.Errorf("%s: extent: %w", StringsName, err)
	}
	if n != len(cat.Strings) {
		return &VerificationError{Entity: StringsName, Expected: len(cat.Strings), Actual: n}
	}

	got := make([]string, n)
	if err := dset.Read(&got); err != nil {
		return fmt.Errorf("%s: read: %w", StringsName, err)
	}
	for i, want := range cat.Strings {
		if norm.NFC.String(got[i]) != norm.NFC.String(want) {
			return &VerificationError{Entity: StringsName, Expected: want, Actual: got[i]}
		}
	}
	return nil
}

// extentLen returns the length of a 1-D dataset.
func extentLen(dset *hdf5.Dataset) (int, error) {
	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return 0, err
	}
	if len(dims) != 1 {
		return 0, fmt.Errorf("rank %d, want 1", len(dims))
	}
	return int(dims[0]), nil
}
