package fixture

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// Write creates path and populates it with every catalog entity using
// the native HDF5 binding. The file is truncated if it exists.
func Write(path string, cat *Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}

	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := writeIntegers(f, cat); err != nil {
		return err
	}
	if err := writeMatrix(f, cat); err != nil {
		return err
	}
	if err := writeStrings(f, cat); err != nil {
		return err
	}
	return nil
}

// writeIntegers writes the 1-D int64 dataset and attaches the scalar
// text attribute to it.
func writeIntegers(f *hdf5.File, cat *Catalog) error {
	dspace, err := hdf5.CreateSimpleDataspace([]uint{uint(len(cat.Integers))}, nil)
	if err != nil {
		return fmt.Errorf("%s: dataspace: %w", IntegersName, err)
	}
	defer dspace.Close()

	dset, err := f.CreateDataset(IntegersName, hdf5.T_NATIVE_INT64, dspace)
	if err != nil {
		return fmt.Errorf("%s: create: %w", IntegersName, err)
	}
	defer dset.Close()

	vals := cat.Integers
	if err := dset.Write(&vals); err != nil {
		return fmt.Errorf("%s: write: %w", IntegersName, err)
	}

	aspace, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return fmt.Errorf("%s: attribute dataspace: %w", AttrName, err)
	}
	defer aspace.Close()

	attr, err := dset.CreateAttribute(AttrName, hdf5.T_GO_STRING, aspace)
	if err != nil {
		return fmt.Errorf("%s: create: %w", AttrName, err)
	}
	defer attr.Close()

	val := cat.Attr
	if err := attr.Write(&val, hdf5.T_GO_STRING); err != nil {
		return fmt.Errorf("%s: write: %w", AttrName, err)
	}
	return nil
}

// writeMatrix writes the 2-D float64 dataset in row-major order.
func writeMatrix(f *hdf5.File, cat *Catalog) error {
	dims := []uint{uint(cat.Matrix.Rows), uint(cat.Matrix.Cols)}
	dspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("%s: dataspace: %w", MatrixName, err)
	}
	defer dspace.Close()

	dset, err := f.CreateDataset(MatrixName, hdf5.T_NATIVE_DOUBLE, dspace)
	if err != nil {
		return fmt.Errorf("%s: create: %w", MatrixName, err)
	}
	defer dset.Close()

	vals := cat.Matrix.Values
	if err := dset.Write(&vals); err != nil {
		return fmt.Errorf("%s: write: %w", MatrixName, err)
	}
	return nil
}

// writeStrings writes the variable-length text dataset.
func writeStrings(f *hdf5.File, cat *Catalog) error {
	dspace, err := hdf5.CreateSimpleDataspace([]uint{uint(len(cat.Strings))}, nil)
	if err != nil {
		return fmt.Errorf("%s: dataspace: %w", StringsName, err)
	}
	defer dspace.Close()

	dset, err := f.CreateDataset(StringsName, hdf5.T_GO_STRING, dspace)
	if err != nil {
		return fmt.Errorf("%s: create: %w", StringsName, err)
	}
	defer dset.Close()

	vals := cat.Strings
	if err := dset.Write(&vals); err != nil {
		return fmt.Errorf("%s: write: %w", StringsName, err)
	}
	return nil
}
