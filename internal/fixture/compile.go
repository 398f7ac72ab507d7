package fixture

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a catalog definition problem with its CUE
// source position when available.
type CompileError struct {
	Catalog string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	loc := ""
	if e.Pos.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Catalog != "" {
		return fmt.Sprintf("%scatalog %q: %s: %s", loc, e.Catalog, e.Field, e.Message)
	}
	return fmt.Sprintf("%s%s: %s", loc, e.Field, e.Message)
}

// LoadCatalogFile reads and compiles a CUE catalog file from disk.
func LoadCatalogFile(path string) (map[string]*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return LoadCatalogs(src)
}

// LoadCatalogs compiles CUE source into a named catalog set. The
// source must define a top-level "catalog" struct whose members each
// describe one full fixture.
func LoadCatalogs(src []byte) (map[string]*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename("catalogs.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath("catalog"))
	if !root.Exists() {
		return nil, &CompileError{Field: "catalog", Message: "top-level catalog struct is required", Pos: v.Pos()}
	}

	it, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	cats := make(map[string]*Catalog)
	for it.Next() {
		name := it.Selector().Unquoted()
		cat, err := CompileCatalog(name, it.Value())
		if err != nil {
			return nil, err
		}
		cats[name] = cat
	}
	if len(cats) == 0 {
		return nil, &CompileError{Field: "catalog", Message: "at least one catalog is required", Pos: root.Pos()}
	}
	return cats, nil
}

// CompileCatalog parses one CUE catalog value into a Catalog.
func CompileCatalog(name string, v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	cat := &Catalog{Name: name}

	attrVal := v.LookupPath(cue.ParsePath("attr"))
	if !attrVal.Exists() {
		return nil, &CompileError{Catalog: name, Field: "attr", Message: "attr is required", Pos: v.Pos()}
	}
	attr, err := attrVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	cat.Attr = attr

	cat.Integers, err = parseIntegers(name, v.LookupPath(cue.ParsePath("integers")))
	if err != nil {
		return nil, err
	}

	cat.Matrix, err = parseMatrix(name, v.LookupPath(cue.ParsePath("matrix")))
	if err != nil {
		return nil, err
	}

	cat.Strings, err = parseStrings(name, v.LookupPath(cue.ParsePath("strings")))
	if err != nil {
		return nil, err
	}

	if err := cat.Validate(); err != nil {
		return nil, &CompileError{Catalog: name, Field: "catalog", Message: err.Error(), Pos: v.Pos()}
	}
	return cat, nil
}

func parseIntegers(catalog string, v cue.Value) ([]int64, error) {
	if !v.Exists() {
		return nil, &CompileError{Catalog: catalog, Field: "integers", Message: "integers is required", Pos: v.Pos()}
	}
	it, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []int64
	for it.Next() {
		n, err := it.Value().Int64()
		if err != nil {
			return nil, &CompileError{Catalog: catalog, Field: "integers", Message: err.Error(), Pos: it.Value().Pos()}
		}
		out = append(out, n)
	}
	return out, nil
}

// parseMatrix decodes a list of equal-length rows into row-major form.
func parseMatrix(catalog string, v cue.Value) (Matrix, error) {
	var m Matrix
	if !v.Exists() {
		return m, &CompileError{Catalog: catalog, Field: "matrix", Message: "matrix is required", Pos: v.Pos()}
	}
	rows, err := v.List()
	if err != nil {
		return m, formatCUEError(err)
	}
	for rows.Next() {
		cols, err := rows.Value().List()
		if err != nil {
			return m, formatCUEError(err)
		}
		rowLen := 0
		for cols.Next() {
			f, err := cols.Value().Float64()
			if err != nil {
				return m, &CompileError{Catalog: catalog, Field: "matrix", Message: err.Error(), Pos: cols.Value().Pos()}
			}
			m.Values = append(m.Values, f)
			rowLen++
		}
		if m.Rows == 0 {
			m.Cols = rowLen
		} else if rowLen != m.Cols {
			return m, &CompileError{
				Catalog: catalog,
				Field:   "matrix",
				Message: fmt.Sprintf("row %d has %d columns, want %d", m.Rows, rowLen, m.Cols),
				Pos:     rows.Value().Pos(),
			}
		}
		m.Rows++
	}
	return m, nil
}

func parseStrings(catalog string, v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, &CompileError{Catalog: catalog, Field: "strings", Message: "strings is required", Pos: v.Pos()}
	}
	it, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for it.Next() {
		s, err := it.Value().String()
		if err != nil {
			return nil, &CompileError{Catalog: catalog, Field: "strings", Message: err.Error(), Pos: it.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError converts CUE SDK errors into readable messages with
// source positions preserved.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s", cueerrors.Details(err, nil))
}
