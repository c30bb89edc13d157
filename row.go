package tightdb

import (
	"bytes"
	"fmt"
	"time"
)

// Row refers to one row of a table by its stable key, so it keeps pointing
// at the same logical row when rows before it are inserted or removed.
type Row struct {
	tbl *Table
	key rowKey
}

func (r *Row) resolve() (*tableData, int, error) {
	td, err := r.tbl.data()
	if err != nil {
		return nil, -1, err
	}
	i, ok := td.pos[r.key]
	if !ok {
		return nil, -1, tableErrf(r.tbl.path, "", ErrInvalidHandle, "row no longer exists")
	}
	return td, i, nil
}

func (r *Row) IsValid() bool {
	td := r.tbl.g.resolve(r.tbl.id, r.tbl.gen)
	if td == nil {
		return false
	}
	_, ok := td.pos[r.key]
	return ok
}

func (r *Row) Table() *Table {
	return r.tbl
}

// Index returns the row's current position in its table.
func (r *Row) Index() (int, error) {
	_, i, err := r.resolve()
	return i, err
}

// Get returns the cell value in its canonical Go type: int64, bool,
// string, float64, time.Time, []byte, or *Table for subtable columns. Null
// cells yield nil.
func (r *Row) Get(column string) (any, error) {
	td, i, err := r.resolve()
	if err != nil {
		return nil, err
	}
	ci, col, err := r.tbl.column(td, column)
	if err != nil {
		return nil, err
	}
	return r.cell(td, i, ci, col), nil
}

func (r *Row) cell(td *tableData, i, ci int, col *Column) any {
	v := td.cols[ci].get(i)
	switch col.Type {
	case TypeTable:
		return r.tbl.g.handle(v.(slotID))
	case TypeBinary:
		if v != nil {
			return bytes.Clone(v.([]byte))
		}
	}
	return v
}

// Values returns all cells in column order.
func (r *Row) Values() ([]any, error) {
	td, i, err := r.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]any, len(td.spec.columns))
	for ci := range td.spec.columns {
		out[ci] = r.cell(td, i, ci, &td.spec.columns[ci])
	}
	return out, nil
}

// Subtable returns a new handle to the table stored in a subtable cell.
// Handles obtained by separate calls alias the same storage.
func (r *Row) Subtable(column string) (*Table, error) {
	td, i, err := r.resolve()
	if err != nil {
		return nil, err
	}
	ci, col, err := r.tbl.column(td, column)
	if err != nil {
		return nil, err
	}
	if col.Type != TypeTable {
		return nil, tableErrf(r.tbl.path, column, ErrSchemaMismatch, "%v column is not a subtable", col.Type)
	}
	return r.tbl.g.handle(td.cols[ci].get(i).(slotID)), nil
}

// Set overwrites a primitive cell.
func (r *Row) Set(column string, value any) error {
	td, i, err := r.resolve()
	if err != nil {
		return err
	}
	ci, col, err := r.tbl.column(td, column)
	if err != nil {
		return err
	}
	if col.Type == TypeTable {
		return tableErrf(r.tbl.path, column, ErrSchemaMismatch, "subtable cells cannot be replaced")
	}
	v, err := normalizeValue(col, value)
	if err != nil {
		return tableErrf(r.tbl.path, column, err, "set row %d", i)
	}
	td.cols[ci].set(i, v)
	return nil
}

// Remove deletes the row from its table, invalidating this handle.
func (r *Row) Remove() error {
	td, i, err := r.resolve()
	if err != nil {
		return err
	}
	r.tbl.g.removeRow(td, i)
	return nil
}

func (r *Row) String() string {
	td, i, err := r.resolve()
	if err != nil {
		return fmt.Sprintf("%s[<invalid>]", r.tbl.path)
	}
	return fmt.Sprintf("%s[%d]", td.path, i)
}

func typedGet[T any](r *Row, column string, ct ColumnType) (T, error) {
	var zero T
	td, i, err := r.resolve()
	if err != nil {
		return zero, err
	}
	ci, col, err := r.tbl.column(td, column)
	if err != nil {
		return zero, err
	}
	if col.Type != ct {
		return zero, tableErrf(r.tbl.path, column, ErrSchemaMismatch, "%v column read as %v", col.Type, ct)
	}
	v := r.cell(td, i, ci, col)
	if v == nil {
		return zero, nil
	}
	return v.(T), nil
}

func (r *Row) GetString(column string) (string, error) {
	return typedGet[string](r, column, TypeString)
}
func (r *Row) GetInt(column string) (int64, error) {
	return typedGet[int64](r, column, TypeInt)
}
func (r *Row) GetBool(column string) (bool, error) {
	return typedGet[bool](r, column, TypeBool)
}
func (r *Row) GetFloat(column string) (float64, error) {
	return typedGet[float64](r, column, TypeFloat)
}
func (r *Row) GetTime(column string) (time.Time, error) {
	return typedGet[time.Time](r, column, TypeDate)
}
func (r *Row) GetBytes(column string) ([]byte, error) {
	return typedGet[[]byte](r, column, TypeBinary)
}

// IsNull reports whether a nullable cell holds no value.
func (r *Row) IsNull(column string) (bool, error) {
	v, err := r.Get(column)
	return v == nil && err == nil, err
}
