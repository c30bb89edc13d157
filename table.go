package tightdb

import (
	"fmt"
)

// Table is a handle to a root table or a subtable. Any number of handles
// may point at the same storage; all of them observe the same rows. A
// handle turns invalid once its storage is freed, which for a subtable
// happens when the owning row is removed or the parent table cleared.
type Table struct {
	g    *Group
	id   slotID
	gen  uint32
	path string
}

func (t *Table) data() (*tableData, error) {
	td := t.g.resolve(t.id, t.gen)
	if td == nil {
		return nil, tableErrf(t.path, "", ErrInvalidHandle, "table no longer exists")
	}
	return td, nil
}

// IsValid reports whether the table's storage still exists.
func (t *Table) IsValid() bool {
	return t.g.resolve(t.id, t.gen) != nil
}

// Name returns the table's path: the root table name followed by subtable
// column names, like "employees.phones".
func (t *Table) Name() string {
	return t.path
}

func (t *Table) Group() *Group {
	return t.g
}

func (t *Table) Spec() (*Spec, error) {
	td, err := t.data()
	if err != nil {
		return nil, err
	}
	return td.spec, nil
}

func (t *Table) IsRoot() bool {
	td := t.g.resolve(t.id, t.gen)
	return td != nil && td.parent == noSlot
}

func (t *Table) Size() (int, error) {
	td, err := t.data()
	if err != nil {
		return 0, err
	}
	return len(td.keys), nil
}

func (t *Table) IsEmpty() (bool, error) {
	n, err := t.Size()
	return n == 0, err
}

// Add appends a row. Values are given in column order; a subtable column
// takes nil (empty) or a [][]any of initial rows.
func (t *Table) Add(values ...any) (*Row, error) {
	td, err := t.data()
	if err != nil {
		return nil, err
	}
	return t.insert(len(td.keys), values)
}

// Insert puts a row at position index, shifting later rows up. Index may
// equal the table size, which appends.
func (t *Table) Insert(index int, values ...any) (*Row, error) {
	td, err := t.data()
	if err != nil {
		return nil, err
	}
	if index < 0 || index > len(td.keys) {
		return nil, tableErrf(t.path, "", ErrOutOfRange, "insert at %d, size %d", index, len(td.keys))
	}
	return t.insert(index, values)
}

func (t *Table) insert(index int, values []any) (*Row, error) {
	key, err := t.g.insertRow(t.id, index, values)
	if err != nil {
		return nil, tableErrf(t.path, "", err, "insert")
	}
	return &Row{tbl: t, key: key}, nil
}

func (t *Table) Get(index int) (*Row, error) {
	td, err := t.data()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(td.keys) {
		return nil, tableErrf(t.path, "", ErrOutOfRange, "row %d, size %d", index, len(td.keys))
	}
	return &Row{tbl: t, key: td.keys[index]}, nil
}

// Set overwrites one cell. Subtable cells cannot be replaced; mutate the
// subtable instead.
func (t *Table) Set(index int, column string, value any) error {
	row, err := t.Get(index)
	if err != nil {
		return err
	}
	return row.Set(column, value)
}

// Remove deletes the row at index. Later rows shift down by one.
func (t *Table) Remove(index int) error {
	td, err := t.data()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(td.keys) {
		return tableErrf(t.path, "", ErrOutOfRange, "remove %d, size %d", index, len(td.keys))
	}
	t.g.removeRow(td, index)
	return nil
}

func (t *Table) RemoveLast() error {
	td, err := t.data()
	if err != nil {
		return err
	}
	if len(td.keys) == 0 {
		return tableErrf(t.path, "", ErrOutOfRange, "remove last of empty table")
	}
	t.g.removeRow(td, len(td.keys)-1)
	return nil
}

// Clear removes every row. The table handle stays valid; handles to its
// rows and to their subtables do not.
func (t *Table) Clear() error {
	td, err := t.data()
	if err != nil {
		return err
	}
	t.g.clearRows(td)
	return nil
}

// Where starts a query over this table.
func (t *Table) Where() *Query {
	return newQuery(t)
}

func (t *Table) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("%s<invalid>", t.path)
	}
	return t.path
}

func (t *Table) column(td *tableData, name string) (int, *Column, error) {
	ci := td.spec.ColumnIndex(name)
	if ci < 0 {
		return -1, nil, tableErrf(t.path, name, ErrColumnNotFound, "")
	}
	return ci, &td.spec.columns[ci], nil
}
