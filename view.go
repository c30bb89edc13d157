package tightdb

import (
	"iter"
	"slices"
)

// View is an ordered snapshot of row references taken when a query ran. It
// does not follow later changes to the table: rows removed since then read
// as invalid handles, and rows added since then are not included.
type View struct {
	tbl  *Table
	keys []rowKey
}

func (v *View) Table() *Table {
	return v.tbl
}

// IsValid reports whether the view's table and every row it references
// still exist.
func (v *View) IsValid() bool {
	td := v.tbl.g.resolve(v.tbl.id, v.tbl.gen)
	if td == nil {
		return false
	}
	for _, key := range v.keys {
		if _, ok := td.pos[key]; !ok {
			return false
		}
	}
	return true
}

func (v *View) Size() (int, error) {
	if _, err := v.tbl.data(); err != nil {
		return 0, err
	}
	return len(v.keys), nil
}

// Get returns the row at position index of the view. The row handle is
// invalid if the row was removed after the view was created.
func (v *View) Get(index int) (*Row, error) {
	td, err := v.tbl.data()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(v.keys) {
		return nil, tableErrf(v.tbl.path, "", ErrOutOfRange, "view row %d, size %d", index, len(v.keys))
	}
	key := v.keys[index]
	if _, ok := td.pos[key]; !ok {
		return nil, tableErrf(v.tbl.path, "", ErrInvalidHandle, "view row %d was removed", index)
	}
	return &Row{tbl: v.tbl, key: key}, nil
}

// All iterates over the view's rows that still exist.
func (v *View) All() iter.Seq2[int, *Row] {
	return func(yield func(int, *Row) bool) {
		td := v.tbl.g.resolve(v.tbl.id, v.tbl.gen)
		if td == nil {
			return
		}
		for i, key := range v.keys {
			if _, ok := td.pos[key]; !ok {
				continue
			}
			if !yield(i, &Row{tbl: v.tbl, key: key}) {
				return
			}
		}
	}
}

// Clear removes every referenced row from the table. The view keeps its
// size, but its rows become invalid.
func (v *View) Clear() error {
	td, err := v.tbl.data()
	if err != nil {
		return err
	}
	drop := make([]bool, len(td.keys))
	for _, key := range v.keys {
		if i, ok := td.pos[key]; ok {
			drop[i] = true
		}
	}
	v.tbl.g.removeRows(td, drop)
	return nil
}

// Sort reorders the view by a column. Nulls order below every other value,
// and rows that compare equal keep their previous relative order.
func (v *View) Sort(column string, ascending bool) error {
	td, err := v.tbl.data()
	if err != nil {
		return err
	}
	ci, col, err := v.tbl.column(td, column)
	if err != nil {
		return err
	}
	if col.Type == TypeTable {
		return tableErrf(v.tbl.path, column, ErrSchemaMismatch, "cannot sort by a subtable column")
	}
	for i, key := range v.keys {
		if _, ok := td.pos[key]; !ok {
			return tableErrf(v.tbl.path, "", ErrInvalidHandle, "view row %d was removed", i)
		}
	}
	c := td.cols[ci]
	slices.SortStableFunc(v.keys, func(a, b rowKey) int {
		va, vb := c.get(td.pos[a]), c.get(td.pos[b])
		var r int
		switch {
		case va == nil && vb == nil:
			r = 0
		case va == nil:
			r = -1
		case vb == nil:
			r = 1
		default:
			r = compareValues(col.Type, va, vb)
		}
		if !ascending {
			r = -r
		}
		return r
	})
	return nil
}
