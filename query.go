package tightdb

import (
	"fmt"
)

// Query filters the rows of one table. Conditions chained on a Query are
// ANDed; Or starts a new group, and a row matches when any group matches.
//
// Builder mistakes (unknown columns, values of the wrong type, operators
// the column type does not support) are remembered and reported by the
// first terminal call.
//
// The Find* methods share a cursor: FindNext continues after the row most
// recently returned by FindFirst, FindLast or FindNext.
type Query struct {
	tbl    *Table
	groups []conjunction
	err    error
	last   int
}

func newQuery(t *Table) *Query {
	return &Query{
		tbl:    t,
		groups: []conjunction{nil},
		last:   -1,
	}
}

func (q *Query) Table() *Table {
	return q.tbl
}

func (q *Query) EqualTo(column string, value any) *Query {
	return q.add(column, opEqual, value)
}

func (q *Query) NotEqualTo(column string, value any) *Query {
	return q.add(column, opNotEqual, value)
}

func (q *Query) GreaterThan(column string, value any) *Query {
	return q.add(column, opGreater, value)
}

func (q *Query) GreaterThanOrEqual(column string, value any) *Query {
	return q.add(column, opGreaterEqual, value)
}

func (q *Query) LessThan(column string, value any) *Query {
	return q.add(column, opLess, value)
}

func (q *Query) LessThanOrEqual(column string, value any) *Query {
	return q.add(column, opLessEqual, value)
}

// Between matches lo <= value <= hi.
func (q *Query) Between(column string, lo, hi any) *Query {
	return q.add(column, opGreaterEqual, lo).add(column, opLessEqual, hi)
}

func (q *Query) BeginsWith(column string, prefix string) *Query {
	return q.add(column, opBeginsWith, prefix)
}

func (q *Query) EndsWith(column string, suffix string) *Query {
	return q.add(column, opEndsWith, suffix)
}

func (q *Query) Contains(column string, substr string) *Query {
	return q.add(column, opContains, substr)
}

// Or closes the current group of conditions and starts a new one.
func (q *Query) Or() *Query {
	if q.err != nil {
		return q
	}
	if len(q.groups[len(q.groups)-1]) == 0 {
		q.err = tableErrf(q.tbl.path, "", ErrSchemaMismatch, "Or without a preceding condition")
		return q
	}
	q.groups = append(q.groups, nil)
	return q
}

func (q *Query) add(column string, op condOp, value any) *Query {
	if q.err != nil {
		return q
	}
	td, err := q.tbl.data()
	if err != nil {
		q.err = err
		return q
	}
	ci, col, err := q.tbl.column(td, column)
	if err != nil {
		q.err = err
		return q
	}
	if !op.supports(col.Type) {
		q.err = tableErrf(q.tbl.path, column, ErrSchemaMismatch, "operator %v does not apply to %v columns", op, col.Type)
		return q
	}
	v, err := normalizeValue(&Column{Name: col.Name, Type: col.Type}, value)
	if err != nil {
		q.err = tableErrf(q.tbl.path, column, err, "condition %v", op)
		return q
	}
	n := len(q.groups) - 1
	q.groups[n] = append(q.groups[n], cond{col: ci, typ: col.Type, op: op, val: v})
	return q
}

func (q *Query) prepare() (*tableData, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(q.groups) > 1 && len(q.groups[len(q.groups)-1]) == 0 {
		return nil, tableErrf(q.tbl.path, "", ErrSchemaMismatch, "Or without a following condition")
	}
	return q.tbl.data()
}

func (q *Query) match(td *tableData, i int) bool {
	for _, cj := range q.groups {
		if cj.match(td, i) {
			return true
		}
	}
	return false
}

func (q *Query) Count() (int, error) {
	td, err := q.prepare()
	if err != nil {
		return 0, err
	}
	var n int
	for i := range td.keys {
		if q.match(td, i) {
			n++
		}
	}
	return n, nil
}

// FindAll materializes the matching rows, in table order, into a View.
func (q *Query) FindAll() (*View, error) {
	td, err := q.prepare()
	if err != nil {
		return nil, err
	}
	var keys []rowKey
	for i, key := range td.keys {
		if q.match(td, i) {
			keys = append(keys, key)
		}
	}
	return &View{tbl: q.tbl, keys: keys}, nil
}

// FindFirst returns the first matching row, or nil.
func (q *Query) FindFirst() (*Row, error) {
	td, err := q.prepare()
	if err != nil {
		return nil, err
	}
	return q.scanForward(td, 0), nil
}

// FindLast returns the last matching row, or nil.
func (q *Query) FindLast() (*Row, error) {
	td, err := q.prepare()
	if err != nil {
		return nil, err
	}
	for i := len(td.keys) - 1; i >= 0; i-- {
		if q.match(td, i) {
			q.last = i
			return &Row{tbl: q.tbl, key: td.keys[i]}, nil
		}
	}
	q.last = len(td.keys)
	return nil, nil
}

// FindNext returns the next match after the previously found row, or nil
// once matches are exhausted.
func (q *Query) FindNext() (*Row, error) {
	td, err := q.prepare()
	if err != nil {
		return nil, err
	}
	return q.scanForward(td, q.last+1), nil
}

func (q *Query) scanForward(td *tableData, start int) *Row {
	for i := start; i < len(td.keys); i++ {
		if q.match(td, i) {
			q.last = i
			return &Row{tbl: q.tbl, key: td.keys[i]}
		}
	}
	q.last = len(td.keys)
	return nil
}

// Clear removes every row matching at the time of the call from the
// underlying table, in one structural operation, and returns the number of
// rows removed.
func (q *Query) Clear() (int, error) {
	td, err := q.prepare()
	if err != nil {
		return 0, err
	}
	drop := make([]bool, len(td.keys))
	for i := range td.keys {
		drop[i] = q.match(td, i)
	}
	q.last = -1
	return q.tbl.g.removeRows(td, drop), nil
}

func (q *Query) aggregateColumn(td *tableData, column string, allow func(ColumnType) bool) (int, error) {
	ci, col, err := q.tbl.column(td, column)
	if err != nil {
		return -1, err
	}
	if !allow(col.Type) {
		return -1, tableErrf(q.tbl.path, column, ErrSchemaMismatch, "cannot aggregate %v column", col.Type)
	}
	return ci, nil
}

// Sum adds up a numeric column over the matching rows, skipping nulls.
func (q *Query) Sum(column string) (float64, error) {
	sum, _, err := q.sum(column)
	return sum, err
}

// Average returns the mean of a numeric column over the matching non-null
// cells, or 0 when there are none.
func (q *Query) Average(column string) (float64, error) {
	sum, n, err := q.sum(column)
	if err != nil || n == 0 {
		return 0, err
	}
	return sum / float64(n), nil
}

func (q *Query) sum(column string) (float64, int, error) {
	td, err := q.prepare()
	if err != nil {
		return 0, 0, err
	}
	ci, err := q.aggregateColumn(td, column, isNumeric)
	if err != nil {
		return 0, 0, err
	}
	var sum float64
	var n int
	for i := range td.keys {
		if !q.match(td, i) {
			continue
		}
		if v := td.cols[ci].get(i); v != nil {
			sum += numericValue(v)
			n++
		}
	}
	return sum, n, nil
}

// Min returns the smallest non-null value among the matching rows, or nil.
func (q *Query) Min(column string) (any, error) {
	return q.extreme(column, -1)
}

// Max returns the largest non-null value among the matching rows, or nil.
func (q *Query) Max(column string) (any, error) {
	return q.extreme(column, 1)
}

func (q *Query) extreme(column string, sign int) (any, error) {
	td, err := q.prepare()
	if err != nil {
		return nil, err
	}
	ci, err := q.aggregateColumn(td, column, isOrdered)
	if err != nil {
		return nil, err
	}
	ct := td.spec.columns[ci].Type
	var best any
	for i := range td.keys {
		if !q.match(td, i) {
			continue
		}
		v := td.cols[ci].get(i)
		if v == nil {
			continue
		}
		if best == nil || compareValues(ct, v, best)*sign > 0 {
			best = v
		}
	}
	return best, nil
}

func (q *Query) String() string {
	s := q.tbl.path + " where"
	for gi, cj := range q.groups {
		if gi > 0 {
			s += " or"
		}
		for k, c := range cj {
			if k > 0 {
				s += " and"
			}
			name := fmt.Sprintf("#%d", c.col)
			if td := q.tbl.g.resolve(q.tbl.id, q.tbl.gen); td != nil {
				name = td.spec.columns[c.col].Name
			}
			s += fmt.Sprintf(" %s %v %v", name, c.op, c.val)
		}
	}
	return s
}
