package tightdb

import (
	"math"
	"testing"
	"time"
)

func TestNormalizeValue(t *testing.T) {
	intCol := &Column{Name: "n", Type: TypeInt}
	deepEqual(t, must(normalizeValue(intCol, int8(-3))), any(int64(-3)))
	deepEqual(t, must(normalizeValue(intCol, uint32(3))), any(int64(3)))
	_, err := normalizeValue(intCol, uint64(math.MaxUint64))
	isErr(t, err, ErrSchemaMismatch)
	_, err = normalizeValue(intCol, 1.5)
	isErr(t, err, ErrSchemaMismatch)

	floatCol := &Column{Name: "f", Type: TypeFloat}
	deepEqual(t, must(normalizeValue(floatCol, 2)), any(2.0))

	tblCol := &Column{Name: "t", Type: TypeTable, Subtable: phoneSpec}
	deepEqual(t, must(normalizeValue(tblCol, nil)), nil)
	rows := must(normalizeValue(tblCol, []any{[]any{"home", "1"}}))
	deepEqual(t, rows, any([][]any{{"home", "1"}}))
	_, err = normalizeValue(tblCol, []any{"home"})
	isErr(t, err, ErrSchemaMismatch)
	_, err = normalizeValue(tblCol, [][]any{{"home", 1}})
	isErr(t, err, ErrSchemaMismatch)
}

func TestCompareValues(t *testing.T) {
	deepEqual(t, compareValues(TypeInt, int64(1), int64(2)), -1)
	deepEqual(t, compareValues(TypeString, "b", "a"), 1)
	deepEqual(t, compareValues(TypeBool, false, true), -1)
	deepEqual(t, compareValues(TypeBinary, []byte{1}, []byte{1}), 0)
	a := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	deepEqual(t, compareValues(TypeDate, a, a.In(time.FixedZone("X", 3600))), 0)
}

func TestValueColumn(t *testing.T) {
	c := newValueColumn[int64](true)
	for i := range 5 {
		c.insert(i, int64(i))
	}
	c.set(1, nil)
	c.compact([]bool{true, false, false, true, false})
	deepEqual(t, c.len(), 3)
	deepEqual(t, []any{c.get(0), c.get(1), c.get(2)}, []any{nil, int64(2), int64(4)})

	c.insert(0, int64(9))
	c.remove(1)
	deepEqual(t, []any{c.get(0), c.get(1)}, []any{int64(9), int64(2)})

	c.truncate()
	deepEqual(t, c.len(), 0)
}
