package tightdb

import (
	"slices"
	"time"
)

// column stores the cells of one column of a table. Values passed in are
// already normalized; a nil value marks a null cell.
type column interface {
	len() int
	get(i int) any
	set(i int, v any)
	insert(i int, v any)
	remove(i int)
	// compact drops every cell i with drop[i] set, preserving order.
	compact(drop []bool)
	truncate()
}

// valueColumn keeps values of one Go type contiguously. The nulls bitmap is
// only allocated for nullable columns.
type valueColumn[T any] struct {
	vals  []T
	nulls []bool
}

func newColumn(col *Column) column {
	switch col.Type {
	case TypeInt:
		return newValueColumn[int64](col.Nullable)
	case TypeBool:
		return newValueColumn[bool](col.Nullable)
	case TypeString:
		return newValueColumn[string](col.Nullable)
	case TypeFloat:
		return newValueColumn[float64](col.Nullable)
	case TypeDate:
		return newValueColumn[time.Time](col.Nullable)
	case TypeBinary:
		return newValueColumn[[]byte](col.Nullable)
	case TypeTable:
		return newValueColumn[slotID](false)
	default:
		panic("unhandled column type " + col.Type.String())
	}
}

func newValueColumn[T any](nullable bool) *valueColumn[T] {
	c := &valueColumn[T]{}
	if nullable {
		c.nulls = []bool{}
	}
	return c
}

func (c *valueColumn[T]) len() int {
	return len(c.vals)
}

func (c *valueColumn[T]) get(i int) any {
	if c.nulls != nil && c.nulls[i] {
		return nil
	}
	return c.vals[i]
}

func (c *valueColumn[T]) set(i int, v any) {
	if v == nil {
		if c.nulls == nil {
			panic("nil written to a non-nullable column")
		}
		var zero T
		c.vals[i] = zero
		c.nulls[i] = true
		return
	}
	c.vals[i] = v.(T)
	if c.nulls != nil {
		c.nulls[i] = false
	}
}

func (c *valueColumn[T]) insert(i int, v any) {
	var zero T
	c.vals = slices.Insert(c.vals, i, zero)
	if c.nulls != nil {
		c.nulls = slices.Insert(c.nulls, i, false)
	}
	c.set(i, v)
}

func (c *valueColumn[T]) remove(i int) {
	c.vals = slices.Delete(c.vals, i, i+1)
	if c.nulls != nil {
		c.nulls = slices.Delete(c.nulls, i, i+1)
	}
}

func (c *valueColumn[T]) compact(drop []bool) {
	j := 0
	for i := range c.vals {
		if drop[i] {
			continue
		}
		c.vals[j] = c.vals[i]
		if c.nulls != nil {
			c.nulls[j] = c.nulls[i]
		}
		j++
	}
	clear(c.vals[j:])
	c.vals = c.vals[:j]
	if c.nulls != nil {
		c.nulls = c.nulls[:j]
	}
}

func (c *valueColumn[T]) truncate() {
	c.vals = nil
	if c.nulls != nil {
		c.nulls = []bool{}
	}
}
