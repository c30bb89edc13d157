package tightdb

import (
	"fmt"
	"strings"
)

type condOp int

const (
	opEqual condOp = iota
	opNotEqual
	opGreater
	opGreaterEqual
	opLess
	opLessEqual
	opBeginsWith
	opEndsWith
	opContains
)

var condOpNames = [...]string{
	opEqual:        "==",
	opNotEqual:     "!=",
	opGreater:      ">",
	opGreaterEqual: ">=",
	opLess:         "<",
	opLessEqual:    "<=",
	opBeginsWith:   "begins with",
	opEndsWith:     "ends with",
	opContains:     "contains",
}

func (op condOp) String() string {
	return condOpNames[op]
}

func (op condOp) supports(ct ColumnType) bool {
	switch op {
	case opEqual, opNotEqual:
		return ct != TypeTable
	case opGreater, opGreaterEqual, opLess, opLessEqual:
		return isOrdered(ct)
	case opBeginsWith, opEndsWith, opContains:
		return ct == TypeString
	default:
		return false
	}
}

type cond struct {
	col int
	typ ColumnType
	op  condOp
	val any
}

// match evaluates the condition against row i. Null cells never match.
func (c *cond) match(td *tableData, i int) bool {
	v := td.cols[c.col].get(i)
	if v == nil {
		return false
	}
	if c.typ == TypeFloat && c.op <= opLessEqual {
		return c.matchFloat(v.(float64), c.val.(float64))
	}
	switch c.op {
	case opEqual:
		return compareValues(c.typ, v, c.val) == 0
	case opNotEqual:
		return compareValues(c.typ, v, c.val) != 0
	case opGreater:
		return compareValues(c.typ, v, c.val) > 0
	case opGreaterEqual:
		return compareValues(c.typ, v, c.val) >= 0
	case opLess:
		return compareValues(c.typ, v, c.val) < 0
	case opLessEqual:
		return compareValues(c.typ, v, c.val) <= 0
	case opBeginsWith:
		return strings.HasPrefix(v.(string), c.val.(string))
	case opEndsWith:
		return strings.HasSuffix(v.(string), c.val.(string))
	case opContains:
		return strings.Contains(v.(string), c.val.(string))
	default:
		panic(fmt.Errorf("unhandled condition %v", c.op))
	}
}

// matchFloat uses IEEE comparisons, so NaN is unequal to everything,
// itself included, and unordered.
func (c *cond) matchFloat(a, b float64) bool {
	switch c.op {
	case opEqual:
		return a == b
	case opNotEqual:
		return a != b
	case opGreater:
		return a > b
	case opGreaterEqual:
		return a >= b
	case opLess:
		return a < b
	case opLessEqual:
		return a <= b
	default:
		panic(fmt.Errorf("unhandled float condition %v", c.op))
	}
}

// conjunction is a run of conditions that must all hold.
type conjunction []cond

func (cj conjunction) match(td *tableData, i int) bool {
	for k := range cj {
		if !cj[k].match(td, i) {
			return false
		}
	}
	return true
}
