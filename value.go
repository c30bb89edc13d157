package tightdb

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"strings"
	"time"
)

// normalizeValue converts v into the canonical Go representation of col's
// type: int64, bool, string, float64, time.Time, []byte, or [][]any holding
// the initial rows of a subtable. A nil subtable value means an empty one.
func normalizeValue(col *Column, v any) (any, error) {
	if v == nil {
		if col.Type == TypeTable || col.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: nil for non-nullable %v column", ErrSchemaMismatch, col.Type)
	}
	var out any
	var ok bool
	switch col.Type {
	case TypeInt:
		out, ok = toInt64(v)
	case TypeBool:
		out, ok = v.(bool)
	case TypeString:
		out, ok = v.(string)
	case TypeFloat:
		out, ok = toFloat64(v)
	case TypeDate:
		var t time.Time
		t, ok = v.(time.Time)
		out = t
	case TypeBinary:
		var b []byte
		if b, ok = v.([]byte); ok {
			switch {
			case b != nil:
				out = bytes.Clone(b)
			case col.Nullable:
				return nil, nil
			default:
				out = []byte{}
			}
		}
	case TypeTable:
		var rows [][]any
		rows, ok = toRows(v)
		if ok {
			for i, row := range rows {
				if err := validateRow(col.Subtable, row); err != nil {
					return nil, fmt.Errorf("subtable row %d: %w", i, err)
				}
			}
		}
		out = rows
	default:
		panic(fmt.Errorf("unhandled column type %v", col.Type))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %T for %v column", ErrSchemaMismatch, v, col.Type)
	}
	return out, nil
}

// validateRow checks that values fit spec, recursing into subtable values.
// It does not keep the normalized values; insertion normalizes again.
func validateRow(spec *Spec, values []any) error {
	if len(values) != len(spec.columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrSchemaMismatch, len(values), len(spec.columns))
	}
	for i := range spec.columns {
		if _, err := normalizeValue(&spec.columns[i], values[i]); err != nil {
			return fmt.Errorf("%s: %w", spec.columns[i].Name, err)
		}
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		if n, ok := toInt64(v); ok {
			return float64(n), true
		}
		return 0, false
	}
}

func toRows(v any) ([][]any, bool) {
	switch v := v.(type) {
	case [][]any:
		return v, true
	case []any:
		rows := make([][]any, len(v))
		for i, el := range v {
			row, ok := el.([]any)
			if !ok {
				return nil, false
			}
			rows[i] = row
		}
		return rows, true
	default:
		return nil, false
	}
}

// compareValues orders two non-nil normalized values of the same column type.
// Floats use cmp.Compare, which places NaN below every number; query
// conditions on floats compare with IEEE semantics instead (see cond.go).
func compareValues(ct ColumnType, a, b any) int {
	switch ct {
	case TypeInt:
		return cmp.Compare(a.(int64), b.(int64))
	case TypeFloat:
		return cmp.Compare(a.(float64), b.(float64))
	case TypeString:
		return strings.Compare(a.(string), b.(string))
	case TypeDate:
		return a.(time.Time).Compare(b.(time.Time))
	case TypeBinary:
		return bytes.Compare(a.([]byte), b.([]byte))
	case TypeBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	default:
		panic(fmt.Errorf("values of type %v are not comparable", ct))
	}
}

func isOrdered(ct ColumnType) bool {
	switch ct {
	case TypeInt, TypeFloat, TypeString, TypeDate:
		return true
	default:
		return false
	}
}

func isNumeric(ct ColumnType) bool {
	return ct == TypeInt || ct == TypeFloat
}

func numericValue(v any) float64 {
	switch v := v.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		panic(fmt.Errorf("not a numeric value: %T", v))
	}
}
