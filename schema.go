package tightdb

import (
	"fmt"
	"strings"
)

type ColumnType int

const (
	TypeInt ColumnType = iota + 1
	TypeBool
	TypeString
	TypeFloat
	TypeDate
	TypeBinary
	TypeTable
)

var columnTypeNames = map[ColumnType]string{
	TypeInt:    "int",
	TypeBool:   "bool",
	TypeString: "string",
	TypeFloat:  "float",
	TypeDate:   "date",
	TypeBinary: "binary",
	TypeTable:  "table",
}

func (ct ColumnType) String() string {
	if s, ok := columnTypeNames[ct]; ok {
		return s
	}
	return fmt.Sprintf("ColumnType(%d)", int(ct))
}

func (ct ColumnType) IsValid() bool {
	_, ok := columnTypeNames[ct]
	return ok
}

// ParseColumnType accepts the names returned by ColumnType.String, case-insensitively.
func ParseColumnType(s string) (ColumnType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for ct, name := range columnTypeNames {
		if name == s {
			return ct, nil
		}
	}
	switch s {
	case "subtable":
		return TypeTable, nil
	case "double":
		return TypeFloat, nil
	case "time":
		return TypeDate, nil
	}
	return 0, fmt.Errorf("unknown column type %q", s)
}

type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	Subtable *Spec
}

// Spec is the ordered column layout of a table. Specs are immutable once
// built and can be shared by any number of tables.
type Spec struct {
	columns []Column
	byName  map[string]int
}

type SpecBuilder struct {
	spec *Spec
}

// DefineSpec builds a Spec by calling f with a builder. Invalid definitions
// (empty or duplicate names, a subtable column without a nested spec) panic.
func DefineSpec(f func(b *SpecBuilder)) *Spec {
	b := SpecBuilder{spec: &Spec{byName: make(map[string]int)}}
	f(&b)
	return b.spec
}

// NewSpec is the non-panicking counterpart of DefineSpec for specs that come
// from untrusted sources, like schema files.
func NewSpec(cols ...Column) (*Spec, error) {
	spec := &Spec{byName: make(map[string]int)}
	for _, col := range cols {
		if err := spec.add(col); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

func (b *SpecBuilder) Add(col Column) *SpecBuilder {
	ensure(b.spec.add(col))
	return b
}

func (b *SpecBuilder) Int(name string) *SpecBuilder {
	return b.Add(Column{Name: name, Type: TypeInt})
}
func (b *SpecBuilder) Bool(name string) *SpecBuilder {
	return b.Add(Column{Name: name, Type: TypeBool})
}
func (b *SpecBuilder) String(name string) *SpecBuilder {
	return b.Add(Column{Name: name, Type: TypeString})
}
func (b *SpecBuilder) Float(name string) *SpecBuilder {
	return b.Add(Column{Name: name, Type: TypeFloat})
}
func (b *SpecBuilder) Date(name string) *SpecBuilder {
	return b.Add(Column{Name: name, Type: TypeDate})
}
func (b *SpecBuilder) Binary(name string) *SpecBuilder {
	return b.Add(Column{Name: name, Type: TypeBinary})
}

func (b *SpecBuilder) Subtable(name string, sub *Spec) *SpecBuilder {
	return b.Add(Column{Name: name, Type: TypeTable, Subtable: sub})
}

// Nullable marks the most recently added column as accepting nil.
func (b *SpecBuilder) Nullable() *SpecBuilder {
	n := len(b.spec.columns)
	if n == 0 {
		panic("Nullable called before any column was added")
	}
	if b.spec.columns[n-1].Type == TypeTable {
		panic(fmt.Errorf("subtable column %q cannot be nullable", b.spec.columns[n-1].Name))
	}
	b.spec.columns[n-1].Nullable = true
	return b
}

func (spec *Spec) add(col Column) error {
	if col.Name == "" {
		return fmt.Errorf("column #%d: empty name", len(spec.columns))
	}
	if _, dup := spec.byName[col.Name]; dup {
		return fmt.Errorf("duplicate column %q", col.Name)
	}
	if !col.Type.IsValid() {
		return fmt.Errorf("column %q: invalid type %v", col.Name, col.Type)
	}
	if col.Type == TypeTable {
		if col.Subtable == nil {
			return fmt.Errorf("subtable column %q has no spec", col.Name)
		}
		if col.Nullable {
			return fmt.Errorf("subtable column %q cannot be nullable", col.Name)
		}
	} else if col.Subtable != nil {
		return fmt.Errorf("column %q of type %v cannot have a nested spec", col.Name, col.Type)
	}
	spec.byName[col.Name] = len(spec.columns)
	spec.columns = append(spec.columns, col)
	return nil
}

func (spec *Spec) ColumnCount() int {
	return len(spec.columns)
}

func (spec *Spec) Column(i int) Column {
	return spec.columns[i]
}

func (spec *Spec) Columns() []Column {
	return append([]Column(nil), spec.columns...)
}

// ColumnIndex returns the position of the named column, or -1.
func (spec *Spec) ColumnIndex(name string) int {
	if i, ok := spec.byName[name]; ok {
		return i
	}
	return -1
}

// Equal reports whether two specs describe the same layout, recursively.
func (spec *Spec) Equal(other *Spec) bool {
	if spec == other {
		return true
	}
	if spec == nil || other == nil || len(spec.columns) != len(other.columns) {
		return false
	}
	for i, a := range spec.columns {
		b := other.columns[i]
		if a.Name != b.Name || a.Type != b.Type || a.Nullable != b.Nullable {
			return false
		}
		if a.Type == TypeTable && !a.Subtable.Equal(b.Subtable) {
			return false
		}
	}
	return true
}

func (spec *Spec) String() string {
	var buf strings.Builder
	spec.describe(&buf)
	return buf.String()
}

func (spec *Spec) describe(buf *strings.Builder) {
	buf.WriteByte('(')
	for i, col := range spec.columns {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(col.Name)
		buf.WriteByte(' ')
		buf.WriteString(col.Type.String())
		if col.Nullable {
			buf.WriteByte('?')
		}
		if col.Type == TypeTable {
			col.Subtable.describe(buf)
		}
	}
	buf.WriteByte(')')
}
