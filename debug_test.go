package tightdb

import (
	"math"
	"strings"
	"testing"
)

func TestDump(t *testing.T) {
	g := New(Options{})
	employees := must(g.AddTable("employees", DefineSpec(func(b *SpecBuilder) {
		b.String("name")
		b.Int("salary").Nullable()
		b.Subtable("phones", phoneSpec)
	})))
	must(employees.Add("John", 10, [][]any{{"home", "123"}}))
	must(employees.Add("Jane", nil, nil))

	o := func(f DumpFlags, exp string) {
		t.Helper()
		exp = strings.TrimLeft(exp, "\n")
		if a := g.Dump(f); a != exp {
			t.Errorf("** Dump(%b) got:\n%s\nwanted:\n%s", f, a, exp)
		}
	}
	o(DumpRows|DumpSubtables, `
employees.0 = ["John", 10, <phones: 1 rows>]
employees.0.phones.0 = ["home", "123"]
employees.1 = ["Jane", null, <phones: 0 rows>]
`)
	o(DumpRows, `
employees.0 = ["John", 10, <phones: 1 rows>]
employees.1 = ["Jane", null, <phones: 0 rows>]
`)
	o(DumpTableHeaders|DumpStats, dumpSep1+`
employees (2 rows) (name string, salary int?, phones table(type string, number string))
employees.stats: rows = 2, subtables = 2, nested_rows = 1, max_depth = 1
`)

	all := g.Dump(DumpAll)
	if !strings.Contains(all, dumpSep2+"\nemployees.0 = ") {
		t.Errorf("** Dump(DumpAll) lacks the stats/rows separator:\n%s", all)
	}
	deepEqual(t, DumpAll.Contains(DumpStats|DumpRows), true)
	deepEqual(t, DumpRows.Contains(DumpStats), false)
}

func TestTableStats(t *testing.T) {
	g := New(Options{})
	employees := must(g.AddTable("employees", employeeSpec))
	s := must(employees.Stats())
	deepEqual(t, s, TableStats{})

	must(employees.Add("John", "Doe", 1, false, nil, birthdate, [][]any{{"home", "1"}, {"work", "2"}}))
	s = must(employees.Stats())
	deepEqual(t, s, TableStats{Rows: 1, Subtables: 1, NestedRows: 2, MaxDepth: 1})
	deepEqual(t, s.TotalRows(), 3)

	noerr(t, g.RemoveTable("employees"))
	_, err := employees.Stats()
	isErr(t, err, ErrInvalidHandle)
}

func TestDump_NonFiniteFloats(t *testing.T) {
	g := New(Options{})
	readings := must(g.AddTable("readings", DefineSpec(func(b *SpecBuilder) {
		b.Float("value")
		b.Binary("raw")
	})))
	must(readings.Add(math.NaN(), []byte{1}))
	must(readings.Add(math.Inf(1), []byte{}))
	must(readings.Add(math.Inf(-1), []byte{}))
	must(readings.Add(0.25, []byte{}))

	deepEqual(t, g.Dump(DumpRows), `readings.0 = [NaN, "AQ=="]
readings.1 = [+Inf, ""]
readings.2 = [-Inf, ""]
readings.3 = [0.25, ""]
`)
	if !strings.Contains(g.Dump(DumpAll), "readings.0 = [NaN") {
		t.Errorf("** Dump(DumpAll) lacks the NaN row")
	}
}
