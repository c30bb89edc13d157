package tightdb

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type DumpFlags uint64

const (
	DumpTableHeaders = DumpFlags(1 << iota)
	DumpRows
	DumpStats
	DumpSubtables

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders every root table as text, for debugging and the CLI.
func (g *Group) Dump(f DumpFlags) string {
	var buf strings.Builder
	for _, id := range g.roots {
		g.dumpTable(&buf, f, g.slots[id].data)
	}
	return buf.String()
}

func (g *Group) dumpTable(w *strings.Builder, f DumpFlags, td *tableData) {
	prefix := td.path
	if f.Contains(DumpTableHeaders) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (%d rows) %s\n", prefix, len(td.keys), td.spec)
	}
	if f.Contains(DumpStats) {
		s := g.tableStats(td)
		fmt.Fprintf(w, "%s.stats: rows = %d, subtables = %d, nested_rows = %d, max_depth = %d\n", prefix, s.Rows, s.Subtables, s.NestedRows, s.MaxDepth)
	}
	if f.Contains(DumpRows) {
		if f.Contains(DumpStats) {
			fmt.Fprintln(w, dumpSep2)
		}
		g.dumpRows(w, f, prefix, td)
	}
}

func (g *Group) dumpRows(w *strings.Builder, f DumpFlags, prefix string, td *tableData) {
	for i := range td.keys {
		rowPrefix := fmt.Sprintf("%s.%d", prefix, i)
		var subs []int
		cells := make([]string, len(td.cols))
		for ci, c := range td.cols {
			v := c.get(i)
			if td.spec.columns[ci].Type == TypeTable {
				child := g.slots[v.(slotID)].data
				cells[ci] = fmt.Sprintf("<%s: %d rows>", td.spec.columns[ci].Name, len(child.keys))
				subs = append(subs, ci)
				continue
			}
			cells[ci] = dumpCell(v)
		}
		fmt.Fprintf(w, "%s = [%s]\n", rowPrefix, strings.Join(cells, ", "))
		if f.Contains(DumpSubtables) {
			for _, ci := range subs {
				child := g.slots[td.cols[ci].get(i).(slotID)].data
				g.dumpRows(w, f, rowPrefix+"."+td.spec.columns[ci].Name, child)
			}
		}
	}
}

func dumpCell(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
