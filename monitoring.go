package tightdb

type TableStats struct {
	Rows       int
	Subtables  int
	NestedRows int
	MaxDepth   int
}

// TotalRows counts the table's own rows plus every row of its subtables.
func (ts *TableStats) TotalRows() int {
	return ts.Rows + ts.NestedRows
}

func (t *Table) Stats() (TableStats, error) {
	td, err := t.data()
	if err != nil {
		return TableStats{}, err
	}
	return t.g.tableStats(td), nil
}

func (g *Group) tableStats(td *tableData) TableStats {
	s := TableStats{Rows: len(td.keys)}
	for ci := range td.spec.columns {
		if td.spec.columns[ci].Type != TypeTable {
			continue
		}
		for _, child := range td.cols[ci].(*valueColumn[slotID]).vals {
			cs := g.tableStats(g.slots[child].data)
			s.Subtables += 1 + cs.Subtables
			s.NestedRows += cs.TotalRows()
			s.MaxDepth = max(s.MaxDepth, cs.MaxDepth+1)
		}
	}
	return s
}
