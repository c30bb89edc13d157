package tightdb

import (
	"log/slog"
	"math"
)

// slotID addresses a table's storage in the group arena. Handles remember
// the slot together with its generation; freeing a slot bumps the
// generation, so every outstanding handle to it turns invalid at once, and
// a reused slot never resurrects an old handle.
type slotID uint32

const noSlot = slotID(math.MaxUint32)

type rowKey uint64

type tableSlot struct {
	gen  uint32
	data *tableData
}

type tableData struct {
	spec    *Spec
	path    string
	parent  slotID
	cols    []column
	keys    []rowKey
	pos     map[rowKey]int
	nextKey rowKey
}

func (g *Group) allocTable(spec *Spec, path string, parent slotID) slotID {
	td := &tableData{
		spec:   spec,
		path:   path,
		parent: parent,
		cols:   make([]column, len(spec.columns)),
		pos:    make(map[rowKey]int),
	}
	for i := range spec.columns {
		td.cols[i] = newColumn(&spec.columns[i])
	}

	var id slotID
	if n := len(g.free); n > 0 {
		id = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		id = slotID(len(g.slots))
		g.slots = append(g.slots, tableSlot{})
	}
	g.slots[id].data = td
	return id
}

// freeTable releases a table and, recursively, every subtable nested in it.
func (g *Group) freeTable(id slotID) int {
	td := g.slots[id].data
	if td == nil {
		panic("double free of table slot")
	}
	n := 1
	for ci := range td.spec.columns {
		if td.spec.columns[ci].Type != TypeTable {
			continue
		}
		c := td.cols[ci].(*valueColumn[slotID])
		for _, child := range c.vals {
			n += g.freeTable(child)
		}
	}
	g.slots[id].data = nil
	g.slots[id].gen++
	g.free = append(g.free, id)
	return n
}

// freeRowChildren releases the subtables owned by row i of td.
func (g *Group) freeRowChildren(td *tableData, i int) int {
	var n int
	for ci := range td.spec.columns {
		if td.spec.columns[ci].Type == TypeTable {
			n += g.freeTable(td.cols[ci].(*valueColumn[slotID]).vals[i])
		}
	}
	return n
}

func (g *Group) resolve(id slotID, gen uint32) *tableData {
	if int(id) >= len(g.slots) {
		return nil
	}
	slot := &g.slots[id]
	if slot.gen != gen {
		return nil
	}
	return slot.data
}

func (g *Group) handle(id slotID) *Table {
	td := g.slots[id].data
	return &Table{g: g, id: id, gen: g.slots[id].gen, path: td.path}
}

// insertRow validates values and then inserts them at position i. Nothing
// is modified when validation fails.
func (g *Group) insertRow(id slotID, i int, values []any) (rowKey, error) {
	td := g.slots[id].data
	if err := validateRow(td.spec, values); err != nil {
		return 0, err
	}
	for ci := range td.spec.columns {
		col := &td.spec.columns[ci]
		v := must(normalizeValue(col, values[ci]))
		if col.Type == TypeTable {
			child := g.allocTable(col.Subtable, td.path+"."+col.Name, id)
			if rows, _ := v.([][]any); len(rows) > 0 {
				for ri, row := range rows {
					must(g.insertRow(child, ri, row))
				}
			}
			v = child
		}
		td.cols[ci].insert(i, v)
	}

	key := td.nextKey
	td.nextKey++
	td.keys = append(td.keys, 0)
	copy(td.keys[i+1:], td.keys[i:])
	td.keys[i] = key
	for j := i; j < len(td.keys); j++ {
		td.pos[td.keys[j]] = j
	}
	return key, nil
}

func (g *Group) removeRow(td *tableData, i int) {
	freed := g.freeRowChildren(td, i)
	for _, c := range td.cols {
		c.remove(i)
	}
	delete(td.pos, td.keys[i])
	td.keys = append(td.keys[:i], td.keys[i+1:]...)
	for j := i; j < len(td.keys); j++ {
		td.pos[td.keys[j]] = j
	}
	if g.verbose {
		g.debug("row removed", slog.String("table", td.path), slog.Int("index", i), slog.Int("freed_subtables", freed))
	}
}

// removeRows drops every row whose drop flag is set in a single pass.
func (g *Group) removeRows(td *tableData, drop []bool) int {
	var removed, freed int
	for i, d := range drop {
		if d {
			removed++
			freed += g.freeRowChildren(td, i)
		}
	}
	if removed == 0 {
		return 0
	}
	for _, c := range td.cols {
		c.compact(drop)
	}
	j := 0
	for i, key := range td.keys {
		if drop[i] {
			delete(td.pos, key)
			continue
		}
		td.keys[j] = key
		td.pos[key] = j
		j++
	}
	td.keys = td.keys[:j]
	if g.verbose {
		g.debug("rows removed", slog.String("table", td.path), slog.Int("count", removed), slog.Int("freed_subtables", freed))
	}
	return removed
}

func (g *Group) clearRows(td *tableData) int {
	n := len(td.keys)
	var freed int
	for i := 0; i < n; i++ {
		freed += g.freeRowChildren(td, i)
	}
	for _, c := range td.cols {
		c.truncate()
	}
	td.keys = nil
	clear(td.pos)
	if g.verbose {
		g.debug("table cleared", slog.String("table", td.path), slog.Int("rows", n), slog.Int("freed_subtables", freed))
	}
	return n
}
