package tightdb

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

func encodeMsgPack(buf []byte, v any) []byte {
	bb := bytes.NewBuffer(buf)
	enc := msgpack.GetEncoder()
	enc.Reset(bb)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("failed to encode %T using MsgPack: %w", v, err))
	}
	return bb.Bytes()
}

func decodeMsgPack(buf []byte, ptr any) error {
	var r bytes.Reader
	r.Reset(buf)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	err := dec.Decode(ptr)
	msgpack.PutDecoder(dec)
	if err != nil {
		return dataErrf(buf, 0, err, "failed to decode msgpack into %T", ptr)
	}
	return nil
}

type specRecord struct {
	Columns []columnRecord `msgpack:"c"`
}

type columnRecord struct {
	Name     string      `msgpack:"n"`
	Type     ColumnType  `msgpack:"t"`
	Nullable bool        `msgpack:"z,omitempty"`
	Sub      *specRecord `msgpack:"s,omitempty"`
}

// tableRecord is the persisted form of a root table. Subtable cells hold
// the nested rows inline.
type tableRecord struct {
	Spec specRecord `msgpack:"s"`
	Rows [][]any    `msgpack:"r"`
}

func specToRecord(spec *Spec) specRecord {
	rec := specRecord{Columns: make([]columnRecord, len(spec.columns))}
	for i, col := range spec.columns {
		rec.Columns[i] = columnRecord{Name: col.Name, Type: col.Type, Nullable: col.Nullable}
		if col.Type == TypeTable {
			sub := specToRecord(col.Subtable)
			rec.Columns[i].Sub = &sub
		}
	}
	return rec
}

func (rec *specRecord) toSpec() (*Spec, error) {
	cols := make([]Column, len(rec.Columns))
	for i, cr := range rec.Columns {
		cols[i] = Column{Name: cr.Name, Type: cr.Type, Nullable: cr.Nullable}
		if cr.Sub != nil {
			sub, err := cr.Sub.toSpec()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", cr.Name, err)
			}
			cols[i].Subtable = sub
		}
	}
	return NewSpec(cols...)
}

// exportRows copies a table's contents into plain values, recursing into
// subtables. It only reads, so several tables may be exported concurrently.
func (g *Group) exportRows(td *tableData) [][]any {
	rows := make([][]any, len(td.keys))
	for i := range td.keys {
		row := make([]any, len(td.cols))
		for ci, c := range td.cols {
			v := c.get(i)
			if td.spec.columns[ci].Type == TypeTable {
				v = g.exportRows(g.slots[v.(slotID)].data)
			}
			row[ci] = v
		}
		rows[i] = row
	}
	return rows
}
