package tightdb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	metaBucket   = "meta"
	tablesBucket = "tables"

	groupFormatVer = 1
)

var (
	metaKeyFormat = []byte("format")
	metaKeyID     = []byte("id")
	metaKeyOrder  = []byte("order")
)

// Commit writes every root table to the group's storage in one
// transaction, replacing what was stored before. Tables are encoded in
// parallel; the group must not be modified until Commit returns.
func (g *Group) Commit(ctx context.Context) error {
	if g.store == nil {
		return ErrNoStorage
	}
	start := time.Now()

	names := g.TableNames()
	records := make([][]byte, len(g.roots))
	eg, ectx := errgroup.WithContext(ctx)
	for i, id := range g.roots {
		td := g.slots[id].data
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			records[i] = encodeTableRecord(&tableRecord{
				Spec: specToRecord(td.spec),
				Rows: g.exportRows(td),
			})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("tightdb: commit: %w", err)
	}

	tx, err := g.store.BeginTx(true)
	if err != nil {
		return fmt.Errorf("tightdb: commit: %w", err)
	}
	defer tx.Rollback()

	meta, err := tx.CreateBucket(metaBucket)
	if err != nil {
		return fmt.Errorf("tightdb: commit: %w", err)
	}
	id := g.id
	if id == uuid.Nil {
		id = uuid.New()
	}
	for _, kv := range [...]struct{ k, v []byte }{
		{metaKeyFormat, binary.AppendUvarint(nil, groupFormatVer)},
		{metaKeyID, id[:]},
		{metaKeyOrder, encodeMsgPack(nil, names)},
	} {
		if err := meta.Put(kv.k, kv.v); err != nil {
			return fmt.Errorf("tightdb: commit: meta %s: %w", kv.k, err)
		}
	}

	if err := tx.DeleteBucket(tablesBucket); err != nil && !errors.Is(err, ErrBucketNotFound) {
		return fmt.Errorf("tightdb: commit: %w", err)
	}
	tables, err := tx.CreateBucket(tablesBucket)
	if err != nil {
		return fmt.Errorf("tightdb: commit: %w", err)
	}
	var size int
	for i, name := range names {
		if err := tables.Put([]byte(name), records[i]); err != nil {
			return fmt.Errorf("tightdb: commit %s: %w", name, err)
		}
		size += len(records[i])
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tightdb: commit: %w", err)
	}
	g.id = id
	if g.verbose {
		g.debug("committed", slog.Int("tables", len(names)), slog.Int("bytes", size), slog.Duration("elapsed", time.Since(start)))
	}
	return nil
}

func (g *Group) load(ctx context.Context) error {
	tx, err := g.store.BeginTx(false)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	meta := tx.Bucket(metaBucket)
	if meta == nil {
		return nil
	}
	if raw := meta.Get(metaKeyFormat); raw != nil {
		ver, n := binary.Uvarint(raw)
		if n <= 0 || ver != groupFormatVer {
			return dataErrf(raw, 0, nil, "unsupported group format")
		}
	}
	if raw := meta.Get(metaKeyID); raw != nil {
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return dataErrf(raw, 0, err, "invalid group id")
		}
		g.id = id
	}
	var names []string
	if raw := meta.Get(metaKeyOrder); raw != nil {
		if err := decodeMsgPack(raw, &names); err != nil {
			return err
		}
	}

	tables := tx.Bucket(tablesBucket)
	if tables != nil && tables.KeyCount() != len(names) {
		return fmt.Errorf("tightdb: %d stored tables, group meta lists %d", tables.KeyCount(), len(names))
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		var raw []byte
		if tables != nil {
			raw = tables.Get([]byte(name))
		}
		if raw == nil {
			return tableErrf(name, "", ErrTableNotFound, "listed in group meta but not stored")
		}
		if err := g.loadTable(name, raw); err != nil {
			return err
		}
	}
	if g.verbose {
		g.debug("loaded", slog.Int("tables", len(names)), slog.String("id", g.id.String()))
	}
	return nil
}

func (g *Group) loadTable(name string, raw []byte) error {
	rec, err := decodeTableRecord(raw)
	if err != nil {
		return tableErrf(name, "", err, "")
	}
	spec, err := rec.Spec.toSpec()
	if err != nil {
		return tableErrf(name, "", err, "stored spec")
	}
	tbl, err := g.AddTable(name, spec)
	if err != nil {
		return err
	}
	for i, row := range rec.Rows {
		if _, err := g.insertRow(tbl.id, i, row); err != nil {
			return tableErrf(name, "", err, "stored row %d", i)
		}
	}
	return nil
}
