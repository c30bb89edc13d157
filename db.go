package tightdb

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// Group owns a set of named root tables and every subtable nested in them.
// A Group is not safe for concurrent use; callers serialize access.
type Group struct {
	slots []tableSlot
	free  []slotID

	roots       []slotID
	rootsByName map[string]slotID

	logger  *slog.Logger
	verbose bool

	store storage
	id    uuid.UUID
}

type Options struct {
	Logger  *slog.Logger
	Verbose bool

	IsTesting bool
	MmapSize  int
	Timeout   time.Duration
}

// New returns an empty in-memory group. Commit on such a group fails with
// ErrNoStorage.
func New(opt Options) *Group {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Group{
		rootsByName: make(map[string]slotID),
		logger:      opt.Logger,
		verbose:     opt.Verbose,
	}
}

// Open opens (creating if needed) a Bolt file and loads every root table
// stored in it.
func Open(path string, opt Options) (*Group, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.Timeout != 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("tightdb: %w", err)
	}
	g, err := openStorage(newBoltStorage(bdb), opt)
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("tightdb: %s: %w", path, err)
	}
	return g, nil
}

func openStorage(store storage, opt Options) (*Group, error) {
	g := New(opt)
	g.store = store
	if err := g.load(context.Background()); err != nil {
		return nil, err
	}
	return g, nil
}

// ID returns the identity assigned to the group's file on first commit, or
// uuid.Nil for groups that were never committed.
func (g *Group) ID() uuid.UUID {
	return g.id
}

func (g *Group) Close() error {
	if g.store == nil {
		return nil
	}
	err := g.store.Close()
	g.store = nil
	return err
}

// AddTable creates an empty root table.
func (g *Group) AddTable(name string, spec *Spec) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("tightdb: empty table name")
	}
	if _, exists := g.rootsByName[name]; exists {
		return nil, tableErrf(name, "", ErrTableExists, "")
	}
	id := g.allocTable(spec, name, noSlot)
	g.roots = append(g.roots, id)
	g.rootsByName[name] = id
	if g.verbose {
		g.debug("table added", slog.String("table", name), slog.String("spec", spec.String()))
	}
	return g.handle(id), nil
}

// Table returns a handle to the named root table, or nil.
func (g *Group) Table(name string) *Table {
	id, ok := g.rootsByName[name]
	if !ok {
		return nil
	}
	return g.handle(id)
}

func (g *Group) HasTable(name string) bool {
	_, ok := g.rootsByName[name]
	return ok
}

// TableNames lists root tables in creation order.
func (g *Group) TableNames() []string {
	names := make([]string, len(g.roots))
	for i, id := range g.roots {
		names[i] = g.slots[id].data.path
	}
	return names
}

// RemoveTable drops a root table; all handles into it become invalid.
func (g *Group) RemoveTable(name string) error {
	id, ok := g.rootsByName[name]
	if !ok {
		return tableErrf(name, "", ErrTableNotFound, "")
	}
	freed := g.freeTable(id)
	delete(g.rootsByName, name)
	g.roots = slices.DeleteFunc(g.roots, func(v slotID) bool { return v == id })
	if g.verbose {
		g.debug("table removed", slog.String("table", name), slog.Int("freed_tables", freed))
	}
	return nil
}

// LiveTables returns the number of allocated tables, subtables included.
func (g *Group) LiveTables() int {
	return len(g.slots) - len(g.free)
}

func (g *Group) debug(msg string, attrs ...slog.Attr) {
	g.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}
