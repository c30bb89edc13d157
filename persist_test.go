package tightdb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func populate(t testing.TB, g *Group) {
	t.Helper()
	employees := must(g.AddTable("employees", employeeSpec))
	must(employees.Add("John", "Doe", 10000, true, []byte{1, 2}, birthdate, [][]any{{"home", "123"}}))
	must(employees.Add("Johny", "B. Good", -20000, false, nil, birthdate, [][]any{{"mobile", "456"}, {"work", "789"}}))
	must(g.AddTable("scores", scoreSpec))
	scores := g.Table("scores")
	must(scores.Add("alice", 10, 0.25, day(1)))
	must(scores.Add("bob", 1<<40, nil, day(2)))
}

func verify(t testing.TB, g *Group) {
	t.Helper()
	deepEqual(t, g.TableNames(), []string{"employees", "scores"})

	employees := g.Table("employees")
	deepEqual(t, must(employees.Spec()).Equal(employeeSpec), true)
	deepEqual(t, must(employees.Size()), 2)
	john := must(employees.Get(0))
	deepEqual(t, must(john.GetString("lastName")), "Doe")
	deepEqual(t, must(john.GetBytes("photo")), []byte{1, 2})
	if bd := must(john.GetTime("birthdate")); !bd.Equal(birthdate) {
		t.Errorf("** got birthdate %v, wanted %v", bd, birthdate)
	}
	johny := must(employees.Get(1))
	deepEqual(t, must(johny.GetInt("salary")), int64(-20000))
	deepEqual(t, must(johny.IsNull("photo")), true)
	phones := must(johny.Subtable("phones"))
	deepEqual(t, must(phones.Size()), 2)
	deepEqual(t, must(must(phones.Get(1)).GetString("number")), "789")

	scores := g.Table("scores")
	deepEqual(t, must(scores.Where().EqualTo("points", int64(1<<40)).Count()), 1)
	deepEqual(t, must(scores.Where().EqualTo("ratio", 0.25).Count()), 1)
	deepEqual(t, g.LiveTables(), 4)
}

func TestCommit_Bolt(t *testing.T) {
	path := setupPath(t)
	g := open(t, path)
	deepEqual(t, g.ID(), uuid.Nil)
	populate(t, g)
	noerr(t, g.Commit(context.Background()))
	id := g.ID()
	if id == uuid.Nil {
		t.Fatalf("** no group id assigned on commit")
	}
	noerr(t, g.Close())

	g = open(t, path)
	verify(t, g)
	deepEqual(t, g.ID(), id)

	// tables removed before a commit disappear from the file
	noerr(t, g.RemoveTable("employees"))
	noerr(t, g.Commit(context.Background()))
	noerr(t, g.Close())

	g = open(t, path)
	deepEqual(t, g.TableNames(), []string{"scores"})
	deepEqual(t, g.ID(), id)
}

func TestCommit_MemStorage(t *testing.T) {
	store := newMemStorage()
	g := must(openStorage(store, Options{Verbose: true}))
	populate(t, g)
	noerr(t, g.Commit(context.Background()))

	g2 := must(openStorage(store, Options{}))
	verify(t, g2)
	deepEqual(t, g2.ID(), g.ID())
}

func TestCommit_NoStorage(t *testing.T) {
	g := New(Options{})
	populate(t, g)
	isErr(t, g.Commit(context.Background()), ErrNoStorage)
	noerr(t, g.Close())
}

func TestCommit_Canceled(t *testing.T) {
	store := newMemStorage()
	g := must(openStorage(store, Options{}))
	populate(t, g)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	isErr(t, g.Commit(ctx), context.Canceled)

	g2 := must(openStorage(store, Options{}))
	deepEqual(t, g2.TableNames(), []string{})
}

func TestLoad_Corrupted(t *testing.T) {
	store := newMemStorage()
	g := must(openStorage(store, Options{}))
	populate(t, g)
	noerr(t, g.Commit(context.Background()))

	tx := must(store.BeginTx(true))
	b := tx.Bucket(tablesBucket)
	raw := append([]byte(nil), b.Get([]byte("scores"))...)
	raw[len(raw)-12] ^= 0xFF
	noerr(t, b.Put([]byte("scores"), raw))
	noerr(t, tx.Commit())

	_, err := openStorage(store, Options{})
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("** got error %v, wanted *DataError", err)
	}
	var te *TableError
	if !errors.As(err, &te) || te.Table != "scores" {
		t.Errorf("** got error %v, wanted TableError for scores", err)
	}
}

func TestTableRecord_Encoding(t *testing.T) {
	rec := &tableRecord{
		Spec: specToRecord(phoneSpec),
		Rows: [][]any{{"home", "123"}},
	}
	raw := encodeTableRecord(rec)
	out := must(decodeTableRecord(raw))
	deepEqual(t, out.Rows, rec.Rows)
	deepEqual(t, must(out.Spec.toSpec()).Equal(phoneSpec), true)

	o := func(title string, raw []byte) {
		t.Helper()
		_, err := decodeTableRecord(raw)
		var de *DataError
		if !errors.As(err, &de) {
			t.Errorf("** %s: got error %v, wanted *DataError", title, err)
		}
	}
	o("short", raw[:2])
	o("truncated", raw[:len(raw)-1])
	o("bad flags", append([]byte{0x7F}, raw[1:]...))
	o("bad version", append([]byte{raw[0], 0x09}, raw[2:]...))
}

func TestCommit_NilBinaryReopens(t *testing.T) {
	spec := DefineSpec(func(b *SpecBuilder) {
		b.String("name")
		b.Binary("blob")
		b.Binary("thumb").Nullable()
	})
	path := setupPath(t)
	g := open(t, path)
	blobs := must(g.AddTable("blobs", spec))
	row := must(blobs.Add("empty", []byte(nil), []byte(nil)))
	deepEqual(t, must(row.GetBytes("blob")), []byte{})
	deepEqual(t, must(row.IsNull("thumb")), true)
	noerr(t, g.Commit(context.Background()))
	noerr(t, g.Close())

	g = open(t, path)
	row = must(g.Table("blobs").Get(0))
	deepEqual(t, len(must(row.GetBytes("blob"))), 0)
	deepEqual(t, must(row.IsNull("blob")), false)
	deepEqual(t, must(row.IsNull("thumb")), true)
}

type failingBucket struct {
	storageBucket
	key string
}

func (b failingBucket) Put(key, value []byte) error {
	if string(key) == b.key {
		return errors.New("disk full")
	}
	return b.storageBucket.Put(key, value)
}

type failingTx struct {
	storageTx
	key string
}

func (tx failingTx) CreateBucket(name string) (storageBucket, error) {
	b, err := tx.storageTx.CreateBucket(name)
	if err != nil {
		return nil, err
	}
	return failingBucket{b, tx.key}, nil
}

type failingStorage struct {
	*memStorage
	key string
}

func (s failingStorage) BeginTx(writable bool) (storageTx, error) {
	tx, err := s.memStorage.BeginTx(writable)
	if err != nil {
		return nil, err
	}
	return failingTx{tx, s.key}, nil
}

func TestCommit_WriteErrors(t *testing.T) {
	for _, key := range []string{"format", "id", "order", "scores"} {
		t.Run(key, func(t *testing.T) {
			store := failingStorage{newMemStorage(), key}
			g := must(openStorage(store, Options{}))
			populate(t, g)
			err := g.Commit(context.Background())
			if err == nil || !strings.Contains(err.Error(), "disk full") {
				t.Fatalf("** got error %v, wanted disk full", err)
			}
			deepEqual(t, g.ID(), uuid.Nil)

			g2 := must(openStorage(store.memStorage, Options{}))
			deepEqual(t, g2.TableNames(), []string{})
		})
	}
}
