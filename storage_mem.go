package tightdb

import (
	"errors"
	"maps"
	"slices"
	"sync"
)

var errMemClosed = errors.New("memory storage closed")

// memStorage keeps committed buckets in maps. A transaction works on a deep
// copy and swaps it in on commit; writers are serialized by a one-slot
// semaphore. Used by tests.
type memStorage struct {
	writer chan struct{}

	mu      sync.Mutex
	buckets map[string]memBucket
	closed  bool
}

type memBucket map[string][]byte

func newMemStorage() *memStorage {
	return &memStorage{
		writer:  make(chan struct{}, 1),
		buckets: make(map[string]memBucket),
	}
}

func (s *memStorage) BeginTx(writable bool) (storageTx, error) {
	if writable {
		s.writer <- struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if writable {
			<-s.writer
		}
		return nil, errMemClosed
	}
	snap := make(map[string]memBucket, len(s.buckets))
	for name, b := range s.buckets {
		snap[name] = maps.Clone(b)
	}
	return &memTx{s: s, writable: writable, buckets: snap}, nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

type memTx struct {
	s        *memStorage
	writable bool
	done     bool
	buckets  map[string]memBucket
}

func (tx *memTx) finish() {
	if tx.done {
		return
	}
	tx.done = true
	if tx.writable {
		<-tx.s.writer
	}
}

func (tx *memTx) Bucket(name string) storageBucket {
	b, ok := tx.buckets[name]
	if !ok {
		return nil
	}
	return memBucketRef{tx, b}
}

func (tx *memTx) CreateBucket(name string) (storageBucket, error) {
	if !tx.writable {
		return nil, errTxReadOnly
	}
	b, ok := tx.buckets[name]
	if !ok {
		b = make(memBucket)
		tx.buckets[name] = b
	}
	return memBucketRef{tx, b}, nil
}

func (tx *memTx) DeleteBucket(name string) error {
	if !tx.writable {
		return errTxReadOnly
	}
	if _, ok := tx.buckets[name]; !ok {
		return ErrBucketNotFound
	}
	delete(tx.buckets, name)
	return nil
}

func (tx *memTx) Commit() error {
	if !tx.writable || tx.done {
		return errTxReadOnly
	}
	defer tx.finish()
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if tx.s.closed {
		return errMemClosed
	}
	tx.s.buckets = tx.buckets
	return nil
}

func (tx *memTx) Rollback() error {
	tx.finish()
	return nil
}

var errTxReadOnly = errors.New("transaction is read-only or finished")

type memBucketRef struct {
	tx *memTx
	b  memBucket
}

func (r memBucketRef) Get(key []byte) []byte {
	return r.b[string(key)]
}

func (r memBucketRef) Put(key, value []byte) error {
	if !r.tx.writable {
		return errTxReadOnly
	}
	r.b[string(key)] = slices.Clone(value)
	return nil
}

func (r memBucketRef) KeyCount() int {
	return len(r.b)
}
