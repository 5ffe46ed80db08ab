package inmemdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/storage/kv"
)

// Table is an ordered, mutex-guarded collection mirrored to a single kv key.
// Every mutation writes the whole table; there is no transaction across tables.
type Table[T any] struct {
	mutex    sync.RWMutex
	key      string
	rows     []T
	sanitize func(T) T // applied to each row before it is written
	db       *DB
}

var _ core.Collection[struct{}] = (*Table[struct{}])(nil)

func newTable[T any](db *DB, key string, sanitize func(T) T) *Table[T] {
	return &Table[T]{key: key, rows: make([]T, 0), sanitize: sanitize, db: db}
}

// load reads the table from storage, keeping def when the key is missing or corrupt.
// It reports whether the stored value was used.
func (tbl *Table[T]) load(ctx context.Context, def []T) bool {
	rows := make([]T, 0)
	ok, err := kv.Load(ctx, tbl.db.store, tbl.key, &rows)
	if err != nil {
		tbl.db.logger.Warn(fmt.Sprintf("inmemdb: corrupt %q, using defaults: %v", tbl.key, err), err)
	}
	if !ok {
		rows = append(make([]T, 0, len(def)), def...)
	}
	tbl.rows = rows
	return ok
}

func (tbl *Table[T]) Key() string { return tbl.key }

func (tbl *Table[T]) snapshot() []T {
	rows := make([]T, len(tbl.rows))
	copy(rows, tbl.rows)
	return rows
}

// persist must be called with the write lock held.
func (tbl *Table[T]) persist() {
	rows := tbl.rows
	if tbl.sanitize != nil {
		rows = make([]T, len(tbl.rows))
		for i, row := range tbl.rows {
			rows[i] = tbl.sanitize(row)
		}
	}
	tbl.db.save(tbl.key, rows)
}

func (tbl *Table[T]) All() []T {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()
	return tbl.snapshot()
}

func (tbl *Table[T]) Find(match func(T) bool) (T, bool) {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	for _, row := range tbl.rows {
		if match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (tbl *Table[T]) Filter(match func(T) bool) []T {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	rows := make([]T, 0)
	for _, row := range tbl.rows {
		if match(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (tbl *Table[T]) Count(match func(T) bool) int {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	var n int
	for _, row := range tbl.rows {
		if match == nil || match(row) {
			n++
		}
	}
	return n
}

func (tbl *Table[T]) Append(rows ...T) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()
	tbl.rows = append(tbl.rows, rows...)
	tbl.persist()
}

func (tbl *Table[T]) Prepend(rows ...T) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	merged := make([]T, 0, len(rows)+len(tbl.rows))
	merged = append(merged, rows...)
	tbl.rows = append(merged, tbl.rows...)
	tbl.persist()
}

func (tbl *Table[T]) Update(match func(T) bool, fn func(*T)) int {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	var n int
	for i := range tbl.rows {
		if match(tbl.rows[i]) {
			fn(&tbl.rows[i])
			n++
		}
	}
	if n > 0 {
		tbl.persist()
	}
	return n
}

func (tbl *Table[T]) Delete(match func(T) bool) int {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	kept := make([]T, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		if !match(row) {
			kept = append(kept, row)
		}
	}
	n := len(tbl.rows) - len(kept)
	if n > 0 {
		tbl.rows = kept
		tbl.persist()
	}
	return n
}

func (tbl *Table[T]) Mutate(fn func(rows []T) []T) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	rows := fn(tbl.snapshot())
	if rows == nil {
		rows = make([]T, 0)
	}
	tbl.rows = rows
	tbl.persist()
}

// Record is a single persisted value, eg. the active session.
type Record[T any] struct {
	mutex    sync.RWMutex
	key      string
	value    *T
	sanitize func(T) T
	db       *DB
}

func newRecord[T any](db *DB, key string, sanitize func(T) T) *Record[T] {
	return &Record[T]{key: key, sanitize: sanitize, db: db}
}

func (rec *Record[T]) load(ctx context.Context) {
	var value T
	ok, err := kv.Load(ctx, rec.db.store, rec.key, &value)
	if err != nil {
		rec.db.logger.Warn(fmt.Sprintf("inmemdb: corrupt %q, ignoring: %v", rec.key, err), err)
	}
	if ok {
		rec.value = &value
	}
}

func (rec *Record[T]) Get() (T, bool) {
	rec.mutex.RLock()
	defer rec.mutex.RUnlock()

	if rec.value == nil {
		var zero T
		return zero, false
	}
	return *rec.value, true
}

func (rec *Record[T]) Set(value T) {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	rec.value = &value
	stored := value
	if rec.sanitize != nil {
		stored = rec.sanitize(stored)
	}
	rec.db.save(rec.key, stored)
}

func (rec *Record[T]) Clear() {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	rec.value = nil
	rec.db.remove(rec.key)
}

func (db *DB) save(key string, v interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), db.writeTimeout)
	defer cancel()

	start := time.Now()
	if err := kv.Save(ctx, db.store, key, v); err != nil {
		db.logger.Error(fmt.Sprintf("inmemdb: saving %q: %v", key, err), err)
		return
	}
	db.logger.Debug("inmemdb: saved", map[string]interface{}{"key": key, "took": time.Since(start).String()})
}

func (db *DB) remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), db.writeTimeout)
	defer cancel()

	if err := db.store.Delete(ctx, key); err != nil {
		db.logger.Error(fmt.Sprintf("inmemdb: deleting %q: %v", key, err), err)
	}
}
