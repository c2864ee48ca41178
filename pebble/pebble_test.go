// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"crypto/rand"
	"fmt"
	"os"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const batchSize = 1_500_000

func randBytes() []byte {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func newTestDB(t *testing.T) *Database {
	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, registry, err := Open(t.TempDir(), "db", cfg)
	require.NoError(t, err)
	require.NotNil(t, registry)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestPutGetDelete(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	k, v := []byte("k"), []byte("v")

	_, err := db.Get(k)
	require.ErrorIs(err, database.ErrNotFound)
	has, err := db.Has(k)
	require.NoError(err)
	require.False(has)

	require.NoError(db.Put(k, v))
	got, err := db.Get(k)
	require.NoError(err)
	require.Equal(v, got)
	has, err = db.Has(k)
	require.NoError(err)
	require.True(has)

	require.NoError(db.Delete(k))
	_, err = db.Get(k)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestBatch(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	require.NoError(db.Put([]byte("gone"), []byte{1}))

	b := db.NewBatch()
	require.NoError(b.Put([]byte("a"), []byte{1}))
	require.NoError(b.Delete([]byte("gone")))
	require.Equal(len("a")+1+len("gone"), b.Size())

	// Nothing is visible before the write.
	_, err := db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(b.Write())
	got, err := db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, got)
	_, err = db.Get([]byte("gone"))
	require.ErrorIs(err, database.ErrNotFound)

	mem := memdb.New()
	require.NoError(mem.Put([]byte("gone"), []byte{2}))
	require.NoError(b.Replay(mem))
	has, err := mem.Has([]byte("gone"))
	require.NoError(err)
	require.False(has)
	got, err = mem.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, got)

	b.Reset()
	require.Zero(b.Size())
}

func TestIteratorWithPrefix(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	for _, k := range [][]byte{{0, 1}, {1, 2}, {1, 1}, {1, 0xff}, {2}} {
		require.NoError(db.Put(k, k))
	}

	iter := db.NewIteratorWithPrefix([]byte{1})
	defer iter.Release()
	var keys [][]byte
	for iter.Next() {
		require.Equal(iter.Key(), iter.Value())
		keys = append(keys, iter.Key())
	}
	require.NoError(iter.Error())
	require.Equal([][]byte{{1, 1}, {1, 2}, {1, 0xff}}, keys)
}

func TestPrefixBound(t *testing.T) {
	tests := map[string]struct {
		prefix []byte
		bound  []byte
	}{
		"empty":     {prefix: nil, bound: nil},
		"simple":    {prefix: []byte{1, 2}, bound: []byte{1, 3}},
		"carry":     {prefix: []byte{1, 0xff}, bound: []byte{2}},
		"unbounded": {prefix: []byte{0xff, 0xff}, bound: nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.bound, prefixBound(tt.prefix))
		})
	}
}

func TestClosed(t *testing.T) {
	require := require.New(t)
	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, _, err := New(t.TempDir(), cfg)
	require.NoError(err)
	require.NoError(db.Close())

	require.ErrorIs(db.Close(), database.ErrClosed)
	_, err = db.Get([]byte("k"))
	require.ErrorIs(err, database.ErrClosed)
	require.ErrorIs(db.Put([]byte("k"), nil), database.ErrClosed)
	iter := db.NewIteratorWithPrefix(nil)
	require.False(iter.Next())
	require.ErrorIs(iter.Error(), database.ErrClosed)
}

func TestMetrics(t *testing.T) {
	require := require.New(t)
	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(err)

	b := db.NewBatch()
	require.NoError(b.Put([]byte("a"), []byte("1")))
	require.NoError(b.Put([]byte("b"), []byte("2")))
	require.NoError(b.Delete([]byte("c")))
	require.NoError(b.Write())

	require.InDelta(1, testutil.ToFloat64(db.metrics.batchWrites), 0)
	require.InDelta(3, testutil.ToFloat64(db.metrics.batchEntries), 0)

	count, err := testutil.GatherAndCount(registry, "pebble_disk_usage", "pebble_memtable_size")
	require.NoError(err)
	require.Equal(2, count)

	// Engine stats stop once the database is closed.
	require.NoError(db.Close())
	count, err = testutil.GatherAndCount(registry, "pebble_disk_usage")
	require.NoError(err)
	require.Zero(count)
}

func BenchmarkBatchInsertion(b *testing.B) {
	for _, sync := range []bool{false, true} {
		b.Run(fmt.Sprintf("sync=%t", sync), func(b *testing.B) {
			// Setup DB
			b.StopTimer()
			tdir := b.TempDir()
			cfg := NewDefaultConfig()
			cfg.Sync = sync
			db, _, err := New(tdir, cfg)
			if err != nil {
				b.Fatal(err)
			}

			// Setup keys
			keys := make([][]byte, batchSize)
			for i := 0; i < batchSize; i++ {
				keys[i] = randBytes()
			}

			b.StartTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				batch := db.NewBatch()
				for j := 0; j < batchSize; j++ {
					if err := batch.Put(keys[j], randBytes()); err != nil {
						b.Fatal(err)
					}
				}
				if err := batch.Write(); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()

			if err := db.Close(); err != nil {
				b.Fatal(err)
			}
			if err := os.RemoveAll(tdir); err != nil {
				b.Fatal(err)
			}
		})
	}
}
