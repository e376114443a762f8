// Package store ties the embedder, vector index, text store, and metadata
// store into the save/recall/clear surface, durable across a crash between
// a save's in-memory mutation and its three sidecar-file flushes.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// walEntry is the durable record of one in-flight Save, logged before any
// in-memory store is mutated. Row is decided up front (the append index
// for a plain add, or the caller-supplied override row) so replay never
// has to infer where an interrupted save was headed. Vec carries the
// already-computed embedding so recovery never re-runs inference.
type walEntry struct {
	Row      int
	Override bool
	Note     string
	MetaFlow string
	Vec      []float32
}

type pendingEntry struct {
	Seq   uint64
	Entry walEntry
}

// wal is a badger-backed append log: append writes an intent record under
// a monotonic sequence key, commit deletes it once every sidecar file
// reflects it. Unlike the teacher's hand-rolled CRC/fsync WAL framing,
// durability here rides entirely on badger's own value-log guarantees —
// this store only needs "is this entry still there after a crash", not a
// bespoke on-disk format.
type wal struct {
	db  *badger.DB
	seq uint64
}

func openWAL(dir string) (*wal, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: opening wal at %s: %w", dir, err)
	}

	w := &wal{db: db}
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			seq := binary.BigEndian.Uint64(it.Item().Key())
			if seq >= w.seq {
				w.seq = seq + 1
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: scanning wal at %s: %w", dir, err)
	}
	return w, nil
}

func (w *wal) append(e walEntry) (uint64, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return 0, fmt.Errorf("store: encoding wal entry: %w", err)
	}

	seq := w.seq
	w.seq++

	if err := w.db.Update(func(txn *badger.Txn) error {
		return txn.Set(walKey(seq), buf.Bytes())
	}); err != nil {
		return 0, fmt.Errorf("store: appending wal entry %d: %w", seq, err)
	}
	return seq, nil
}

func (w *wal) commit(seq uint64) error {
	if err := w.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(walKey(seq))
	}); err != nil {
		return fmt.Errorf("store: committing wal entry %d: %w", seq, err)
	}
	return nil
}

// pending returns every uncommitted entry in ascending sequence order
// (badger's big-endian keys already sort that way), for replay at Open.
func (w *wal) pending() ([]pendingEntry, error) {
	var out []pendingEntry
	err := w.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			seq := binary.BigEndian.Uint64(item.Key())
			var e walEntry
			if err := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&e)
			}); err != nil {
				return fmt.Errorf("store: decoding wal entry %d: %w", seq, err)
			}
			out = append(out, pendingEntry{Seq: seq, Entry: e})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: scanning wal: %w", err)
	}
	return out, nil
}

func (w *wal) close() error {
	return w.db.Close()
}

func walKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
