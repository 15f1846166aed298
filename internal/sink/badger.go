package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// Badger stores chunks in an embedded badger database under
// "chunk/{key}/{index}" keys; badger's key order gives index order.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database in dir. An empty dir
// opens an in-memory database.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadger(db), nil
}

func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func badgerPrefix(key string) []byte {
	return []byte("chunk/" + key + "/")
}

func badgerKey(key string, index int) []byte {
	return []byte(fmt.Sprintf("chunk/%s/%010d", key, index))
}

func (b *Badger) Write(_ context.Context, key string, index int, data []byte) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(key, index), data)
	})
}

func (b *Badger) Open(_ context.Context, key string) (io.ReadCloser, error) {
	var buf bytes.Buffer
	found := false
	prefix := badgerPrefix(key)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			found = true
			if err := it.Item().Value(func(v []byte) error {
				buf.Write(v)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger read: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return io.NopCloser(&buf), nil
}

func (b *Badger) Exists(_ context.Context, key string) (bool, error) {
	found := false
	prefix := badgerPrefix(key)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		it.Seek(prefix)
		found = it.ValidForPrefix(prefix)
		return nil
	})
	return found, err
}

func (b *Badger) Delete(_ context.Context, key string) error {
	prefix := badgerPrefix(key)
	var keys [][]byte

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) Close() error {
	return b.db.Close()
}
