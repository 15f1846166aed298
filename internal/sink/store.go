package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrNotFound = errors.New("sink: key not found")

// Store is the capability set a download target must provide.
type Store interface {
	// Write stores one chunk of key at index. Rewriting an index replaces it.
	Write(ctx context.Context, key string, index int, data []byte) error
	// Open streams all chunks of key concatenated in index order.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete drops every chunk of key. Unknown keys are not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	KindMemory   = "memory"
	KindDisk     = "disk"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindBadger   = "badger"
	KindS3       = "s3"
)

// Config selects and configures a Store.
type Config struct {
	Kind string
	// Dir is the directory used by the disk and badger stores.
	Dir string
	// DSN is the data source name for the sqlite and postgres stores.
	DSN string
	S3  S3Config
}

// S3Config configures the S3 store. Empty credentials fall back to the
// default AWS credential chain.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Open builds the store named by cfg.Kind. An empty kind selects Memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Kind {
	case "", KindMemory:
		return NewMemory(), nil
	case KindDisk:
		return NewDisk(cfg.Dir)
	case KindSQLite:
		return OpenSQL(ctx, sqliteDialect, cfg.DSN)
	case KindPostgres:
		return OpenSQL(ctx, postgresDialect, cfg.DSN)
	case KindBadger:
		return OpenBadger(cfg.Dir)
	case KindS3:
		return NewS3FromConfig(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("sink: unknown kind %q", cfg.Kind)
	}
}

func checkIndex(index int) error {
	if index < 0 {
		return fmt.Errorf("sink: negative chunk index %d", index)
	}
	return nil
}
