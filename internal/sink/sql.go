package sink

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/shardfetch/internal/dbx"
	"github.com/dmitrijs2005/shardfetch/internal/sink/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

var (
	sqliteDialect   = dbx.SQLite
	postgresDialect = dbx.Postgres
)

// SQL stores chunks in a relational database (sqlite or postgres).
type SQL struct {
	db      *sql.DB
	dialect dbx.Dialect
}

// NewSQL wraps an already migrated database.
func NewSQL(db *sql.DB, dialect dbx.Dialect) *SQL {
	return &SQL{db: db, dialect: dialect}
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenSQL opens dsn with the dialect's driver and migrates it.
func OpenSQL(ctx context.Context, dialect dbx.Dialect, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sink: %s store needs a DSN", dialect)
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	if dialect == sqliteDialect {
		// One writer at a time keeps sqlite from answering SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := RunMigrations(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return NewSQL(db, dialect), nil
}

func (s *SQL) Write(ctx context.Context, key string, index int, data []byte) error {
	if err := checkIndex(index); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, s.dialect.Rebind(`
			INSERT INTO sink_chunks (file_key, idx, data) VALUES (?, ?, ?)
			ON CONFLICT (file_key, idx) DO UPDATE SET data = excluded.data`),
			key, index, data)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		_, err = tx.ExecContext(ctx, s.dialect.Rebind(`
			INSERT INTO sink_files (file_key, chunk_count, byte_count)
			SELECT CAST(? AS TEXT), COUNT(*), COALESCE(SUM(LENGTH(data)), 0) FROM sink_chunks WHERE file_key = ?
			ON CONFLICT (file_key) DO UPDATE SET
				chunk_count = excluded.chunk_count,
				byte_count = excluded.byte_count`),
			key, key)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (s *SQL) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT data FROM sink_chunks WHERE file_key = ? ORDER BY idx`), key)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var (
		buf   bytes.Buffer
		found bool
	)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		buf.Write(data)
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return io.NopCloser(&buf), nil
}

func (s *SQL) Exists(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT COUNT(*) FROM sink_files WHERE file_key = ?`), key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// Size returns the number of bytes stored for key.
func (s *SQL) Size(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT byte_count FROM sink_files WHERE file_key = ?`), key).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM sink_chunks WHERE file_key = ?`), key); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM sink_files WHERE file_key = ?`), key); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (s *SQL) Close() error {
	return s.db.Close()
}
