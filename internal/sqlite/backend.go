// Package sqlite implements the SQLite credential store for storefront.
// It keeps one named entry holding the bearer credential so a login survives
// between runs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Backend implements types.CredentialStore on a SQLite database file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	dataDir  string
	db       *sql.DB

	// now is overridable in tests.
	now func() time.Time
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a data directory to initialize.
func NewBackend() *Backend {
	return &Backend{now: time.Now}
}

// Attach opens (creating if needed) the database under dataDir and applies
// the schema. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(dataDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers; SQLite allows no more anyway.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	b.db = db
	b.dataDir = dataDir
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// DataDir returns the directory the backend is attached to.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

// LoadCredential returns the stored bearer credential, or "" when none.
func (b *Backend) LoadCredential(ctx context.Context) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}
	return b.getEntry(ctx, entryAccessToken)
}

// SaveCredential stores token, or removes the entry when token is empty.
func (b *Backend) SaveCredential(ctx context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if token == "" {
		return b.deleteEntry(ctx, entryAccessToken)
	}
	return b.putEntry(ctx, entryAccessToken, token)
}

// getEntry reads a named entry. Caller holds b.mu.
func (b *Backend) getEntry(ctx context.Context, name string) (string, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read entry %s: %w", name, err)
	}
	return value, nil
}

// putEntry upserts a named entry inside a transaction. Caller holds b.mu.
func (b *Backend) putEntry(ctx context.Context, name, value string) error {
	return b.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entries (name, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			name, value, b.now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("write entry %s: %w", name, err)
		}
		return nil
	})
}

// deleteEntry removes a named entry. Removing a missing entry succeeds.
// Caller holds b.mu.
func (b *Backend) deleteEntry(ctx context.Context, name string) error {
	return b.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE name = ?`, name); err != nil {
			return fmt.Errorf("delete entry %s: %w", name, err)
		}
		return nil
	})
}

// inTx runs fn in a transaction, committing on success and rolling back on
// any error.
func (b *Backend) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ types.CredentialStore = (*Backend)(nil)
