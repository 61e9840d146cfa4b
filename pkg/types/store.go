package types

import (
	"context"
	"errors"
)

// CredentialStore is durable storage for the single bearer credential.
// Callers attach to a data directory, read and write the entry, and detach
// when done.
type CredentialStore interface {
	// Attach opens the store under dataDir, creating the directory and the
	// database file if needed. Returns ErrAlreadyAttached if called twice.
	Attach(dataDir string) error

	// Detach releases resources. Idempotent.
	Detach() error

	// LoadCredential returns the stored credential, or "" when none is stored.
	LoadCredential(ctx context.Context) (string, error)

	// SaveCredential persists token, replacing any previous value. An empty
	// token removes the entry. The write is atomic: either the new value is
	// stored or the previous one is left untouched.
	SaveCredential(ctx context.Context, token string) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("credential store is detached")
	ErrAlreadyAttached = errors.New("credential store is already attached")
)
