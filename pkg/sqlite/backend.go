// Package sqlite provides the public API for the SQLite credential store.
// This package exposes the factory function while keeping implementation
// details internal.
package sqlite

import (
	"github.com/mesh-intelligence/storefront/internal/sqlite"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// NewCredentialStore creates a new SQLite credential store.
// The store is not attached; call Attach with a data directory to initialize.
//
// Example:
//
//	store := sqlite.NewCredentialStore()
//	err := store.Attach("/home/me/.local/share/storefront")
//	defer store.Detach()
func NewCredentialStore() types.CredentialStore {
	return sqlite.NewBackend()
}
