// Package session holds the current bearer credential for a storefront
// process. A Holder is created once at startup, loaded from durable storage,
// and passed explicitly to every component that needs the credential.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Holder is the in-memory view of the stored credential. Set is the only
// write path; it keeps memory and storage in step.
type Holder struct {
	mu     sync.RWMutex
	store  types.CredentialStore
	token  string
	logger *zap.Logger
}

// Option configures a Holder.
type Option func(*Holder)

// WithLogger sets the logger used for session changes.
func WithLogger(l *zap.Logger) Option {
	return func(h *Holder) { h.logger = l }
}

// Open creates a Holder and loads the credential from store. The store must
// already be attached.
func Open(ctx context.Context, store types.CredentialStore, opts ...Option) (*Holder, error) {
	if store == nil {
		return nil, errors.New("session: nil credential store")
	}
	h := &Holder{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}

	token, err := store.LoadCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	h.token = token
	h.logger.Debug("session loaded", zap.Bool("authenticated", token != ""))
	return h, nil
}

// Token returns the current credential, or "" when logged out.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Authenticated reports whether a credential is present.
func (h *Holder) Authenticated() bool {
	return h.Token() != ""
}

// Set replaces the credential. An empty token logs out. The durable entry is
// written first and memory changes only after the write succeeded, all under
// the holder's lock; on error neither side changes.
func (h *Holder) Set(ctx context.Context, token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.SaveCredential(ctx, token); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	h.token = token
	if token == "" {
		h.logger.Info("session cleared")
	} else {
		h.logger.Info("session established")
	}
	return nil
}

// Clear logs out.
func (h *Holder) Clear(ctx context.Context) error {
	return h.Set(ctx, "")
}
