// Package tokenstore persists bot access tokens keyed by bot identifier.
//
// Stores are not safe for concurrent read-modify-write from several
// processes: the file backend rewrites the whole mapping and the last writer
// wins. Callers serialize initialization themselves.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edgard/vkbot/internal/config"
	"github.com/edgard/vkbot/internal/database"
)

var (
	// ErrEmptyID is returned when a bot identifier is empty.
	ErrEmptyID = errors.New("bot id cannot be empty")
	// ErrEmptyToken is returned when storing an empty token.
	ErrEmptyToken = errors.New("token cannot be empty")
	// ErrCorrupt is wrapped when persisted data cannot be decoded.
	ErrCorrupt = errors.New("token store is corrupt")
)

// Store maps bot identifiers to access tokens. Each id maps to at most one
// token and writing one id never removes another.
type Store interface {
	// Exists reports whether the store has been persisted at all.
	Exists(ctx context.Context) (bool, error)
	// Get returns the token for id and whether it was found.
	Get(ctx context.Context, id string) (string, bool, error)
	// Put adds or overwrites the token for id.
	Put(ctx context.Context, id, token string) error
	// All returns a copy of the whole mapping.
	All(ctx context.Context) (map[string]string, error)
	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Close releases resources held by the store.
	Close() error
}

// Maintainer is implemented by stores with periodic housekeeping.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// Open builds the store selected by cfg.Driver.
func Open(cfg config.TokenStoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Path, logger), nil
	case "sqlite":
		db, err := database.NewDB(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open token database: %w", err)
		}
		return NewSQLStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported token store driver %q", cfg.Driver)
	}
}

func validate(id, token string) error {
	if id == "" {
		return ErrEmptyID
	}
	if token == "" {
		return ErrEmptyToken
	}
	return nil
}
