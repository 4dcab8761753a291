package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/edgard/vkbot/internal/logger"
)

// FileStore keeps the mapping as a JSON object in a single file, e.g.
// {"B1":"T1","B2":"T2"}. The file is overwritten in place on every Put.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string, log *slog.Logger) *FileStore {
	if log == nil {
		log = logger.Discard()
	}
	return &FileStore{
		path:   path,
		logger: log.With("component", "token_store", "driver", "file"),
	}
}

// Exists reports whether the token file is present.
func (s *FileStore) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat token file %s: %w", s.path, err)
}

// Get returns the token for id. A missing file is treated as an empty store.
func (s *FileStore) Get(ctx context.Context, id string) (string, bool, error) {
	if id == "" {
		return "", false, ErrEmptyID
	}
	tokens, err := s.load(ctx)
	if err != nil {
		return "", false, err
	}
	token, ok := tokens[id]
	return token, ok && token != "", nil
}

// Put loads the full mapping, sets id and writes the mapping back.
func (s *FileStore) Put(ctx context.Context, id, token string) error {
	if err := validate(id, token); err != nil {
		return err
	}
	tokens, err := s.load(ctx)
	if err != nil {
		return err
	}
	tokens[id] = token
	if err := s.save(tokens); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Token saved", "bot_id", id, "tokens", len(tokens))
	return nil
}

// All returns a copy of the mapping.
func (s *FileStore) All(ctx context.Context) (map[string]string, error) {
	return s.load(ctx)
}

// Delete removes id and rewrites the file. The file is left untouched when
// id is absent.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	tokens, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := tokens[id]; !ok {
		return nil
	}
	delete(tokens, id)
	return s.save(tokens)
}

// Maintain re-reads the file to detect corruption early.
func (s *FileStore) Maintain(ctx context.Context) error {
	tokens, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Token file verified", "path", s.path, "tokens", len(tokens))
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", s.path, err)
	}

	tokens := map[string]string{}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if tokens == nil {
		// the literal null decodes to a nil map
		tokens = map[string]string{}
	}
	return tokens, nil
}

func (s *FileStore) save(tokens map[string]string) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", s.path, err)
	}
	return nil
}
