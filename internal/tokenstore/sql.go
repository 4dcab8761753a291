package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/vkbot/internal/database"
	"github.com/edgard/vkbot/internal/logger"
)

// SQLStore keeps tokens in the bot_tokens table.
type SQLStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLStore creates a Store on an already migrated database.
func NewSQLStore(db *sqlx.DB, log *slog.Logger) *SQLStore {
	if log == nil {
		log = logger.Discard()
	}
	return &SQLStore{
		db:     db,
		logger: log.With("component", "token_store", "driver", "sqlite"),
	}
}

// Exists reports whether at least one token has been stored.
func (s *SQLStore) Exists(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM bot_tokens)`); err != nil {
		return false, fmt.Errorf("failed to check token table: %w", err)
	}
	return exists, nil
}

// Get returns the token for id.
func (s *SQLStore) Get(ctx context.Context, id string) (string, bool, error) {
	if id == "" {
		return "", false, ErrEmptyID
	}

	var token string
	err := s.db.GetContext(ctx, &token, `SELECT token FROM bot_tokens WHERE bot_id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get token for bot %s: %w", id, err)
	}
	return token, true, nil
}

// Put upserts the token for id.
func (s *SQLStore) Put(ctx context.Context, id, token string) error {
	if err := validate(id, token); err != nil {
		return err
	}

	now := time.Now().UTC()
	record := database.BotToken{BotID: id, Token: token, CreatedAt: now, UpdatedAt: now}

	query := `
        INSERT INTO bot_tokens (bot_id, token, created_at, updated_at)
        VALUES (:bot_id, :token, :created_at, :updated_at)
        ON CONFLICT(bot_id) DO UPDATE SET
            token = excluded.token,
            updated_at = excluded.updated_at;
    `
	if _, err := s.db.NamedExecContext(ctx, query, record); err != nil {
		s.logger.ErrorContext(ctx, "Error saving token", "bot_id", id, "error", err)
		return fmt.Errorf("failed to save token for bot %s: %w", id, err)
	}

	s.logger.DebugContext(ctx, "Token saved", "bot_id", id)
	return nil
}

// All returns every stored token.
func (s *SQLStore) All(ctx context.Context) (map[string]string, error) {
	var records []database.BotToken
	if err := s.db.SelectContext(ctx, &records, `SELECT bot_id, token, created_at, updated_at FROM bot_tokens ORDER BY bot_id`); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	tokens := make(map[string]string, len(records))
	for _, r := range records {
		tokens[r.BotID] = r.Token
	}
	return tokens, nil
}

// Delete removes the token for id.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bot_tokens WHERE bot_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete token for bot %s: %w", id, err)
	}
	return nil
}

// Maintain runs VACUUM and lets SQLite refresh its statistics.
func (s *SQLStore) Maintain(ctx context.Context) error {
	startTime := time.Now()
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("failed to vacuum token database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		return fmt.Errorf("failed to optimize token database: %w", err)
	}
	s.logger.InfoContext(ctx, "Token database maintenance completed", "duration", time.Since(startTime))
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
