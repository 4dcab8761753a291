package database

import "time"

// BotToken is a persisted access token for one bot identifier.
type BotToken struct {
	BotID     string    `db:"bot_id"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
