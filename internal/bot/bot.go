// Package bot builds ready-to-run bot instances: it resolves the command set
// and an access token, reusing a stored token when one exists.
package bot

import (
	"fmt"
	"slices"

	"github.com/edgard/vkbot/internal/commands"
	"github.com/edgard/vkbot/internal/logger"
	"github.com/edgard/vkbot/internal/vkauth"
)

// Config describes the bot to initialize. It is supplied by the caller and
// not modified.
type Config struct {
	ID        string
	Auth      vkauth.Credentials
	Condition string
	Name      string
}

// Params are the values a Bot is assembled from.
type Params struct {
	ID        string
	Commands  []commands.Command
	Condition string
	Name      string
	Token     string
}

// Bot is a fully constructed bot instance.
type Bot struct {
	id        string
	commands  []commands.Command
	condition string
	name      string
	token     string
}

// NewBot assembles a Bot from p.
func NewBot(p Params) *Bot {
	return &Bot{
		id:        p.ID,
		commands:  slices.Clone(p.Commands),
		condition: p.Condition,
		name:      p.Name,
		token:     p.Token,
	}
}

// ID returns the bot identifier.
func (b *Bot) ID() string { return b.id }

// Name returns the display name.
func (b *Bot) Name() string { return b.name }

// Condition returns the bot-specific condition descriptor.
func (b *Bot) Condition() string { return b.condition }

// Token returns the access token.
func (b *Bot) Token() string { return b.token }

// Commands returns a copy of the command set.
func (b *Bot) Commands() []commands.Command { return slices.Clone(b.commands) }

// Command looks a command up by name.
func (b *Bot) Command(name string) (commands.Command, bool) {
	for _, c := range b.commands {
		if c.Name == name {
			return c, true
		}
	}
	return commands.Command{}, false
}

func (b *Bot) String() string {
	return fmt.Sprintf("Bot[id=%s name=%q commands=%d token=%s]", b.id, b.name, len(b.commands), logger.MaskToken(b.token))
}
