package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/vkbot/internal/logger"
)

var (
	// ErrCancelled is returned when the operator answers /cancel.
	ErrCancelled = errors.New("prompt cancelled by operator")
	// ErrNotBound is returned when Prompt is called before Bind.
	ErrNotBound = errors.New("prompter is not bound to a telegram bot")
)

// CancelCommand aborts the pending prompt.
const CancelCommand = "/cancel"

// Sender is the part of the Telegram bot the prompter needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type reply struct {
	text      string
	cancelled bool
}

// Prompter asks the admin in a private chat and waits for the next message
// the admin sends. Prompts are answered one at a time.
type Prompter struct {
	adminID int64
	logger  *slog.Logger

	mu      sync.Mutex // serializes prompts
	sender  Sender
	replies chan reply
}

// NewPrompter creates a prompter for the admin user id.
func NewPrompter(adminID int64, log *slog.Logger) *Prompter {
	if log == nil {
		log = logger.Discard()
	}
	return &Prompter{
		adminID: adminID,
		logger:  log.With("component", "telegram_prompter", "admin_id", adminID),
		replies: make(chan reply, 1),
	}
}

// Bind sets the bot used to send questions.
func (p *Prompter) Bind(s Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sender = s
}

// Prompt sends question to the admin and waits for the answer.
func (p *Prompter) Prompt(ctx context.Context, question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sender == nil {
		return "", ErrNotBound
	}

	// answers sent before the question are stale
	select {
	case <-p.replies:
	default:
	}

	_, err := p.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: p.adminID,
		Text:   question + "\n\nReply with the answer or " + CancelCommand + ".",
	})
	if err != nil {
		return "", fmt.Errorf("failed to send prompt to admin: %w", err)
	}
	p.logger.InfoContext(ctx, "Prompt sent, waiting for admin reply")

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.replies:
		if r.cancelled {
			return "", ErrCancelled
		}
		return r.text, nil
	}
}

// HandleUpdate is the bot's default handler. Only text messages from the
// admin are accepted; everything else is ignored.
func (p *Prompter) HandleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	if msg.From.ID != p.adminID {
		p.logger.WarnContext(ctx, "Ignoring message from non-admin user", "user_id", msg.From.ID)
		return
	}

	text := strings.TrimSpace(msg.Text)
	r := reply{text: text, cancelled: strings.EqualFold(text, CancelCommand)}

	select {
	case p.replies <- r:
	default:
		p.logger.DebugContext(ctx, "Dropping admin message, an answer is already pending")
	}
}
