package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/edgard/vkbot/internal/commands"
	"github.com/edgard/vkbot/internal/logger"
	"github.com/edgard/vkbot/internal/tokenstore"
	"github.com/edgard/vkbot/internal/vkauth"
)

// ErrAuthorization is wrapped by every failed token acquisition.
var ErrAuthorization = errors.New("authorization failed")

// Authorizer obtains a user access token.
type Authorizer interface {
	AuthorizeUser(ctx context.Context, scope string) (*vkauth.Token, error)
}

// AuthorizerFactory builds an Authorizer for one user account.
type AuthorizerFactory func(auth vkauth.Credentials) Authorizer

// Result is the outcome of one initialization. Exactly one field is set.
type Result struct {
	Bot *Bot
	Err error
}

// Initializer builds bot instances from a command provider, a token store and
// an authorizer.
type Initializer struct {
	logger        *slog.Logger
	commands      commands.Provider
	store         tokenstore.Store
	newAuthorizer AuthorizerFactory
	scope         string
}

// NewInitializer creates an Initializer. scope is requested on every new
// authorization, usually "all".
func NewInitializer(
	log *slog.Logger,
	provider commands.Provider,
	store tokenstore.Store,
	newAuthorizer AuthorizerFactory,
	scope string,
) *Initializer {
	if log == nil {
		log = logger.Discard()
	}
	return &Initializer{
		logger:        log.With("component", "bot_initializer"),
		commands:      provider,
		store:         store,
		newAuthorizer: newAuthorizer,
		scope:         scope,
	}
}

// Initialize builds the bot described by cfg. A stored token is reused as is,
// without validation. Otherwise the user is authorized once and the new
// token is stored before the bot is returned. Nothing is written when
// authorization fails.
func (i *Initializer) Initialize(ctx context.Context, cfg Config) (*Bot, error) {
	log := i.logger.With("bot_id", cfg.ID, "invocation_id", uuid.NewString())
	log.InfoContext(ctx, "Creating bot instance")

	log.DebugContext(ctx, "Getting commands")
	cmds, err := i.commands.Commands(ctx, cfg.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get commands", "error", err)
		return nil, fmt.Errorf("failed to get commands for bot %s: %w", cfg.ID, err)
	}

	log.DebugContext(ctx, "Checking for saved token")
	exists, err := i.store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check token store: %w", err)
	}
	if exists {
		token, ok, err := i.store.Get(ctx, cfg.ID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to read token store", "error", err)
			return nil, fmt.Errorf("failed to read token for bot %s: %w", cfg.ID, err)
		}
		if ok {
			log.InfoContext(ctx, "Saved token found, returning the instance")
			return i.build(cfg, cmds, token), nil
		}
	}

	log.InfoContext(ctx, "No saved token, authorizing", "scope", i.scope)
	tokenObject, err := i.newAuthorizer(cfg.Auth).AuthorizeUser(ctx, i.scope)
	if err != nil {
		log.ErrorContext(ctx, "Error occurred while creating bot instance", "error", err)
		return nil, fmt.Errorf("%w for bot %s: %w", ErrAuthorization, cfg.ID, err)
	}
	if tokenObject == nil || tokenObject.AccessToken == "" {
		return nil, fmt.Errorf("%w for bot %s: %w", ErrAuthorization, cfg.ID, vkauth.ErrNoAccessToken)
	}

	log.DebugContext(ctx, "Token received, saving it")
	if err := i.store.Put(ctx, cfg.ID, tokenObject.AccessToken); err != nil {
		log.ErrorContext(ctx, "Failed to save token", "error", err)
		return nil, fmt.Errorf("failed to save token for bot %s: %w", cfg.ID, err)
	}

	log.InfoContext(ctx, "Token saved, returning the instance")
	return i.build(cfg, cmds, tokenObject.AccessToken), nil
}

// Start runs Initialize in the background. The channel receives exactly one
// Result and is then closed.
func (i *Initializer) Start(ctx context.Context, cfg Config) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		b, err := i.Initialize(ctx, cfg)
		if err != nil {
			out <- Result{Err: err}
			return
		}
		out <- Result{Bot: b}
	}()
	return out
}

func (i *Initializer) build(cfg Config, cmds []commands.Command, token string) *Bot {
	return NewBot(Params{
		ID:        cfg.ID,
		Commands:  cmds,
		Condition: cfg.Condition,
		Name:      cfg.Name,
		Token:     token,
	})
}
