// Package app orchestrates the bootstrap: the optional Telegram prompt
// listener, the housekeeping scheduler and the bot initialization.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/vkbot/internal/bot"
	"github.com/edgard/vkbot/internal/logger"
	"github.com/edgard/vkbot/internal/scheduler"
)

// errInitialized stops the group once the bot is built in one-shot mode.
var errInitialized = errors.New("bot initialized")

// Listener receives updates until its context is cancelled.
type Listener interface {
	Start(ctx context.Context)
}

// Options configure an App. Scheduler and Listener are optional.
type Options struct {
	Initializer *bot.Initializer
	Bot         bot.Config
	Scheduler   *scheduler.Scheduler
	Listener    Listener
	// Once returns as soon as the bot is built instead of holding until shutdown.
	Once bool
	// OnReady is called with the constructed bot.
	OnReady func(*bot.Bot)
}

// App manages the lifecycle of the bootstrap components.
type App struct {
	logger *slog.Logger
	opts   Options
}

// New creates an App.
func New(log *slog.Logger, opts Options) *App {
	if log == nil {
		log = logger.Discard()
	}
	return &App{
		logger: log.With("component", "app"),
		opts:   opts,
	}
}

// Run starts all components and initializes the bot. It returns the bot
// once the context is cancelled, or right after initialization in one-shot
// mode. An initialization error stops every component.
func (a *App) Run(ctx context.Context) (*bot.Bot, error) {
	a.logger.Info("Starting bootstrap", "bot_id", a.opts.Bot.ID)

	g, gCtx := errgroup.WithContext(ctx)

	if a.opts.Listener != nil {
		g.Go(func() error {
			a.logger.Info("Starting Telegram prompt listener")
			a.opts.Listener.Start(gCtx)
			a.logger.Info("Telegram prompt listener stopped")

			if gCtx.Err() == nil {
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	if a.opts.Scheduler != nil {
		g.Go(func() error {
			if _, err := a.opts.Scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			if err := a.opts.Scheduler.Stop(); err != nil {
				a.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	var instance *bot.Bot
	g.Go(func() error {
		result := <-a.opts.Initializer.Start(gCtx, a.opts.Bot)
		if result.Err != nil {
			return result.Err
		}

		instance = result.Bot
		a.logger.Info("Bot instance ready", "bot", instance.String())
		if a.opts.OnReady != nil {
			a.opts.OnReady(instance)
		}

		if a.opts.Once {
			return errInitialized
		}
		<-gCtx.Done()
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, errInitialized) && !errors.Is(err, context.Canceled) {
		a.logger.Error("Bootstrap stopped due to error", "error", err)
		return nil, err
	}
	if instance == nil {
		// cancelled before the bot was built
		return nil, ctx.Err()
	}

	a.logger.Info("Bootstrap stopped gracefully")
	return instance, nil
}
