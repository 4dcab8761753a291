package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/edgard/vkbot/internal/app"
	"github.com/edgard/vkbot/internal/bot"
	"github.com/edgard/vkbot/internal/commands"
	"github.com/edgard/vkbot/internal/config"
	"github.com/edgard/vkbot/internal/logger"
	"github.com/edgard/vkbot/internal/scheduler"
	"github.com/edgard/vkbot/internal/telegram"
	"github.com/edgard/vkbot/internal/tokenstore"
	"github.com/edgard/vkbot/internal/vkauth"
)

func loadConfig(flags *rootFlags) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(flags.envPath); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration from %s: %w", flags.configPath, err)
	}
	log := logger.NewLogger(cfg.Log)
	log.Debug("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON, "file", cfg.Log.File)
	return cfg, log, nil
}

// runBootstrap wires every component from configuration and runs the app.
func runBootstrap(ctx context.Context, flags *rootFlags, once bool) error {
	cfg, log, err := loadConfig(flags)
	if err != nil {
		return err
	}

	store, err := tokenstore.Open(cfg.TokenStore, log)
	if err != nil {
		log.Error("Failed to open token store", "driver", cfg.TokenStore.Driver, "path", cfg.TokenStore.Path, "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close token store", "error", err)
		}
	}()

	provider, err := commands.NewStaticProvider(commands.Default, commands.OverridesFromConfig(cfg.Commands))
	if err != nil {
		log.Error("Invalid command overrides", "error", err)
		return err
	}

	var (
		prompter vkauth.Prompter
		listener app.Listener
	)
	switch cfg.Prompter.Type {
	case "terminal":
		prompter = vkauth.NewTerminalPrompter(os.Stdin, os.Stderr)
	case "telegram":
		p := telegram.NewPrompter(cfg.Telegram.AdminID, log)
		tg, err := telegram.NewPromptBot(cfg.Telegram.Token, p, log)
		if err != nil {
			log.Error("Failed to create Telegram prompt bot", "error", err)
			return err
		}
		prompter = p
		listener = tg
	}

	appCreds := vkauth.AppCredentials{ClientID: cfg.VK.ClientID, ClientSecret: cfg.VK.ClientSecret}
	newAuthorizer := func(auth vkauth.Credentials) bot.Authorizer {
		opts := []vkauth.Option{
			vkauth.WithBaseURL(cfg.VK.OAuthURL),
			vkauth.WithAPIVersion(cfg.VK.APIVersion),
			vkauth.WithTimeout(cfg.VK.Timeout),
			vkauth.WithLogger(log),
		}
		if prompter != nil {
			opts = append(opts, vkauth.WithPrompter(prompter))
		}
		return vkauth.NewClient(appCreds, auth, opts...)
	}

	var sched *scheduler.Scheduler
	if !once {
		sched, err = scheduler.New(log, &cfg.Scheduler, scheduler.RegisterAllTasks(scheduler.TaskDeps{
			Logger: log,
			Store:  store,
		}))
		if err != nil {
			log.Error("Failed to create scheduler", "error", err)
			return err
		}
	}

	a := app.New(log, app.Options{
		Initializer: bot.NewInitializer(log, provider, store, newAuthorizer, cfg.VK.Scope),
		Bot: bot.Config{
			ID: cfg.Bot.ID,
			Auth: vkauth.Credentials{
				Login:    cfg.Bot.Auth.Login,
				Phone:    cfg.Bot.Auth.Phone,
				Password: cfg.Bot.Auth.Password,
			},
			Condition: cfg.Bot.Condition,
			Name:      cfg.Bot.Name,
		},
		Scheduler: sched,
		Listener:  listener,
		Once:      once,
	})

	if _, err := a.Run(ctx); err != nil {
		return err
	}
	return nil
}
