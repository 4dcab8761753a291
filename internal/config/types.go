// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import (
	"errors"
	"time"
)

// ErrValidation is wrapped by every configuration validation failure.
var ErrValidation = errors.New("validation error")

// Config defines the application configuration. Values can be set via environment
// variables prefixed with VKBOT_ (e.g., VKBOT_VK_CLIENT_SECRET) or through config.yaml.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	VK         VKConfig         `mapstructure:"vk"`
	Bot        BotConfig        `mapstructure:"bot"`
	Commands   CommandsConfig   `mapstructure:"commands"`
	TokenStore TokenStoreConfig `mapstructure:"token_store"`
	Prompter   PrompterConfig   `mapstructure:"prompter"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// LogConfig controls the slog handler and optional rotated log file.
type LogConfig struct {
	Level      string `mapstructure:"level"        validate:"oneof=debug info warn error"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"  validate:"min=1"`
	MaxBackups int    `mapstructure:"max_backups"  validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
}

// VKConfig holds the application credentials and OAuth endpoint settings.
type VKConfig struct {
	ClientID     string        `mapstructure:"client_id"     validate:"required"`
	ClientSecret string        `mapstructure:"client_secret" validate:"required"`
	OAuthURL     string        `mapstructure:"oauth_url"     validate:"required,url"`
	APIVersion   string        `mapstructure:"api_version"   validate:"required"`
	Scope        string        `mapstructure:"scope"         validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout"       validate:"min=1s,max=10m"`
}

// BotConfig describes the single bot this process bootstraps.
type BotConfig struct {
	ID        string     `mapstructure:"id"        validate:"required"`
	Name      string     `mapstructure:"name"`
	Condition string     `mapstructure:"condition"`
	Auth      AuthConfig `mapstructure:"auth"`
}

// AuthConfig holds the user account used for the interactive authorization.
type AuthConfig struct {
	Login    string `mapstructure:"login"    validate:"required_without=Phone"`
	Phone    string `mapstructure:"phone"    validate:"required_without=Login"`
	Password string `mapstructure:"password" validate:"required"`
}

// CommandsConfig customises the static command set per bot id.
type CommandsConfig struct {
	Overrides map[string]CommandOverride `mapstructure:"overrides" validate:"dive"`
}

// CommandOverride restricts the default command set to Only (when non-empty)
// and appends Extra.
type CommandOverride struct {
	Only  []string        `mapstructure:"only"`
	Extra []CommandConfig `mapstructure:"extra" validate:"dive"`
}

// CommandConfig is a command descriptor declared in configuration.
type CommandConfig struct {
	Name        string   `mapstructure:"name"        validate:"required"`
	Description string   `mapstructure:"description"`
	Triggers    []string `mapstructure:"triggers"`
	AdminOnly   bool     `mapstructure:"admin_only"`
}

// TokenStoreConfig selects the token persistence backend.
type TokenStoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=file sqlite"`
	Path   string `mapstructure:"path"   validate:"required"`
}

// PrompterConfig selects how interactive authorization questions reach the operator.
type PrompterConfig struct {
	Type string `mapstructure:"type" validate:"oneof=none terminal telegram"`
}

// TelegramConfig is used when the prompter type is "telegram".
type TelegramConfig struct {
	Token   string `mapstructure:"token"`
	AdminID int64  `mapstructure:"admin_id"`
}

// SchedulerConfig holds the configuration for all scheduled tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig defines the configuration for a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}
