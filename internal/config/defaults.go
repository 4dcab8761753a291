package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28

	DefaultVKOAuthURL   = "https://oauth.vk.com"
	DefaultVKAPIVersion = "5.131"
	DefaultVKScope      = "all"
	DefaultVKTimeout    = 30 * time.Second

	DefaultTokenStoreDriver = "file"
	DefaultTokenFile        = "tokens.json"
	DefaultTokenDB          = "tokens.db"

	DefaultPrompterType = "terminal"
)

// DefaultSchedulerTasks are registered but disabled unless configured.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"token_store_maintenance": {Enabled: false, Schedule: "0 0 4 * * *"},
	"token_store_report":      {Enabled: false, Schedule: "0 0 * * * *"},
}

// setDefaults registers defaults for every key so that environment
// variables can override values absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)
	v.SetDefault("log.max_age_days", DefaultLogMaxAgeDays)

	v.SetDefault("vk.client_id", "")
	v.SetDefault("vk.client_secret", "")
	v.SetDefault("vk.oauth_url", DefaultVKOAuthURL)
	v.SetDefault("vk.api_version", DefaultVKAPIVersion)
	v.SetDefault("vk.scope", DefaultVKScope)
	v.SetDefault("vk.timeout", DefaultVKTimeout)

	v.SetDefault("bot.id", "")
	v.SetDefault("bot.name", "")
	v.SetDefault("bot.condition", "")
	v.SetDefault("bot.auth.login", "")
	v.SetDefault("bot.auth.phone", "")
	v.SetDefault("bot.auth.password", "")

	v.SetDefault("token_store.driver", DefaultTokenStoreDriver)
	v.SetDefault("token_store.path", "")

	v.SetDefault("prompter.type", DefaultPrompterType)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_id", 0)

	for name, task := range DefaultSchedulerTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}
}
