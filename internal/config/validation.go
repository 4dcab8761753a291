package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags and the rules spanning several sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if c.Prompter.Type == "telegram" {
		if c.Telegram.Token == "" {
			return fmt.Errorf("%w: telegram.token is required for the telegram prompter", ErrValidation)
		}
		if c.Telegram.AdminID <= 0 {
			return fmt.Errorf("%w: telegram.admin_id is required for the telegram prompter", ErrValidation)
		}
	}

	return nil
}

// Enabled reports whether the named task is configured, enabled and has a schedule.
func (c SchedulerConfig) Enabled(name string) bool {
	task, ok := c.Tasks[name]
	return ok && task.Enabled && task.Schedule != ""
}
