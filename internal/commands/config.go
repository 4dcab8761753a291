package commands

import "github.com/edgard/vkbot/internal/config"

// OverridesFromConfig converts configured overrides into provider overrides.
func OverridesFromConfig(cfg config.CommandsConfig) map[string]Override {
	out := make(map[string]Override, len(cfg.Overrides))
	for id, o := range cfg.Overrides {
		extra := make([]Command, 0, len(o.Extra))
		for _, c := range o.Extra {
			extra = append(extra, Command{
				Name:        c.Name,
				Description: c.Description,
				Triggers:    c.Triggers,
				AdminOnly:   c.AdminOnly,
			})
		}
		out[id] = Override{Only: o.Only, Extra: extra}
	}
	return out
}
