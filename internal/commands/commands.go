// Package commands provides the static command sets handed to bots at startup.
package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEmptyBotID is returned when commands are requested without a bot id.
	ErrEmptyBotID = errors.New("bot id cannot be empty")
	// ErrUnknownCommand is returned when an override names a command missing from the default set.
	ErrUnknownCommand = errors.New("unknown command")
)

// Command describes one bot command. It is opaque data for the initializer.
type Command struct {
	Name        string
	Description string
	Triggers    []string
	AdminOnly   bool
}

// Provider returns the command set for a bot identifier.
type Provider interface {
	Commands(ctx context.Context, botID string) ([]Command, error)
}

// Override customises the default set for one bot.
type Override struct {
	// Only keeps just these default commands, in default order. Empty keeps all.
	Only  []string
	Extra []Command
}

// StaticProvider serves a fixed default set with per-bot overrides.
// Bot ids are matched case-insensitively.
type StaticProvider struct {
	defaults  []Command
	overrides map[string]Override
}

// NewStaticProvider validates the overrides against defaults and returns the provider.
func NewStaticProvider(defaults []Command, overrides map[string]Override) (*StaticProvider, error) {
	known := make(map[string]struct{}, len(defaults))
	for _, c := range defaults {
		known[c.Name] = struct{}{}
	}

	normalized := make(map[string]Override, len(overrides))
	for id, o := range overrides {
		for _, name := range o.Only {
			if _, ok := known[name]; !ok {
				return nil, fmt.Errorf("%w %q in override for bot %s", ErrUnknownCommand, name, id)
			}
		}
		normalized[strings.ToLower(id)] = o
	}

	return &StaticProvider{
		defaults:  cloneAll(defaults),
		overrides: normalized,
	}, nil
}

// Commands returns a fresh copy of the command set for botID.
func (p *StaticProvider) Commands(_ context.Context, botID string) ([]Command, error) {
	if botID == "" {
		return nil, ErrEmptyBotID
	}

	o, ok := p.overrides[strings.ToLower(botID)]
	if !ok {
		return cloneAll(p.defaults), nil
	}

	set := make([]Command, 0, len(p.defaults)+len(o.Extra))
	for _, c := range p.defaults {
		if len(o.Only) == 0 || slices.Contains(o.Only, c.Name) {
			set = append(set, clone(c))
		}
	}
	for _, c := range o.Extra {
		set = append(set, clone(c))
	}
	return set, nil
}

func clone(c Command) Command {
	c.Triggers = slices.Clone(c.Triggers)
	return c
}

func cloneAll(cs []Command) []Command {
	out := make([]Command, len(cs))
	for i, c := range cs {
		out[i] = clone(c)
	}
	return out
}
