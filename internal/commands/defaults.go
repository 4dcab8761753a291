package commands

// Default is the command set every bot gets unless overridden.
var Default = []Command{
	{Name: "help", Description: "List available commands", Triggers: []string{"help", "помощь"}},
	{Name: "start", Description: "Greet the user", Triggers: []string{"start", "начать"}},
	{Name: "ping", Description: "Check that the bot is alive", Triggers: []string{"ping"}},
	{Name: "about", Description: "Show bot name and version", Triggers: []string{"about", "бот"}},
	{Name: "add", Description: "Add the bot to a conversation", Triggers: []string{"add"}, AdminOnly: true},
	{Name: "kick", Description: "Remove a member from the conversation", Triggers: []string{"kick"}, AdminOnly: true},
}
