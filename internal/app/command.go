package app

// Command is the run mode selected on the command line.
type Command string

const (
	// CommandServe runs the HTTP API with the dispatcher and the overdue job.
	CommandServe Command = "serve"
	// CommandMigrate applies the event store migrations and exits.
	CommandMigrate Command = "migrate"
	// CommandSeed applies SEED_FILE and exits.
	CommandSeed Command = "seed"
	// CommandAdminToken prints a signed admin bearer token.
	CommandAdminToken Command = "admin-token"
	// CommandUnknown is returned for unsupported arguments.
	CommandUnknown Command = ""
)

// ParseCommand reads the sub command from args. No arguments means CommandServe.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch Command(args[0]) {
	case CommandServe, CommandMigrate, CommandSeed, CommandAdminToken:
		return Command(args[0])
	default:
		return CommandUnknown
	}
}
