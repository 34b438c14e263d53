package cli

import "devsyslog/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "Device Syslog (devsyslog)",
		FullDescription: "  Formats device log messages, suppresses repeats and delivers them to a syslog collector over UDP",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	root.ChildCommands["run"] = &global.CommandSet{
		CommandName:     "run",
		Description:     "Run Logging Daemon",
		FullDescription: "Logs lines read from standard input (optional <PRI> prefix), keeps the offline queue drained and handles reload signals",
	}

	root.ChildCommands["send"] = &global.CommandSet{
		CommandName:     "send",
		UsageOption:     "<message text>",
		Description:     "Send One Message",
		FullDescription: "Logs a single message through the pipeline (console and collector) and exits",
	}

	root.ChildCommands["drain"] = &global.CommandSet{
		CommandName:     "drain",
		Description:     "Replay Offline Queue",
		FullDescription: "Connects to the collector and replays any messages stored in the offline queue",
	}

	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
