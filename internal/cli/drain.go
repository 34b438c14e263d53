package cli

import (
	"context"
	"devsyslog/internal/global"
	"flag"
	"fmt"
)

func DrainMode(ctx context.Context, commandname string, args []string) {
	var configPath string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	commandFlags.Parse(args)

	cfg, _, err := loadConfig(configPath)
	exitOnError(err, "failed to load configuration")

	pipeline := newPipeline(ctx, cfg)
	defer pipeline.Close()

	pipeline.CheckOfflineQueueSize()
	replayed, err := pipeline.Drain()
	exitOnError(err, "offline queue drain failed")

	fmt.Printf("Replayed %d queued messages\n", replayed)
}
