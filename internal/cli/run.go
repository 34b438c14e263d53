package cli

import (
	"context"
	"devsyslog/internal/global"
	"devsyslog/internal/lifecycle"
	"devsyslog/internal/sender"
	"flag"
	"io"
	"os"
)

func RunMode(ctx context.Context, commandname string, args []string) {
	var configPath string
	var readStdin bool
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)
	commandFlags.BoolVar(&readStdin, "stdin", false, "Log each line read from standard input, exit at end of input")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	commandFlags.Parse(args)

	cfg, loadedFrom, err := loadConfig(configPath)
	exitOnError(err, "failed to load configuration")

	var input io.Reader
	if readStdin {
		input = os.Stdin
	}

	daemon := sender.NewDaemon(cfg, loadedFrom)
	err = daemon.Start(ctx, input, sender.Dependencies{})
	exitOnError(err, "failed to start daemon")

	signalCtx, stopSignals := context.WithCancel(ctx)
	defer stopSignals()
	go lifecycle.SignalHandler(signalCtx, daemon)

	daemon.Run()
	daemon.Shutdown()
}
