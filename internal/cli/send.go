package cli

import (
	"context"
	"devsyslog/internal/global"
	"devsyslog/internal/sender"
	"devsyslog/internal/syslog"
	"flag"
	"os"
	"strings"

	"github.com/spf13/afero"
)

func SendMode(ctx context.Context, commandname string, args []string) {
	var configPath string
	var priorityText string
	var function string
	var report bool
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)
	commandFlags.StringVar(&priorityText, "p", global.DefaultSeverity, "Priority as facility.severity, severity name or number <0...191>")
	commandFlags.StringVar(&priorityText, "priority", global.DefaultSeverity, "Priority as facility.severity, severity name or number <0...191>")
	commandFlags.StringVar(&function, "f", global.ProgBaseName, "Function name recorded with the message")
	commandFlags.StringVar(&function, "function", global.ProgBaseName, "Function name recorded with the message")
	commandFlags.BoolVar(&report, "report", false, "Print connection statistics after sending")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	commandFlags.Parse(args)

	text := strings.Join(commandFlags.Args(), " ")
	if text == "" {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(configPath)
	exitOnError(err, "failed to load configuration")

	priority, err := syslog.ParsePriority(priorityText, cfg.DefaultFacility)
	exitOnError(err, "invalid priority")

	pipeline := newPipeline(ctx, cfg)
	pipeline.Log(priority, function, "%s", text)
	pipeline.Flush()

	if report {
		err = pipeline.Report(os.Stdout)
		exitOnError(err, "failed to write report")
	}

	err = pipeline.Close()
	exitOnError(err, "failed to close pipeline")
}

func newPipeline(ctx context.Context, cfg sender.Config) (pipeline *sender.Pipeline) {
	hostID, err := sender.ResolveHostID(afero.NewOsFs(), cfg)
	exitOnError(err, "failed to resolve device identity")

	pipeline, err = sender.New(ctx, cfg, sender.Dependencies{})
	exitOnError(err, "failed to create pipeline")
	pipeline.SetHostID(hostID)
	return
}
