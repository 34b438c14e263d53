package cli

import (
	"devsyslog/internal/global"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Configuration is read from ` + global.DefaultConfigPath + ` unless -c is given.
Send SIGHUP to a running daemon to re-apply console and host levels.
`
	baseIndentSpaces int = 2
)

var helpOutput io.Writer = os.Stdout

// Full standardized help menu (wraps option printer as well)
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(helpOutput, fs, command, rootCmd)
}

func writeHelpMenu(w io.Writer, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	curCmdSet, parents := findCommand(command, rootCmd)
	if curCmdSet == nil {
		fmt.Fprintf(w, "Unknown command: %s\n", command)
		return
	}

	fmt.Fprintf(w, "Usage: %s\n\n", usageLine(curCmdSet, parents))

	if curCmdSet == rootCmd {
		fmt.Fprintln(w, curCmdSet.Description)
		fmt.Fprintln(w, curCmdSet.FullDescription)
		fmt.Fprintln(w)
	} else if curCmdSet.FullDescription != "" {
		fmt.Fprintln(w, "  Description:")
		fmt.Fprintf(w, "    %s\n\n", curCmdSet.FullDescription)
	}

	writeSubcommands(w, curCmdSet)

	if fs != nil {
		writeFlagOptions(w, fs)
	}

	if curCmdSet == rootCmd {
		fmt.Fprint(w, helpMenuTrailer)
	}
}

// Locates a command up to two levels deep, returning the chain of parents above it
func findCommand(command string, rootCmd *global.CommandSet) (found *global.CommandSet, parents []*global.CommandSet) {
	if command == "" || command == RootCLICommand {
		found = rootCmd
		return
	}
	if cmd, ok := rootCmd.ChildCommands[command]; ok {
		found = cmd
		parents = []*global.CommandSet{rootCmd}
		return
	}
	for _, topCmd := range rootCmd.ChildCommands {
		if sub, ok := topCmd.ChildCommands[command]; ok {
			found = sub
			parents = []*global.CommandSet{rootCmd, topCmd}
			return
		}
	}
	return
}

func usageLine(cmd *global.CommandSet, parents []*global.CommandSet) (line string) {
	parts := []string{os.Args[0]}
	for _, parent := range parents {
		if parent.CommandName == RootCLICommand {
			continue
		}
		parts = append(parts, parent.CommandName)
	}
	if cmd.CommandName != RootCLICommand {
		parts = append(parts, cmd.CommandName)
	}

	switch len(cmd.ChildCommands) {
	case 0:
	case 1:
		for name := range cmd.ChildCommands {
			parts = append(parts, name)
		}
	default:
		parts = append(parts, "[subcommand]")
	}
	if cmd.UsageOption != "" {
		parts = append(parts, cmd.UsageOption)
	}

	line = strings.Join(parts, " ")
	return
}

func writeSubcommands(w io.Writer, cmd *global.CommandSet) {
	if len(cmd.ChildCommands) == 0 {
		return
	}

	names := make([]string, 0, len(cmd.ChildCommands))
	width := 0
	for name := range cmd.ChildCommands {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	fmt.Fprintf(w, "%sSubcommands:\n", strings.Repeat(" ", baseIndentSpaces))
	for _, name := range names {
		fmt.Fprintf(w, "%s%-*s - %s\n", strings.Repeat(" ", baseIndentSpaces+2), width+2, name, cmd.ChildCommands[name].Description)
	}
	fmt.Fprintln(w)
}

type flagOption struct {
	names      []string // short first
	usage      string
	defaultVal string
	hasShort   bool
}

// Groups short and long flags that share usage text into one option line
func collectFlagOptions(fs *flag.FlagSet) (options []*flagOption) {
	byUsage := make(map[string]*flagOption)
	fs.VisitAll(func(arg *flag.Flag) {
		option, ok := byUsage[arg.Usage]
		if !ok {
			option = &flagOption{usage: arg.Usage, defaultVal: arg.DefValue}
			byUsage[arg.Usage] = option
			options = append(options, option)
		}
		if len(arg.Name) == 1 {
			option.names = append([]string{"-" + arg.Name}, option.names...)
			option.hasShort = true
		} else {
			option.names = append(option.names, "--"+arg.Name)
		}
	})

	sort.Slice(options, func(a, b int) bool {
		return strings.ToLower(strings.TrimLeft(options[a].names[0], "-")) < strings.ToLower(strings.TrimLeft(options[b].names[0], "-"))
	})
	return
}

// Custom printer to deduplicate short/long usages and indent automatically
func writeFlagOptions(w io.Writer, fs *flag.FlagSet) {
	const joiner string = ", "
	// long-only options line up with the long half of "-x, --long"
	const longOnlyOffset int = len(joiner) + 2

	options := collectFlagOptions(fs)

	labels := make([]string, len(options))
	width := 0
	for i, option := range options {
		labels[i] = strings.Join(option.names, joiner)
		if !option.hasShort {
			labels[i] = strings.Repeat(" ", longOnlyOffset) + labels[i]
		}
		width = max(width, len(labels[i]))
	}

	indent := strings.Repeat(" ", baseIndentSpaces)
	fmt.Fprintf(w, "%sOptions:\n", indent)
	for i, option := range options {
		desc := option.usage
		if option.defaultVal != "" && option.defaultVal != "false" && option.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", option.defaultVal)
		}
		fmt.Fprintf(w, "%s%-*s  %s\n", indent, width, labels[i], desc)
	}
}
