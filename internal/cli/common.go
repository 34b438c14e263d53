package cli

import (
	"devsyslog/internal/global"
	"devsyslog/internal/sender"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
)

func SetGlobalArguments(fs *flag.FlagSet) (logLevel *int) {
	logLevel = &global.Verbosity
	fs.IntVar(&global.Verbosity, "v", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", global.DefaultConfigPath, "Path to the configuration file (.json, .yaml or .yml)")
	fs.StringVar(configPath, "config", global.DefaultConfigPath, "Path to the configuration file (.json, .yaml or .yml)")
}

// Loads the runtime config. A missing file at the default path falls back to built-in defaults.
func loadConfig(configPath string) (cfg sender.Config, loadedFrom string, err error) {
	fileConfig, err := sender.LoadConfig(configPath)
	if err != nil {
		if configPath == global.DefaultConfigPath && errors.Is(err, fs.ErrNotExist) {
			cfg = sender.DefaultConfig()
			err = nil
			return
		}
		return
	}

	cfg, err = fileConfig.NewDaemonConf()
	if err != nil {
		err = fmt.Errorf("invalid configuration in '%s': %w", configPath, err)
		return
	}
	loadedFrom = configPath
	return
}

func exitOnError(err error, message string) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	os.Exit(1)
}
