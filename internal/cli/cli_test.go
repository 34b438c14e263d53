package cli

import (
	"bytes"
	"devsyslog/internal/global"
	"devsyslog/internal/syslog"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpMenu(t *testing.T) {
	root := DefineOptions()

	tests := []struct {
		name     string
		command  string
		contains []string
		excludes []string
	}{
		{
			name:     "root lists subcommands",
			command:  RootCLICommand,
			contains: []string{"[subcommand]", "Subcommands:", "drain", "run", "send", "version", "SIGHUP"},
		},
		{
			name:     "send shows usage option",
			command:  "send",
			contains: []string{"send <message text>", "Description:"},
			excludes: []string{"Subcommands:", "SIGHUP"},
		},
		{
			name:     "unknown command",
			command:  "receive",
			contains: []string{"Unknown command: receive"},
			excludes: []string{"Usage:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			fs := flag.NewFlagSet(tt.command, flag.ContinueOnError)
			writeHelpMenu(&out, fs, tt.command, root)
			for _, expect := range tt.contains {
				assert.Contains(t, out.String(), expect)
			}
			for _, unexpected := range tt.excludes {
				assert.NotContains(t, out.String(), unexpected)
			}
		})
	}
}

func TestFlagOptionsMergeShortAndLong(t *testing.T) {
	var configPath string
	var stdin bool
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	SetCommon(fs, &configPath)
	fs.BoolVar(&stdin, "stdin", false, "Read standard input")

	options := collectFlagOptions(fs)
	require.Len(t, options, 2)
	assert.Equal(t, []string{"-c", "--config"}, options[0].names)
	assert.True(t, options[0].hasShort)
	assert.Equal(t, []string{"--stdin"}, options[1].names)

	var out bytes.Buffer
	writeFlagOptions(&out, fs)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "-c, --config")
	assert.Contains(t, lines[1], "[default: "+global.DefaultConfigPath+"]")
	assert.NotContains(t, lines[2], "[default:")
	// long-only flag aligns under the long half of the paired flag
	assert.Equal(t, strings.Index(lines[1], "--config"), strings.Index(lines[2], "--stdin"))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "devsyslog.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("levels:\n  console: err\n"), 0600))
	invalid := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"levels": {"console": "loud"}}`), 0600))

	cfg, loadedFrom, err := loadConfig(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, loadedFrom)
	assert.Equal(t, int(syslog.SevError), cfg.ConsoleLevel)

	_, _, err = loadConfig(invalid)
	assert.Error(t, err)

	_, _, err = loadConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err, "explicit path must exist")
}
