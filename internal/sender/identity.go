package sender

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Reads the persisted device identity, creating one on first use
func LoadIdentity(filesystem afero.Fs, path string) (id string, err error) {
	content, err := afero.ReadFile(filesystem, path)
	if err == nil {
		id = strings.TrimSpace(string(content))
		if id != "" {
			return
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("failed to read identity file: %w", err)
		return
	}

	id = uuid.New().String()

	err = filesystem.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		err = fmt.Errorf("failed to create identity directory: %w", err)
		return
	}
	err = afero.WriteFile(filesystem, path, []byte(id+"\n"), 0600)
	if err != nil {
		err = fmt.Errorf("failed to persist identity: %w", err)
		return
	}
	return
}

// Host identity for the wire HOSTNAME field: configured name, then system name, then persisted UUID
func ResolveHostID(filesystem afero.Fs, cfg Config) (id string, err error) {
	if cfg.Hostname != "" {
		id = cfg.Hostname
		return
	}

	hostname, hostErr := os.Hostname()
	if hostErr == nil && hostname != "" && hostname != "localhost" {
		id = hostname
		return
	}

	id, err = LoadIdentity(filesystem, cfg.IdentityFile)
	return
}
