package sender

import (
	"devsyslog/internal/dedup"
	"devsyslog/internal/format"
	"devsyslog/internal/global"
	"devsyslog/internal/syslog"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loads a config file. Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configFile, &cfg)
	default:
		err = json.Unmarshal(configFile, &cfg)
	}
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}
	return
}

// Parses file config into runtime config. Missing values take defaults.
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Collector
	config.CollectorHost = cfg.Collector.Address
	config.CollectorPort = cfg.Collector.Port
	config.LocalPort = cfg.Collector.LocalPort
	config.DiscoverMDNS = cfg.Collector.Discover
	config.MDNSService = cfg.Collector.Service
	config.MDNSDomain = cfg.Collector.Domain
	config.MDNSInterface = cfg.Collector.Interface
	config.DiscoverTimeout, err = parseOptionalDuration(cfg.Collector.DiscoverTimeout)
	if err != nil {
		err = fmt.Errorf("failed to parse discover timeout: %w", err)
		return
	}

	// Identity
	config.Hostname = cfg.Identity.Hostname
	config.IdentityFile = cfg.Identity.File
	config.TaskName = cfg.Identity.Task

	// Levels
	config.ConsoleLevel, err = parseLevel(cfg.Levels.Console, int(syslog.SevDebug))
	if err != nil {
		err = fmt.Errorf("invalid console level: %w", err)
		return
	}
	config.HostLevel, err = parseLevel(cfg.Levels.Host, int(syslog.SevInfo))
	if err != nil {
		err = fmt.Errorf("invalid host level: %w", err)
		return
	}
	config.LevelCeiling, err = parseLevel(cfg.Levels.Ceiling, int(syslog.SevDebug))
	if err != nil {
		err = fmt.Errorf("invalid level ceiling: %w", err)
		return
	}

	facilityName := cfg.Levels.Facility
	if facilityName == "" {
		facilityName = global.DefaultFacility
	}
	config.DefaultFacility, err = syslog.FacilityToCode(facilityName)
	if err != nil {
		return
	}

	// Wire
	config.BufferSize = cfg.Wire.BufferSize
	config.BufferMode, err = dedup.ParseBufferMode(cfg.Wire.BufferMode)
	if err != nil {
		return
	}

	// Console
	config.ColorMode, err = format.ParseColorMode(cfg.Console.Color)
	if err != nil {
		return
	}
	config.ConsoleFile = cfg.Console.File
	config.ConsoleMaxSizeMB = cfg.Console.MaxSizeMB
	config.ConsoleMaxBackups = cfg.Console.MaxBackups
	config.ConsoleMaxAgeDays = cfg.Console.MaxAgeDays
	config.ConsoleCompress = cfg.Console.Compress

	// Offline queue
	config.OfflineEnabled = cfg.Offline.Enabled
	config.OfflineQueuePath = cfg.Offline.Path
	config.OfflineMaxBytes = cfg.Offline.MaxBytes
	config.DrainDelay, err = parseOptionalDuration(cfg.Offline.DrainDelay)
	if err != nil {
		err = fmt.Errorf("failed to parse drain delay: %w", err)
		return
	}

	// Timeouts
	config.LockTimeout, err = parseOptionalDuration(cfg.Timeouts.Lock)
	if err != nil {
		err = fmt.Errorf("failed to parse lock timeout: %w", err)
		return
	}
	config.LinkWaitTimeout, err = parseOptionalDuration(cfg.Timeouts.LinkWait)
	if err != nil {
		err = fmt.Errorf("failed to parse link wait timeout: %w", err)
		return
	}
	config.RetryBackoff, err = parseOptionalDuration(cfg.Timeouts.Retry)
	if err != nil {
		err = fmt.Errorf("failed to parse retry backoff: %w", err)
		return
	}
	config.MaxRetryBackoff, err = parseOptionalDuration(cfg.Timeouts.MaxRetry)
	if err != nil {
		err = fmt.Errorf("failed to parse max retry backoff: %w", err)
		return
	}

	// Daemon
	config.QueueCheckInterval, err = parseOptionalDuration(cfg.Daemon.QueueCheckInterval)
	if err != nil {
		err = fmt.Errorf("failed to parse queue check interval: %w", err)
		return
	}
	config.MetricCollectionInterval, err = parseOptionalDuration(cfg.Metrics.Interval)
	if err != nil {
		err = fmt.Errorf("failed to parse collection interval time: %w", err)
		return
	}
	config.MetricMaxAge, err = parseOptionalDuration(cfg.Metrics.MaxAge)
	if err != nil {
		err = fmt.Errorf("failed to parse metric max age time: %w", err)
		return
	}

	config.setDefaults()
	return
}

// Config with every value at its default
func DefaultConfig() (config Config) {
	config.ConsoleLevel = int(syslog.SevDebug)
	config.HostLevel = int(syslog.SevInfo)
	config.LevelCeiling = int(syslog.SevDebug)
	config.DefaultFacility = syslog.FacDaemon
	config.OfflineEnabled = true
	config.setDefaults()
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Collector
	if cfg.CollectorPort == 0 {
		cfg.CollectorPort = global.DefaultCollectorPort
	}
	if cfg.DiscoverTimeout == 0 {
		cfg.DiscoverTimeout = global.DefaultDiscoverTimeout
	}
	if cfg.MDNSService == "" {
		cfg.MDNSService = global.DefaultMDNSService
	}
	if cfg.MDNSDomain == "" {
		cfg.MDNSDomain = global.DefaultMDNSDomain
	}

	// Identity
	if cfg.IdentityFile == "" {
		cfg.IdentityFile = global.DefaultIdentityFile
	}
	if cfg.TaskName == "" {
		cfg.TaskName = global.DefaultTaskName
	}

	// Wire
	if cfg.BufferSize == 0 {
		cfg.BufferSize = global.DefaultWireBufferSize
	}
	if cfg.BufferSize < global.MinWireBufferSize {
		cfg.BufferSize = global.MinWireBufferSize
	}
	if cfg.BufferMode == "" {
		cfg.BufferMode = dedup.BufferShared
	}

	// Console
	if cfg.ColorMode == "" {
		cfg.ColorMode = format.ColorAuto
	}
	if cfg.ConsoleMaxSizeMB == 0 {
		cfg.ConsoleMaxSizeMB = global.DefaultConsoleFileMaxSizeMB
	}
	if cfg.ConsoleMaxBackups == 0 {
		cfg.ConsoleMaxBackups = global.DefaultConsoleFileMaxBackups
	}
	if cfg.ConsoleMaxAgeDays == 0 {
		cfg.ConsoleMaxAgeDays = global.DefaultConsoleFileMaxAgeDays
	}

	// Offline queue
	if cfg.OfflineQueuePath == "" {
		cfg.OfflineQueuePath = global.DefaultOfflineQueuePath
	}
	if cfg.OfflineMaxBytes == 0 {
		cfg.OfflineMaxBytes = global.DefaultOfflineMaxBytes
	}
	if cfg.DrainDelay == 0 {
		cfg.DrainDelay = global.DefaultDrainDelay
	}

	// Timeouts
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = global.DefaultLockTimeout
	}
	if cfg.LinkWaitTimeout == 0 {
		cfg.LinkWaitTimeout = global.DefaultLinkWaitTimeout
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = global.DefaultRetryBackoff
	}
	if cfg.MaxRetryBackoff == 0 {
		cfg.MaxRetryBackoff = global.DefaultMaxRetryBackoff
	}

	// Daemon
	if cfg.QueueCheckInterval == 0 {
		cfg.QueueCheckInterval = global.DefaultQueueCheckInterval
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = 15 * time.Second
	}
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = 1 * time.Hour
	}

	// Levels
	if cfg.LevelCeiling < 0 || cfg.LevelCeiling > int(syslog.SevDebug) {
		cfg.LevelCeiling = int(syslog.SevDebug)
	}
}

// Empty means zero (default applied later)
func parseOptionalDuration(text string) (duration time.Duration, err error) {
	if text == "" {
		return
	}
	duration, err = time.ParseDuration(text)
	return
}

// Accepts a severity name or number 0-7. Empty returns fallback.
func parseLevel(text string, fallback int) (level int, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		level = fallback
		return
	}

	numeric, convErr := strconv.Atoi(text)
	if convErr == nil {
		if numeric < 0 || numeric > int(syslog.SevDebug) {
			err = fmt.Errorf("level %d out of range 0-7", numeric)
			return
		}
		level = numeric
		return
	}

	code, err := syslog.SeverityToCode(strings.ToLower(text))
	if err != nil {
		return
	}
	level = int(code)
	return
}
