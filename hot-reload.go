// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig provides dynamic configuration reload capabilities using Argus.
// It watches a configuration file and automatically updates the Manager's
// per-namespace defaults when changes are detected.
type HotConfig struct {
	manager *Manager
	watcher *argus.Watcher
	mu      sync.RWMutex
	config  Config

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)
}

// NewHotConfig creates a new hot-reloadable configuration for a Manager.
//
// Example configuration file (YAML):
//
//	cache:
//	  capacity: 10000
//	  default_ttl: "1h"
//	  stale_ttl: "45m"
//
// Supported configuration keys:
//   - cache.capacity (int): Maximum entries per namespace
//   - cache.default_ttl (duration string): Default TTL (e.g., "1h", "30m")
//   - cache.stale_ttl (duration string): Default SWR threshold
//   - cache.cleanup_interval (duration string): Sweeper period, "0s" stops it
//
// Keys absent from the file keep their current values on the Manager; a
// partial file only changes the settings it names.
//
// Note: Capacity changes only apply to namespaces created after the reload;
// rebuilding a live namespace's eviction structure is not supported. TTL
// and staleness defaults take effect on every subsequent write, and a
// changed cleanup_interval restarts the background sweeper.
func NewHotConfig(manager *Manager, opts HotConfigOptions) (*HotConfig, error) {
	if manager == nil {
		return nil, fmt.Errorf("manager is required")
	}
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	hc := &HotConfig{
		manager:  manager,
		OnReload: opts.OnReload,
		config:   manager.currentDefaults(),
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil // Already started
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the current configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is called by Argus when configuration changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(configData)
	hc.config = newConfig
	hc.mu.Unlock()

	hc.manager.applyDefaults(newConfig.Capacity, newConfig.DefaultTTL, newConfig.DefaultStaleTTL, newConfig.CleanupInterval)
	hc.manager.logger.Info("cache configuration reloaded",
		"capacity", newConfig.Capacity,
		"default_ttl", newConfig.DefaultTTL,
		"stale_ttl", newConfig.DefaultStaleTTL,
		"cleanup_interval", newConfig.CleanupInterval)

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d, true
		}
	}
	return 0, false
}

// parseConfig extracts cache configuration from Argus config data. The
// parse is seeded from the Manager's current settings, so any key the file
// does not set (or sets to an unparseable value) stays at its current value
// instead of snapping back to a package default.
func (hc *HotConfig) parseConfig(data map[string]interface{}) Config {
	config := hc.manager.currentDefaults()

	// Extract cache section - Argus might nest it or provide it directly
	cacheSection, ok := data["cache"].(map[string]interface{})
	if !ok {
		if _, hasCapacity := data["capacity"]; hasCapacity {
			cacheSection = data
		} else {
			return config
		}
	}

	if capacity, ok := parsePositiveInt(cacheSection["capacity"]); ok {
		config.Capacity = capacity
	}

	if ttl, ok := parseDuration(cacheSection["default_ttl"]); ok {
		config.DefaultTTL = ttl
	}

	if staleTTL, ok := parseDuration(cacheSection["stale_ttl"]); ok {
		config.DefaultStaleTTL = staleTTL
	}

	if cleanup, ok := parseDuration(cacheSection["cleanup_interval"]); ok && cleanup >= 0 {
		config.CleanupInterval = cleanup
	}

	return config
}
