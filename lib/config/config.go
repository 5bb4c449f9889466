// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the environment variable Load consults.
const EnvironmentVariable = "WOLFEBIN_CONFIG"

// CurrentVersion is the newest config layout this client understands.
const CurrentVersion = 0

// DefaultPort is the server's well-known TCP port.
const DefaultPort = 55247

// Config is the client configuration.
type Config struct {
	// Version is the layout version of the file. Files newer than
	// CurrentVersion are rejected rather than half-understood.
	Version int `yaml:"version" json:"version"`

	// HostName is the server to connect to.
	HostName string `yaml:"host_name" json:"host_name"`

	// PortNumber is the server's TCP port.
	PortNumber int `yaml:"port_number" json:"port_number"`

	// DialTimeout bounds connection establishment only. Established
	// connections have no read or write deadline.
	// Default: 10s
	DialTimeout string `yaml:"dial_timeout" json:"dial_timeout"`

	// Upgrade configures where fetched client binaries go.
	Upgrade UpgradeConfig `yaml:"upgrade" json:"upgrade"`
}

// UpgradeConfig configures the upgrade command's staging and hand-off.
type UpgradeConfig struct {
	// StagingDir receives the fetched payload and its manifest.
	// Default: ${HOME}/.cache/wolfebin/upgrade
	StagingDir string `yaml:"staging_dir" json:"staging_dir"`

	// Installer, when set, is run after staging with the payload path
	// and manifest path as its two arguments. Empty means stage only.
	Installer string `yaml:"installer" json:"installer"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version:     CurrentVersion,
		HostName:    "localhost",
		PortNumber:  DefaultPort,
		DialTimeout: "10s",
		Upgrade: UpgradeConfig{
			StagingDir: filepath.Join("${HOME}", ".cache", "wolfebin", "upgrade"),
		},
	}
}

// Load loads configuration from the file named by WOLFEBIN_CONFIG, or
// returns Default() when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields absent
// from the file keep their Default() values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if cfg.Version > CurrentVersion {
		return nil, fmt.Errorf("config %s has version %d; this client understands up to %d",
			path, cfg.Version, CurrentVersion)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile merges a single configuration file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	case ".yaml", ".yml", "":
		return yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unrecognised config extension %q (want .yaml, .yml, .json, or .jsonc)",
			filepath.Ext(path))
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Upgrade.StagingDir = expandVars(c.Upgrade.StagingDir, vars)
	c.Upgrade.Installer = expandVars(c.Upgrade.Installer, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.HostName == "" {
		errs = append(errs, fmt.Errorf("host_name is required"))
	}
	if c.PortNumber <= 0 || c.PortNumber > 65535 {
		errs = append(errs, fmt.Errorf("port_number %d is out of range", c.PortNumber))
	}
	if c.DialTimeout != "" {
		if _, err := time.ParseDuration(c.DialTimeout); err != nil {
			errs = append(errs, fmt.Errorf("dial_timeout: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Address returns the server address in host:port form.
func (c *Config) Address() string {
	return net.JoinHostPort(c.HostName, strconv.Itoa(c.PortNumber))
}

// DialTimeoutDuration returns the parsed dial timeout, or zero (no
// limit) when unset. Call Validate first; an unparseable value also
// yields zero.
func (c *Config) DialTimeoutDuration() time.Duration {
	duration, err := time.ParseDuration(c.DialTimeout)
	if err != nil {
		return 0
	}
	return duration
}
