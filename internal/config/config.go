package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the tool configuration. All fields are optional; an absent
// config file means full auto-detection.
type Config struct {
	// Interface forces the LED interface: "sgpio", "ipmi" or "attention".
	// Empty means detect from the DMI product name.
	Interface string `yaml:"interface,omitempty"`

	// Platform forces the platform SKU: "ethanol-x", "daytona-x",
	// "lenovo-sr655v3" or "supermicro". SuperMicro boards cannot be
	// detected from the product name and must be configured here.
	Platform string `yaml:"platform,omitempty"`

	IPMI IPMI `yaml:"ipmi"`

	// StateDB overrides the state database location. "none" disables the
	// state store entirely.
	StateDB string `yaml:"state_db,omitempty"`

	// SysfsRoot overrides the sysfs mount point (used by tests).
	SysfsRoot string `yaml:"sysfs_root,omitempty"`
}

// IPMI configures the local OpenIPMI transport.
type IPMI struct {
	// Device overrides the character device path (default: first of
	// /dev/ipmi0, /dev/ipmi/0, /dev/ipmidev/0).
	Device string `yaml:"device,omitempty"`

	// TimeoutSeconds bounds the wait for a BMC response.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

var defaultConfig = Config{
	IPMI: IPMI{
		TimeoutSeconds: 5,
	},
}

// Load reads the config from path, or from the default candidate locations
// when path is empty. A missing config file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		candidates := []string{
			"/etc/ledctl/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/ledctl/config.yaml"),
			"config.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	cfg := defaultConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if cfg.IPMI.TimeoutSeconds <= 0 {
		cfg.IPMI.TimeoutSeconds = defaultConfig.IPMI.TimeoutSeconds
	}

	return &cfg, nil
}
