package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lord2y/ledmon/internal/config"
	"github.com/lord2y/ledmon/internal/ipmi"
	"github.com/lord2y/ledmon/internal/led"
	"github.com/lord2y/ledmon/internal/platform"
	"github.com/lord2y/ledmon/internal/state"
	"github.com/lord2y/ledmon/internal/version"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ledctl",
	Short: "Drive bay LED control for AMD server platforms",
	Long: `ledctl drives storage-bay status LEDs (IBPI patterns: locate, failure,
rebuild, hotspare, ...) on AMD reference server platforms. Depending on the
detected platform it issues vendor IPMI register writes (Ethanol-X,
Daytona-X), PCIe slot attention indicator writes (ThinkSystem SR655 V3), or
SuperMicro OEM commands.`,
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/ledctl/config.yaml)")

	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(platformCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config file, exiting on malformed input.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// detectPlatform resolves the platform info, applying config overrides on
// top of DMI detection.
func detectPlatform(cfg *config.Config) (platform.Info, error) {
	info, err := platform.Detect(cfg.SysfsRoot)
	if err != nil && cfg.Interface == "" && cfg.Platform == "" {
		return info, err
	}

	if cfg.Platform != "" {
		plat, err := platform.ParsePlatform(cfg.Platform)
		if err != nil {
			return info, fmt.Errorf("config platform %q: %w", cfg.Platform, err)
		}
		info.Platform = plat
		// SuperMicro and the IPMI reference platforms imply IPMI unless
		// the interface is also forced.
		if cfg.Interface == "" {
			switch plat {
			case platform.PlatformLenovoSR655:
				info.Interface = platform.InterfaceAttention
			default:
				info.Interface = platform.InterfaceIPMI
			}
		}
	}

	if cfg.Interface != "" {
		intf, err := platform.ParseInterface(cfg.Interface)
		if err != nil {
			return info, fmt.Errorf("config interface %q: %w", cfg.Interface, err)
		}
		info.Interface = intf
	}

	return info, nil
}

// newController builds the LED controller for the detected platform. The
// returned cleanup function closes the transport and the state store.
func newController(cfg *config.Config) (*led.Controller, func(), error) {
	info, err := detectPlatform(cfg)
	if err != nil {
		return nil, nil, err
	}

	var tr ipmi.Transport
	timeout := time.Duration(cfg.IPMI.TimeoutSeconds) * time.Second
	dev, err := ipmi.Open(cfg.IPMI.Device, timeout)
	if err != nil {
		needsIPMI := info.Interface == platform.InterfaceIPMI ||
			info.Platform == platform.PlatformSuperMicro
		if needsIPMI {
			return nil, nil, fmt.Errorf("platform %s needs IPMI: %w", info.Platform, err)
		}
		tr = &ipmi.Unavailable{Reason: err}
	} else {
		tr = dev
	}

	var store *state.Store
	if cfg.StateDB != "none" {
		store, err = state.Open(cfg.StateDB)
		if err != nil {
			// The state store only enables write suppression and history;
			// LED control works without it.
			fmt.Fprintf(os.Stderr, "Warning: state database unavailable: %v\n", err)
			store = nil
		}
	}

	c := &led.Controller{
		Info:      info,
		Transport: tr,
		Store:     store,
		SysRoot:   cfg.SysfsRoot,
	}

	cleanup := func() {
		tr.Close()
		if store != nil {
			store.Close()
		}
	}

	return c, cleanup, nil
}
