package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lord2y/ledmon/internal/state"
	"github.com/lord2y/ledmon/internal/sysfs"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [device]",
	Short: "Show the LED change history",
	Long: `Show recorded LED changes, newest first. With a device argument only
that drive's events are listed.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of events to show")
	historyCmd.Flags().Bool("json", false, "Output as JSON")
}

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOut, _ := cmd.Flags().GetBool("json")
	cfg := loadConfig()

	if cfg.StateDB == "none" {
		fmt.Fprintln(os.Stderr, "Error: state database is disabled in config")
		os.Exit(1)
	}

	store, err := state.Open(cfg.StateDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening state database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	devicePath := ""
	if len(args) == 1 {
		// Events are keyed by sysfs device path; resolve /dev names.
		devicePath, err = sysfs.DevicePath(cfg.SysfsRoot, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	events, err := store.Events(devicePath, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading events: %v\n", err)
		os.Exit(1)
	}

	if jsonOut {
		outputJSON(events)
		return
	}

	if len(events) == 0 {
		fmt.Println("No LED events recorded.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tDEVICE\tPATTERN\tINTERFACE")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.DateTime), e.DevicePath, e.Pattern, e.Interface)
	}
	w.Flush()
}
