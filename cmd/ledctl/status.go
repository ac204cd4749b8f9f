package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/lord2y/ledmon/internal/state"
	"github.com/lord2y/ledmon/internal/sysfs"
	"github.com/spf13/cobra"
)

// DriveStatus is one row of the status output.
type DriveStatus struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Model   string `json:"model,omitempty"`
	Size    string `json:"size,omitempty"`
	State   string `json:"state,omitempty"`
	Pattern string `json:"pattern"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List drives and their last recorded LED pattern",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "Output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	cfg := loadConfig()

	// The pattern column comes from the state database; LED hardware does
	// not expose readable per-pattern state on these platforms.
	patterns := map[string]string{}
	if cfg.StateDB != "none" {
		if store, err := state.Open(cfg.StateDB); err == nil {
			if p, err := store.Patterns(); err == nil {
				patterns = p
			}
			store.Close()
		}
	}

	devices := sysfs.CollectBlockDevices(cfg.SysfsRoot)

	var rows []DriveStatus
	for _, dev := range devices {
		row := DriveStatus{
			Name:    dev.Name,
			Path:    dev.Path,
			Pattern: "-",
		}
		if dev.Model != nil {
			row.Model = *dev.Model
		}
		if dev.SizeBytes != nil {
			row.Size = humanize.IBytes(uint64(*dev.SizeBytes))
		}
		if dev.State != nil {
			row.State = *dev.State
		}
		if p, ok := patterns[dev.SysfsPath]; ok {
			row.Pattern = p
		}
		rows = append(rows, row)
	}

	if jsonOut {
		outputJSON(rows)
		return
	}

	if len(rows) == 0 {
		fmt.Println("No drives found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tMODEL\tSIZE\tSTATE\tPATTERN")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.Path, row.Model, row.Size, row.State, row.Pattern)
	}
	w.Flush()
}
