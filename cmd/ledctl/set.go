package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lord2y/ledmon/internal/ibpi"
	"github.com/spf13/cobra"
)

// SetResponse is the JSON output of the set command.
type SetResponse struct {
	Success   bool   `json:"success"`
	Device    string `json:"device"`
	Pattern   string `json:"pattern"`
	Changed   bool   `json:"changed"`
	Platform  string `json:"platform"`
	Interface string `json:"interface"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

var setCmd = &cobra.Command{
	Use:   "set <device> <pattern>",
	Short: "Apply an IBPI pattern to a drive's bay LED",
	Long: `Apply an IBPI pattern to the bay LED of a drive.

The device can be a /dev path (/dev/nvme0n1, /dev/sda), a bare device name,
or a sysfs device path.

Patterns: ` + strings.Join(ibpi.Names(), ", ") + `

"normal" (alias "off") clears every active pattern for the bay. A pattern
that matches the drive's last recorded pattern is not re-issued.

Examples:
  ledctl set /dev/nvme0n1 locate
  ledctl set sda failure
  ledctl set /dev/sdb off`,
	Args: cobra.ExactArgs(2),
	Run:  runSet,
}

func init() {
	setCmd.Flags().Bool("json", false, "Output result as JSON")
}

func runSet(cmd *cobra.Command, args []string) {
	device := args[0]
	jsonOut, _ := cmd.Flags().GetBool("json")

	pattern, err := ibpi.Parse(args[1])
	if err != nil {
		setFail(jsonOut, device, args[1], err)
	}

	cfg := loadConfig()
	c, cleanup, err := newController(cfg)
	if err != nil {
		setFail(jsonOut, device, pattern.String(), err)
	}
	defer cleanup()

	changed, err := c.Set(device, pattern)
	if err != nil {
		setFail(jsonOut, device, pattern.String(), err)
	}

	resp := &SetResponse{
		Success:   true,
		Device:    device,
		Pattern:   pattern.String(),
		Changed:   changed,
		Platform:  c.Info.Platform.String(),
		Interface: c.Info.Interface.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if jsonOut {
		outputJSON(resp)
		return
	}
	if changed {
		fmt.Printf("%s: %s\n", device, pattern)
	} else {
		fmt.Printf("%s: %s (already set)\n", device, pattern)
	}
}

func setFail(jsonOut bool, device, pattern string, err error) {
	if jsonOut {
		outputJSON(&SetResponse{
			Success:   false,
			Device:    device,
			Pattern:   pattern,
			Error:     err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
