package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// PlatformResponse is the JSON output of the platform command.
type PlatformResponse struct {
	ProductName  string `json:"product_name"`
	Platform     string `json:"platform"`
	Interface    string `json:"interface"`
	Controllable bool   `json:"controllable"`
	ProbeError   string `json:"probe_error,omitempty"`
}

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Show the detected platform and probe the backplane",
	Run:   runPlatform,
}

func init() {
	platformCmd.Flags().Bool("json", false, "Output as JSON")
}

func runPlatform(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	cfg := loadConfig()

	c, cleanup, err := newController(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	controllable, probeErr := c.Probe()

	resp := &PlatformResponse{
		ProductName:  c.Info.ProductName,
		Platform:     c.Info.Platform.String(),
		Interface:    c.Info.Interface.String(),
		Controllable: controllable,
	}
	if probeErr != nil {
		resp.ProbeError = probeErr.Error()
	}

	if jsonOut {
		outputJSON(resp)
		return
	}

	fmt.Printf("Product name: %s\n", resp.ProductName)
	fmt.Printf("Platform:     %s\n", resp.Platform)
	fmt.Printf("Interface:    %s\n", resp.Interface)
	if probeErr != nil {
		fmt.Printf("Controllable: no (%v)\n", probeErr)
	} else if controllable {
		fmt.Println("Controllable: yes")
	} else {
		fmt.Println("Controllable: no")
	}
}
