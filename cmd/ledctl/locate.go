package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lord2y/ledmon/internal/ibpi"
	"github.com/spf13/cobra"
)

// LocateResponse is the JSON output of the locate command.
type LocateResponse struct {
	Success    bool    `json:"success"`
	Action     string  `json:"action"` // "on", "off", "timed"
	LEDState   string  `json:"led_state"`
	Device     string  `json:"device"`
	Duration   float64 `json:"duration_seconds,omitempty"`
	StopReason string  `json:"stop_reason,omitempty"` // "timeout", "interrupted"
	Error      string  `json:"error,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

var locateCmd = &cobra.Command{
	Use:   "locate <device>",
	Short: "Flash the bay locate LED for a drive",
	Long: `Turn on the locate LED for a drive's bay to help find it physically.

Modes:
  (default)    Keep the LED on for --timeout, then turn it off
  --on         Turn the LED on and exit (for external app control)
  --off        Turn the LED off

Ctrl+C during a timed locate turns the LED off before exiting.

Examples:
  ledctl locate /dev/nvme0n1               # locate for 30s
  ledctl locate --timeout 2m /dev/sda      # locate for 2 minutes
  ledctl locate --on --json /dev/sda       # turn on, output JSON`,
	Args: cobra.ExactArgs(1),
	Run:  runLocate,
}

func init() {
	locateCmd.Flags().DurationP("timeout", "t", 30*time.Second, "LED on duration (e.g., 30s, 1m)")
	locateCmd.Flags().Bool("json", false, "Output result as JSON")
	locateCmd.Flags().Bool("on", false, "Turn LED on and exit immediately")
	locateCmd.Flags().Bool("off", false, "Turn LED off")
}

func runLocate(cmd *cobra.Command, args []string) {
	device := args[0]
	timeout, _ := cmd.Flags().GetDuration("timeout")
	jsonOut, _ := cmd.Flags().GetBool("json")
	turnOn, _ := cmd.Flags().GetBool("on")
	turnOff, _ := cmd.Flags().GetBool("off")

	cfg := loadConfig()
	c, cleanup, err := newController(cfg)
	if err != nil {
		locateFail(jsonOut, device, "error", err)
	}
	defer cleanup()

	if turnOff {
		if _, err := c.Set(device, ibpi.PatternLocateOff); err != nil {
			locateFail(jsonOut, device, "off", err)
		}
		locateReport(jsonOut, &LocateResponse{
			Success: true, Action: "off", LEDState: "off", Device: device,
			StopReason: "manual",
		}, "LED OFF for %s\n", device)
		return
	}

	if turnOn {
		if _, err := c.Set(device, ibpi.PatternLocate); err != nil {
			locateFail(jsonOut, device, "on", err)
		}
		locateReport(jsonOut, &LocateResponse{
			Success: true, Action: "on", LEDState: "on", Device: device,
		}, "LED ON for %s\n", device)
		return
	}

	// Timed locate (default)
	if _, err := c.Set(device, ibpi.PatternLocate); err != nil {
		locateFail(jsonOut, device, "timed", err)
	}
	startTime := time.Now()

	if !jsonOut {
		fmt.Printf("LED ON for %s - will turn off in %v\n", device, timeout)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stopReason := "timeout"
	select {
	case <-ctx.Done():
	case <-sigChan:
		stopReason = "interrupted"
		if !jsonOut {
			fmt.Println("\nInterrupted, turning off LED...")
		}
	}

	if _, err := c.Set(device, ibpi.PatternLocateOff); err != nil {
		locateFail(jsonOut, device, "timed", fmt.Errorf("failed to turn off LED: %w", err))
	}

	duration := time.Since(startTime)
	locateReport(jsonOut, &LocateResponse{
		Success: true, Action: "timed", LEDState: "off", Device: device,
		Duration: duration.Seconds(), StopReason: stopReason,
	}, "LED OFF (was on for %v)\n", duration.Round(time.Second))
}

func locateReport(jsonOut bool, resp *LocateResponse, format string, args ...any) {
	if jsonOut {
		resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
		outputJSON(resp)
		return
	}
	fmt.Printf(format, args...)
}

func locateFail(jsonOut bool, device, action string, err error) {
	if jsonOut {
		outputJSON(&LocateResponse{
			Success:   false,
			Action:    action,
			LEDState:  "unknown",
			Device:    device,
			Error:     err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
