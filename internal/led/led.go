// Package led maps IBPI drive LED patterns to the platform-specific
// operation on AMD server platforms: vendor IPMI register writes on
// Ethanol-X/Daytona-X, the PCIe slot attention indicator on platforms with
// the newer interface, or the SuperMicro OEM command.
package led

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lord2y/ledmon/internal/ibpi"
	"github.com/lord2y/ledmon/internal/ipmi"
	"github.com/lord2y/ledmon/internal/platform"
	"github.com/lord2y/ledmon/internal/state"
	"github.com/lord2y/ledmon/internal/sysfs"
)

// Common errors
var (
	ErrSGPIONotSupported = errors.New("SGPIO interface is not supported")
	ErrInterfaceUnset    = errors.New("no LED interface detected for platform")
	ErrNotControllerPath = errors.New("path is not an AMD controller path")
)

// Controller issues LED operations for the detected platform interface.
type Controller struct {
	Info      platform.Info
	Transport ipmi.Transport
	Store     *state.Store // optional; enables write suppression and history
	SysRoot   string       // defaults to /sys
}

func (c *Controller) sysRoot() string {
	if c.SysRoot == "" {
		return sysfs.DefaultRoot
	}
	return c.SysRoot
}

// Set applies an IBPI pattern to a block device (a /dev path, bare device
// name, or sysfs device path). It reports whether an operation was issued;
// a pattern equal to the drive's previous one is not re-sent.
func (c *Controller) Set(device string, pattern ibpi.Pattern) (bool, error) {
	devPath, err := sysfs.DevicePath(c.sysRoot(), device)
	if err != nil {
		return false, err
	}

	if c.Store != nil {
		if last, ok, err := c.Store.LastPattern(devPath); err == nil && ok && last == pattern.String() {
			return false, nil
		}
	}

	if err := c.write(devPath, pattern); err != nil {
		return false, err
	}

	if c.Store != nil {
		// Best effort; a broken state database must not fail the LED write.
		_ = c.Store.RecordPattern(devPath, pattern.String(), c.Info.Interface.String())
	}

	return true, nil
}

func (c *Controller) write(devPath string, pattern ibpi.Pattern) error {
	if c.Info.Platform == platform.PlatformSuperMicro {
		d, err := driveFromPath(c.sysRoot(), devPath, c.Info.Platform)
		if err != nil {
			return err
		}
		return c.smWrite(d, pattern)
	}

	switch c.Info.Interface {
	case platform.InterfaceIPMI:
		d, err := driveFromPath(c.sysRoot(), devPath, c.Info.Platform)
		if err != nil {
			return err
		}
		return c.ipmiWrite(d, pattern)
	case platform.InterfaceAttention:
		d, err := driveFromPath(c.sysRoot(), devPath, c.Info.Platform)
		if err != nil {
			return err
		}
		return c.attentionWrite(d, pattern)
	case platform.InterfaceSGPIO:
		return ErrSGPIONotSupported
	default:
		return ErrInterfaceUnset
	}
}

// Probe checks whether the platform's enclosure management is reachable and
// controllable.
func (c *Controller) Probe() (bool, error) {
	if c.Info.Platform == platform.PlatformSuperMicro {
		return c.probeSM()
	}

	switch c.Info.Interface {
	case platform.InterfaceIPMI:
		return c.probeIPMI()
	case platform.InterfaceAttention:
		// The attention indicator needs no controller handshake.
		return true, nil
	case platform.InterfaceSGPIO:
		return false, ErrSGPIONotSupported
	default:
		return false, ErrInterfaceUnset
	}
}

// ControllerPath returns the sysfs path LED operations should be issued
// against. NVMe devices use their own device path; SATA devices use the
// controller path truncated after the ataN component.
func ControllerPath(cntrlPath, devicePath string) (string, error) {
	if strings.Contains(cntrlPath, "nvme") {
		return devicePath, nil
	}

	idx := strings.Index(cntrlPath, "ata")
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrNotControllerPath, cntrlPath)
	}
	end := strings.IndexByte(cntrlPath[idx:], '/')
	if end < 0 {
		return "", fmt.Errorf("%w: %s", ErrNotControllerPath, cntrlPath)
	}

	return cntrlPath[:idx+end+1], nil
}
