package led

import (
	"errors"
	"fmt"

	"github.com/lord2y/ledmon/internal/ibpi"
	"github.com/lord2y/ledmon/internal/ipmi"
)

// AMD vendor IPMI command for backplane register access.
const (
	amdIPMINetFn = 0x06
	amdIPMICmd   = 0x52

	ethanolXChannel = 0x0d
	daytonaXChannel = 0x17
	lenovoChannel   = 0x00

	baseTailAddr = 0xc0
	nvmeTailAddr = 0xc4

	// mg9098ChipIDReg returns the literal value 98 on MG9098 backplanes.
	mg9098ChipIDReg = 0x63
	mg9098ChipID    = 98

	// smbusControlReg hands SMBus mastering of the backplane to the BMC.
	smbusControlReg = 0x3c

	registerReadLen = 0x01
)

// ErrPatternNotSupported is returned when a backend has no register for the
// requested pattern.
var ErrPatternNotSupported = errors.New("controller does not support pattern")

// amdPatternRegisters maps IBPI patterns to MG9098 pattern registers. Each
// register holds a bitmask of the drive bays with that pattern active.
var amdPatternRegisters = map[ibpi.Pattern]uint8{
	ibpi.PatternPFA:         0x41,
	ibpi.PatternLocate:      0x42,
	ibpi.PatternFailedDrive: 0x44,
	ibpi.PatternFailedArray: 0x45,
	ibpi.PatternRebuild:     0x46,
	ibpi.PatternHotspare:    0x47,
}

// amdClearPatterns are the patterns cleared when a drive returns to normal.
var amdClearPatterns = []ibpi.Pattern{
	ibpi.PatternPFA,
	ibpi.PatternLocate,
	ibpi.PatternFailedDrive,
	ibpi.PatternFailedArray,
	ibpi.PatternRebuild,
}

// readRegister fetches the current bay bitmask held in a pattern register.
func (c *Controller) readRegister(d *drive, reg uint8) (uint8, error) {
	channel, err := ipmiChannel(c.Info.Platform)
	if err != nil {
		return 0, err
	}
	tailAddr, err := ipmiTailAddress(c.Info.Platform, d)
	if err != nil {
		return 0, err
	}

	resp, err := c.Transport.Execute(&ipmi.Request{
		TargetAddr: ipmi.BMCAddress,
		NetFn:      amdIPMINetFn,
		Cmd:        amdIPMICmd,
		Data:       []byte{channel, tailAddr, registerReadLen, reg},
	})
	if err != nil {
		return 0, fmt.Errorf("reading register 0x%02x: %w", reg, err)
	}
	if err := resp.Err(); err != nil {
		return 0, fmt.Errorf("reading register 0x%02x: %w", reg, err)
	}
	if len(resp.Data) < 1 {
		return 0, fmt.Errorf("reading register 0x%02x: %w", reg, ipmi.ErrShortResponse)
	}

	return resp.Data[0], nil
}

// setIPMIRegister sets or clears the drive's bay bit in a pattern register
// with a read-modify-write sequence, so other bays keep their state.
func (c *Controller) setIPMIRegister(d *drive, reg uint8, enable bool) error {
	current, err := c.readRegister(d, reg)
	if err != nil {
		return err
	}

	var updated uint8
	if enable {
		updated = current | uint8(d.bay)
	} else {
		updated = current &^ uint8(d.bay)
	}

	channel, err := ipmiChannel(c.Info.Platform)
	if err != nil {
		return err
	}
	tailAddr, err := ipmiTailAddress(c.Info.Platform, d)
	if err != nil {
		return err
	}

	resp, err := c.Transport.Execute(&ipmi.Request{
		TargetAddr: ipmi.BMCAddress,
		NetFn:      amdIPMINetFn,
		Cmd:        amdIPMICmd,
		Data:       []byte{channel, tailAddr, registerReadLen, reg, updated},
	})
	if err != nil {
		return fmt.Errorf("updating register 0x%02x: %w", reg, err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("updating register 0x%02x: %w", reg, err)
	}

	return nil
}

// enableSMBusControl must be issued before any pattern register write takes
// effect on the backplane.
func (c *Controller) enableSMBusControl(d *drive) error {
	return c.setIPMIRegister(d, smbusControlReg, true)
}

// changeState flips a single pattern for a drive. Both the IPMI register and
// the PCIe slot attention file are attempted; the change fails only when
// neither path succeeds. On pure-IPMI platforms the attention file does not
// exist, and on attention-indicator platforms the tail address lookup fails,
// so exactly one of the two normally applies.
func (c *Controller) changeState(d *drive, pattern ibpi.Pattern, enable bool) error {
	reg, ok := amdPatternRegisters[pattern]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPatternNotSupported, pattern)
	}

	ipmiErr := c.setIPMIRegister(d, reg, enable)
	attnErr := c.setAttention(d, enable)

	if ipmiErr != nil && attnErr != nil {
		return errors.Join(ipmiErr, attnErr)
	}
	return nil
}

// disableAll clears every pattern register bit for the drive.
func (c *Controller) disableAll(d *drive) error {
	var errs []error
	for _, pattern := range amdClearPatterns {
		if err := c.changeState(d, pattern, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ipmiWrite applies a pattern through the AMD IPMI backend.
func (c *Controller) ipmiWrite(d *drive, pattern ibpi.Pattern) error {
	if pattern.ClearsAll() {
		return c.disableAll(d)
	}
	if pattern == ibpi.PatternLocateOff {
		return c.changeState(d, ibpi.PatternLocate, false)
	}

	if err := c.enableSMBusControl(d); err != nil {
		return fmt.Errorf("enabling SMBus control: %w", err)
	}
	return c.changeState(d, pattern, true)
}

// attentionWrite applies a pattern on platforms using the attention
// indicator. The flow matches ipmiWrite except no SMBus handover is needed.
func (c *Controller) attentionWrite(d *drive, pattern ibpi.Pattern) error {
	if pattern.ClearsAll() {
		return c.disableAll(d)
	}
	if pattern == ibpi.PatternLocateOff {
		return c.changeState(d, ibpi.PatternLocate, false)
	}
	return c.changeState(d, pattern, true)
}

// probeIPMI checks for a controllable MG9098 backplane by reading its
// chip ID register.
func (c *Controller) probeIPMI() (bool, error) {
	id, err := c.readRegister(&drive{}, mg9098ChipIDReg)
	if err != nil {
		return false, err
	}
	return id == mg9098ChipID, nil
}
