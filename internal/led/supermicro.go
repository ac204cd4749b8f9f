package led

import (
	"errors"
	"fmt"

	"github.com/lord2y/ledmon/internal/ibpi"
	"github.com/lord2y/ledmon/internal/ipmi"
)

// SuperMicro AMD boards route backplane register access through an OEM
// command instead of the AMD vendor command.
const (
	smNetFn = 0x30
	smCmd   = 0x70

	smSelector  = 0x6c
	smChannel   = 0x00
	smSlaveAddr = 0x00
)

// smPatternRegisters is the SuperMicro register table. Locate on/off use
// dedicated registers rather than clearing the locate bitmask.
var smPatternRegisters = map[ibpi.Pattern]uint8{
	ibpi.PatternPFA:         0x41,
	ibpi.PatternLocate:      0x00,
	ibpi.PatternLocateOff:   0x01,
	ibpi.PatternFailedDrive: 0x44,
	ibpi.PatternFailedArray: 0x45,
	ibpi.PatternRebuild:     0x46,
	ibpi.PatternHotspare:    0x47,
}

var smClearPatterns = []ibpi.Pattern{
	ibpi.PatternPFA,
	ibpi.PatternLocate,
	ibpi.PatternLocateOff,
	ibpi.PatternFailedDrive,
	ibpi.PatternFailedArray,
	ibpi.PatternRebuild,
}

// setSMRegister performs the SuperMicro read-modify-write. Byte 4 of the
// request carries the register on read and the new bay bitmask on write; the
// firmware keeps the addressed register from the preceding read.
func (c *Controller) setSMRegister(d *drive, reg uint8, enable bool) error {
	resp, err := c.Transport.Execute(&ipmi.Request{
		TargetAddr: ipmi.BMCAddress,
		NetFn:      smNetFn,
		Cmd:        smCmd,
		Data:       []byte{smSelector, 0x01, 0x00, 0x00, reg},
	})
	if err != nil {
		return fmt.Errorf("reading register 0x%02x: %w", reg, err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("reading register 0x%02x: %w", reg, err)
	}
	if len(resp.Data) < 1 {
		return fmt.Errorf("reading register 0x%02x: %w", reg, ipmi.ErrShortResponse)
	}

	current := resp.Data[0]
	var updated uint8
	if enable {
		updated = current | uint8(d.bay)
	} else {
		updated = current &^ uint8(d.bay)
	}

	resp, err = c.Transport.Execute(&ipmi.Request{
		TargetAddr: ipmi.BMCAddress,
		NetFn:      smNetFn,
		Cmd:        smCmd,
		Data:       []byte{smSelector, 0x01, 0x00, 0x00, updated},
	})
	if err != nil {
		return fmt.Errorf("updating register 0x%02x: %w", reg, err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("updating register 0x%02x: %w", reg, err)
	}

	return nil
}

func (c *Controller) smChangeState(d *drive, pattern ibpi.Pattern, enable bool) error {
	reg, ok := smPatternRegisters[pattern]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPatternNotSupported, pattern)
	}
	return c.setSMRegister(d, reg, enable)
}

// smWrite applies a pattern through the SuperMicro backend. No SMBus
// handover is required.
func (c *Controller) smWrite(d *drive, pattern ibpi.Pattern) error {
	if pattern.ClearsAll() {
		var errs []error
		for _, p := range smClearPatterns {
			if err := c.smChangeState(d, p, false); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	if pattern == ibpi.PatternLocateOff {
		return c.smChangeState(d, ibpi.PatternLocateOff, false)
	}
	return c.smChangeState(d, pattern, true)
}

// probeSM checks whether the OEM selector responds at all; any completed
// command means the board exposes the backplane interface.
func (c *Controller) probeSM() (bool, error) {
	resp, err := c.Transport.Execute(&ipmi.Request{
		TargetAddr: ipmi.BMCAddress,
		NetFn:      smNetFn,
		Cmd:        smCmd,
		Data:       []byte{smChannel, smSlaveAddr, registerReadLen, smSelector},
	})
	if err != nil {
		return false, err
	}
	if err := resp.Err(); err != nil {
		return false, err
	}
	return true, nil
}
