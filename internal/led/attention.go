package led

import (
	"fmt"
	"os"

	"github.com/lord2y/ledmon/internal/sysfs"
)

// setAttention drives the PCIe slot attention indicator for the drive's port.
// Hotplug slots expose an attention file; anything else reports an error so
// changeState can fall back to the IPMI register path.
func (c *Controller) setAttention(d *drive, enable bool) error {
	path := sysfs.SlotAttentionPath(c.sysRoot(), d.port)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("attention indicator for port %d: %w", d.port, err)
	}

	value := "0"
	if enable {
		value = "1"
	}
	if err := os.WriteFile(path, []byte(value+"\n"), 0644); err != nil {
		return fmt.Errorf("writing attention indicator for port %d: %w", d.port, err)
	}

	return nil
}
