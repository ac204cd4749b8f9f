package led

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lord2y/ledmon/internal/platform"
	"github.com/lord2y/ledmon/internal/sysfs"
)

// Common errors
var (
	ErrNoPort      = errors.New("could not determine drive port from sysfs path")
	ErrInvalidPort = errors.New("invalid physical port")
	ErrNoChannel   = errors.New("platform does not have a defined IPMI channel")
	ErrNoTailAddr  = errors.New("platform does not have a defined IPMI tail address")
)

type deviceType int

const (
	deviceNone deviceType = iota
	deviceNVMe
	deviceSATA
)

// drive locates a single drive bay: the physical port number assigned by the
// BIOS and the bit it occupies in the backplane status bitmask.
type drive struct {
	port int
	bay  uint32
	dev  deviceType
}

// maxNVMePort bounds the slot numbers some BIOSes report; values outside
// 1..maxNVMePort are not real drive bays.
const maxNVMePort = 24

var ataSegment = regexp.MustCompile(`(?:^|/)ata(\d+)(?:/|$)`)

// driveFromPath derives the drive bay for a device sysfs path. NVMe devices
// are located through the PCI slot table; SATA devices through the ataN path
// component.
func driveFromPath(sysRoot, devPath string, plat platform.Platform) (*drive, error) {
	if addr, ok := nvmeFunctionAddress(devPath); ok {
		port, err := nvmePort(sysRoot, addr, plat)
		if err != nil {
			return nil, err
		}
		if port < 1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPort, port)
		}
		return &drive{
			port: port,
			bay:  1 << (port - 1),
			dev:  deviceNVMe,
		}, nil
	}

	port, ok := ataPort(devPath)
	if !ok {
		return nil, ErrNoPort
	}
	if port < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	// Each MG9098 chip controls up to 8 drives, so the bay bit is relative
	// to the set of 8 served by the chip selected via the tail address.
	return &drive{
		port: port,
		bay:  1 << ((port - 1) % 8),
		dev:  deviceSATA,
	}, nil
}

// nvmeFunctionAddress extracts the PCI address of the function an NVMe device
// hangs off. In a path such as
//
//	/sys/devices/pci0000:e0/0000:e0:03.3/0000:e3:00.0/nvme/nvme0/nvme0n1
//
// the component preceding the first "nvme" component is the function address;
// the function suffix (".0") is stripped so the result can be matched against
// the PCI slot table, which lists addresses without it.
func nvmeFunctionAddress(devPath string) (string, bool) {
	parts := strings.Split(strings.Trim(devPath, "/"), "/")
	for i, part := range parts {
		if !strings.HasPrefix(part, "nvme") || i == 0 {
			continue
		}
		addr := parts[i-1]
		if dot := strings.IndexByte(addr, '.'); dot >= 0 {
			addr = addr[:dot]
		}
		return addr, true
	}
	return "", false
}

// nvmePort resolves a PCI function address to a physical port number,
// applying the per-platform offset the BIOS uses when numbering slots.
func nvmePort(sysRoot, addr string, plat platform.Platform) (int, error) {
	port, err := sysfs.SlotForAddress(sysRoot, addr)
	if err != nil {
		return -1, err
	}

	switch plat {
	case platform.PlatformDaytonaX:
		port -= 2
	case platform.PlatformEthanolX:
		port -= 7
	case platform.PlatformLenovoSR655, platform.PlatformSuperMicro:
		// Slot numbers map directly to ports.
		return port, nil
	}

	// Some BIOSes report slot numbers that are not drive bays at all.
	if port < 0 || port > maxNVMePort {
		return -1, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	return port, nil
}

// ataPort extracts the ATA port number from a path component such as "ata6".
func ataPort(devPath string) (int, bool) {
	m := ataSegment.FindStringSubmatch(devPath)
	if m == nil {
		return -1, false
	}
	port, err := strconv.Atoi(m[1])
	if err != nil {
		return -1, false
	}
	return port, true
}

// ipmiChannel selects the BMC channel used to reach the backplane controller.
func ipmiChannel(plat platform.Platform) (uint8, error) {
	switch plat {
	case platform.PlatformEthanolX:
		return ethanolXChannel, nil
	case platform.PlatformDaytonaX:
		return daytonaXChannel, nil
	case platform.PlatformLenovoSR655:
		return lenovoChannel, nil
	default:
		return 0, ErrNoChannel
	}
}

// ipmiTailAddress selects the MG9098 chip a drive is wired to. On Daytona-X
// only bays 19-24 take NVMe devices, so NVMe always uses the high tail
// address, while SATA bays are split 8 per chip.
func ipmiTailAddress(plat platform.Platform, d *drive) (uint8, error) {
	switch plat {
	case platform.PlatformEthanolX:
		return baseTailAddr, nil
	case platform.PlatformDaytonaX:
		switch d.dev {
		case deviceNVMe:
			return nvmeTailAddr, nil
		case deviceSATA:
			switch {
			case d.port <= 8:
				return baseTailAddr, nil
			case d.port < 17:
				return baseTailAddr + 2, nil
			default:
				return nvmeTailAddr, nil
			}
		default:
			// No drive resolved yet; assume the base address.
			return baseTailAddr, nil
		}
	default:
		return 0, ErrNoTailAddr
	}
}
