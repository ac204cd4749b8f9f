package led

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/lord2y/ledmon/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSlot creates <root>/bus/pci/slots/<slot>/address with the given PCI
// address (function suffix already stripped, as the kernel exposes it).
func fakeSlot(t *testing.T, root string, slot int, addr string) {
	t.Helper()
	dir := filepath.Join(root, "bus/pci/slots", strconv.Itoa(slot))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "address"), []byte(addr+"\n"), 0644))
}

func TestNvmeFunctionAddress(t *testing.T) {
	tests := []struct {
		name string
		path string
		addr string
		ok   bool
	}{
		{
			"Typical",
			"/sys/devices/pci0000:e0/0000:e0:03.3/0000:e3:00.0/nvme/nvme0/nvme0n1",
			"0000:e3:00",
			true,
		},
		{
			"NoFunctionSuffix",
			"/sys/devices/pci0000:e0/0000:e3:00/nvme/nvme1",
			"0000:e3:00",
			true,
		},
		{
			"SATA",
			"/sys/devices/pci0000:00/0000:00:11.4/ata6/host5/target5:0:0/5:0:0:0/block/sda",
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, ok := nvmeFunctionAddress(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.addr, addr)
		})
	}
}

func TestAtaPort(t *testing.T) {
	port, ok := ataPort("/sys/devices/pci0000:00/0000:00:11.4/ata6/host5/target5:0:0/5:0:0:0/block/sda")
	require.True(t, ok)
	assert.Equal(t, 6, port)

	port, ok = ataPort("/sys/devices/pci0000:00/0000:00:11.4/ata12/host11/block/sdc")
	require.True(t, ok)
	assert.Equal(t, 12, port)

	_, ok = ataPort("/sys/devices/pci0000:e0/0000:e3:00.0/nvme/nvme0/nvme0n1")
	assert.False(t, ok)

	// "sata"-looking components must not match
	_, ok = ataPort("/sys/devices/platform/strata/disk0")
	assert.False(t, ok)
}

func TestDriveFromPathNVMe(t *testing.T) {
	nvmePath := "/sys/devices/pci0000:e0/0000:e0:03.3/0000:e3:00.0/nvme/nvme0/nvme0n1"

	tests := []struct {
		name     string
		plat     platform.Platform
		slot     int
		wantPort int
		wantBay  uint32
	}{
		// Ethanol-X numbers slots starting at 8 for bay 1
		{"EthanolX", platform.PlatformEthanolX, 10, 3, 0x04},
		// Daytona-X slots are offset by 2
		{"DaytonaX", platform.PlatformDaytonaX, 21, 19, 1 << 18},
		// Lenovo slot numbers are the port numbers
		{"Lenovo", platform.PlatformLenovoSR655, 2, 2, 0x02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			fakeSlot(t, root, tt.slot, "0000:e3:00")

			d, err := driveFromPath(root, nvmePath, tt.plat)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, d.port)
			assert.Equal(t, tt.wantBay, d.bay)
			assert.Equal(t, deviceNVMe, d.dev)
		})
	}
}

func TestDriveFromPathNVMeInvalidPort(t *testing.T) {
	nvmePath := "/sys/devices/pci0000:e0/0000:e0:03.3/0000:e3:00.0/nvme/nvme0/nvme0n1"

	// Slot 7 on Ethanol-X maps to port 0, which is not a drive bay
	root := t.TempDir()
	fakeSlot(t, root, 7, "0000:e3:00")
	_, err := driveFromPath(root, nvmePath, platform.PlatformEthanolX)
	assert.ErrorIs(t, err, ErrInvalidPort)

	// A BIOS-reported slot number beyond the bay count is rejected
	root = t.TempDir()
	fakeSlot(t, root, 40, "0000:e3:00")
	_, err = driveFromPath(root, nvmePath, platform.PlatformEthanolX)
	assert.ErrorIs(t, err, ErrInvalidPort)
}

func TestDriveFromPathNVMeNoSlot(t *testing.T) {
	root := t.TempDir()
	fakeSlot(t, root, 10, "0000:aa:00")

	nvmePath := "/sys/devices/pci0000:e0/0000:e3:00.0/nvme/nvme0/nvme0n1"
	_, err := driveFromPath(root, nvmePath, platform.PlatformEthanolX)
	assert.Error(t, err)
}

func TestDriveFromPathSATA(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		port    int
		bay     uint32
	}{
		{"Port6", "/sys/devices/pci0000:00/0000:00:11.4/ata6/host5/target5:0:0/5:0:0:0/block/sda", 6, 0x20},
		// Ports past 8 wrap to the next MG9098 chip's bit range
		{"Port9", "/sys/devices/pci0000:00/0000:00:11.5/ata9/host8/block/sdb", 9, 0x01},
		{"Port16", "/sys/devices/pci0000:00/0000:00:11.5/ata16/host15/block/sdc", 16, 0x80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := driveFromPath(t.TempDir(), tt.path, platform.PlatformDaytonaX)
			require.NoError(t, err)
			assert.Equal(t, tt.port, d.port)
			assert.Equal(t, tt.bay, d.bay)
			assert.Equal(t, deviceSATA, d.dev)
		})
	}
}

func TestDriveFromPathUnrecognized(t *testing.T) {
	_, err := driveFromPath(t.TempDir(), "/sys/devices/virtual/block/loop0", platform.PlatformEthanolX)
	assert.ErrorIs(t, err, ErrNoPort)
}

func TestIPMIChannel(t *testing.T) {
	tests := []struct {
		plat platform.Platform
		want uint8
	}{
		{platform.PlatformEthanolX, 0x0d},
		{platform.PlatformDaytonaX, 0x17},
		{platform.PlatformLenovoSR655, 0x00},
	}
	for _, tt := range tests {
		got, err := ipmiChannel(tt.plat)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ipmiChannel(platform.PlatformUnset)
	assert.ErrorIs(t, err, ErrNoChannel)
}

func TestIPMITailAddress(t *testing.T) {
	tests := []struct {
		name string
		plat platform.Platform
		d    *drive
		want uint8
	}{
		{"EthanolX", platform.PlatformEthanolX, &drive{dev: deviceNVMe, port: 3}, 0xc0},
		{"DaytonaXNVMe", platform.PlatformDaytonaX, &drive{dev: deviceNVMe, port: 20}, 0xc4},
		{"DaytonaXSATALow", platform.PlatformDaytonaX, &drive{dev: deviceSATA, port: 8}, 0xc0},
		{"DaytonaXSATAMid", platform.PlatformDaytonaX, &drive{dev: deviceSATA, port: 9}, 0xc2},
		{"DaytonaXSATAHigh", platform.PlatformDaytonaX, &drive{dev: deviceSATA, port: 17}, 0xc4},
		{"DaytonaXNoDrive", platform.PlatformDaytonaX, &drive{}, 0xc0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ipmiTailAddress(tt.plat, tt.d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// The attention-indicator platform has no IPMI tail address
	_, err := ipmiTailAddress(platform.PlatformLenovoSR655, &drive{dev: deviceNVMe, port: 1})
	assert.ErrorIs(t, err, ErrNoTailAddr)
}
