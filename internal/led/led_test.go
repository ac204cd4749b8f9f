package led

import (
	"path/filepath"
	"testing"

	"github.com/lord2y/ledmon/internal/ibpi"
	"github.com/lord2y/ledmon/internal/platform"
	"github.com/lord2y/ledmon/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerPath(t *testing.T) {
	tests := []struct {
		name   string
		cntrl  string
		device string
		want   string
	}{
		{
			"NVMe",
			"/sys/devices/pci0000:e0/0000:e3:00.0/nvme/nvme0",
			"/sys/devices/pci0000:e0/0000:e3:00.0/nvme/nvme0/nvme0n1",
			"/sys/devices/pci0000:e0/0000:e3:00.0/nvme/nvme0/nvme0n1",
		},
		{
			"SATA",
			"/sys/devices/pci0000:00/0000:00:11.4/ata6/host5/target5:0:0",
			"/sys/devices/pci0000:00/0000:00:11.4/ata6/host5/target5:0:0/5:0:0:0/block/sda",
			"/sys/devices/pci0000:00/0000:00:11.4/ata6/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ControllerPath(tt.cntrl, tt.device)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestControllerPathUnrecognized(t *testing.T) {
	_, err := ControllerPath("/sys/devices/pci0000:00/0000:00:1f.2", "/sys/devices/pci0000:00/0000:00:1f.2/block/sdd")
	assert.ErrorIs(t, err, ErrNotControllerPath)
}

func TestSetSuppressesUnchangedPattern(t *testing.T) {
	root := t.TempDir()
	fakeNVMeDrive(t, root, 10)

	store, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	c, tr := newTestController(root, platform.PlatformEthanolX, platform.InterfaceIPMI)
	c.Store = store

	changed, err := c.Set("/dev/nvme0n1", ibpi.PatternLocate)
	require.NoError(t, err)
	assert.True(t, changed)
	sent := len(tr.requests)

	// Same pattern again: no commands reach the BMC
	changed, err = c.Set("/dev/nvme0n1", ibpi.PatternLocate)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, tr.requests, sent)

	// A different pattern goes through
	changed, err = c.Set("/dev/nvme0n1", ibpi.PatternNormal)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Greater(t, len(tr.requests), sent)
}
