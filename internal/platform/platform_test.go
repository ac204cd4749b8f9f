package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromProductName(t *testing.T) {
	tests := []struct {
		name     string
		product  string
		platform Platform
		intf     Interface
	}{
		{"EthanolX", "ETHANOL_X", PlatformEthanolX, InterfaceIPMI},
		{"EthanolXSuffix", "ETHANOL_X Rev B", PlatformEthanolX, InterfaceIPMI},
		{"DaytonaX", "DAYTONA_X", PlatformDaytonaX, InterfaceIPMI},
		{"LenovoSR655", "ThinkSystem SR655 V3", PlatformLenovoSR655, InterfaceAttention},
		{"UnknownDefaultsToSGPIO", "Some Workstation", PlatformUnset, InterfaceSGPIO},
		{"EmptyDefaultsToSGPIO", "", PlatformUnset, InterfaceSGPIO},
		// Prefix matching is exact; lowercase is a different product
		{"CaseSensitive", "ethanol_x", PlatformUnset, InterfaceSGPIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := FromProductName(tt.product)
			assert.Equal(t, tt.platform, info.Platform)
			assert.Equal(t, tt.intf, info.Interface)
			assert.Equal(t, tt.product, info.ProductName)
		})
	}
}

func TestDetect(t *testing.T) {
	root := t.TempDir()
	dmiDir := filepath.Join(root, "class/dmi/id")
	require.NoError(t, os.MkdirAll(dmiDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dmiDir, "product_name"), []byte("DAYTONA_X\n"), 0644))

	info, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, PlatformDaytonaX, info.Platform)
	assert.Equal(t, InterfaceIPMI, info.Interface)
	assert.Equal(t, "DAYTONA_X", info.ProductName)
}

func TestDetectNoProductName(t *testing.T) {
	info, err := Detect(t.TempDir())
	assert.ErrorIs(t, err, ErrNoProductName)
	assert.Equal(t, InterfaceSGPIO, info.Interface)
}

func TestParseInterface(t *testing.T) {
	for in, want := range map[string]Interface{
		"sgpio":     InterfaceSGPIO,
		"IPMI":      InterfaceIPMI,
		"attention": InterfaceAttention,
	} {
		got, err := ParseInterface(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseInterface("smbus")
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestParsePlatform(t *testing.T) {
	for in, want := range map[string]Platform{
		"ethanol-x":      PlatformEthanolX,
		"ethanolx":       PlatformEthanolX,
		"daytona-x":      PlatformDaytonaX,
		"lenovo-sr655v3": PlatformLenovoSR655,
		"supermicro":     PlatformSuperMicro,
		"SM":             PlatformSuperMicro,
	} {
		got, err := ParsePlatform(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParsePlatform("rome")
	assert.ErrorIs(t, err, ErrUnknownName)
}
