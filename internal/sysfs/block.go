package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// BlockDevice represents drive data collected from sysfs (no process
// spawning, no drive wake).
type BlockDevice struct {
	Name      string // sda, nvme0n1, etc.
	Path      string // /dev/sda
	SysfsPath string // resolved /sys/devices/... path
	Model     *string
	Vendor    *string
	Serial    *string
	State     *string
	SizeBytes *int64 // from size (512-byte sectors)
	NVMe      bool
}

// CollectBlockDevices gathers SATA/SAS and NVMe drives from <root>/block.
// Partitions, loop and device-mapper devices are skipped.
func CollectBlockDevices(root string) []*BlockDevice {
	var devices []*BlockDevice

	blockDir := Path(root, "block")
	entries, err := os.ReadDir(blockDir)
	if err != nil {
		return devices
	}

	for _, entry := range entries {
		name := entry.Name()
		if !isDriveName(name) {
			continue
		}
		if dev := collectBlockDevice(root, name); dev != nil {
			devices = append(devices, dev)
		}
	}

	return devices
}

// isDriveName matches whole-drive names: sdX or nvmeXnY, not partitions.
func isDriveName(name string) bool {
	if strings.HasPrefix(name, "sd") {
		return !strings.ContainsAny(name, "0123456789")
	}
	if strings.HasPrefix(name, "nvme") {
		return strings.Contains(name, "n") && !strings.Contains(name, "p")
	}
	return false
}

func collectBlockDevice(root, name string) *BlockDevice {
	blockPath := Path(root, "block", name)
	devicePath := filepath.Join(blockPath, "device")

	if _, err := os.Stat(devicePath); err != nil {
		return nil
	}

	dev := &BlockDevice{
		Name: name,
		Path: "/dev/" + name,
		NVMe: strings.HasPrefix(name, "nvme"),
	}

	if resolved, err := filepath.EvalSymlinks(blockPath); err == nil {
		dev.SysfsPath = resolved
	}

	if model, err := ReadAttr(devicePath, "model"); err == nil && model != "" {
		dev.Model = &model
	}
	if vendor, err := ReadAttr(devicePath, "vendor"); err == nil && vendor != "" {
		dev.Vendor = &vendor
	}
	if serial, err := ReadAttr(devicePath, "serial"); err == nil && serial != "" {
		dev.Serial = &serial
	}
	if state, err := ReadAttr(devicePath, "state"); err == nil && state != "" {
		dev.State = &state
	}

	// size is in 512-byte sectors regardless of the logical block size
	if sizeStr, err := ReadAttr(blockPath, "size"); err == nil {
		if sectors, err := strconv.ParseInt(sizeStr, 10, 64); err == nil {
			bytes := sectors * 512
			dev.SizeBytes = &bytes
		}
	}

	return dev
}
