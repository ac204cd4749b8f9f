package sysfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrSlotNotFound   = errors.New("no PCI slot matches address")
	ErrDeviceNotFound = errors.New("block device not found in sysfs")
)

// DefaultRoot is the sysfs mount point. Tests substitute a temp directory.
const DefaultRoot = "/sys"

// Path joins a sysfs root with a relative sysfs location.
func Path(root string, elem ...string) string {
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(append([]string{root}, elem...)...)
}

// ReadAttr reads a single sysfs attribute file under dir and returns its
// contents with surrounding whitespace trimmed.
func ReadAttr(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteAttr writes a value to a sysfs attribute file under dir. sysfs
// attributes expect a trailing newline.
func WriteAttr(dir, name, value string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0644)
}

// SlotForAddress scans <root>/bus/pci/slots for a slot whose address file
// matches addr (a PCI address without the function suffix, e.g. "0000:e3:00")
// and returns the slot number. The slot directory name is the physical slot
// number assigned by the BIOS.
func SlotForAddress(root, addr string) (int, error) {
	slotsDir := Path(root, "bus/pci/slots")
	entries, err := os.ReadDir(slotsDir)
	if err != nil {
		return -1, fmt.Errorf("scanning %s: %w", slotsDir, err)
	}

	for _, entry := range entries {
		slotAddr, err := ReadAttr(filepath.Join(slotsDir, entry.Name()), "address")
		if err != nil || slotAddr != addr {
			continue
		}
		slot, err := strconv.Atoi(entry.Name())
		if err != nil {
			return -1, fmt.Errorf("slot directory %q is not numeric: %w", entry.Name(), err)
		}
		return slot, nil
	}

	return -1, fmt.Errorf("%w: %s", ErrSlotNotFound, addr)
}

// SlotAttentionPath returns the attention indicator file for a PCI slot.
func SlotAttentionPath(root string, slot int) string {
	return Path(root, "bus/pci/slots", strconv.Itoa(slot), "attention")
}

// DevicePath resolves a block device (either /dev/<name>, a bare name, or an
// absolute sysfs path) to its canonical sysfs device path. The /sys/block
// entry is a symlink into the /sys/devices hierarchy.
func DevicePath(root, device string) (string, error) {
	if strings.HasPrefix(device, Path(root)+"/") {
		return filepath.EvalSymlinks(device)
	}

	name := filepath.Base(device)
	link := Path(root, "block", name)
	if _, err := os.Lstat(link); err != nil {
		return "", fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
	}
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", link, err)
	}
	return resolved, nil
}
