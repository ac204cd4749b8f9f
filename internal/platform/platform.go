package platform

import (
	"errors"
	"strings"

	"github.com/lord2y/ledmon/internal/sysfs"
)

// Common errors
var (
	ErrNoProductName = errors.New("could not read DMI product name")
	ErrUnknownName   = errors.New("unknown interface or platform name")
)

// Interface identifies the physical mechanism a platform uses for
// enclosure/drive LED management.
type Interface int

const (
	InterfaceUnset Interface = iota
	InterfaceSGPIO
	InterfaceIPMI
	InterfaceAttention
)

func (i Interface) String() string {
	switch i {
	case InterfaceSGPIO:
		return "sgpio"
	case InterfaceIPMI:
		return "ipmi"
	case InterfaceAttention:
		return "attention"
	default:
		return "unset"
	}
}

// Platform identifies a specific AMD server platform SKU. The platform
// selects the IPMI channel, tail address and BIOS port numbering offsets.
type Platform int

const (
	PlatformUnset Platform = iota
	PlatformEthanolX
	PlatformDaytonaX
	PlatformLenovoSR655
	PlatformSuperMicro
)

func (p Platform) String() string {
	switch p {
	case PlatformEthanolX:
		return "ethanol-x"
	case PlatformDaytonaX:
		return "daytona-x"
	case PlatformLenovoSR655:
		return "lenovo-sr655v3"
	case PlatformSuperMicro:
		return "supermicro"
	default:
		return "unset"
	}
}

// Info is the result of platform detection.
type Info struct {
	ProductName string
	Platform    Platform
	Interface   Interface
}

// Detect determines the LED interface and platform from the DMI product name
// under sysRoot. Platforms not known to use IPMI or the attention indicator
// default to SGPIO.
func Detect(sysRoot string) (Info, error) {
	name, err := sysfs.ReadAttr(sysfs.Path(sysRoot, "class/dmi/id"), "product_name")
	if err != nil {
		return Info{Interface: InterfaceSGPIO}, ErrNoProductName
	}
	info := FromProductName(name)
	return info, nil
}

// FromProductName maps a DMI product name to a platform and LED interface.
func FromProductName(name string) Info {
	info := Info{
		ProductName: name,
		Interface:   InterfaceSGPIO,
	}

	switch {
	case strings.HasPrefix(name, "ETHANOL_X"):
		info.Platform = PlatformEthanolX
		info.Interface = InterfaceIPMI
	case strings.HasPrefix(name, "DAYTONA_X"):
		info.Platform = PlatformDaytonaX
		info.Interface = InterfaceIPMI
	case strings.HasPrefix(name, "ThinkSystem SR655 V3"):
		info.Platform = PlatformLenovoSR655
		info.Interface = InterfaceAttention
	}

	return info
}

// ParseInterface converts a config override value to an Interface.
func ParseInterface(s string) (Interface, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sgpio":
		return InterfaceSGPIO, nil
	case "ipmi":
		return InterfaceIPMI, nil
	case "attention":
		return InterfaceAttention, nil
	default:
		return InterfaceUnset, ErrUnknownName
	}
}

// ParsePlatform converts a config override value to a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ethanol-x", "ethanolx":
		return PlatformEthanolX, nil
	case "daytona-x", "daytonax":
		return PlatformDaytonaX, nil
	case "lenovo-sr655v3", "lenovo":
		return PlatformLenovoSR655, nil
	case "supermicro", "sm":
		return PlatformSuperMicro, nil
	default:
		return PlatformUnset, ErrUnknownName
	}
}
