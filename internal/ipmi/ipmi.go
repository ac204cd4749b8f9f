package ipmi

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNoDevice       = errors.New("no IPMI character device found")
	ErrTimeout        = errors.New("timed out waiting for IPMI response")
	ErrShortResponse  = errors.New("IPMI response contained no completion code")
	ErrCompletionCode = errors.New("IPMI command failed")
)

// BMCAddress is the well-known IPMB slave address of the BMC.
const BMCAddress = 0x20

// Request is a raw IPMI command addressed to a management controller.
type Request struct {
	TargetAddr uint8 // IPMB slave address; BMCAddress for the local BMC
	NetFn      uint8
	Cmd        uint8
	Data       []byte
}

// Response carries the completion code and any response data returned by the
// management controller.
type Response struct {
	CompletionCode uint8
	Data           []byte
}

// Err returns a non-nil error when the completion code indicates failure.
func (r *Response) Err() error {
	if r.CompletionCode != 0 {
		return fmt.Errorf("%w: completion code 0x%02x", ErrCompletionCode, r.CompletionCode)
	}
	return nil
}

// Transport issues IPMI commands. The concrete implementation talks to the
// local OpenIPMI device; tests substitute a recording mock.
type Transport interface {
	Execute(req *Request) (*Response, error)
	Close() error
}

// Unavailable is a Transport placeholder for hosts without an IPMI device.
// Every command fails with the original open error. Platforms that drive
// LEDs through sysfs alone still work with this in place.
type Unavailable struct {
	Reason error
}

func (u *Unavailable) Execute(*Request) (*Response, error) {
	return nil, fmt.Errorf("IPMI transport unavailable: %w", u.Reason)
}

func (u *Unavailable) Close() error { return nil }
