package ipmi

import (
	"fmt"
	"os"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// OpenIPMI kernel interface constants, from <linux/ipmi.h>.
const (
	ipmiMaxAddrSize = 32
	ipmiBMCChannel  = 0xf

	ipmiSystemInterfaceAddrType = 0x0c
	ipmiIPMBAddrType            = 0x01
)

// ipmiMsg mirrors struct ipmi_msg.
type ipmiMsg struct {
	netfn   uint8
	cmd     uint8
	dataLen uint16
	data    *byte
}

// ipmiReq mirrors struct ipmi_req.
type ipmiReq struct {
	addr    *byte
	addrLen uint32
	msgid   int64
	msg     ipmiMsg
}

// ipmiRecv mirrors struct ipmi_recv.
type ipmiRecv struct {
	recvType int32
	addr     *byte
	addrLen  uint32
	msgid    int64
	msg      ipmiMsg
}

// ipmiAddr mirrors struct ipmi_addr. For the system interface address
// data[0] is the LUN; for an IPMB address data[0] is the slave address and
// data[1] the LUN.
type ipmiAddr struct {
	addrType int32
	channel  int16
	data     [ipmiMaxAddrSize]byte
}

// ioctl request numbers, computed the way <linux/ipmi.h> builds them with
// _IOR/_IOWR over the 'i' magic.
const (
	iocWrite = 1
	iocRead  = 2

	ipmiIOCMagic = 'i'
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | ipmiIOCMagic<<8 | nr
}

var (
	ioctlSendCommand     = ioc(iocRead, 13, unsafe.Sizeof(ipmiReq{}))
	ioctlReceiveMsgTrunc = ioc(iocRead|iocWrite, 11, unsafe.Sizeof(ipmiRecv{}))
)

// devicePaths are the OpenIPMI device nodes, tried in order.
var devicePaths = []string{"/dev/ipmi0", "/dev/ipmi/0", "/dev/ipmidev/0"}

// Device is an IPMI transport over the local OpenIPMI character device.
type Device struct {
	mu      sync.Mutex
	f       *os.File
	msgid   int64
	timeout time.Duration
}

// Open opens the first available OpenIPMI device node.
func Open(path string, timeout time.Duration) (*Device, error) {
	candidates := devicePaths
	if path != "" {
		candidates = []string{path}
	}

	for _, p := range candidates {
		f, err := os.OpenFile(p, os.O_RDWR, 0)
		if err != nil {
			continue
		}
		return &Device{f: f, timeout: timeout}, nil
	}

	return nil, ErrNoDevice
}

// Close releases the device node.
func (d *Device) Close() error {
	return d.f.Close()
}

// Execute sends a command and waits for the matching response.
func (d *Device) Execute(req *Request) (*Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.msgid++

	addr := ipmiAddr{}
	if req.TargetAddr == BMCAddress {
		addr.addrType = ipmiSystemInterfaceAddrType
		addr.channel = ipmiBMCChannel
		addr.data[0] = 0 // LUN
	} else {
		addr.addrType = ipmiIPMBAddrType
		addr.channel = 0
		addr.data[0] = req.TargetAddr
		addr.data[1] = 0 // LUN
	}

	var reqData *byte
	if len(req.Data) > 0 {
		reqData = &req.Data[0]
	}

	kreq := ipmiReq{
		addr:    (*byte)(unsafe.Pointer(&addr)),
		addrLen: uint32(unsafe.Sizeof(addr)),
		msgid:   d.msgid,
		msg: ipmiMsg{
			netfn:   req.NetFn,
			cmd:     req.Cmd,
			dataLen: uint16(len(req.Data)),
			data:    reqData,
		},
	}

	if err := d.ioctl(ioctlSendCommand, unsafe.Pointer(&kreq)); err != nil {
		return nil, fmt.Errorf("sending IPMI command 0x%02x/0x%02x: %w", req.NetFn, req.Cmd, err)
	}

	if err := d.waitReadable(); err != nil {
		return nil, err
	}

	respBuf := make([]byte, 64)
	recvAddr := ipmiAddr{}
	krecv := ipmiRecv{
		addr:    (*byte)(unsafe.Pointer(&recvAddr)),
		addrLen: uint32(unsafe.Sizeof(recvAddr)),
		msg: ipmiMsg{
			dataLen: uint16(len(respBuf)),
			data:    &respBuf[0],
		},
	}

	if err := d.ioctl(ioctlReceiveMsgTrunc, unsafe.Pointer(&krecv)); err != nil {
		return nil, fmt.Errorf("receiving IPMI response: %w", err)
	}

	n := int(krecv.msg.dataLen)
	if n < 1 {
		return nil, ErrShortResponse
	}

	resp := &Response{
		CompletionCode: respBuf[0],
		Data:           append([]byte(nil), respBuf[1:n]...),
	}
	return resp, nil
}

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// waitReadable polls the device until the response message is queued.
func (d *Device) waitReadable() error {
	timeout := d.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	fds := []unix.PollFd{{Fd: int32(d.f.Fd()), Events: unix.POLLIN}}
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		n, err := unix.Poll(fds, int(remaining.Milliseconds())+1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("polling IPMI device: %w", err)
		}
		if n == 0 {
			return ErrTimeout
		}
		return nil
	}
}
