package i2c

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request and message flags from linux/i2c-dev.h and linux/i2c.h
const (
	ioctlI2cRdWr = 0x0707
	i2cFlagRead  = uint16(0x0001)
)

type i2cMessage struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type i2cRdWrRequest struct {
	messages    uintptr
	numMessages uint32
}

// DevBus is a Bus backed by a Linux /dev/i2c-N device node, using the
// I2C_RDWR ioctl. The mutex serializes transactions on the file descriptor,
// so a DevBus can be shared directly or wrapped in a Sequencer.
type DevBus struct {
	mutex sync.Mutex
	file  *os.File
}

func OpenDev(busNum int) (*DevBus, error) {
	file, err := os.OpenFile(fmt.Sprintf("/dev/i2c-%d", busNum), unix.O_RDWR|unix.O_NOCTTY, 0600)
	if err != nil {
		return nil, err
	}
	return &DevBus{file: file}, nil
}

func (b *DevBus) Close() error {
	return b.file.Close()
}

func (b *DevBus) I2cWrite(addr byte, data ...byte) (int, error) {
	if err := b.transfer(addr, data, nil); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (b *DevBus) I2cRead(addr byte, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if err := b.transfer(addr, nil, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (b *DevBus) transfer(addr byte, writeBuf []byte, readBuf []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var transfer []i2cMessage
	if readBuf == nil || writeBuf != nil {
		// A zero-length write doubles as an address probe (see Scan)
		writeMsg := i2cMessage{
			addr: uint16(addr),
			len:  uint16(len(writeBuf)),
		}
		if len(writeBuf) > 0 {
			writeMsg.buf = uintptr(unsafe.Pointer(&writeBuf[0]))
		}
		transfer = append(transfer, writeMsg)
	}
	if len(readBuf) > 0 {
		transfer = append(transfer, i2cMessage{
			addr:  uint16(addr),
			flags: i2cFlagRead,
			len:   uint16(len(readBuf)),
			buf:   uintptr(unsafe.Pointer(&readBuf[0])),
		})
	}

	param := i2cRdWrRequest{
		messages:    uintptr(unsafe.Pointer(&transfer[0])),
		numMessages: uint32(len(transfer)),
	}
	_, _, errNo := unix.Syscall(unix.SYS_IOCTL, b.file.Fd(), ioctlI2cRdWr, uintptr(unsafe.Pointer(&param)))
	runtime.KeepAlive(transfer)
	runtime.KeepAlive(writeBuf)
	runtime.KeepAlive(readBuf)
	if errNo != 0 {
		return fmt.Errorf("I2C transfer to %#02x on %v failed: %v", addr, b.file.Name(), errNo)
	}
	return nil
}
