package gpo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeBus records every attempted write as [addr, data...] and can be
// scripted to fail or short-transfer a specific write (1-based index).
type fakeBus struct {
	writes [][]byte

	failAt  int
	failErr error
	shortAt int
	shortN  int
}

func (b *fakeBus) I2cWrite(addr byte, data ...byte) (int, error) {
	call := len(b.writes) + 1
	b.writes = append(b.writes, append([]byte{addr}, data...))
	if b.failAt == call {
		return 0, b.failErr
	}
	if b.shortAt == call {
		return b.shortN, nil
	}
	return len(data), nil
}

func (b *fakeBus) I2cRead(addr byte, data []byte) (int, error) {
	return len(data), nil
}

func newReady(t *testing.T, numOut int) (*Gpo, *fakeBus) {
	bus := new(fakeBus)
	device := New(bus, 0x20, numOut)
	assert.NoError(t, device.Init())
	bus.writes = nil
	return device, bus
}

func TestInitConfiguresDevice(t *testing.T) {
	a := assert.New(t)
	bus := new(fakeBus)
	device := New(bus, 0x20, 8)
	a.NoError(device.Init())
	a.Equal([][]byte{
		{0x20, 0x00, 0x00}, // IODIR: all pins output
		{0x20, 0x06, 0xFF}, // GPPU: pull up input pins
	}, bus.writes)
	a.Equal(0, device.Value())
}

func TestInitDirectionMask(t *testing.T) {
	a := assert.New(t)
	bus := new(fakeBus)
	device := New(bus, 0x20, 3)
	a.NoError(device.Init())
	a.Equal([][]byte{
		{0x20, 0x00, 0xF8}, // pins 3..7 remain input
		{0x20, 0x06, 0xFF},
	}, bus.writes)
}

func TestInitRejectsPinCount(t *testing.T) {
	a := assert.New(t)
	for _, numOut := range []int{-1, 9, 100} {
		bus := new(fakeBus)
		device := New(bus, 0x20, numOut)
		err := device.Init()
		a.True(errors.Is(err, ErrNumOutRange), "expected pin count error for %v, got %v", numOut, err)
		a.Empty(bus.writes, "no bus writes expected for invalid pin count %v", numOut)
		a.Equal(ErrNotReady, device.SetValue(0))
	}
}

func TestInitWriteFailure(t *testing.T) {
	a := assert.New(t)
	bus := &fakeBus{failAt: 1, failErr: errors.New("no slave ack")}
	device := New(bus, 0x20, 8)
	err := device.Init()
	a.True(errors.Is(err, ErrConfigWrite), "expected configuration error, got %v", err)
	a.Equal(ErrNotReady, device.SetValue(1), "device must stay unusable after failed init")
}

func TestInitShortWrite(t *testing.T) {
	a := assert.New(t)
	bus := &fakeBus{shortAt: 2, shortN: 1}
	device := New(bus, 0x20, 8)
	err := device.Init()
	a.True(errors.Is(err, ErrConfigWrite), "expected configuration error, got %v", err)
	a.Equal(ErrNotReady, device.SetValue(1))
}

func TestSetValueWritesOneHotMask(t *testing.T) {
	a := assert.New(t)
	device, bus := newReady(t, 8)
	for channel, mask := range map[int]byte{1: 0x01, 3: 0x04, 8: 0x80} {
		bus.writes = nil
		a.NoError(device.SetValue(channel))
		a.Equal([][]byte{{0x20, 0x09, mask}}, bus.writes)
		a.Equal(channel, device.Value())
	}
}

func TestSetValueZeroDisablesOutputs(t *testing.T) {
	a := assert.New(t)
	device, bus := newReady(t, 8)
	a.NoError(device.SetValue(5))
	bus.writes = nil
	a.NoError(device.Off())
	a.Equal([][]byte{{0x20, 0x09, 0x00}}, bus.writes)
	a.Equal(0, device.Value())
}

func TestSetValueRejectsChannelRange(t *testing.T) {
	a := assert.New(t)
	device, bus := newReady(t, 3)
	a.NoError(device.SetValue(2))
	bus.writes = nil

	for _, channel := range []int{-1, 4, 9} {
		err := device.SetValue(channel)
		a.True(errors.Is(err, ErrChannelRange), "expected channel range error for %v, got %v", channel, err)
	}
	a.Empty(bus.writes, "invalid channels must not reach the bus")
	a.Equal(2, device.Value())
}

func TestSetValueBusError(t *testing.T) {
	a := assert.New(t)
	device, bus := newReady(t, 8)
	a.NoError(device.SetValue(2))

	bus.failAt = len(bus.writes) + 1
	bus.failErr = errors.New("arbitration lost")
	err := device.SetValue(5)
	a.True(errors.Is(err, ErrBusWrite), "expected bus write error, got %v", err)
	a.Equal(2, device.Value(), "failed write must not change the cached value")
}

func TestSetValueShortWrite(t *testing.T) {
	a := assert.New(t)
	device, bus := newReady(t, 8)
	a.NoError(device.SetValue(2))

	bus.shortAt = len(bus.writes) + 1
	bus.shortN = 1
	err := device.SetValue(5)
	a.True(errors.Is(err, ErrShortWrite), "expected short write error, got %v", err)
	a.Equal(2, device.Value())
}

func TestSetValueIdempotent(t *testing.T) {
	a := assert.New(t)
	device, bus := newReady(t, 8)
	a.NoError(device.SetValue(4))
	a.NoError(device.SetValue(4))
	a.Equal([][]byte{
		{0x20, 0x09, 0x08},
		{0x20, 0x09, 0x08},
	}, bus.writes)
	a.Equal(4, device.Value())
}

func TestScale(t *testing.T) {
	a := assert.New(t)
	device, _ := newReady(t, 8)
	a.Equal(1, device.Scale())
	a.NoError(device.SetValue(7))
	a.Equal(1, device.Scale())
}

func TestFullScenarioAllOutputs(t *testing.T) {
	a := assert.New(t)
	bus := new(fakeBus)
	device := New(bus, 0x20, 8)
	a.NoError(device.Init())
	a.NoError(device.SetValue(3))
	a.Equal([][]byte{
		{0x20, 0x00, 0x00},
		{0x20, 0x06, 0xFF},
		{0x20, 0x09, 0x04},
	}, bus.writes)
	a.Equal(3, device.Value())
}

func TestFullScenarioThreeOutputs(t *testing.T) {
	a := assert.New(t)
	bus := new(fakeBus)
	device := New(bus, 0x20, 3)
	a.NoError(device.Init())
	err := device.SetValue(4)
	a.True(errors.Is(err, ErrChannelRange), "channel 4 must be rejected with 3 outputs, got %v", err)
	a.Equal([][]byte{
		{0x20, 0x00, 0xF8},
		{0x20, 0x06, 0xFF},
	}, bus.writes)
	a.Equal(0, device.Value())
}
