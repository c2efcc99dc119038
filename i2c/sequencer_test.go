package i2c

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingBus struct {
	writes   [][]byte
	inFlight int32
	overlap  bool
}

func (b *recordingBus) enter() {
	if atomic.AddInt32(&b.inFlight, 1) > 1 {
		b.overlap = true
	}
}

func (b *recordingBus) leave() {
	atomic.AddInt32(&b.inFlight, -1)
}

func (b *recordingBus) I2cWrite(addr byte, data ...byte) (int, error) {
	b.enter()
	defer b.leave()
	frame := append([]byte{addr}, data...)
	b.writes = append(b.writes, frame)
	return len(data), nil
}

func (b *recordingBus) I2cRead(addr byte, data []byte) (int, error) {
	b.enter()
	defer b.leave()
	for i := range data {
		data[i] = addr
	}
	return len(data), nil
}

func TestSequencerForwardsRequests(t *testing.T) {
	a := assert.New(t)
	bus := new(recordingBus)
	seq := NewSequencer(bus, 4)
	defer seq.Close()

	n, err := seq.I2cWrite(0x20, 0x09, 0x04)
	a.NoError(err)
	a.Equal(2, n)
	a.Equal([][]byte{{0x20, 0x09, 0x04}}, bus.writes)

	data := make([]byte, 3)
	n, err = seq.I2cRead(0x21, data)
	a.NoError(err)
	a.Equal(3, n)
	a.Equal([]byte{0x21, 0x21, 0x21}, data)
}

func TestSequencerSerializesConcurrentWrites(t *testing.T) {
	a := assert.New(t)
	bus := new(recordingBus)
	seq := NewSequencer(bus, 4)
	defer seq.Close()

	const numWriters = 25
	var wg sync.WaitGroup
	wg.Add(numWriters)
	for i := 0; i < numWriters; i++ {
		go func(val byte) {
			defer wg.Done()
			n, err := seq.I2cWrite(0x20, 0x09, val)
			a.NoError(err)
			a.Equal(2, n)
		}(byte(i))
	}
	wg.Wait()

	a.Len(bus.writes, numWriters)
	a.False(bus.overlap, "bus transactions interleaved")
}
