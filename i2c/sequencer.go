package i2c

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	requestWrite = iota + 1
	requestRead
)

type request struct {
	typ       int
	addr      byte
	dataWrite []byte
	dataRead  []byte

	n   int
	err error

	done bool
	wait *sync.Cond
}

func (r *request) init() {
	r.wait = &sync.Cond{L: new(sync.Mutex)}
}

func (r *request) waitDone() {
	r.wait.L.Lock()
	defer r.wait.L.Unlock()
	for !r.done {
		r.wait.Wait()
	}
}

func (r *request) notifyDone() {
	r.wait.L.Lock()
	defer r.wait.L.Unlock()
	r.done = true
	r.wait.Broadcast()
}

// Sequencer funnels bus requests from multiple goroutines through a single
// handler goroutine, so that transactions on the underlying bus never
// interleave. It implements Bus itself.
type Sequencer struct {
	bus   Bus
	queue chan *request
}

func NewSequencer(bus Bus, queueSize int) *Sequencer {
	s := &Sequencer{
		bus:   bus,
		queue: make(chan *request, queueSize),
	}
	go s.handleRequests()
	return s
}

func (s *Sequencer) handleRequests() {
	for req := range s.queue {
		switch req.typ {
		case requestWrite:
			req.n, req.err = s.bus.I2cWrite(req.addr, req.dataWrite...)
		case requestRead:
			req.n, req.err = s.bus.I2cRead(req.addr, req.dataRead)
		default:
			log.Errorln("Ignoring invalid I2C request with type", req.typ)
		}
		req.notifyDone()
	}
}

func (s *Sequencer) submit(req *request) {
	req.init()
	s.queue <- req
	req.waitDone()
}

func (s *Sequencer) I2cWrite(addr byte, data ...byte) (int, error) {
	req := &request{
		typ:       requestWrite,
		addr:      addr,
		dataWrite: data,
	}
	s.submit(req)
	return req.n, req.err
}

func (s *Sequencer) I2cRead(addr byte, data []byte) (int, error) {
	req := &request{
		typ:      requestRead,
		addr:     addr,
		dataRead: data,
	}
	s.submit(req)
	return req.n, req.err
}

// Close stops the handler goroutine. Pending requests are still executed,
// requests submitted after Close panic.
func (s *Sequencer) Close() {
	close(s.queue)
}
