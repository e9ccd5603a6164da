package olcb

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Frame is a raw extended-identifier CAN frame, as exchanged with the host's
// CAN hardware driver (spec.md §6). ID holds the extended identifier as
// packed by pkg/canframe, whose field layout is its own encoding and not the
// S-9.7.2 wire layout; it is never a bare 11-bit COB-ID.
type Frame struct {
	ID   uint32
	DLC  uint8
	Data [8]byte
}

func NewFrame(id uint32, dlc uint8) Frame {
	return Frame{ID: id, DLC: dlc}
}

// FrameListener receives CAN frames off the bus. Handle must not block.
type FrameListener interface {
	Handle(frame Frame)
}

// Bus is the host-supplied CAN transport (spec.md §6, items 1-3). A real
// embedded build backs this with interrupt-driven hardware registers; for
// PC-hosted bridges and tests, pkg/can/socketcan and pkg/can/virtual
// provide ready implementations.
type Bus interface {
	Connect(...any) error
	Disconnect() error
	// Send enqueues a frame for transmission. It returns ErrTxBufferFull
	// (via olcb.ErrTxBufferFull, not a panic) when the hardware TX buffer
	// has no room; the caller retries next tick per spec.md §4.6.
	Send(frame Frame) error
	// IsTxBufferClear reports whether the hardware has room for another
	// frame (spec.md §6 item 2).
	IsTxBufferClear() bool
	Subscribe(listener FrameListener) error
}

// BusManager wraps a Bus with the logging and locking discipline the rest
// of the engine expects: every call into Bus happens with the caller
// already holding the shared-resource lock (spec.md §5).
type BusManager struct {
	mu     sync.Mutex
	bus    Bus
	logger logrus.FieldLogger
}

func NewBusManager(bus Bus, logger logrus.FieldLogger) *BusManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BusManager{bus: bus, logger: logger}
}

func (bm *BusManager) Bus() Bus {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.bus
}

func (bm *BusManager) SetBus(bus Bus) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.bus = bus
}

// IsTxBufferClear reports whether the underlying bus has room to accept
// another frame without blocking.
func (bm *BusManager) IsTxBufferClear() bool {
	bm.mu.Lock()
	bus := bm.bus
	bm.mu.Unlock()
	if bus == nil {
		return false
	}
	return bus.IsTxBufferClear()
}

// Send transmits a single CAN frame. It never blocks: if the hardware
// buffer is full it returns ErrTxBufferFull immediately.
func (bm *BusManager) Send(frame Frame) error {
	bm.mu.Lock()
	bus := bm.bus
	bm.mu.Unlock()
	if bus == nil {
		return ErrTxBufferFull
	}
	if !bus.IsTxBufferClear() {
		return ErrTxBufferFull
	}
	if err := bus.Send(frame); err != nil {
		bm.logger.WithError(err).Warn("frame send failed")
		return err
	}
	return nil
}

func (bm *BusManager) Subscribe(listener FrameListener) error {
	bm.mu.Lock()
	bus := bm.bus
	bm.mu.Unlock()
	if bus == nil {
		return ErrTxBufferFull
	}
	return bus.Subscribe(listener)
}
