// Package socketcan wraps github.com/brutella/can as a reference olcb.Bus
// implementation (spec.md §11), for PC-hosted bridges and integration tests
// against real SocketCAN interfaces.
package socketcan

import (
	sockcan "github.com/brutella/can"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/can"
)

func init() {
	can.RegisterInterface("socketcan", NewSocketCanBus)
}

type SocketcanBus struct {
	bus        *sockcan.Bus
	rxListener olcb.FrameListener
}

func NewSocketCanBus(name string) (olcb.Bus, error) {
	bus, err := sockcan.NewBusForInterfaceWithName(name)
	return &SocketcanBus{bus: bus}, err
}

func (b *SocketcanBus) Connect(...any) error {
	go b.bus.ConnectAndPublish()
	return nil
}

func (b *SocketcanBus) Disconnect() error {
	return b.bus.Disconnect()
}

// IsTxBufferClear always reports true: github.com/brutella/can's Publish
// blocks on the kernel socket rather than exposing a hardware TX-buffer
// depth, so there is nothing to poll (spec.md §6 item 2).
func (b *SocketcanBus) IsTxBufferClear() bool { return true }

func (b *SocketcanBus) Send(f olcb.Frame) error {
	return b.bus.Publish(sockcan.Frame{
		ID:     f.ID,
		Length: f.DLC,
		Data:   f.Data,
	})
}

func (b *SocketcanBus) Subscribe(l olcb.FrameListener) error {
	b.rxListener = l
	b.bus.Subscribe(b)
	return nil
}

// Handle satisfies brutella/can's own FrameListener interface and forwards
// into the olcb.FrameListener this bus was subscribed with.
func (b *SocketcanBus) Handle(f sockcan.Frame) {
	b.rxListener.Handle(olcb.Frame{ID: f.ID, DLC: f.Length, Data: f.Data})
}
