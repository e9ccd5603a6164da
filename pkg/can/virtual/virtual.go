// Package virtual provides an in-memory olcb.Bus, grounded on the teacher's
// own virtual CAN bus (pkg/can/virtual) but trimmed from its TCP-broker
// design to genuine in-process delivery: every Bus sharing the same channel
// name is wired to a common Medium, and Send fans a frame out to every
// other subscriber on that medium synchronously. It lets a test exercise a
// multi-node exchange without real hardware; the pkg/network, pkg/login
// and pkg/datagram test suites use their own in-file fake buses instead.
package virtual

import (
	"sync"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/can"
)

func init() {
	can.RegisterInterface("virtual", NewVirtualCanBus)
}

// Medium is a shared in-memory broadcast domain: every Bus connected to the
// same Medium sees every other Bus's Send calls.
type Medium struct {
	mu      sync.Mutex
	members []*Bus
}

var media = struct {
	mu sync.Mutex
	m  map[string]*Medium
}{m: make(map[string]*Medium)}

func mediumFor(channel string) *Medium {
	media.mu.Lock()
	defer media.mu.Unlock()
	m, ok := media.m[channel]
	if !ok {
		m = &Medium{}
		media.m[channel] = m
	}
	return m
}

func (m *Medium) join(b *Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members = append(m.members, b)
}

func (m *Medium) leave(b *Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.members {
		if x == b {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return
		}
	}
}

func (m *Medium) broadcast(from *Bus, f olcb.Frame) {
	m.mu.Lock()
	recipients := append([]*Bus(nil), m.members...)
	m.mu.Unlock()
	for _, b := range recipients {
		if b == from && !b.receiveOwn {
			continue
		}
		if b.listener != nil {
			b.listener.Handle(f)
		}
	}
}

// Bus is one endpoint on a Medium.
type Bus struct {
	mu         sync.Mutex
	medium     *Medium
	listener   olcb.FrameListener
	receiveOwn bool
	connected  bool
}

// NewVirtualCanBus constructs a Bus joined to the Medium named by channel;
// buses constructed with the same channel observe each other's frames.
func NewVirtualCanBus(channel string) (olcb.Bus, error) {
	return &Bus{medium: mediumFor(channel)}, nil
}

func (b *Bus) Connect(...any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connected {
		return nil
	}
	b.connected = true
	b.medium.join(b)
	return nil
}

func (b *Bus) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected {
		return nil
	}
	b.connected = false
	b.medium.leave(b)
	return nil
}

func (b *Bus) IsTxBufferClear() bool { return true }

func (b *Bus) Send(f olcb.Frame) error {
	b.medium.broadcast(b, f)
	return nil
}

func (b *Bus) Subscribe(l olcb.FrameListener) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listener = l
	if !b.connected {
		b.connected = true
		b.medium.join(b)
	}
	return nil
}

// SetReceiveOwn controls whether this bus observes its own sent frames,
// matching the teacher's loopback toggle (used by single-node unit tests
// that want to see their own login control frames).
func (b *Bus) SetReceiveOwn(receiveOwn bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receiveOwn = receiveOwn
}
