// Package can provides a pluggable registry of olcb.Bus implementations
// (spec.md §11): pkg/can/socketcan wraps github.com/brutella/can for
// PC-hosted bridges, pkg/can/virtual is an in-memory bus for tests. Both
// satisfy the root olcb.Bus/olcb.Frame contract directly rather than a
// package-local duplicate, so an Engine built from either needs no
// conversion layer.
package can

import (
	"fmt"

	olcb "github.com/openlcb-go/golcb"
)

// NewInterfaceFunc constructs a Bus for one named transport, given a
// channel/device identifier (e.g. "can0").
type NewInterfaceFunc func(channel string) (olcb.Bus, error)

var interfaceRegistry = make(map[string]NewInterfaceFunc)

// RegisterInterface adds a transport under name. Called from an init()
// function in the transport's package (see socketcan, virtual).
func RegisterInterface(name string, newInterface NewInterfaceFunc) {
	interfaceRegistry[name] = newInterface
}

// NewBus looks up a registered transport by name and constructs it.
// Currently registered: "socketcan", "virtual".
func NewBus(name string, channel string) (olcb.Bus, error) {
	createInterface, ok := interfaceRegistry[name]
	if !ok {
		return nil, fmt.Errorf("can: unsupported interface %q", name)
	}
	return createInterface(channel)
}
