package memconfig

import (
	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/node"
	"github.com/openlcb-go/golcb/pkg/snip"
)

const trainFunctionCount = len(node.TrainState{}.Functions)

// highestAddress returns the last valid address in a space, or -1 if the
// space is not present at all for this node (spec.md §4.10 validation
// step "space must exist and be present").
func highestAddress(n *node.Node, space byte) int {
	switch space {
	case olcb.SpaceCDI:
		return len(n.Params.CDI) - 1
	case olcb.SpaceConfig:
		return len(n.ConfigMem) - 1
	case olcb.SpaceACDIManufacturer:
		return len(snip.ManufacturerBytes(n)) - 1
	case olcb.SpaceACDIUser:
		return olcb.ACDIUserDescriptionOffset + olcb.ACDIUserDescriptionLength - 1
	case olcb.SpaceTrainFDI:
		return len(n.Train.FDI) - 1
	case olcb.SpaceTrainFunctionConfig:
		return trainFunctionCount*2 - 1
	default:
		return -1
	}
}

// readSpace returns count bytes starting at addr. Callers are responsible
// for the overrun clamp before calling this.
func readSpace(n *node.Node, space byte, addr uint32, count int) ([]byte, bool) {
	switch space {
	case olcb.SpaceCDI:
		return sliceFrom(n.Params.CDI, addr, count)
	case olcb.SpaceConfig, olcb.SpaceACDIUser:
		return sliceFrom(n.ConfigMem, addr, count)
	case olcb.SpaceACDIManufacturer:
		return sliceFrom(snip.ManufacturerBytes(n), addr, count)
	case olcb.SpaceTrainFDI:
		return sliceFrom(n.Train.FDI, addr, count)
	case olcb.SpaceTrainFunctionConfig:
		return readTrainFunctions(n, addr, count)
	default:
		return nil, false
	}
}

// writeSpace writes data starting at addr. Read-only spaces (CDI, ACDI
// Manufacturer, and the overall "All" space) reject writes.
func writeSpace(n *node.Node, space byte, addr uint32, data []byte) bool {
	switch space {
	case olcb.SpaceConfig, olcb.SpaceACDIUser:
		return writeInto(n.ConfigMem, addr, data)
	case olcb.SpaceTrainFDI:
		return writeInto(n.Train.FDI, addr, data)
	case olcb.SpaceTrainFunctionConfig:
		return writeTrainFunctions(n, addr, data)
	default:
		return false
	}
}

func sliceFrom(src []byte, addr uint32, count int) ([]byte, bool) {
	start := int(addr)
	if start < 0 || start > len(src) {
		return nil, false
	}
	end := start + count
	if end > len(src) {
		end = len(src)
	}
	return append([]byte(nil), src[start:end]...), true
}

func writeInto(dst []byte, addr uint32, data []byte) bool {
	start := int(addr)
	if start < 0 || start > len(dst) {
		return false
	}
	end := start + len(data)
	if end > len(dst) {
		end = len(dst)
	}
	copy(dst[start:end], data[:end-start])
	return true
}

func readTrainFunctions(n *node.Node, addr uint32, count int) ([]byte, bool) {
	buf := make([]byte, trainFunctionCount*2)
	for i, v := range n.Train.Functions {
		buf[i*2] = byte(v >> 8)
		buf[i*2+1] = byte(v)
	}
	return sliceFrom(buf, addr, count)
}

func writeTrainFunctions(n *node.Node, addr uint32, data []byte) bool {
	buf := make([]byte, trainFunctionCount*2)
	for i, v := range n.Train.Functions {
		buf[i*2] = byte(v >> 8)
		buf[i*2+1] = byte(v)
	}
	if !writeInto(buf, addr, data) {
		return false
	}
	for i := range n.Train.Functions {
		n.Train.Functions[i] = uint16(buf[i*2])<<8 | uint16(buf[i*2+1])
	}
	return true
}
