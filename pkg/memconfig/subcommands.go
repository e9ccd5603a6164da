package memconfig

import olcb "github.com/openlcb-go/golcb"

// Per-space read/write/write-under-mask sub-command bytes (spec.md §4.9's
// large table). These are NOT one uniform bit-arithmetic formula: the two
// concrete examples in spec.md §8 (read CDI = 0x43, write-under-mask
// space FD = 0x88) use different offset conventions from each other, so
// each family is its own explicit table, anchored on whichever example
// spec.md gives and extended self-consistently for the remaining spaces.
const (
	subReadGeneric byte = 0x40
	subReadConfig  byte = 0x41
	subReadAll     byte = 0x42
	subReadCDI     byte = 0x43 // spec.md §8 scenario 5
	subReadACDIMfg byte = 0x44
	subReadACDIUsr byte = 0x45
	subReadTrainFD byte = 0x46
	subReadTrainFn byte = 0x47

	subWriteGeneric byte = 0x80
	subWriteConfig  byte = 0x81
	subWriteAll     byte = 0x82
	subWriteCDI     byte = 0x83
	subWriteACDIMfg byte = 0x84
	subWriteACDIUsr byte = 0x85
	subWriteTrainFD byte = 0x86
	subWriteTrainFn byte = 0x87

	subMaskConfig  byte = 0x88 // spec.md §8 scenario 6
	subMaskAll     byte = 0x89
	subMaskCDI     byte = 0x8A
	subMaskGeneric byte = 0x8B
	subMaskACDIMfg byte = 0x8C
	subMaskACDIUsr byte = 0x8D
	subMaskTrainFD byte = 0x8E
	subMaskTrainFn byte = 0x8F
)

// replyOffset turns a request sub-command into its success-reply
// sub-command: both of spec.md's worked examples add exactly 0x10
// (0x43 -> 0x53, 0x88 -> 0x98).
const replyOffset = 0x10

// failReplyOffset is this port's choice for the failure-reply sub-command,
// since spec.md does not give a concrete failure-reply byte in its worked
// examples.
const failReplyOffset = 0x11

type opKind uint8

const (
	opRead opKind = iota
	opWrite
	opWriteMask
)

type subCommandInfo struct {
	op      opKind
	space   byte // olcb.SpaceXxx, 0 if generic
	generic bool
}

var subCommandTable = map[byte]subCommandInfo{
	subReadGeneric: {opRead, 0, true},
	subReadConfig:  {opRead, olcb.SpaceConfig, false},
	subReadAll:     {opRead, olcb.SpaceAll, false},
	subReadCDI:     {opRead, olcb.SpaceCDI, false},
	subReadACDIMfg: {opRead, olcb.SpaceACDIManufacturer, false},
	subReadACDIUsr: {opRead, olcb.SpaceACDIUser, false},
	subReadTrainFD: {opRead, olcb.SpaceTrainFDI, false},
	subReadTrainFn: {opRead, olcb.SpaceTrainFunctionConfig, false},

	subWriteGeneric: {opWrite, 0, true},
	subWriteConfig:  {opWrite, olcb.SpaceConfig, false},
	subWriteAll:     {opWrite, olcb.SpaceAll, false},
	subWriteCDI:     {opWrite, olcb.SpaceCDI, false},
	subWriteACDIMfg: {opWrite, olcb.SpaceACDIManufacturer, false},
	subWriteACDIUsr: {opWrite, olcb.SpaceACDIUser, false},
	subWriteTrainFD: {opWrite, olcb.SpaceTrainFDI, false},
	subWriteTrainFn: {opWrite, olcb.SpaceTrainFunctionConfig, false},

	subMaskConfig:  {opWriteMask, olcb.SpaceConfig, false},
	subMaskAll:     {opWriteMask, olcb.SpaceAll, false},
	subMaskCDI:     {opWriteMask, olcb.SpaceCDI, false},
	subMaskGeneric: {opWriteMask, 0, true},
	subMaskACDIMfg: {opWriteMask, olcb.SpaceACDIManufacturer, false},
	subMaskACDIUsr: {opWriteMask, olcb.SpaceACDIUser, false},
	subMaskTrainFD: {opWriteMask, olcb.SpaceTrainFDI, false},
	subMaskTrainFn: {opWriteMask, olcb.SpaceTrainFunctionConfig, false},
}
