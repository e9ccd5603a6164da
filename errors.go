package olcb

import "errors"

// Sentinel errors returned by the engine's Go-level API. These are
// distinct from ErrorCode (§7 of spec.md): a sentinel is for callers and
// logs, an ErrorCode is wire data encoded into a reply payload.
var (
	ErrBufferPoolExhausted = errors.New("buffer pool exhausted for requested kind")
	ErrBufferListFull      = errors.New("buffer list has no free slot")
	ErrFIFOFull            = errors.New("inbound FIFO is full")
	ErrTxBufferFull        = errors.New("CAN transmit buffer has no room, retry next tick")
	ErrAliasTableFull      = errors.New("alias mapping table is full")
	ErrAliasNotFound       = errors.New("no mapping for requested alias")
	ErrNodeIDNotFound      = errors.New("no mapping for requested node id")
	ErrNoFreeAlias         = errors.New("LFSR failed to produce a usable alias")
	ErrNodePoolExhausted   = errors.New("node pool has no free slot")
	ErrUnknownMTI          = errors.New("no handler registered for MTI")
	ErrMiddleWithoutFirst  = errors.New("middle/last frame received with no open first frame")
	ErrPayloadTooLarge     = errors.New("payload exceeds kind's maximum size")
	ErrNotPermitted        = errors.New("node's alias is not yet permitted")
	ErrStreamUnsupported   = errors.New("stream protocol is not implemented")
)

// ErrorCode values from S-9.7.0, used in Datagram Rejected / Optional
// Interaction Rejected / memory config fail replies.
const (
	ErrorCodeNotImplemented                  ErrorCode = 0x1000
	ErrorCodeNotImplementedSubcommandUnknown ErrorCode = 0x1042
	ErrorCodeCommandUnknown                  ErrorCode = 0x1041
	ErrorCodeUnknownMTIOrTransport            ErrorCode = 0x1043
	ErrorCodeInvalidArguments                 ErrorCode = 0x1080
	ErrorCodeAddressSpaceUnknown              ErrorCode = 0x1082
	ErrorCodeOutOfBoundsInvalidAddress        ErrorCode = 0x1081

	ErrorCodeTransferError     ErrorCode = 0x2000
	ErrorCodeBufferUnavailable ErrorCode = 0x2040
)
