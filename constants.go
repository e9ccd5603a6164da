package olcb

// MTI constants, S-9.7.3. Only the subset dispatched by pkg/network's
// handler table is named here; unnamed MTIs fall through to the
// Optional-Interaction-Rejected / silently-dropped default paths.
const (
	MTIInitializationCompleteSimple MTI = 0x0100
	MTIInitializationComplete       MTI = 0x0101
	MTIVerifyNodeIDAddressed        MTI = 0x0488
	MTIVerifyNodeIDGlobal           MTI = 0x0490
	MTIVerifiedNodeID               MTI = 0x0170
	MTIOptionalInteractionRejected  MTI = 0x0068
	MTITerminateDueToError          MTI = 0x00A8

	MTIProtocolSupportInquiry MTI = 0x0828
	MTIProtocolSupportReply   MTI = 0x0668

	MTIProducerConsumerEventReport  MTI = 0x05B4
	MTIConsumerIdentify             MTI = 0x08F4
	MTIConsumerIdentifiedUnknown    MTI = 0x04A7
	MTIConsumerIdentifiedValid      MTI = 0x04A4
	MTIConsumerIdentifiedInvalid    MTI = 0x04A5
	MTIConsumerRangeIdentified      MTI = 0x04A6 // bit 0x0008 clear: range-identified replies are unaddressed, like their discrete counterparts
	MTIProducerIdentify             MTI = 0x0914
	MTIProducerIdentifiedUnknown    MTI = 0x0547
	MTIProducerIdentifiedValid      MTI = 0x0544
	MTIProducerIdentifiedInvalid    MTI = 0x0545
	MTIProducerRangeIdentified      MTI = 0x0546 // bit 0x0008 clear: range-identified replies are unaddressed, like their discrete counterparts
	MTIEventsIdentifyAddressed      MTI = 0x0968
	MTIEventsIdentifyGlobal         MTI = 0x0970
	MTIEventLearn                   MTI = 0x0594

	MTISimpleNodeInfoRequest MTI = 0x0DE8
	MTISimpleNodeInfoReply   MTI = 0x0A08

	MTIDatagram               MTI = 0x1C48
	MTIDatagramReceivedOK     MTI = 0x0A28
	MTIDatagramRejected       MTI = 0x0A48

	MTIStreamInitiateRequest MTI = 0x0CC8
	MTIStreamInitiateReply   MTI = 0x0868
	MTIStreamSend            MTI = 0x1F88
	MTIStreamProceed         MTI = 0x0888
	MTIStreamComplete        MTI = 0x08A8
)

// CAN control-frame variant field, S-9.7.2. These never appear in an
// assembled OpenLCB Message; pkg/canframe packs one into bits 15:12 of the
// 29-bit CAN identifier (below the marker bit and the CID node-ID chunk,
// above the 12-bit alias) to tell the RX classifier which control frame it
// is looking at.
type ControlFrameVariant uint16

const (
	ControlFrameCID7 ControlFrameVariant = 7
	ControlFrameCID6 ControlFrameVariant = 6
	ControlFrameCID5 ControlFrameVariant = 5
	ControlFrameCID4 ControlFrameVariant = 4
	ControlFrameRID  ControlFrameVariant = 8
	ControlFrameAMD  ControlFrameVariant = 9
	ControlFrameAME  ControlFrameVariant = 10
	ControlFrameAMR  ControlFrameVariant = 11
	ControlFrameEIR  ControlFrameVariant = 12
)

// Datagram CAN frame-type nibble (S-9.7.2 §datagram framing), distinct
// from the addressed-message only/first/middle/last bits because datagram
// frames have no MTI byte.
type DatagramFrameType uint8

const (
	DatagramFrameOnly   DatagramFrameType = 0x2
	DatagramFrameFirst  DatagramFrameType = 0x3
	DatagramFrameMiddle DatagramFrameType = 0x4
	DatagramFrameLast   DatagramFrameType = 0x5
)

// Addressed multi-frame framing-flag encoding, bits 5:4 of payload[0].
type FramingFlag uint8

const (
	FramingOnly   FramingFlag = 0x0
	FramingFirst  FramingFlag = 0x1
	FramingLast   FramingFlag = 0x2
	FramingMiddle FramingFlag = 0x3
)

// Memory-configuration address spaces, spec.md §4.10.
const (
	SpaceCDI                 uint8 = 0xFF
	SpaceAll                 uint8 = 0xFE
	SpaceConfig              uint8 = 0xFD
	SpaceACDIManufacturer    uint8 = 0xFC
	SpaceACDIUser            uint8 = 0xFB
	SpaceTrainFDI            uint8 = 0xFA
	SpaceTrainFunctionConfig uint8 = 0xF9
	SpaceFirmware            uint8 = 0xEF
)

// Datagram command byte, spec.md §4.9. Read/write/write-under-mask
// sub-command bytes are per-space-parameterized (pkg/memconfig computes
// them); these are the fixed, non-parameterized command-variant
// sub-commands from spec.md §4.11.
const (
	DatagramCommandConfigMem uint8 = 0x20

	ConfigMemSubCmdOptions        uint8 = 0xB0
	ConfigMemSubCmdOptionsReply   uint8 = 0xB2
	ConfigMemSubCmdAddrSpaceInfo  uint8 = 0xB4
	ConfigMemSubCmdReserve        uint8 = 0xB8
	ConfigMemSubCmdReserveReply   uint8 = 0xB9
	ConfigMemSubCmdFreeze         uint8 = 0xA0
	ConfigMemSubCmdUnfreeze       uint8 = 0xA1
	ConfigMemSubCmdUpdateComplete uint8 = 0xA8
	ConfigMemSubCmdReset          uint8 = 0xA9
	ConfigMemSubCmdFactoryReset   uint8 = 0xAA
	ConfigMemSubCmdGetUniqueID    uint8 = 0xAC
)

// ACDI user-space convention: first 128 bytes of configuration memory.
const (
	ACDIUserNameOffset        = 0
	ACDIUserNameLength        = 64
	ACDIUserDescriptionOffset = 64
	ACDIUserDescriptionLength = 64
)
