// Package config loads the ini-backed settings of spec.md §10.3: node
// identity, CAN interface selection, and buffer-pool sizing. A file is
// optional; every section falls back to in-code defaults so the engine is
// usable with zero configuration, matching a firmware build that bakes in a
// literal identity instead of reading a file.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	olcb "github.com/openlcb-go/golcb"
	"github.com/openlcb-go/golcb/pkg/datagram"
	"github.com/openlcb-go/golcb/pkg/network"
	"github.com/openlcb-go/golcb/pkg/node"
)

// Node holds the [node] section: identity and SNIP/CDI string defaults.
type Node struct {
	ID                olcb.NodeID
	ManufacturerName  string
	ManufacturerModel string
	HardwareVersion   string
	SoftwareVersion   string
	UserName          string
	UserDescription   string
}

// CAN holds the [can] section: transport selection for pkg/can's reference
// implementations.
type CAN struct {
	Interface string // "socketcan" or "virtual"
	Device    string // e.g. "can0", ignored for "virtual"
}

// Buffers holds the [buffers] section, mirroring network.Config.
type Buffers struct {
	Basic         int
	Datagram      int
	SNIP          int
	ListSize      int
	FIFOSize      int
	AliasTable    int
	NodePool      int
	TimeoutTicks  int // 100ms ticks before a held outgoing datagram is discarded
	OutQueue      int // capacity of the outgoing-message queue, 0 = unbounded
}

// Config is the parsed result of an ini file (or the zero-config defaults).
type Config struct {
	Node    Node
	CAN     CAN
	Buffers Buffers
}

func defaultConfig() Config {
	return Config{
		Node: Node{
			ManufacturerName:  "golcb",
			ManufacturerModel: "generic-node",
			HardwareVersion:   "0.1",
			SoftwareVersion:   "0.1",
		},
		CAN: CAN{Interface: "virtual", Device: "can0"},
		Buffers: Buffers{
			Basic:        8,
			Datagram:     2,
			SNIP:         1,
			ListSize:     4,
			FIFOSize:     16,
			AliasTable:   8,
			NodePool:     4,
			TimeoutTicks: datagram.DefaultTimeoutTicks,
			OutQueue:     8,
		},
	}
}

// Load parses an ini file at path. A missing file is not an error: Load
// returns the in-code defaults instead, so embedding hosts may call this
// unconditionally.
func Load(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := ini.LooseLoad(path)
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}

	if sec := f.Section("node"); sec != nil {
		if v := sec.Key("id").String(); v != "" {
			id, err := ParseNodeID(v)
			if err != nil {
				return cfg, fmt.Errorf("config: [node] id: %w", err)
			}
			cfg.Node.ID = id
		}
		setString(&cfg.Node.ManufacturerName, sec, "manufacturer_name")
		setString(&cfg.Node.ManufacturerModel, sec, "manufacturer_model")
		setString(&cfg.Node.HardwareVersion, sec, "hardware_version")
		setString(&cfg.Node.SoftwareVersion, sec, "software_version")
		setString(&cfg.Node.UserName, sec, "user_name")
		setString(&cfg.Node.UserDescription, sec, "user_description")
	}

	if sec := f.Section("can"); sec != nil {
		setString(&cfg.CAN.Interface, sec, "interface")
		setString(&cfg.CAN.Device, sec, "device")
	}

	if sec := f.Section("buffers"); sec != nil {
		setInt(&cfg.Buffers.Basic, sec, "basic")
		setInt(&cfg.Buffers.Datagram, sec, "datagram")
		setInt(&cfg.Buffers.SNIP, sec, "snip")
		setInt(&cfg.Buffers.ListSize, sec, "list_size")
		setInt(&cfg.Buffers.FIFOSize, sec, "fifo_size")
		setInt(&cfg.Buffers.AliasTable, sec, "alias_table")
		setInt(&cfg.Buffers.NodePool, sec, "node_pool")
		setInt(&cfg.Buffers.TimeoutTicks, sec, "timeout_ticks")
		setInt(&cfg.Buffers.OutQueue, sec, "out_queue")
	}

	return cfg, nil
}

// ParseNodeID accepts the conventional colon-separated 6-byte hex form,
// e.g. "05:01:01:01:00:01".
func ParseNodeID(s string) (olcb.NodeID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return 0, fmt.Errorf("expected 6 colon-separated hex octets, got %q", s)
	}
	var b [6]byte
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("octet %d: %w", i, err)
		}
		b[i] = byte(v)
	}
	return olcb.NodeIDFromBytes(b[:]), nil
}

func setString(dst *string, sec *ini.Section, key string) {
	if v := sec.Key(key).String(); v != "" {
		*dst = v
	}
}

func setInt(dst *int, sec *ini.Section, key string) {
	if v, err := sec.Key(key).Int(); err == nil && v > 0 {
		*dst = v
	}
}

// NetworkConfig converts the parsed buffer sizing into network.Config.
func (c Config) NetworkConfig() network.Config {
	return network.Config{
		BasicBuffers:         c.Buffers.Basic,
		DatagramBuffers:      c.Buffers.Datagram,
		SNIPBuffers:          c.Buffers.SNIP,
		BufferListSize:       c.Buffers.ListSize,
		FIFOSize:             c.Buffers.FIFOSize,
		AliasTableSize:       c.Buffers.AliasTable,
		NodePoolSize:         c.Buffers.NodePool,
		DatagramTimeoutTicks: c.Buffers.TimeoutTicks,
		OutQueueSize:         c.Buffers.OutQueue,
	}
}

// NodeParameters converts the parsed [node] section into node.Parameters.
func (c Config) NodeParameters(cdi []byte) node.Parameters {
	return node.Parameters{
		ManufacturerName:  c.Node.ManufacturerName,
		ManufacturerModel: c.Node.ManufacturerModel,
		HardwareVersion:   c.Node.HardwareVersion,
		SoftwareVersion:   c.Node.SoftwareVersion,
		CDI:               cdi,
	}
}
