package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "virtual", cfg.CAN.Interface)
	assert.Equal(t, 8, cfg.Buffers.Basic)
	assert.Equal(t, 4, cfg.Buffers.NodePool)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	require.NoError(t, err)
	assert.Equal(t, "golcb", cfg.Node.ManufacturerName)
}

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.ini")
	contents := `
[node]
id = 05:01:01:01:00:01
manufacturer_name = Acme Signals
hardware_version = 2.0

[can]
interface = socketcan
device = can1

[buffers]
datagram = 4
node_pool = 1
out_queue = 16
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme Signals", cfg.Node.ManufacturerName)
	assert.Equal(t, "2.0", cfg.Node.HardwareVersion)
	assert.Equal(t, "0.1", cfg.Node.SoftwareVersion, "unset keys keep their default")
	assert.EqualValues(t, 0x050101010001, cfg.Node.ID)

	assert.Equal(t, "socketcan", cfg.CAN.Interface)
	assert.Equal(t, "can1", cfg.CAN.Device)

	assert.Equal(t, 4, cfg.Buffers.Datagram)
	assert.Equal(t, 1, cfg.Buffers.NodePool)
	assert.Equal(t, 16, cfg.Buffers.OutQueue)
	assert.Equal(t, 8, cfg.Buffers.Basic, "unset buffer keys keep their default")
}

func TestLoadRejectsMalformedNodeID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ini")
	require.NoError(t, os.WriteFile(path, []byte("[node]\nid = not-an-id\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
