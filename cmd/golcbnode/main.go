// Command golcbnode is an example embeddable OpenLCB node: it loads an ini
// config (pkg/config), brings up a CAN transport from pkg/can's registry,
// wires one node into a pkg/network.Engine, and drives Tick/On100ms on two
// independent timers, the PC-hosted analogue of the teacher's background/
// main loop split in cmd/canopen.
package main

import (
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/openlcb-go/golcb/pkg/can"
	_ "github.com/openlcb-go/golcb/pkg/can/socketcan"
	_ "github.com/openlcb-go/golcb/pkg/can/virtual"
	"github.com/openlcb-go/golcb/pkg/config"
	"github.com/openlcb-go/golcb/pkg/network"
	"github.com/openlcb-go/golcb/pkg/node"
)

func main() {
	configPath := flag.String("c", "", "path to node ini config (see pkg/config)")
	canInterface := flag.String("i", "", "CAN interface: socketcan or virtual, overrides config")
	device := flag.String("d", "", "CAN device/channel, overrides config")
	nodeIDFlag := flag.String("n", "", "node ID as colon-separated hex, e.g. 05:01:01:01:00:01, overrides config")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("golcbnode: loading config")
	}
	if *canInterface != "" {
		cfg.CAN.Interface = *canInterface
	}
	if *device != "" {
		cfg.CAN.Device = *device
	}
	if *nodeIDFlag != "" {
		id, err := config.ParseNodeID(*nodeIDFlag)
		if err != nil {
			log.WithError(err).Fatal("golcbnode: parsing -n")
		}
		cfg.Node.ID = id
	}

	bus, err := can.NewBus(cfg.CAN.Interface, cfg.CAN.Device)
	if err != nil {
		log.WithError(err).Fatalf("golcbnode: opening CAN interface %q", cfg.CAN.Interface)
	}
	if err := bus.Connect(); err != nil {
		log.WithError(err).Fatal("golcbnode: connecting to CAN bus")
	}

	engine := network.NewEngine(cfg.NetworkConfig(), bus, log.StandardLogger())

	n := node.New(cfg.Node.ID, cfg.NodeParameters(nil))
	n.SetUserStrings(cfg.Node.UserName, cfg.Node.UserDescription)
	n.OnReboot = func() {
		log.Warn("golcbnode: MemConfig reset requested, exiting for supervisor restart")
		os.Exit(0)
	}
	n.OnFactoryReset = func() {
		log.Warn("golcbnode: MemConfig factory reset requested")
	}
	if err := engine.AddNode(n); err != nil {
		log.WithError(err).Fatal("golcbnode: adding node to pool")
	}

	log.WithField("node_id", cfg.Node.ID).WithField("interface", cfg.CAN.Interface).
		Info("golcbnode: node starting")

	run(engine)
}

// run drives the engine forever: On100ms on a 100ms ticker (CAN login
// cadence, spec.md §6 item 8) and Tick as fast as the host can manage
// (spec.md §4.7's non-blocking dispatcher loop).
func run(engine *network.Engine) {
	loginTicker := time.NewTicker(100 * time.Millisecond)
	defer loginTicker.Stop()

	for {
		select {
		case <-loginTicker.C:
			engine.On100ms()
		default:
			engine.Tick()
			time.Sleep(time.Millisecond)
		}
	}
}
