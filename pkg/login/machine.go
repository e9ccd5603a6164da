// Package login implements the CAN login state machine of spec.md §4.4:
// LFSR-based alias generation and the CID7/6/5/4 -> WAIT_200ms -> RID -> AMD
// handshake that claims a 12-bit alias for a node's NodeID.
package login

import (
	"github.com/sirupsen/logrus"

	"github.com/openlcb-go/golcb/pkg/alias"
	"github.com/openlcb-go/golcb/pkg/canframe"
	"github.com/openlcb-go/golcb/pkg/node"
)

// ticksForWait200ms is the number of 100ms main-loop ticks WAIT_200ms holds
// for, per spec.md §4.4.
const ticksForWait200ms = 2

// Machine drives a single node's RunState through the login sequence. One
// Machine is shared across the node pool; it is stateless between Step
// calls beyond the alias table and transmitter it holds.
type Machine struct {
	aliases *alias.Table
	tx      *canframe.Transmitter
	log     logrus.FieldLogger
}

func NewMachine(aliases *alias.Table, tx *canframe.Transmitter, log logrus.FieldLogger) *Machine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Machine{aliases: aliases, tx: tx, log: log}
}

// Step advances n's RunState by exactly one state, emitting at most one CAN
// frame, per spec.md §4.4's table. It is a no-op once n reaches
// RunStateLoadInitializationComplete or later; those states belong to
// pkg/network's OpenLCB login machine (spec.md §4.8).
func (m *Machine) Step(n *node.Node) error {
	switch n.RunState {
	case node.RunStateInit:
		n.Seed = uint64(n.NodeID) & 0xFFFFFFFFFFFF
		n.RunState = node.RunStateGenerateAlias

	case node.RunStateGenerateSeed:
		n.Seed = Step(n.Seed)
		n.RunState = node.RunStateGenerateAlias

	case node.RunStateGenerateAlias:
		a := AliasFromSeed(n.Seed)
		for a == 0 {
			n.Seed = Step(n.Seed)
			a = AliasFromSeed(n.Seed)
		}
		if n.Alias != 0 {
			m.aliases.Unregister(n.Alias)
		}
		if err := m.aliases.Register(a, n.NodeID); err != nil {
			m.log.WithError(err).WithField("node_id", n.NodeID).Warn("login: alias table full, retrying next tick")
			return err
		}
		n.Alias = a
		n.RunState = node.RunStateLoadCheckID07

	case node.RunStateLoadCheckID07:
		if err := m.tx.SendControl(canframe.BuildCID7(n.NodeID, n.Alias)); err != nil {
			return err
		}
		n.RunState = node.RunStateLoadCheckID06

	case node.RunStateLoadCheckID06:
		if err := m.tx.SendControl(canframe.BuildCID6(n.NodeID, n.Alias)); err != nil {
			return err
		}
		n.RunState = node.RunStateLoadCheckID05

	case node.RunStateLoadCheckID05:
		if err := m.tx.SendControl(canframe.BuildCID5(n.NodeID, n.Alias)); err != nil {
			return err
		}
		n.RunState = node.RunStateLoadCheckID04

	case node.RunStateLoadCheckID04:
		if err := m.tx.SendControl(canframe.BuildCID4(n.NodeID, n.Alias)); err != nil {
			return err
		}
		n.TickCounter = 0
		n.RunState = node.RunStateWait200ms

	case node.RunStateWait200ms:
		n.TickCounter++
		if n.TickCounter >= ticksForWait200ms {
			n.RunState = node.RunStateLoadReserveID
		}

	case node.RunStateLoadReserveID:
		if err := m.tx.SendControl(canframe.BuildRID(n.Alias)); err != nil {
			return err
		}
		n.RunState = node.RunStateLoadAliasMapDefinition

	case node.RunStateLoadAliasMapDefinition:
		if err := m.tx.SendControl(canframe.BuildAMD(n.Alias, n.NodeID)); err != nil {
			return err
		}
		m.aliases.SetPermitted(n.Alias, true)
		n.Permitted = true
		n.RunState = node.RunStateLoadInitializationComplete
	}
	return nil
}

// ObserveControlFrame implements the duplicate-alias check of spec.md
// §4.4/§4.5: any control frame carrying n's own alias but a different
// NodeID means another node claimed the same alias. The mapping is marked
// duplicate and n restarts login from GENERATE_SEED. The engine's rxListener
// calls this for every inbound control frame regardless of n's current
// RunState (see DESIGN.md's Open Question decision 4), so a late duplicate
// arriving between AMD and RUN entry — or even after RUN — is caught the
// same way a duplicate during the reserve steps is, rather than only being
// checked once at a single transition point.
func (m *Machine) ObserveControlFrame(n *node.Node, cf canframe.ControlFrame) {
	if cf.Kind == canframe.ControlNone || cf.Alias != n.Alias {
		return
	}
	if cf.NodeID != 0 && cf.NodeID == n.NodeID {
		return // our own frame
	}
	m.aliases.SetDuplicate(n.Alias)
	n.RunState = node.RunStateGenerateSeed
	n.TickCounter = 0
	m.log.WithField("alias", n.Alias).WithField("node_id", n.NodeID).
		Warn("login: alias conflict detected, restarting login")
}

// ObserveForeignMapping updates the shared alias table for AMD/AMR frames
// from other nodes (spec.md §4.5: "AMD creates a foreign mapping; AMR
// removes one"). Callers should skip this for aliases owned by the local
// node pool, which ObserveControlFrame already handles.
func ObserveForeignMapping(table *alias.Table, cf canframe.ControlFrame) {
	switch cf.Kind {
	case canframe.ControlAMD:
		_ = table.Register(cf.Alias, cf.NodeID)
		table.SetPermitted(cf.Alias, true)
	case canframe.ControlAMR:
		table.Unregister(cf.Alias)
	}
}
