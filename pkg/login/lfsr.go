package login

import olcb "github.com/openlcb-go/golcb"

// Step advances the 48-bit LFSR seed per spec.md §4.4: the seed is split
// into two 24-bit halves, each updated with a feedback constant, with the
// carry out of the low half propagated into the high half.
func Step(seed uint64) uint64 {
	lfsr1 := (seed >> 24) & 0xFFFFFF
	lfsr2 := seed & 0xFFFFFF

	t1 := ((lfsr1 << 9) | (lfsr2 >> 15)) & 0xFFFFFF
	t2 := (lfsr2 << 9) & 0xFFFFFF

	sum2 := lfsr2 + t2 + 0x7A4BA9
	carry := sum2 >> 24
	lfsr2 = sum2 & 0xFFFFFF
	lfsr1 = (lfsr1 + t1 + 0x1B0CA3 + carry) & 0xFFFFFF

	return (lfsr1 << 24) | lfsr2
}

// AliasFromSeed computes the 12-bit candidate alias from a 48-bit LFSR
// seed (spec.md §4.4). 0x000 is never a valid alias; callers must keep
// stepping the LFSR until a nonzero alias results.
func AliasFromSeed(seed uint64) olcb.Alias {
	hi := (seed >> 24) & 0xFFFFFF
	lo := seed & 0xFFFFFF
	return olcb.Alias((hi ^ lo ^ (hi >> 12) ^ (lo >> 12)) & 0x0FFF)
}

// FirstAlias computes the session's first candidate alias directly from
// the node's 48-bit NodeID (RUNSTATE_INIT sets seed = node_id and goes
// straight to RUNSTATE_GENERATE_ALIAS without an LFSR step, spec.md §4.4).
// On the vanishingly unlikely chance that hash12(node_id) is 0x000, the
// LFSR is stepped until a usable alias appears.
func FirstAlias(id olcb.NodeID) (seed uint64, a olcb.Alias) {
	seed = uint64(id) & 0xFFFFFFFFFFFF
	a = AliasFromSeed(seed)
	for a == 0 {
		seed = Step(seed)
		a = AliasFromSeed(seed)
	}
	return seed, a
}

// RegenerateAlias is RUNSTATE_GENERATE_SEED: it always steps the LFSR
// first (unlike FirstAlias), used when a conflict forces a fresh alias.
func RegenerateAlias(seed uint64) (newSeed uint64, a olcb.Alias) {
	for {
		seed = Step(seed)
		a = AliasFromSeed(seed)
		if a != 0 {
			return seed, a
		}
	}
}
