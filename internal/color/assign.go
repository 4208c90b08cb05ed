// Package color assigns player colors to factions by weighted preference,
// evicting and reassigning lower-priority holders when two factions want the
// same color.
package color

import (
	"container/heap"
	"fmt"
	"math/rand"

	"github.com/ti-assistant/server/internal/catalog"
)

// prio is one (color, weight) preference entry for a faction. Heap order is
// by weight only, highest first.
type prio struct {
	color  catalog.Color
	weight float64
}

type prioHeap []prio

func (h prioHeap) Len() int            { return len(h) }
func (h prioHeap) Less(i, j int) bool  { return h[i].weight > h[j].weight }
func (h prioHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *prioHeap) Push(x interface{}) { *h = append(*h, x.(prio)) }
func (h *prioHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func w(c catalog.Color, weight float64) prio { return prio{color: c, weight: weight} }

// factionPriority returns a faction's weighted color preferences, highest
// weight first. Factions not listed have no particular preference and fall
// straight to the random-unused-color fallback.
func factionPriority(f catalog.Faction) *prioHeap {
	var list []prio
	switch f {
	case catalog.Arborec:
		list = []prio{w(catalog.Green, 1.6), w(catalog.Black, 0.1), w(catalog.Yellow, 0.1), w(catalog.Blue, 0.1)}
	case catalog.BaronyOfLetnev:
		list = []prio{w(catalog.Red, 1.2), w(catalog.Black, 0.8)}
	case catalog.ClanOfSaar:
		list = []prio{w(catalog.Orange, 1.4), w(catalog.Yellow, 0.6)}
	case catalog.EmbersOfMuaat:
		list = []prio{w(catalog.Red, 1.5), w(catalog.Orange, 0.4)}
	case catalog.EmiratesOfHacan:
		list = []prio{w(catalog.Orange, 1.6), w(catalog.Yellow, 0.5)}
	case catalog.FederationOfSol:
		list = []prio{w(catalog.Blue, 1.3), w(catalog.Yellow, 0.4)}
	case catalog.GhostsOfCreuss:
		list = []prio{w(catalog.Purple, 1.6), w(catalog.Blue, 0.3)}
	case catalog.L1Z1XMindnet:
		list = []prio{w(catalog.Black, 1.6), w(catalog.Red, 0.2)}
	case catalog.MentakCoalition:
		list = []prio{w(catalog.Orange, 1.1), w(catalog.Black, 0.7)}
	case catalog.NaaluCollective:
		list = []prio{w(catalog.Yellow, 1.6), w(catalog.Pink, 0.3)}
	case catalog.NekroVirus:
		list = []prio{w(catalog.Red, 1.75), w(catalog.Black, 0.15)}
	case catalog.SardakkNorr:
		list = []prio{w(catalog.Black, 1.0), w(catalog.Red, 0.9)}
	case catalog.UniversitiesOfJolNar:
		list = []prio{w(catalog.Blue, 1.6), w(catalog.Purple, 0.3)}
	case catalog.Winnu:
		list = []prio{w(catalog.Yellow, 1.0), w(catalog.Orange, 0.5)}
	case catalog.XxchaKingdom:
		list = []prio{w(catalog.Blue, 1.2), w(catalog.Green, 0.4)}
	case catalog.YinBrotherhood:
		list = []prio{w(catalog.Purple, 1.2), w(catalog.Pink, 0.6)}
	case catalog.YssarilTribes:
		list = []prio{w(catalog.Green, 1.1), w(catalog.Black, 0.5)}
	case catalog.ArgentFlight:
		list = []prio{w(catalog.Orange, 1.3), w(catalog.Pink, 0.4)}
	case catalog.Empyrean:
		list = []prio{w(catalog.Purple, 1.3), w(catalog.Black, 0.3)}
	case catalog.MahactGeneSorcerers:
		list = []prio{w(catalog.Pink, 1.5), w(catalog.Yellow, 0.3)}
	case catalog.NaazRokhaAlliance:
		list = []prio{w(catalog.Green, 1.3), w(catalog.Orange, 0.4)}
	case catalog.Nomad:
		list = []prio{w(catalog.Pink, 1.4), w(catalog.Purple, 0.3)}
	case catalog.TitansOfUl:
		list = []prio{w(catalog.Blue, 1.3), w(catalog.Black, 0.3)}
	case catalog.VuilRaithCabal:
		list = []prio{w(catalog.Red, 1.3), w(catalog.Purple, 0.3)}
	case catalog.CouncilKeleres:
		list = []prio{w(catalog.Green, 0.8), w(catalog.Blue, 0.8)}
	default:
		return &prioHeap{}
	}
	h := prioHeap(list)
	heap.Init(&h)
	return &h
}

type claim struct {
	prio    prio
	faction catalog.Faction
}

// Assign computes a color for every faction, resolving conflicts by
// preference weight: the higher-weight claimant keeps a contested color,
// the evicted faction falls back through the remainder of its own
// preference list, and finally to an unused color chosen at random.
//
// Assign is deterministic given a seeded rng; pass a *rand.Rand seeded from
// the event's timestamp (or similar) to keep the reducer's state transition
// pure and replayable.
func Assign(factions []catalog.Faction, rng *rand.Rand) (map[catalog.Faction]catalog.Color, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	claimed := make(map[catalog.Color]claim, len(factions))
	remaining := make(map[catalog.Faction]*prioHeap, len(factions))
	for _, f := range factions {
		remaining[f] = factionPriority(f)
	}
	for _, f := range factions {
		if err := selectColor(remaining, claimed, f, rng); err != nil {
			return nil, err
		}
	}
	out := make(map[catalog.Faction]catalog.Color, len(claimed))
	for c, cl := range claimed {
		out[cl.faction] = c
	}
	return out, nil
}

// selectColor finds a color for faction f, evicting and recursively
// reassigning any lower-priority current holder of its top preference. The
// remaining map holds each faction's not-yet-exhausted preference heap so
// that repeated evictions keep picking up where the faction last left off,
// rather than restarting from its full original preference list.
func selectColor(remaining map[catalog.Faction]*prioHeap, claimed map[catalog.Color]claim, f catalog.Faction, rng *rand.Rand) error {
	prios := remaining[f]
	for prios.Len() > 0 {
		top := heap.Pop(prios).(prio)
		existing, taken := claimed[top.color]
		if !taken {
			claimed[top.color] = claim{prio: top, faction: f}
			return nil
		}
		if top.weight > existing.prio.weight {
			claimed[top.color] = claim{prio: top, faction: f}
			return selectColor(remaining, claimed, existing.faction, rng)
		}
		// Lost the contest for this color; try the next preference.
	}
	return assignRandomUnused(claimed, f, rng)
}

func assignRandomUnused(claimed map[catalog.Color]claim, f catalog.Faction, rng *rand.Rand) error {
	unused := make([]catalog.Color, 0, len(catalog.AllColors))
	for _, c := range catalog.AllColors {
		if _, taken := claimed[c]; !taken {
			unused = append(unused, c)
		}
	}
	if len(unused) == 0 {
		return fmt.Errorf("color: no unused color available for %s", f)
	}
	chosen := unused[rng.Intn(len(unused))]
	claimed[chosen] = claim{faction: f}
	return nil
}
