package ti4

import (
	"sort"

	"github.com/ti-assistant/server/internal/catalog"
)

// AgendaElect is a candidate on an agenda vote's ballot: exactly one of the
// fields is populated, matching the AgendaElectKind that produced it.
type AgendaElect struct {
	ForOrAgainst    string                    `json:"forOrAgainst,omitempty"` // "for" | "against"
	Player          PlayerId                  `json:"player,omitempty"`
	StrategyCard    catalog.StrategyCard      `json:"strategyCard,omitempty"`
	Law             catalog.AgendaID          `json:"law,omitempty"`
	SecretObjective catalog.SecretObjectiveID `json:"secretObjective,omitempty"`
	Planet          catalog.PlanetID          `json:"planet,omitempty"`
}

// VoteState is the in-progress (or most recently resolved) vote on an
// agenda.
type VoteState struct {
	Agenda     catalog.AgendaID       `json:"agenda"`
	Elect      catalog.AgendaElectKind `json:"elect"`
	Candidates []AgendaElect          `json:"candidates"`

	// PlayerVotes maps a player to the number of votes cast and the
	// candidate they were cast for.
	PlayerVotes map[PlayerId]PlayerVote `json:"playerVotes"`

	// OutcomeByVotes is set only once the vote is tallied: candidates in
	// descending vote order.
	OutcomeByVotes []VoteTally `json:"outcomeByVotes,omitempty"`
	// ExpectedOutcome is set only when the top candidate strictly beats
	// the runner-up; a tie leaves this nil and requires a tie-break
	// decision outside the reducer (the speaker's table ruling arrives as
	// ResolveAgenda's explicit Outcome).
	ExpectedOutcome *AgendaElect `json:"expectedOutcome,omitempty"`
}

// PlayerVote is one player's cast vote.
type PlayerVote struct {
	Votes int         `json:"votes"`
	For   AgendaElect `json:"for"`
}

// VoteTally is one candidate's total after tallying.
type VoteTally struct {
	Votes int         `json:"votes"`
	For   AgendaElect `json:"for"`
}

// NewVoteState builds the ballot for an agenda given the game's current
// candidate pools (players, active laws, scored secret objectives, planets
// by trait).
func NewVoteState(agendaID catalog.AgendaID, players []PlayerId, activeLaws []catalog.AgendaID, scoredSecrets []catalog.SecretObjectiveID, planetsByTrait map[catalog.PlanetTrait][]catalog.PlanetID, allPlanets []catalog.PlanetID) (VoteState, error) {
	a, ok := catalog.LookupAgenda(agendaID)
	if !ok {
		return VoteState{}, errAgendaUnknown(agendaID)
	}
	vs := VoteState{
		Agenda:      agendaID,
		Elect:       a.Elect,
		PlayerVotes: make(map[PlayerId]PlayerVote),
	}
	switch a.Elect {
	case catalog.ElectForOrAgainst:
		vs.Candidates = []AgendaElect{{ForOrAgainst: "for"}, {ForOrAgainst: "against"}}
	case catalog.ElectPlayer:
		for _, p := range players {
			vs.Candidates = append(vs.Candidates, AgendaElect{Player: p})
		}
	case catalog.ElectStrategyCard:
		for _, c := range catalog.AllStrategyCards {
			vs.Candidates = append(vs.Candidates, AgendaElect{StrategyCard: c})
		}
	case catalog.ElectLaw:
		seen := make(map[catalog.AgendaID]bool)
		for _, law := range activeLaws {
			if !seen[law] {
				seen[law] = true
				vs.Candidates = append(vs.Candidates, AgendaElect{Law: law})
			}
		}
		if len(vs.Candidates) == 0 {
			return VoteState{}, errNoActiveLaws
		}
	case catalog.ElectSecretObjective:
		seen := make(map[catalog.SecretObjectiveID]bool)
		for _, s := range scoredSecrets {
			if !seen[s] {
				seen[s] = true
				vs.Candidates = append(vs.Candidates, AgendaElect{SecretObjective: s})
			}
		}
		if len(vs.Candidates) == 0 {
			return VoteState{}, errNoScoredSecrets
		}
	case catalog.ElectPlanet:
		for _, p := range allPlanets {
			vs.Candidates = append(vs.Candidates, AgendaElect{Planet: p})
		}
	case catalog.ElectCulturalPlanet, catalog.ElectHazardousPlanet, catalog.ElectIndustrialPlanet:
		trait := electKindTrait(a.Elect)
		for _, p := range planetsByTrait[trait] {
			vs.Candidates = append(vs.Candidates, AgendaElect{Planet: p})
		}
	case catalog.ElectPlanetWithTrait:
		// Any planet carrying at least one trait qualifies; the trait lists
		// can overlap (a planet may hold several traits), so dedup across
		// the union and keep a stable order.
		seen := make(map[catalog.PlanetID]bool)
		var pool []catalog.PlanetID
		for _, trait := range []catalog.PlanetTrait{catalog.TraitCultural, catalog.TraitHazardous, catalog.TraitIndustrial} {
			for _, p := range planetsByTrait[trait] {
				if !seen[p] {
					seen[p] = true
					pool = append(pool, p)
				}
			}
		}
		sort.Slice(pool, func(i, j int) bool { return pool[i] < pool[j] })
		for _, p := range pool {
			vs.Candidates = append(vs.Candidates, AgendaElect{Planet: p})
		}
	default:
		return VoteState{}, errUnsupportedElectKind(a.Elect)
	}
	return vs, nil
}

func electKindTrait(k catalog.AgendaElectKind) catalog.PlanetTrait {
	switch k {
	case catalog.ElectCulturalPlanet:
		return catalog.TraitCultural
	case catalog.ElectHazardousPlanet:
		return catalog.TraitHazardous
	case catalog.ElectIndustrialPlanet:
		return catalog.TraitIndustrial
	default:
		return ""
	}
}

// electKey gives a stable comparison key for an AgendaElect so candidates
// can be grouped and sorted deterministically.
func electKey(e AgendaElect) string {
	switch {
	case e.ForOrAgainst != "":
		return "f:" + e.ForOrAgainst
	case e.Player != "":
		return "p:" + string(e.Player)
	case e.StrategyCard != "":
		return "s:" + string(e.StrategyCard)
	case e.Law != "":
		return "w:" + string(e.Law)
	case e.SecretObjective != "":
		return "o:" + string(e.SecretObjective)
	case e.Planet != "":
		return "l:" + string(e.Planet)
	default:
		return ""
	}
}

// Tally sums each candidate's votes, sorts descending, and sets
// ExpectedOutcome only if the top candidate strictly beats the runner-up.
func (vs *VoteState) Tally() {
	totals := make(map[string]*VoteTally)
	for _, pv := range vs.PlayerVotes {
		if pv.Votes == 0 {
			continue
		}
		key := electKey(pv.For)
		if t, ok := totals[key]; ok {
			t.Votes += pv.Votes
		} else {
			totals[key] = &VoteTally{Votes: pv.Votes, For: pv.For}
		}
	}
	out := make([]VoteTally, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return electKey(out[i].For) < electKey(out[j].For)
	})
	vs.OutcomeByVotes = out
	vs.ExpectedOutcome = nil
	if len(out) >= 1 && (len(out) == 1 || out[0].Votes > out[1].Votes) {
		winner := out[0].For
		vs.ExpectedOutcome = &winner
	}
}

// AgendaState tracks the round counter and in-progress vote for the agenda
// phase.
type AgendaState struct {
	Round int        `json:"round"`
	Vote  *VoteState `json:"vote,omitempty"`
}

// NewAgendaState returns the initial agenda state: round 1, no active vote.
func NewAgendaState() AgendaState {
	return AgendaState{Round: 1}
}
