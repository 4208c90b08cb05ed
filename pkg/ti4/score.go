package ti4

import "github.com/ti-assistant/server/internal/catalog"

// Score holds every scoring *fact*: who scored what, who holds which
// single-holder tokens. It never stores a computed point total directly —
// Points() recomputes it from these facts on every call, so a replayed
// event log can never disagree with a live one about a player's score.
type Score struct {
	MaxPoints int `json:"maxPoints"`

	// RevealedObjectives maps an objective to the set of players who have
	// scored it.
	RevealedObjectives map[catalog.ObjectiveID]map[PlayerId]bool `json:"revealedObjectives"`
	SecretObjectives   map[PlayerId]map[catalog.SecretObjectiveID]bool `json:"secretObjectives"`

	SupportForTheThrone map[PlayerId]PlayerId `json:"supportForTheThrone"` // giver -> receiver
	ShardOfTheThrone    *PlayerId             `json:"shardOfTheThrone,omitempty"`
	CrownOfEmphidia     *PlayerId             `json:"crownOfEmphidia,omitempty"`
	Custodians          *PlayerId             `json:"custodians,omitempty"`

	ExtraPoints map[PlayerId]int `json:"extraPoints"`
	Imperial    map[PlayerId]int `json:"imperial"`
}

// NewScore returns an empty score sheet for a game with the given point cap.
func NewScore(maxPoints int) Score {
	return Score{
		MaxPoints:           maxPoints,
		RevealedObjectives:  make(map[catalog.ObjectiveID]map[PlayerId]bool),
		SecretObjectives:    make(map[PlayerId]map[catalog.SecretObjectiveID]bool),
		SupportForTheThrone: make(map[PlayerId]PlayerId),
		ExtraPoints:         make(map[PlayerId]int),
		Imperial:            make(map[PlayerId]int),
	}
}

// Points recomputes a player's total victory points purely from the stored
// facts: public objectives scored, secret objectives scored, support for
// the throne tokens held, extra points, imperial strategy-card points, and
// the three single-holder bonuses (custodians, shard of the throne, crown
// of emphidia).
func (s Score) Points(player PlayerId) int {
	total := 0
	for obj, scorers := range s.RevealedObjectives {
		if scorers[player] {
			if o, ok := catalog.LookupObjective(obj); ok {
				total += o.Points
			}
		}
	}
	total += len(s.SecretObjectives[player])
	for _, receiver := range s.SupportForTheThrone {
		if receiver == player {
			total++
		}
	}
	total += s.ExtraPoints[player]
	total += s.Imperial[player]
	if s.Custodians != nil && *s.Custodians == player {
		total++
	}
	if s.ShardOfTheThrone != nil && *s.ShardOfTheThrone == player {
		total++
	}
	if s.CrownOfEmphidia != nil && *s.CrownOfEmphidia == player {
		total++
	}
	return total
}

// ScoredObjectivesCount returns how many public + secret objectives a
// player has scored.
func (s Score) ScoredObjectivesCount(player PlayerId) int {
	count := len(s.SecretObjectives[player])
	for _, scorers := range s.RevealedObjectives {
		if scorers[player] {
			count++
		}
	}
	return count
}

// clone deep-copies the score sheet so the reducer can mutate the copy
// without aliasing the previous state (copy-on-write discipline).
func (s Score) clone() Score {
	out := NewScore(s.MaxPoints)
	for obj, scorers := range s.RevealedObjectives {
		m := make(map[PlayerId]bool, len(scorers))
		for p, v := range scorers {
			m[p] = v
		}
		out.RevealedObjectives[obj] = m
	}
	for p, secrets := range s.SecretObjectives {
		m := make(map[catalog.SecretObjectiveID]bool, len(secrets))
		for id, v := range secrets {
			m[id] = v
		}
		out.SecretObjectives[p] = m
	}
	for giver, receiver := range s.SupportForTheThrone {
		out.SupportForTheThrone[giver] = receiver
	}
	for p, v := range s.ExtraPoints {
		out.ExtraPoints[p] = v
	}
	for p, v := range s.Imperial {
		out.Imperial[p] = v
	}
	out.ShardOfTheThrone = s.ShardOfTheThrone
	out.CrownOfEmphidia = s.CrownOfEmphidia
	out.Custodians = s.Custodians
	return out
}
