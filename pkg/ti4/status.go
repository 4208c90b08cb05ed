package ti4

import "github.com/ti-assistant/server/internal/catalog"

// StatusPhaseState tracks the status phase's per-round objective bookkeeping:
// which players have scored which objective slot this round, and the public
// objective revealed this round (if any).
type StatusPhaseState struct {
	ScoredPublicObjectives map[PlayerId]*catalog.ObjectiveID       `json:"scoredPublicObjectives"`
	ScoredSecretObjectives map[PlayerId]*catalog.SecretObjectiveID `json:"scoredSecretObjectives"`
	RevealedObjective      *catalog.ObjectiveID                    `json:"revealedObjective,omitempty"`

	// ExpectedObjectivesBeforeStageTwo is how many stage I objectives must
	// be revealed before the status phase may reveal a stage II one.
	ExpectedObjectivesBeforeStageTwo int `json:"expectedObjectivesBeforeStageTwo"`
}

// stageOneObjectiveCount is the number of stage I objectives in a standard
// game's public deck; they are all revealed before stage II begins.
const stageOneObjectiveCount = 5

// NewStatusPhaseState returns an empty status-phase tracker that expects
// the given number of stage I reveals before the first stage II one.
func NewStatusPhaseState(expectedBeforeStageTwo int) StatusPhaseState {
	return StatusPhaseState{
		ScoredPublicObjectives:           make(map[PlayerId]*catalog.ObjectiveID),
		ScoredSecretObjectives:           make(map[PlayerId]*catalog.SecretObjectiveID),
		ExpectedObjectivesBeforeStageTwo: expectedBeforeStageTwo,
	}
}

// CanRevealObjective reports whether every player has registered a public
// and secret scoring decision for this round (possibly "scored nothing"),
// which is the signal that it's safe to reveal the next public objective.
func (s StatusPhaseState) CanRevealObjective(numPlayers int) bool {
	return len(s.ScoredPublicObjectives) == numPlayers && len(s.ScoredSecretObjectives) == numPlayers
}

// IsComplete reports whether the status phase round is fully resolved:
// every player has made their scoring decisions and the next objective has
// been revealed.
func (s StatusPhaseState) IsComplete(numPlayers int) bool {
	return s.CanRevealObjective(numPlayers) && s.RevealedObjective != nil
}
