package ti4

import "github.com/ti-assistant/server/internal/catalog"

// ImperialScoringPolicy resolves an ambiguity in the source material over
// whether resolving the Imperial strategy card's primary ability always
// grants a victory point or only when the active player controls Mecatol
// Rex. The reducer does not consult planet control for Imperial and has no
// combat model (see the package Non-goals), so the policy is surfaced as an explicit setting
// rather than guessed at in the reducer.
type ImperialScoringPolicy string

const (
	// ImperialScoringAlways awards the point unconditionally whenever the
	// Imperial primary is resolved — the default, matching tables that
	// track Mecatol control outside this tool.
	ImperialScoringAlways ImperialScoringPolicy = "always"
	// ImperialScoringDisabled never awards a point from Imperial. No event
	// adds to Score.ExtraPoints either, so such a point is not counted in
	// the engine's totals.
	ImperialScoringDisabled ImperialScoringPolicy = "disabled"
)

// GameSettings are the fixed configuration chosen at game creation; they
// never change over the life of a game.
type GameSettings struct {
	MaxPoints             int                   `json:"maxPoints"`
	Expansions            catalog.Expansions    `json:"expansions"`
	ImperialScoringPolicy ImperialScoringPolicy `json:"imperialScoringPolicy"`
}

// GameState is the root of the materialized, replayable game state: the
// pure fold of every event in a game's log applied in order. It carries no
// reference to the log itself (see the Game type for that) and no I/O
// handles.
type GameState struct {
	Name     string             `json:"name"`
	Settings GameSettings       `json:"settings"`
	Phase    Phase              `json:"phase"`

	Players      []Player            `json:"players"`
	PlayerOrder  []PlayerId          `json:"playerOrder"`
	ActivePlayer PlayerId            `json:"activePlayer,omitempty"`
	SpeakerID    PlayerId            `json:"speaker,omitempty"`

	Map HexMap `json:"map"`

	Score Score `json:"score"`

	// Laws are the agendas passed as laws and still in force, in the order
	// they passed. A law leaves the list only when another agenda elects it
	// for repeal.
	Laws []catalog.AgendaID `json:"laws,omitempty"`

	Agenda AgendaState      `json:"agenda"`
	Status StatusPhaseState `json:"status"`
	Action ActionPhaseProgress `json:"action"`

	// StrategyCardAssignments maps a selected strategy card to the player
	// who holds it this round.
	StrategyCardAssignments map[catalog.StrategyCard]PlayerId `json:"strategyCardAssignments"`
	// SpentStrategyCards marks cards whose strategic action has already
	// been completed this round; a spent card cannot be started again
	// until the next strategy phase reassigns it.
	SpentStrategyCards map[catalog.StrategyCard]bool `json:"spentStrategyCards"`
	// PassedPlayers marks players who have passed their action-phase turn
	// for the remainder of the round. The action phase ends once every
	// seated player has passed.
	PassedPlayers map[PlayerId]bool `json:"passedPlayers"`

	// NaaluTelepathy holds whichever player carries the Naalu "0" initiative
	// token this round: the Naalu player by default, or the player the Gift
	// of Prescience promissory note was played for. Cleared when a new
	// strategy phase begins.
	NaaluTelepathy *PlayerId `json:"naaluTelepathy,omitempty"`

	// RepeatTurn is set when the active player has declared they will take
	// another turn (e.g. via an action card); the next end-of-turn keeps the
	// active player instead of advancing the initiative order, and clears
	// the flag.
	RepeatTurn bool `json:"repeatTurn,omitempty"`

	Round int `json:"round"`

	GameEnded bool `json:"gameEnded"`

	// PlayersPlayTime and TimeTrackingPaused are the one part of the state
	// root that is not a pure projection of catalog + event facts: they
	// accumulate wall-clock duration fed by TrackTime events and the
	// timestamp passed to Apply.
	PlayersPlayTime    map[PlayerId]int64 `json:"playersPlayTime"` // milliseconds
	TimeTrackingPaused bool               `json:"timeTrackingPaused"`
	// LastEventAtMillis is the unix-millis timestamp of the last TrackTime
	// event, or unsetLastEventAtMillis before the first one.
	LastEventAtMillis int64 `json:"lastEventAtMillis"`
}

// unsetLastEventAtMillis marks "no TrackTime event has ever been applied".
// A real wall-clock timestamp is never this small, so it is safe to use as
// a sentinel distinct from "the first TrackTime event happened at the unix
// epoch".
const unsetLastEventAtMillis = -1

// NewGameState returns the initial (Creation-phase) state for a new game
// of the given name and settings.
func NewGameState(name string, settings GameSettings) GameState {
	if settings.ImperialScoringPolicy == "" {
		settings.ImperialScoringPolicy = ImperialScoringAlways
	}
	return GameState{
		Name:                     name,
		Settings:                 settings,
		Phase:                    PhaseCreation,
		Score:                    NewScore(settings.MaxPoints),
		Agenda:                   NewAgendaState(),
		Status:                   NewStatusPhaseState(stageOneObjectiveCount),
		StrategyCardAssignments:  make(map[catalog.StrategyCard]PlayerId),
		SpentStrategyCards:       make(map[catalog.StrategyCard]bool),
		PassedPlayers:            make(map[PlayerId]bool),
		Round:                    1,
		PlayersPlayTime:          make(map[PlayerId]int64),
		LastEventAtMillis:        unsetLastEventAtMillis,
	}
}

// PlayerByID returns a pointer into gs.Players for the given id, or nil.
// Callers must only use the pointer to read or to build a clone — mutating
// it in place would violate the reducer's copy-on-write discipline.
func (gs *GameState) PlayerByID(id PlayerId) *Player {
	for i := range gs.Players {
		if gs.Players[i].ID == id {
			return &gs.Players[i]
		}
	}
	return nil
}

// clone returns a deep copy of the state so the reducer can build a new
// state without mutating the previous one in place. Every field that is a
// slice, map, or pointer is copied; GameState itself is never shared
// between two points in history.
func (gs GameState) clone() GameState {
	out := gs
	out.Players = append([]Player(nil), gs.Players...)
	for i := range out.Players {
		out.Players[i].Technologies = append([]catalog.TechID(nil), gs.Players[i].Technologies...)
		out.Players[i].Relics = append([]catalog.RelicID(nil), gs.Players[i].Relics...)
		if gs.Players[i].Planets != nil {
			planets := make(map[catalog.PlanetID][]catalog.PlanetAttachmentID, len(gs.Players[i].Planets))
			for pid, attachments := range gs.Players[i].Planets {
				planets[pid] = append([]catalog.PlanetAttachmentID(nil), attachments...)
			}
			out.Players[i].Planets = planets
		}
	}
	out.PlayerOrder = append([]PlayerId(nil), gs.PlayerOrder...)
	out.Laws = append([]catalog.AgendaID(nil), gs.Laws...)
	out.Map.Tiles = append([]Tile(nil), gs.Map.Tiles...)
	out.Score = gs.Score.clone()

	out.PlayersPlayTime = make(map[PlayerId]int64, len(gs.PlayersPlayTime))
	for k, v := range gs.PlayersPlayTime {
		out.PlayersPlayTime[k] = v
	}

	out.StrategyCardAssignments = make(map[catalog.StrategyCard]PlayerId, len(gs.StrategyCardAssignments))
	for k, v := range gs.StrategyCardAssignments {
		out.StrategyCardAssignments[k] = v
	}

	out.SpentStrategyCards = make(map[catalog.StrategyCard]bool, len(gs.SpentStrategyCards))
	for k, v := range gs.SpentStrategyCards {
		out.SpentStrategyCards[k] = v
	}

	out.PassedPlayers = make(map[PlayerId]bool, len(gs.PassedPlayers))
	for k, v := range gs.PassedPlayers {
		out.PassedPlayers[k] = v
	}

	out.Status.ScoredPublicObjectives = make(map[PlayerId]*catalog.ObjectiveID, len(gs.Status.ScoredPublicObjectives))
	for k, v := range gs.Status.ScoredPublicObjectives {
		out.Status.ScoredPublicObjectives[k] = v
	}
	out.Status.ScoredSecretObjectives = make(map[PlayerId]*catalog.SecretObjectiveID, len(gs.Status.ScoredSecretObjectives))
	for k, v := range gs.Status.ScoredSecretObjectives {
		out.Status.ScoredSecretObjectives[k] = v
	}

	if gs.Agenda.Vote != nil {
		v := *gs.Agenda.Vote
		v.Candidates = append([]AgendaElect(nil), gs.Agenda.Vote.Candidates...)
		v.PlayerVotes = make(map[PlayerId]PlayerVote, len(gs.Agenda.Vote.PlayerVotes))
		for k, val := range gs.Agenda.Vote.PlayerVotes {
			v.PlayerVotes[k] = val
		}
		out.Agenda.Vote = &v
	}

	if gs.Action.Strategic != nil {
		sp := *gs.Action.Strategic
		sp.SecondaryResponses = make(map[PlayerId]string, len(gs.Action.Strategic.SecondaryResponses))
		for k, v := range gs.Action.Strategic.SecondaryResponses {
			sp.SecondaryResponses[k] = v
		}
		out.Action.Strategic = &sp
	}
	if gs.Action.Tactical != nil {
		tp := *gs.Action.Tactical
		out.Action.Tactical = &tp
	}
	if gs.Action.ActionCard != nil {
		ap := *gs.Action.ActionCard
		out.Action.ActionCard = &ap
	}
	if gs.Action.Leader != nil {
		lp := *gs.Action.Leader
		out.Action.Leader = &lp
	}
	if gs.Action.Frontier != nil {
		fp := *gs.Action.Frontier
		out.Action.Frontier = &fp
	}
	if gs.Action.Relic != nil {
		rp := *gs.Action.Relic
		out.Action.Relic = &rp
	}

	return out
}
