package ti4

import (
	"encoding/json"
	"fmt"

	"github.com/ti-assistant/server/internal/catalog"
)

// Event is one entry in a game's append-only log. The set of concrete
// event types below is closed — Apply's switch must handle every one of
// them, and adding a new kind means adding both the struct here and its
// case in the reducer.
type Event interface {
	Kind() string
}

// envelope is the wire/storage encoding for an Event: a kind tag plus the
// kind-specific payload, matching the append-only game_event table's
// (seq, kind, payload) columns.
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalEvent encodes an Event for storage or transmission.
func MarshalEvent(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("ti4: marshal event payload: %w", err)
	}
	return json.Marshal(envelope{Kind: e.Kind(), Payload: payload})
}

// UnmarshalEvent decodes a stored/transmitted event back into its concrete
// type. An unrecognized kind is an error, not a silently-ignored no-op,
// because a log entry the reducer can't recognize means a write was made
// by code newer than this binary — the caller must not replay past it.
func UnmarshalEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("ti4: unmarshal envelope: %w", err)
	}
	ctor, ok := eventConstructors[env.Kind]
	if !ok {
		return nil, fmt.Errorf("ti4: unknown event kind %q", env.Kind)
	}
	return ctor(env.Payload)
}

var eventConstructors = map[string]func(json.RawMessage) (Event, error){}

func registerEvent(kind string, ctor func(json.RawMessage) (Event, error)) {
	eventConstructors[kind] = ctor
}

func decodeInto[T any](data json.RawMessage, kind string) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("ti4: decode %s payload: %w", kind, err)
	}
	return v, nil
}

func init() {
	registerEvent("set_settings", func(d json.RawMessage) (Event, error) { return decodeInto[SetSettings](d, "set_settings") })
	registerEvent("import_from_milty", func(d json.RawMessage) (Event, error) { return decodeInto[ImportFromMilty](d, "import_from_milty") })
	registerEvent("add_player", func(d json.RawMessage) (Event, error) { return decodeInto[AddPlayer](d, "add_player") })
	registerEvent("remove_player", func(d json.RawMessage) (Event, error) { return decodeInto[RemovePlayer](d, "remove_player") })
	registerEvent("assign_colors", func(d json.RawMessage) (Event, error) { return decodeInto[AssignColors](d, "assign_colors") })
	registerEvent("start_game", func(d json.RawMessage) (Event, error) { return decodeInto[StartGame](d, "start_game") })
	registerEvent("select_strategy_card", func(d json.RawMessage) (Event, error) {
		return decodeInto[SelectStrategyCard](d, "select_strategy_card")
	})
	registerEvent("start_strategic_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[StartStrategicAction](d, "start_strategic_action")
	})
	registerEvent("resolve_strategic_primary", func(d json.RawMessage) (Event, error) {
		return decodeInto[ResolveStrategicPrimary](d, "resolve_strategic_primary")
	})
	registerEvent("resolve_strategic_secondary", func(d json.RawMessage) (Event, error) {
		return decodeInto[ResolveStrategicSecondary](d, "resolve_strategic_secondary")
	})
	registerEvent("start_tactical_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[StartTacticalAction](d, "start_tactical_action")
	})
	registerEvent("complete_tactical_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[CompleteTacticalAction](d, "complete_tactical_action")
	})
	registerEvent("pass_action_turn", func(d json.RawMessage) (Event, error) { return decodeInto[PassActionTurn](d, "pass_action_turn") })
	registerEvent("score_objective", func(d json.RawMessage) (Event, error) { return decodeInto[ScoreObjective](d, "score_objective") })
	registerEvent("reveal_objective", func(d json.RawMessage) (Event, error) { return decodeInto[RevealObjective](d, "reveal_objective") })
	registerEvent("reveal_agenda", func(d json.RawMessage) (Event, error) { return decodeInto[RevealAgenda](d, "reveal_agenda") })
	registerEvent("cast_vote", func(d json.RawMessage) (Event, error) { return decodeInto[CastVote](d, "cast_vote") })
	registerEvent("resolve_agenda", func(d json.RawMessage) (Event, error) { return decodeInto[ResolveAgenda](d, "resolve_agenda") })
	registerEvent("advance_phase", func(d json.RawMessage) (Event, error) { return decodeInto[AdvancePhase](d, "advance_phase") })
	registerEvent("end_game", func(d json.RawMessage) (Event, error) { return decodeInto[EndGame](d, "end_game") })
	registerEvent("set_planet_owner", func(d json.RawMessage) (Event, error) { return decodeInto[SetPlanetOwner](d, "set_planet_owner") })
	registerEvent("attach_to_planet", func(d json.RawMessage) (Event, error) { return decodeInto[AttachToPlanet](d, "attach_to_planet") })
	registerEvent("give_support_for_the_throne", func(d json.RawMessage) (Event, error) {
		return decodeInto[GiveSupportForTheThrone](d, "give_support_for_the_throne")
	})
	registerEvent("claim_relic", func(d json.RawMessage) (Event, error) { return decodeInto[ClaimRelic](d, "claim_relic") })
	registerEvent("claim_custodians", func(d json.RawMessage) (Event, error) { return decodeInto[ClaimCustodians](d, "claim_custodians") })
	registerEvent("track_time", func(d json.RawMessage) (Event, error) { return decodeInto[TrackTime](d, "track_time") })
	registerEvent("complete_strategic_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[CompleteStrategicAction](d, "complete_strategic_action")
	})
	registerEvent("start_action_card_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[StartActionCardAction](d, "start_action_card_action")
	})
	registerEvent("complete_action_card_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[CompleteActionCardAction](d, "complete_action_card_action")
	})
	registerEvent("start_leader_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[StartLeaderAction](d, "start_leader_action")
	})
	registerEvent("complete_leader_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[CompleteLeaderAction](d, "complete_leader_action")
	})
	registerEvent("start_frontier_card_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[StartFrontierCardAction](d, "start_frontier_card_action")
	})
	registerEvent("complete_frontier_card_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[CompleteFrontierCardAction](d, "complete_frontier_card_action")
	})
	registerEvent("start_relic_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[StartRelicAction](d, "start_relic_action")
	})
	registerEvent("complete_relic_action", func(d json.RawMessage) (Event, error) {
		return decodeInto[CompleteRelicAction](d, "complete_relic_action")
	})
	registerEvent("creation_done", func(d json.RawMessage) (Event, error) { return decodeInto[CreationDone](d, "creation_done") })
	registerEvent("play_gift_of_prescience", func(d json.RawMessage) (Event, error) {
		return decodeInto[PlayGiftOfPrescience](d, "play_gift_of_prescience")
	})
	registerEvent("take_planet", func(d json.RawMessage) (Event, error) { return decodeInto[TakePlanet](d, "take_planet") })
	registerEvent("take_another_turn", func(d json.RawMessage) (Event, error) {
		return decodeInto[TakeAnotherTurn](d, "take_another_turn")
	})
	registerEvent("reveal_extra_public_objective", func(d json.RawMessage) (Event, error) {
		return decodeInto[RevealExtraPublicObjective](d, "reveal_extra_public_objective")
	})
	registerEvent("score_extra_secret_objective", func(d json.RawMessage) (Event, error) {
		return decodeInto[ScoreExtraSecretObjective](d, "score_extra_secret_objective")
	})
	registerEvent("unscore_secret_objective", func(d json.RawMessage) (Event, error) {
		return decodeInto[UnscoreSecretObjective](d, "unscore_secret_objective")
	})
}

// CreationDone closes the roster: Creation moves to Setup once the seated
// player count is within the table limits for the enabled content packs.
type CreationDone struct{}

func (CreationDone) Kind() string { return "creation_done" }

// PlayGiftOfPrescience records the Naalu promissory note being played for
// another player, handing them the "0" initiative token for this round.
type PlayGiftOfPrescience struct {
	Player PlayerId `json:"player"`
}

func (PlayGiftOfPrescience) Kind() string { return "play_gift_of_prescience" }

// TakePlanet transfers control of a planet to the active player as part of
// their tactical action's invasion step. Unlike the free-form
// SetPlanetOwner correction event, it keeps the planet's attachments with
// the planet across the change of control.
type TakePlanet struct {
	Player PlayerId         `json:"player"`
	Planet catalog.PlanetID `json:"planet"`
}

func (TakePlanet) Kind() string { return "take_planet" }

// TakeAnotherTurn declares that the active player will act again after the
// current action resolves instead of handing the turn to the next player in
// initiative order.
type TakeAnotherTurn struct {
	Player PlayerId `json:"player"`
}

func (TakeAnotherTurn) Kind() string { return "take_another_turn" }

// RevealExtraPublicObjective reveals a public objective outside the status
// phase's normal one-per-round reveal (e.g. by an agenda directive).
type RevealExtraPublicObjective struct {
	Objective catalog.ObjectiveID `json:"objective"`
}

func (RevealExtraPublicObjective) Kind() string { return "reveal_extra_public_objective" }

// ScoreExtraSecretObjective records a secret objective scored outside the
// status phase's one-per-round slot (e.g. an action-phase secret or the
// Imperial primary's bonus).
type ScoreExtraSecretObjective struct {
	Player PlayerId                  `json:"player"`
	Secret catalog.SecretObjectiveID `json:"secret"`
}

func (ScoreExtraSecretObjective) Kind() string { return "score_extra_secret_objective" }

// UnscoreSecretObjective retracts a previously recorded secret objective
// score, e.g. after a mis-click or a table ruling.
type UnscoreSecretObjective struct {
	Player PlayerId                  `json:"player"`
	Secret catalog.SecretObjectiveID `json:"secret"`
}

func (UnscoreSecretObjective) Kind() string { return "unscore_secret_objective" }

// SetPlanetOwner transfers control of a planet to a player (or clears
// control entirely when Player is empty), e.g. after a tactical action's
// invasion step.
type SetPlanetOwner struct {
	Planet catalog.PlanetID `json:"planet"`
	Player PlayerId         `json:"player,omitempty"`
}

func (SetPlanetOwner) Kind() string { return "set_planet_owner" }

// AttachToPlanet permanently attaches a card (exploration find, action
// card, etc.) to a planet the target player already controls.
type AttachToPlanet struct {
	Planet     catalog.PlanetID           `json:"planet"`
	Attachment catalog.PlanetAttachmentID `json:"attachment"`
}

func (AttachToPlanet) Kind() string { return "attach_to_planet" }

// GiveSupportForTheThrone records one player handing their Support for the
// Throne card to another; the giver may hold at most one outstanding grant
// at a time (re-issuing transfers it, it does not stack).
type GiveSupportForTheThrone struct {
	Giver    PlayerId `json:"giver"`
	Receiver PlayerId `json:"receiver"`
}

func (GiveSupportForTheThrone) Kind() string { return "give_support_for_the_throne" }

// ClaimRelic records a player taking possession of a single-holder relic
// (Shard of the Throne, Crown of Emphidia). Claiming one relic displaces
// whoever held it previously.
type ClaimRelic struct {
	Player PlayerId        `json:"player"`
	Relic  catalog.RelicID `json:"relic"`
}

func (ClaimRelic) Kind() string { return "claim_relic" }

// ClaimCustodians records a player paying the custodians token's influence
// cost to claim its one-time victory point. It can only happen once per
// game.
type ClaimCustodians struct {
	Player PlayerId `json:"player"`
}

func (ClaimCustodians) Kind() string { return "claim_custodians" }

// TrackTime pauses or resumes the per-player play-time clock. Unlike every
// other event, the fields it touches (PlayersPlayTime/TimeTrackingPaused)
// are not derivable from the rest of the log.
type TrackTime struct {
	Paused bool `json:"paused"`
}

func (TrackTime) Kind() string { return "track_time" }

// SetSettings reconfigures the game before it starts (Creation phase only).
type SetSettings struct {
	Settings GameSettings `json:"settings"`
}

func (SetSettings) Kind() string { return "set_settings" }

// ImportFromMilty replaces settings, players, and the map in one step from
// a completed external milty draft.
type ImportFromMilty struct {
	MaxPoints  int                `json:"maxPoints"`
	GameName   string             `json:"gameName"`
	Players    []MiltyPlayer      `json:"players"`
	Expansions catalog.Expansions `json:"expansions"`
	TTSString  string             `json:"ttsString"`
}

// MiltyPlayer is one imported player's faction/order assignment.
type MiltyPlayer struct {
	Name    PlayerId        `json:"name"`
	Faction catalog.Faction `json:"faction"`
	Order   int             `json:"order"`
}

func (ImportFromMilty) Kind() string { return "import_from_milty" }

// AddPlayer seats a new player during Creation. Color may be left empty to
// defer to a later AssignColors run; when set it must not collide with a
// color already taken at the table.
type AddPlayer struct {
	ID      PlayerId        `json:"id"`
	Faction catalog.Faction `json:"faction"`
	Color   catalog.Color   `json:"color,omitempty"`
	IsBot   bool            `json:"isBot"`
}

func (AddPlayer) Kind() string { return "add_player" }

// RemovePlayer un-seats a player during Creation.
type RemovePlayer struct {
	ID PlayerId `json:"id"`
}

func (RemovePlayer) Kind() string { return "remove_player" }

// AssignColors runs the color-assignment algorithm over the current
// roster. Seed lets the reducer stay deterministic on replay: the caller
// derives it from the event's own timestamp/sequence, never from runtime
// randomness.
type AssignColors struct {
	Seed int64 `json:"seed"`
}

func (AssignColors) Kind() string { return "assign_colors" }

// StartGame moves Creation -> Setup -> Strategy once the roster and map
// are valid.
type StartGame struct {
	SpeakerID PlayerId `json:"speakerId"`
}

func (StartGame) Kind() string { return "start_game" }

// SelectStrategyCard is a player's strategy-phase pick.
type SelectStrategyCard struct {
	Player PlayerId             `json:"player"`
	Card   catalog.StrategyCard `json:"card"`
}

func (SelectStrategyCard) Kind() string { return "select_strategy_card" }

// StartStrategicAction begins the active player's strategic action using
// their selected card.
type StartStrategicAction struct {
	Player PlayerId             `json:"player"`
	Card   catalog.StrategyCard `json:"card"`
}

func (StartStrategicAction) Kind() string { return "start_strategic_action" }

// ResolveStrategicPrimary resolves the active player's primary ability.
// Techs carries the research choices for the Technology card's primary (up
// to two); NewSpeaker carries the Politics card's speaker choice.
type ResolveStrategicPrimary struct {
	Player     PlayerId         `json:"player"`
	Techs      []catalog.TechID `json:"techs,omitempty"`
	NewSpeaker PlayerId         `json:"newSpeaker,omitempty"`
}

func (ResolveStrategicPrimary) Kind() string { return "resolve_strategic_primary" }

// ResolveStrategicSecondary resolves one other player's secondary response.
// Techs carries the Technology secondary's research choice: one tech for
// most factions, up to two for the Universities of Jol-Nar.
type ResolveStrategicSecondary struct {
	Player   PlayerId         `json:"player"`
	Response string           `json:"response"`
	Techs    []catalog.TechID `json:"techs,omitempty"`
}

func (ResolveStrategicSecondary) Kind() string { return "resolve_strategic_secondary" }

// StartTacticalAction begins a tactical action activating a system.
type StartTacticalAction struct {
	Player PlayerId        `json:"player"`
	System catalog.MiltyID `json:"system"`
}

func (StartTacticalAction) Kind() string { return "start_tactical_action" }

// CompleteTacticalAction ends the active player's tactical action.
type CompleteTacticalAction struct {
	Player PlayerId `json:"player"`
}

func (CompleteTacticalAction) Kind() string { return "complete_tactical_action" }

// PassActionTurn ends the active player's action-phase turn without taking
// a strategic or tactical action (e.g. after all strategy cards are spent).
type PassActionTurn struct {
	Player PlayerId `json:"player"`
}

func (PassActionTurn) Kind() string { return "pass_action_turn" }

// ScoreObjective records that a player scored a public or secret objective
// during the status phase. At most one of Public/Secret is set; with
// neither set, the event records that the player scored nothing in the
// still-open slots this round.
type ScoreObjective struct {
	Player PlayerId                   `json:"player"`
	Public *catalog.ObjectiveID       `json:"public,omitempty"`
	Secret *catalog.SecretObjectiveID `json:"secret,omitempty"`
}

func (ScoreObjective) Kind() string { return "score_objective" }

// RevealObjective reveals the next public objective during the status
// phase, once every player has registered their scoring decision.
type RevealObjective struct {
	Objective catalog.ObjectiveID `json:"objective"`
}

func (RevealObjective) Kind() string { return "reveal_objective" }

// RevealAgenda reveals an agenda to begin a vote during the agenda phase.
type RevealAgenda struct {
	Agenda catalog.AgendaID `json:"agenda"`
}

func (RevealAgenda) Kind() string { return "reveal_agenda" }

// CastVote casts (or changes) one player's vote in the active agenda vote.
type CastVote struct {
	Player PlayerId    `json:"player"`
	Votes  int         `json:"votes"`
	For    AgendaElect `json:"for"`
}

func (CastVote) Kind() string { return "cast_vote" }

// ResolveAgenda tallies the active vote and applies its outcome.
type ResolveAgenda struct {
	// Outcome overrides the tallied expected outcome, used when the vote
	// was tied and a tie-break (e.g. speaker's choice) was made outside
	// the reducer.
	Outcome *AgendaElect `json:"outcome,omitempty"`
}

func (ResolveAgenda) Kind() string { return "resolve_agenda" }

// AdvancePhase moves the state machine to its next phase along the fixed
// transition graph (see the reducer's phase table).
type AdvancePhase struct{}

func (AdvancePhase) Kind() string { return "advance_phase" }

// EndGame marks the game over.
type EndGame struct {
	Winner PlayerId `json:"winner,omitempty"`
}

func (EndGame) Kind() string { return "end_game" }

// CompleteStrategicAction ends the active player's strategic action,
// marking the card spent for the round and returning to the action phase.
type CompleteStrategicAction struct {
	Player PlayerId `json:"player"`
}

func (CompleteStrategicAction) Kind() string { return "complete_strategic_action" }

// StartActionCardAction begins the active player's turn playing an action
// card as their action-phase action.
type StartActionCardAction struct {
	Player PlayerId `json:"player"`
	Card   string   `json:"card"`
}

func (StartActionCardAction) Kind() string { return "start_action_card_action" }

// CompleteActionCardAction ends the active player's action card turn.
type CompleteActionCardAction struct {
	Player PlayerId `json:"player"`
}

func (CompleteActionCardAction) Kind() string { return "complete_action_card_action" }

// StartLeaderAction begins the active player's turn using an agent,
// commander, or hero ability as their action-phase action.
type StartLeaderAction struct {
	Player PlayerId `json:"player"`
	Leader string   `json:"leader"`
}

func (StartLeaderAction) Kind() string { return "start_leader_action" }

// CompleteLeaderAction ends the active player's leader-ability turn.
type CompleteLeaderAction struct {
	Player PlayerId `json:"player"`
}

func (CompleteLeaderAction) Kind() string { return "complete_leader_action" }

// StartFrontierCardAction begins the active player's turn exploring a
// frontier token as their action-phase action.
type StartFrontierCardAction struct {
	Player PlayerId `json:"player"`
}

func (StartFrontierCardAction) Kind() string { return "start_frontier_card_action" }

// CompleteFrontierCardAction ends the active player's frontier exploration
// turn.
type CompleteFrontierCardAction struct {
	Player PlayerId `json:"player"`
}

func (CompleteFrontierCardAction) Kind() string { return "complete_frontier_card_action" }

// StartRelicAction begins the active player's turn resolving a relic's
// action-phase ability as their action-phase action.
type StartRelicAction struct {
	Player PlayerId        `json:"player"`
	Relic  catalog.RelicID `json:"relic"`
}

func (StartRelicAction) Kind() string { return "start_relic_action" }

// CompleteRelicAction ends the active player's relic-ability turn.
type CompleteRelicAction struct {
	Player PlayerId `json:"player"`
}

func (CompleteRelicAction) Kind() string { return "complete_relic_action" }
