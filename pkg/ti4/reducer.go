package ti4

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/ti-assistant/server/internal/catalog"
	"github.com/ti-assistant/server/internal/color"
)

// Apply is the reducer: a pure function from (state, event, timestamp) to
// either a new state or a Rejection. It never mutates its state argument —
// every case that changes something first clones gs (state.go's clone) and
// returns the modified copy. now is read only by TrackTime, for play-time
// accumulation; color assignment is seeded by the event itself
// (AssignColors.Seed, or a fixed seed for the milty import), so replaying
// the same log twice always yields the same state.
func Apply(gs GameState, event Event, now time.Time) (GameState, error) {
	switch e := event.(type) {
	case SetSettings:
		return applySetSettings(gs, e)
	case ImportFromMilty:
		return applyImportFromMilty(gs, e)
	case AddPlayer:
		return applyAddPlayer(gs, e)
	case RemovePlayer:
		return applyRemovePlayer(gs, e)
	case AssignColors:
		return applyAssignColors(gs, e)
	case StartGame:
		return applyStartGame(gs, e)
	case SelectStrategyCard:
		return applySelectStrategyCard(gs, e)
	case StartStrategicAction:
		return applyStartStrategicAction(gs, e)
	case ResolveStrategicPrimary:
		return applyResolveStrategicPrimary(gs, e)
	case ResolveStrategicSecondary:
		return applyResolveStrategicSecondary(gs, e)
	case StartTacticalAction:
		return applyStartTacticalAction(gs, e)
	case CompleteTacticalAction:
		return applyCompleteTacticalAction(gs, e)
	case CompleteStrategicAction:
		return applyCompleteStrategicAction(gs, e)
	case StartActionCardAction:
		return applyStartActionCardAction(gs, e)
	case CompleteActionCardAction:
		return applyCompleteActionCardAction(gs, e)
	case StartLeaderAction:
		return applyStartLeaderAction(gs, e)
	case CompleteLeaderAction:
		return applyCompleteLeaderAction(gs, e)
	case StartFrontierCardAction:
		return applyStartFrontierCardAction(gs, e)
	case CompleteFrontierCardAction:
		return applyCompleteFrontierCardAction(gs, e)
	case StartRelicAction:
		return applyStartRelicAction(gs, e)
	case CompleteRelicAction:
		return applyCompleteRelicAction(gs, e)
	case PassActionTurn:
		return applyPassActionTurn(gs, e)
	case ScoreObjective:
		return applyScoreObjective(gs, e)
	case RevealObjective:
		return applyRevealObjective(gs, e)
	case RevealAgenda:
		return applyRevealAgenda(gs, e)
	case CastVote:
		return applyCastVote(gs, e)
	case ResolveAgenda:
		return applyResolveAgenda(gs, e)
	case AdvancePhase:
		return applyAdvancePhase(gs, e)
	case EndGame:
		return applyEndGame(gs, e)
	case SetPlanetOwner:
		return applySetPlanetOwner(gs, e)
	case AttachToPlanet:
		return applyAttachToPlanet(gs, e)
	case GiveSupportForTheThrone:
		return applyGiveSupportForTheThrone(gs, e)
	case ClaimRelic:
		return applyClaimRelic(gs, e)
	case ClaimCustodians:
		return applyClaimCustodians(gs, e)
	case TrackTime:
		return applyTrackTime(gs, e, now)
	case CreationDone:
		return applyCreationDone(gs, e)
	case PlayGiftOfPrescience:
		return applyPlayGiftOfPrescience(gs, e)
	case TakePlanet:
		return applyTakePlanet(gs, e)
	case TakeAnotherTurn:
		return applyTakeAnotherTurn(gs, e)
	case RevealExtraPublicObjective:
		return applyRevealExtraPublicObjective(gs, e)
	case ScoreExtraSecretObjective:
		return applyScoreExtraSecretObjective(gs, e)
	case UnscoreSecretObjective:
		return applyUnscoreSecretObjective(gs, e)
	default:
		return gs, reject(RejectionInternal, "unhandled event kind %T", event)
	}
}

func applySetSettings(gs GameState, e SetSettings) (GameState, error) {
	if gs.Phase != PhaseCreation {
		return gs, reject(RejectionWrongPhase, "settings can only change during creation, current phase is %s", gs.Phase)
	}
	next := gs.clone()
	next.Settings = e.Settings
	if next.Settings.ImperialScoringPolicy == "" {
		next.Settings.ImperialScoringPolicy = ImperialScoringAlways
	}
	next.Score.MaxPoints = e.Settings.MaxPoints
	return next, nil
}

func applyImportFromMilty(gs GameState, e ImportFromMilty) (GameState, error) {
	if gs.Phase != PhaseCreation {
		return gs, reject(RejectionWrongPhase, "milty import can only happen during creation, current phase is %s", gs.Phase)
	}
	hexMap, err := ParseMiltyString(e.TTSString)
	if err != nil {
		return gs, reject(RejectionInvalidArgument, "parse milty map: %v", err)
	}
	names := make(map[PlayerId]bool, len(e.Players))
	factions := make(map[catalog.Faction]bool, len(e.Players))
	for _, p := range e.Players {
		if names[p.Name] {
			return gs, reject(RejectionInvalidArgument, "duplicate player name %q", p.Name)
		}
		names[p.Name] = true
		if factions[p.Faction] {
			return gs, reject(RejectionInvalidArgument, "duplicate faction %q", p.Faction)
		}
		factions[p.Faction] = true
		if !e.Expansions.Enabled(p.Faction.Expansion()) {
			return gs, reject(RejectionInvalidArgument, "faction %q requires an expansion that is not enabled", p.Faction)
		}
	}

	// nil rng: Assign falls back to a fixed-seed source, which keeps the
	// import replayable — the same draft always yields the same colors.
	assignment, err := color.Assign(factionList(e.Players), nil)
	if err != nil {
		return gs, reject(RejectionInternal, "assign colors: %v", err)
	}

	next := gs.clone()
	next.Name = e.GameName
	next.Settings = GameSettings{
		MaxPoints:             e.MaxPoints,
		Expansions:            e.Expansions,
		ImperialScoringPolicy: gs.Settings.ImperialScoringPolicy,
	}
	next.Score = NewScore(e.MaxPoints)
	next.Map = hexMap
	next.Players = next.Players[:0]
	next.PlayerOrder = next.PlayerOrder[:0]
	for _, p := range e.Players {
		next.Players = append(next.Players, Player{
			ID:           p.Name,
			Faction:      p.Faction,
			Color:        assignment[p.Faction],
			Technologies: p.Faction.StartingTechnologies(),
			Planets:      startingPlanets(p.Faction),
		})
		next.PlayerOrder = append(next.PlayerOrder, p.Name)
	}
	next.Phase = PhaseSetup
	return next, nil
}

func factionList(players []MiltyPlayer) []catalog.Faction {
	out := make([]catalog.Faction, len(players))
	for i, p := range players {
		out[i] = p.Faction
	}
	return out
}

func applyAddPlayer(gs GameState, e AddPlayer) (GameState, error) {
	if gs.Phase != PhaseCreation {
		return gs, reject(RejectionWrongPhase, "players can only be added during creation")
	}
	if gs.PlayerByID(e.ID) != nil {
		return gs, reject(RejectionAlreadyDone, "player %q already seated", e.ID)
	}
	for _, p := range gs.Players {
		if p.Faction == e.Faction {
			return gs, reject(RejectionDomainRule, "faction %q already taken", e.Faction)
		}
		if e.Color != "" && p.Color == e.Color {
			return gs, reject(RejectionDomainRule, "color %q already taken by %q", e.Color, p.ID)
		}
	}
	if !gs.Settings.Expansions.Enabled(e.Faction.Expansion()) {
		return gs, reject(RejectionInvalidArgument, "faction %q requires an expansion that is not enabled", e.Faction)
	}
	if len(gs.Players) >= gs.Settings.Expansions.MaxPlayers() {
		return gs, reject(RejectionDomainRule, "table is full at %d players", len(gs.Players))
	}
	next := gs.clone()
	next.Players = append(next.Players, Player{
		ID:           e.ID,
		Faction:      e.Faction,
		Color:        e.Color,
		IsBot:        e.IsBot,
		Technologies: e.Faction.StartingTechnologies(),
		Planets:      startingPlanets(e.Faction),
	})
	next.PlayerOrder = append(next.PlayerOrder, e.ID)
	return next, nil
}

// startingPlanets builds the initial controlled-planets map for a freshly
// seated faction: every planet in its home system, with no attachments.
func startingPlanets(f catalog.Faction) map[catalog.PlanetID][]catalog.PlanetAttachmentID {
	ids := f.StartingPlanets()
	if len(ids) == 0 {
		return nil
	}
	out := make(map[catalog.PlanetID][]catalog.PlanetAttachmentID, len(ids))
	for _, id := range ids {
		out[id] = nil
	}
	return out
}

func applyRemovePlayer(gs GameState, e RemovePlayer) (GameState, error) {
	if gs.Phase != PhaseCreation {
		return gs, reject(RejectionWrongPhase, "players can only be removed during creation")
	}
	if gs.PlayerByID(e.ID) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.ID)
	}
	next := gs.clone()
	filtered := next.Players[:0]
	for _, p := range next.Players {
		if p.ID != e.ID {
			filtered = append(filtered, p)
		}
	}
	next.Players = filtered
	orderFiltered := next.PlayerOrder[:0]
	for _, id := range next.PlayerOrder {
		if id != e.ID {
			orderFiltered = append(orderFiltered, id)
		}
	}
	next.PlayerOrder = orderFiltered
	return next, nil
}

func applyAssignColors(gs GameState, e AssignColors) (GameState, error) {
	if gs.Phase != PhaseCreation && gs.Phase != PhaseSetup {
		return gs, reject(RejectionWrongPhase, "colors can only be assigned during creation or setup")
	}
	factions := make([]catalog.Faction, len(gs.Players))
	for i, p := range gs.Players {
		factions[i] = p.Faction
	}
	assignment, err := color.Assign(factions, rand.New(rand.NewSource(e.Seed)))
	if err != nil {
		return gs, reject(RejectionInternal, "assign colors: %v", err)
	}
	next := gs.clone()
	for i := range next.Players {
		next.Players[i].Color = assignment[next.Players[i].Faction]
	}
	return next, nil
}

// applyCreationDone closes the roster and moves to Setup, where colors and
// the speaker are finalized before the first strategy phase.
func applyCreationDone(gs GameState, e CreationDone) (GameState, error) {
	if gs.Phase != PhaseCreation {
		return gs, reject(RejectionWrongPhase, "creation already finished, current phase is %s", gs.Phase)
	}
	if len(gs.Players) < 3 {
		return gs, reject(RejectionInvalidArgument, "need at least 3 players, have %d", len(gs.Players))
	}
	if len(gs.Players) > gs.Settings.Expansions.MaxPlayers() {
		return gs, reject(RejectionDomainRule, "at most %d players with the enabled content, have %d", gs.Settings.Expansions.MaxPlayers(), len(gs.Players))
	}
	next := gs.clone()
	next.Phase = PhaseSetup
	return next, nil
}

func applyStartGame(gs GameState, e StartGame) (GameState, error) {
	if gs.Phase != PhaseCreation && gs.Phase != PhaseSetup {
		return gs, reject(RejectionWrongPhase, "game already started, current phase is %s", gs.Phase)
	}
	if len(gs.Players) < 3 {
		return gs, reject(RejectionInvalidArgument, "need at least 3 players, have %d", len(gs.Players))
	}
	if len(gs.Players) > gs.Settings.Expansions.MaxPlayers() {
		return gs, reject(RejectionDomainRule, "at most %d players with the enabled content, have %d", gs.Settings.Expansions.MaxPlayers(), len(gs.Players))
	}
	if gs.PlayerByID(e.SpeakerID) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown speaker %q", e.SpeakerID)
	}
	next := gs.clone()
	next.SpeakerID = e.SpeakerID
	next.Phase = PhaseStrategy
	next.Round = 1
	return next, nil
}

func applySelectStrategyCard(gs GameState, e SelectStrategyCard) (GameState, error) {
	if gs.Phase != PhaseStrategy {
		return gs, reject(RejectionWrongPhase, "strategy cards can only be selected during the strategy phase")
	}
	if gs.PlayerByID(e.Player) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	if _, taken := gs.StrategyCardAssignments[e.Card]; taken {
		return gs, reject(RejectionAlreadyDone, "strategy card %q already selected", e.Card)
	}
	quota := strategyCardQuota(len(gs.Players))
	held := 0
	for _, player := range gs.StrategyCardAssignments {
		if player == e.Player {
			held++
		}
	}
	if held >= quota {
		return gs, reject(RejectionAlreadyDone, "player %q already holds %d strategy card(s)", e.Player, quota)
	}
	next := gs.clone()
	next.StrategyCardAssignments[e.Card] = e.Player
	if len(next.StrategyCardAssignments) == quota*len(next.Players) {
		next.Phase = PhaseAction
		next.PassedPlayers = make(map[PlayerId]bool)
		next.ActivePlayer = initiativeOrder(next)[0]
	}
	return next, nil
}

// strategyCardQuota returns how many strategy cards each player selects in
// the strategy phase: one each with five or more players, two each in a
// 3-4 player game (the standard rule that spreads the eight-card deck
// across fewer seats).
func strategyCardQuota(numPlayers int) int {
	if numPlayers >= 5 {
		return 1
	}
	return 2
}

// initiativeOrder returns players in ascending strategy-card-number order;
// a player with no card (should not happen once the strategy phase has
// ended) sorts last. The holder of the Naalu "0" token — the Naalu player
// unless the Gift of Prescience moved it — always resolves first.
func initiativeOrder(gs GameState) []PlayerId {
	zeroHolder := naaluZeroHolder(gs)
	type ranked struct {
		id   PlayerId
		rank int
	}
	ranks := make([]ranked, 0, len(gs.Players))
	for _, p := range gs.Players {
		rank := 1 << 30
		for card, holder := range gs.StrategyCardAssignments {
			if holder == p.ID && card.CardNumber() < rank {
				rank = card.CardNumber()
			}
		}
		if zeroHolder != nil && *zeroHolder == p.ID {
			rank = 0
		}
		ranks = append(ranks, ranked{id: p.ID, rank: rank})
	}
	for i := 1; i < len(ranks); i++ {
		for j := i; j > 0 && ranks[j].rank < ranks[j-1].rank; j-- {
			ranks[j], ranks[j-1] = ranks[j-1], ranks[j]
		}
	}
	out := make([]PlayerId, len(ranks))
	for i, r := range ranks {
		out[i] = r.id
	}
	return out
}

// naaluZeroHolder returns who carries the "0" initiative token this round:
// the explicit Gift of Prescience target if one is set, otherwise a seated
// Naalu player (their Telepathic faction ability), otherwise nobody.
func naaluZeroHolder(gs GameState) *PlayerId {
	if gs.NaaluTelepathy != nil {
		return gs.NaaluTelepathy
	}
	for i := range gs.Players {
		if gs.Players[i].Faction == catalog.NaaluCollective {
			return &gs.Players[i].ID
		}
	}
	return nil
}

func requireActivePlayer(gs GameState, player PlayerId) error {
	if gs.ActivePlayer != player {
		return reject(RejectionWrongTurn, "it is %q's turn, not %q's", gs.ActivePlayer, player)
	}
	return nil
}

func applyStartStrategicAction(gs GameState, e StartStrategicAction) (GameState, error) {
	if gs.Phase != PhaseAction {
		return gs, reject(RejectionWrongPhase, "strategic actions only start during the action phase")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	if gs.StrategyCardAssignments[e.Card] != e.Player {
		return gs, reject(RejectionInvalidArgument, "player %q does not hold %q", e.Player, e.Card)
	}
	if gs.SpentStrategyCards[e.Card] {
		return gs, reject(RejectionAlreadyDone, "strategy card %q already spent this round", e.Card)
	}
	next := gs.clone()
	next.Phase = PhaseStrategicAction
	next.Action.Strategic = &StrategicProgress{Card: string(e.Card), SecondaryResponses: make(map[PlayerId]string)}
	return next, nil
}

// applyCompleteStrategicAction ends the active player's strategic action,
// marking the card spent for the round so it cannot be started again until
// the next strategy phase, and hands the turn to the next player exactly
// like applyCompleteTacticalAction does for tactical actions.
func applyCompleteStrategicAction(gs GameState, e CompleteStrategicAction) (GameState, error) {
	if gs.Phase != PhaseStrategicAction || gs.Action.Strategic == nil {
		return gs, reject(RejectionWrongPhase, "no strategic action in progress")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	if !gs.Action.Strategic.PrimaryDone {
		return gs, reject(RejectionWrongTurn, "primary ability not yet resolved")
	}
	for _, p := range gs.Players {
		if p.ID == gs.ActivePlayer {
			continue
		}
		if _, ok := gs.Action.Strategic.SecondaryResponses[p.ID]; !ok {
			return gs, reject(RejectionWrongTurn, "player %q has not responded to the secondary", p.ID)
		}
	}
	next := gs.clone()
	next.SpentStrategyCards[catalog.StrategyCard(gs.Action.Strategic.Card)] = true
	next.Action.Strategic = nil
	return endActionTurn(next), nil
}

func applyResolveStrategicPrimary(gs GameState, e ResolveStrategicPrimary) (GameState, error) {
	if gs.Phase != PhaseStrategicAction || gs.Action.Strategic == nil {
		return gs, reject(RejectionWrongPhase, "no strategic action in progress")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	if gs.Action.Strategic.PrimaryDone {
		return gs, reject(RejectionAlreadyDone, "primary ability already resolved")
	}
	card := catalog.StrategyCard(gs.Action.Strategic.Card)
	if len(e.Techs) > 0 {
		if card != catalog.Technology {
			return gs, reject(RejectionInvalidArgument, "%q's primary does not research technology", card)
		}
		if len(e.Techs) > 2 {
			return gs, reject(RejectionDomainRule, "the technology primary researches at most two technologies")
		}
	}
	if e.NewSpeaker != "" {
		if card != catalog.Politics {
			return gs, reject(RejectionInvalidArgument, "%q's primary does not choose a speaker", card)
		}
		if gs.PlayerByID(e.NewSpeaker) == nil {
			return gs, reject(RejectionUnknownEntity, "unknown player %q", e.NewSpeaker)
		}
	}
	next := gs.clone()
	if err := grantTechs(&next, e.Player, e.Techs); err != nil {
		return gs, err
	}
	if e.NewSpeaker != "" {
		next.SpeakerID = e.NewSpeaker
	}
	next.Action.Strategic.PrimaryDone = true
	if card == catalog.Imperial && gs.Settings.ImperialScoringPolicy == ImperialScoringAlways {
		next.Score.Imperial[e.Player]++
	}
	return next, nil
}

// grantTechs researches each listed technology for the player, enforcing
// the catalog's research rules: the Nekro Virus never researches, a tech
// cannot be owned twice, faction techs stay with their faction, and color
// prerequisites must be met by already-owned techs.
func grantTechs(gs *GameState, player PlayerId, techs []catalog.TechID) error {
	if len(techs) == 0 {
		return nil
	}
	p := gs.PlayerByID(player)
	if p == nil {
		return reject(RejectionUnknownEntity, "unknown player %q", player)
	}
	if p.Faction == catalog.NekroVirus {
		return reject(RejectionDomainRule, "the Nekro Virus cannot research technology")
	}
	for _, id := range techs {
		t, ok := catalog.LookupTech(id)
		if !ok {
			return reject(RejectionCatalogMissing, "unknown technology %q", id)
		}
		if t.Faction != "" && t.Faction != p.Faction {
			return reject(RejectionDomainRule, "technology %q belongs to %q", id, t.Faction)
		}
		if p.HasTech(id) {
			return reject(RejectionDomainRule, "player %q already owns %q", player, id)
		}
		owned := make(map[catalog.TechColor]int)
		for _, ownedID := range p.Technologies {
			if ot, ok := catalog.LookupTech(ownedID); ok {
				owned[ot.Color]++
			}
		}
		need := make(map[catalog.TechColor]int)
		for _, c := range t.Prerequisites {
			need[c]++
		}
		for c, n := range need {
			if owned[c] < n {
				return reject(RejectionPrerequisite, "technology %q needs %d %s prerequisite(s), player %q has %d", id, n, c, player, owned[c])
			}
		}
		p.Technologies = append(p.Technologies, id)
	}
	return nil
}

func applyResolveStrategicSecondary(gs GameState, e ResolveStrategicSecondary) (GameState, error) {
	if gs.Phase != PhaseStrategicAction || gs.Action.Strategic == nil {
		return gs, reject(RejectionWrongPhase, "no strategic action in progress")
	}
	if gs.PlayerByID(e.Player) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	if e.Player == gs.ActivePlayer {
		return gs, reject(RejectionInvalidArgument, "active player does not resolve a secondary")
	}
	if _, done := gs.Action.Strategic.SecondaryResponses[e.Player]; done {
		return gs, reject(RejectionAlreadyDone, "player %q already responded", e.Player)
	}
	if len(e.Techs) > 0 {
		if catalog.StrategyCard(gs.Action.Strategic.Card) != catalog.Technology {
			return gs, reject(RejectionInvalidArgument, "%q's secondary does not research technology", gs.Action.Strategic.Card)
		}
		limit := 1
		if p := gs.PlayerByID(e.Player); p != nil && p.Faction == catalog.UniversitiesOfJolNar {
			// The Jol-Nar commission: their technology secondary researches
			// two technologies instead of one.
			limit = 2
		}
		if len(e.Techs) > limit {
			return gs, reject(RejectionDomainRule, "player %q may research at most %d technology via the secondary", e.Player, limit)
		}
	}
	next := gs.clone()
	if err := grantTechs(&next, e.Player, e.Techs); err != nil {
		return gs, err
	}
	next.Action.Strategic.SecondaryResponses[e.Player] = e.Response
	return next, nil
}

func applyStartTacticalAction(gs GameState, e StartTacticalAction) (GameState, error) {
	if gs.Phase != PhaseAction {
		return gs, reject(RejectionWrongPhase, "tactical actions only start during the action phase")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	if _, ok := catalog.LookupSystem(e.System); !ok {
		return gs, reject(RejectionCatalogMissing, "unknown system %d", e.System)
	}
	next := gs.clone()
	next.Phase = PhaseTacticalAction
	next.Action.Tactical = &TacticalProgress{ActivatedSystem: fmt.Sprintf("%d", e.System)}
	return next, nil
}

func applyCompleteTacticalAction(gs GameState, e CompleteTacticalAction) (GameState, error) {
	if gs.Phase != PhaseTacticalAction || gs.Action.Tactical == nil {
		return gs, reject(RejectionWrongPhase, "no tactical action in progress")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Action.Tactical = nil
	return endActionTurn(next), nil
}

func applyStartActionCardAction(gs GameState, e StartActionCardAction) (GameState, error) {
	if gs.Phase != PhaseAction {
		return gs, reject(RejectionWrongPhase, "action cards only start during the action phase")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Phase = PhaseActionCardAction
	next.Action.ActionCard = &ActionCardProgress{Card: e.Card}
	return next, nil
}

func applyCompleteActionCardAction(gs GameState, e CompleteActionCardAction) (GameState, error) {
	if gs.Phase != PhaseActionCardAction || gs.Action.ActionCard == nil {
		return gs, reject(RejectionWrongPhase, "no action card turn in progress")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Action.ActionCard = nil
	return endActionTurn(next), nil
}

func applyStartLeaderAction(gs GameState, e StartLeaderAction) (GameState, error) {
	if gs.Phase != PhaseAction {
		return gs, reject(RejectionWrongPhase, "leader abilities only start during the action phase")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Phase = PhaseLeaderAction
	next.Action.Leader = &LeaderProgress{Leader: e.Leader}
	return next, nil
}

func applyCompleteLeaderAction(gs GameState, e CompleteLeaderAction) (GameState, error) {
	if gs.Phase != PhaseLeaderAction || gs.Action.Leader == nil {
		return gs, reject(RejectionWrongPhase, "no leader turn in progress")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Action.Leader = nil
	return endActionTurn(next), nil
}

func applyStartFrontierCardAction(gs GameState, e StartFrontierCardAction) (GameState, error) {
	if gs.Phase != PhaseAction {
		return gs, reject(RejectionWrongPhase, "frontier exploration only starts during the action phase")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Phase = PhaseFrontierCardAction
	next.Action.Frontier = &FrontierCardProgress{}
	return next, nil
}

func applyCompleteFrontierCardAction(gs GameState, e CompleteFrontierCardAction) (GameState, error) {
	if gs.Phase != PhaseFrontierCardAction || gs.Action.Frontier == nil {
		return gs, reject(RejectionWrongPhase, "no frontier exploration in progress")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Action.Frontier = nil
	return endActionTurn(next), nil
}

func applyStartRelicAction(gs GameState, e StartRelicAction) (GameState, error) {
	if gs.Phase != PhaseAction {
		return gs, reject(RejectionWrongPhase, "relic abilities only start during the action phase")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	player := gs.PlayerByID(e.Player)
	if player == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	if !player.HasRelic(e.Relic) {
		return gs, reject(RejectionInvalidArgument, "player %q does not hold relic %q", e.Player, e.Relic)
	}
	next := gs.clone()
	next.Phase = PhaseRelicAction
	next.Action.Relic = &RelicActionProgress{Relic: string(e.Relic)}
	return next, nil
}

func applyCompleteRelicAction(gs GameState, e CompleteRelicAction) (GameState, error) {
	if gs.Phase != PhaseRelicAction || gs.Action.Relic == nil {
		return gs, reject(RejectionWrongPhase, "no relic turn in progress")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Action.Relic = nil
	return endActionTurn(next), nil
}

func applyPassActionTurn(gs GameState, e PassActionTurn) (GameState, error) {
	if gs.Phase != PhaseAction {
		return gs, reject(RejectionWrongPhase, "can only pass during the action phase")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	if gs.PassedPlayers[e.Player] {
		return gs, reject(RejectionAlreadyDone, "player %q already passed", e.Player)
	}
	next := gs.clone()
	next.PassedPlayers[e.Player] = true
	return endActionTurn(next), nil
}

// endActionTurn advances ActivePlayer to the next player (by initiative)
// who has not yet passed for the round, wrapping around the initiative
// order, or moves to the status phase once every seated player has passed.
func endActionTurn(gs GameState) GameState {
	gs.Phase = PhaseAction
	if gs.RepeatTurn {
		gs.RepeatTurn = false
		return gs
	}
	order := initiativeOrder(gs)
	start := 0
	for i, id := range order {
		if id == gs.ActivePlayer {
			start = i
			break
		}
	}
	for step := 1; step <= len(order); step++ {
		id := order[(start+step)%len(order)]
		if !gs.PassedPlayers[id] {
			gs.ActivePlayer = id
			return gs
		}
	}
	gs.Phase = PhaseStatus
	gs.ActivePlayer = ""
	return gs
}

func applyScoreObjective(gs GameState, e ScoreObjective) (GameState, error) {
	if gs.Phase != PhaseStatus {
		return gs, reject(RejectionWrongPhase, "objectives are scored during the status phase")
	}
	if gs.PlayerByID(e.Player) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	next := gs.clone()
	switch {
	case e.Public != nil:
		if _, decided := gs.Status.ScoredPublicObjectives[e.Player]; decided {
			return gs, reject(RejectionAlreadyDone, "player %q already made their public scoring decision this round", e.Player)
		}
		if _, ok := catalog.LookupObjective(*e.Public); !ok {
			return gs, reject(RejectionCatalogMissing, "unknown objective %q", *e.Public)
		}
		if gs.Score.RevealedObjectives[*e.Public][e.Player] {
			return gs, reject(RejectionDomainRule, "player %q already scored %q", e.Player, *e.Public)
		}
		if next.Score.RevealedObjectives[*e.Public] == nil {
			next.Score.RevealedObjectives[*e.Public] = make(map[PlayerId]bool)
		}
		next.Score.RevealedObjectives[*e.Public][e.Player] = true
		next.Status.ScoredPublicObjectives[e.Player] = e.Public
	case e.Secret != nil:
		if _, decided := gs.Status.ScoredSecretObjectives[e.Player]; decided {
			return gs, reject(RejectionAlreadyDone, "player %q already made their secret scoring decision this round", e.Player)
		}
		if _, ok := catalog.LookupSecretObjective(*e.Secret); !ok {
			return gs, reject(RejectionCatalogMissing, "unknown secret objective %q", *e.Secret)
		}
		if gs.Score.SecretObjectives[e.Player][*e.Secret] {
			return gs, reject(RejectionDomainRule, "player %q already scored %q", e.Player, *e.Secret)
		}
		if next.Score.SecretObjectives[e.Player] == nil {
			next.Score.SecretObjectives[e.Player] = make(map[catalog.SecretObjectiveID]bool)
		}
		next.Score.SecretObjectives[e.Player][*e.Secret] = true
		next.Status.ScoredSecretObjectives[e.Player] = e.Secret
	default:
		// Neither set: the player scored nothing this round. Only the
		// not-yet-made decisions are recorded as skipped, so a player who
		// scored a public objective can still skip their secret slot.
		if _, decided := gs.Status.ScoredPublicObjectives[e.Player]; !decided {
			next.Status.ScoredPublicObjectives[e.Player] = nil
		}
		if _, decided := gs.Status.ScoredSecretObjectives[e.Player]; !decided {
			next.Status.ScoredSecretObjectives[e.Player] = nil
		}
	}
	return next, nil
}

func applyRevealObjective(gs GameState, e RevealObjective) (GameState, error) {
	if gs.Phase != PhaseStatus {
		return gs, reject(RejectionWrongPhase, "objectives are revealed during the status phase")
	}
	if !gs.Status.CanRevealObjective(len(gs.Players)) {
		return gs, reject(RejectionWrongTurn, "not every player has registered a scoring decision yet")
	}
	obj, ok := catalog.LookupObjective(e.Objective)
	if !ok {
		return gs, reject(RejectionCatalogMissing, "unknown objective %q", e.Objective)
	}
	if _, revealed := gs.Score.RevealedObjectives[e.Objective]; revealed {
		return gs, reject(RejectionAlreadyDone, "objective %q already revealed", e.Objective)
	}
	if obj.Stage == catalog.StageII {
		revealedStageOne := 0
		for id := range gs.Score.RevealedObjectives {
			if o, ok := catalog.LookupObjective(id); ok && o.Stage == catalog.StageI {
				revealedStageOne++
			}
		}
		if revealedStageOne < gs.Status.ExpectedObjectivesBeforeStageTwo {
			return gs, reject(RejectionPrerequisite, "stage II objectives unlock after %d stage I reveals, have %d", gs.Status.ExpectedObjectivesBeforeStageTwo, revealedStageOne)
		}
	}
	next := gs.clone()
	revealedObjective := e.Objective
	next.Status.RevealedObjective = &revealedObjective
	next.Score.RevealedObjectives[e.Objective] = make(map[PlayerId]bool)
	return next, nil
}

func applyRevealAgenda(gs GameState, e RevealAgenda) (GameState, error) {
	if gs.Phase != PhaseAgenda {
		return gs, reject(RejectionWrongPhase, "agendas are only revealed during the agenda phase")
	}
	if gs.Agenda.Vote != nil {
		return gs, reject(RejectionAlreadyDone, "a vote is already in progress")
	}
	var scoredSecrets []catalog.SecretObjectiveID
	for _, secrets := range gs.Score.SecretObjectives {
		for id := range secrets {
			scoredSecrets = append(scoredSecrets, id)
		}
	}
	sort.Slice(scoredSecrets, func(i, j int) bool { return scoredSecrets[i] < scoredSecrets[j] })
	// Ballot candidates come from the planets players actually control
	// right now, not their starting holdings. Both lists are sorted so the
	// candidate order is identical on every replay of the same log.
	planetsByTrait := map[catalog.PlanetTrait][]catalog.PlanetID{}
	var allPlanets []catalog.PlanetID
	for _, p := range gs.Players {
		for pid := range p.Planets {
			allPlanets = append(allPlanets, pid)
		}
	}
	sort.Slice(allPlanets, func(i, j int) bool { return allPlanets[i] < allPlanets[j] })
	for _, pid := range allPlanets {
		sysID, ok := catalog.PlanetSystem(pid)
		if !ok {
			continue
		}
		sys, ok := catalog.LookupSystem(sysID)
		if !ok {
			continue
		}
		for _, planet := range sys.Planets {
			if planet.ID != pid {
				continue
			}
			for _, trait := range planet.Traits {
				planetsByTrait[trait] = append(planetsByTrait[trait], pid)
			}
		}
	}
	vs, err := NewVoteState(e.Agenda, gs.PlayerOrder, gs.Laws, scoredSecrets, planetsByTrait, allPlanets)
	if err != nil {
		return gs, err
	}
	next := gs.clone()
	next.Agenda.Vote = &vs
	return next, nil
}

func applyCastVote(gs GameState, e CastVote) (GameState, error) {
	if gs.Phase != PhaseAgenda || gs.Agenda.Vote == nil {
		return gs, reject(RejectionWrongPhase, "no agenda vote in progress")
	}
	if gs.PlayerByID(e.Player) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	valid := false
	for _, c := range gs.Agenda.Vote.Candidates {
		if electKey(c) == electKey(e.For) {
			valid = true
			break
		}
	}
	if !valid {
		return gs, reject(RejectionInvalidArgument, "not a valid candidate on this ballot")
	}
	next := gs.clone()
	next.Agenda.Vote.PlayerVotes[e.Player] = PlayerVote{Votes: e.Votes, For: e.For}
	return next, nil
}

func applyResolveAgenda(gs GameState, e ResolveAgenda) (GameState, error) {
	if gs.Phase != PhaseAgenda || gs.Agenda.Vote == nil {
		return gs, reject(RejectionWrongPhase, "no agenda vote in progress")
	}
	next := gs.clone()
	next.Agenda.Vote.Tally()
	outcome := next.Agenda.Vote.ExpectedOutcome
	if e.Outcome != nil {
		outcome = e.Outcome
	}
	if outcome == nil {
		return gs, reject(RejectionInvalidArgument, "vote tied and no tie-break outcome supplied")
	}
	agenda, _ := catalog.LookupAgenda(next.Agenda.Vote.Agenda)
	next.Agenda.Vote = nil
	next.Agenda.Round++

	// A law that was not voted down stays in force; an agenda that elected
	// a law repeals it. Per-card effects beyond this bookkeeping are left
	// to the table.
	if agenda.Kind == catalog.AgendaKindLaw && outcome.ForOrAgainst != "against" {
		active := false
		for _, law := range next.Laws {
			if law == agenda.ID {
				active = true
				break
			}
		}
		if !active {
			next.Laws = append(next.Laws, agenda.ID)
		}
	}
	if agenda.Elect == catalog.ElectLaw && outcome.Law != "" {
		filtered := next.Laws[:0]
		for _, law := range next.Laws {
			if law != outcome.Law {
				filtered = append(filtered, law)
			}
		}
		next.Laws = filtered
	}
	if next.Agenda.Round > 2 {
		// Exactly two agendas are resolved per agenda phase; the phase ends
		// itself here rather than waiting for a separate AdvancePhase once
		// the second agenda resolves.
		next.Agenda.Round = 1
		next.Phase = PhaseStrategy
		next.NaaluTelepathy = nil
	}
	return next, nil
}

func applyAdvancePhase(gs GameState, e AdvancePhase) (GameState, error) {
	next := gs.clone()
	switch gs.Phase {
	case PhaseStatus:
		if !gs.Status.IsComplete(len(gs.Players)) {
			return gs, reject(RejectionWrongTurn, "status phase not complete")
		}
		next.Status = NewStatusPhaseState(gs.Status.ExpectedObjectivesBeforeStageTwo)
		next.StrategyCardAssignments = make(map[catalog.StrategyCard]PlayerId)
		next.SpentStrategyCards = make(map[catalog.StrategyCard]bool)
		next.PassedPlayers = make(map[PlayerId]bool)
		switch {
		case gs.Score.Custodians == nil:
			// The custodians token (and any unresolved relic fragments) must
			// be dealt with before the game's first agenda phase; every
			// status phase routes through Relics until the token is
			// claimed, after which the normal status->agenda loop applies.
			next.Phase = PhaseRelics
		case gs.Round == 1:
			// The agenda phase is not played in the first round.
			next.Round++
			next.Phase = PhaseStrategy
		default:
			next.Round++
			next.Phase = PhaseAgenda
		}
	case PhaseAgenda:
		next.Phase = PhaseStrategy
	case PhaseRelics:
		next.Round++
		next.Phase = PhaseStrategy
	default:
		return gs, reject(RejectionWrongPhase, "no fixed advance transition from phase %s", gs.Phase)
	}
	if next.Phase == PhaseStrategy {
		// The Naalu "0" token returns home between rounds.
		next.NaaluTelepathy = nil
	}
	return next, nil
}

func applyEndGame(gs GameState, e EndGame) (GameState, error) {
	if gs.GameEnded {
		return gs, reject(RejectionAlreadyDone, "game already ended")
	}
	next := gs.clone()
	next.GameEnded = true
	return next, nil
}

func applySetPlanetOwner(gs GameState, e SetPlanetOwner) (GameState, error) {
	if _, ok := catalog.PlanetSystem(e.Planet); !ok {
		return gs, reject(RejectionCatalogMissing, "unknown planet %q", e.Planet)
	}
	next := gs.clone()
	for i := range next.Players {
		if next.Players[i].ID != e.Player {
			delete(next.Players[i].Planets, e.Planet)
		}
	}
	if e.Player != "" {
		owner := next.PlayerByID(e.Player)
		if owner == nil {
			return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
		}
		if owner.Planets == nil {
			owner.Planets = make(map[catalog.PlanetID][]catalog.PlanetAttachmentID)
		}
		if _, already := owner.Planets[e.Planet]; !already {
			owner.Planets[e.Planet] = nil
		}
	}
	return next, nil
}

func applyAttachToPlanet(gs GameState, e AttachToPlanet) (GameState, error) {
	if _, ok := catalog.LookupPlanetAttachment(e.Attachment); !ok {
		return gs, reject(RejectionCatalogMissing, "unknown planet attachment %q", e.Attachment)
	}
	var owner *Player
	for i := range gs.Players {
		if _, ok := gs.Players[i].Planets[e.Planet]; ok {
			owner = &gs.Players[i]
			break
		}
	}
	if owner == nil {
		return gs, reject(RejectionInvalidArgument, "planet %q is not controlled by any player", e.Planet)
	}
	for _, a := range owner.Planets[e.Planet] {
		if a == e.Attachment {
			return gs, reject(RejectionAlreadyDone, "planet %q already has attachment %q", e.Planet, e.Attachment)
		}
	}
	next := gs.clone()
	nextOwner := next.PlayerByID(owner.ID)
	nextOwner.Planets[e.Planet] = append(nextOwner.Planets[e.Planet], e.Attachment)
	return next, nil
}

func applyGiveSupportForTheThrone(gs GameState, e GiveSupportForTheThrone) (GameState, error) {
	if gs.PlayerByID(e.Giver) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Giver)
	}
	if gs.PlayerByID(e.Receiver) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Receiver)
	}
	if e.Giver == e.Receiver {
		return gs, reject(RejectionInvalidArgument, "a player cannot give support for the throne to themself")
	}
	next := gs.clone()
	next.Score.SupportForTheThrone[e.Giver] = e.Receiver
	return next, nil
}

func applyClaimRelic(gs GameState, e ClaimRelic) (GameState, error) {
	if gs.PlayerByID(e.Player) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	if _, ok := catalog.LookupRelic(e.Relic); !ok {
		return gs, reject(RejectionCatalogMissing, "unknown relic %q", e.Relic)
	}
	next := gs.clone()
	for i := range next.Players {
		if next.Players[i].ID == e.Player {
			continue
		}
		filtered := next.Players[i].Relics[:0]
		for _, r := range next.Players[i].Relics {
			if r != e.Relic {
				filtered = append(filtered, r)
			}
		}
		next.Players[i].Relics = filtered
	}
	owner := next.PlayerByID(e.Player)
	if !owner.HasRelic(e.Relic) {
		owner.Relics = append(owner.Relics, e.Relic)
	}
	switch e.Relic {
	case catalog.ShardOfTheThrone:
		next.Score.ShardOfTheThrone = &owner.ID
	case catalog.CrownOfEmphidia:
		next.Score.CrownOfEmphidia = &owner.ID
	}
	return next, nil
}

func applyClaimCustodians(gs GameState, e ClaimCustodians) (GameState, error) {
	if gs.PlayerByID(e.Player) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	if gs.Score.Custodians != nil {
		return gs, reject(RejectionAlreadyDone, "custodians already claimed by %q", *gs.Score.Custodians)
	}
	next := gs.clone()
	id := e.Player
	next.Score.Custodians = &id
	return next, nil
}

// applyPlayGiftOfPrescience hands the Naalu "0" initiative token to another
// player for the round. It only makes sense while strategy cards are being
// picked, before initiative order is first computed.
func applyPlayGiftOfPrescience(gs GameState, e PlayGiftOfPrescience) (GameState, error) {
	if gs.Phase != PhaseStrategy {
		return gs, reject(RejectionWrongPhase, "the Gift of Prescience is played during the strategy phase")
	}
	target := gs.PlayerByID(e.Player)
	if target == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	naaluSeated := false
	for _, p := range gs.Players {
		if p.Faction == catalog.NaaluCollective {
			naaluSeated = true
			break
		}
	}
	if !naaluSeated {
		return gs, reject(RejectionDomainRule, "no Naalu Collective player at the table")
	}
	if target.Faction == catalog.NaaluCollective {
		return gs, reject(RejectionDomainRule, "the Naalu player already holds the token")
	}
	next := gs.clone()
	id := e.Player
	next.NaaluTelepathy = &id
	return next, nil
}

// applyTakePlanet transfers a planet to the active player mid tactical
// action, keeping the planet's attachments with it across the change of
// control.
func applyTakePlanet(gs GameState, e TakePlanet) (GameState, error) {
	if gs.Phase != PhaseTacticalAction || gs.Action.Tactical == nil {
		return gs, reject(RejectionWrongPhase, "planets are taken during a tactical action")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	if _, ok := catalog.PlanetSystem(e.Planet); !ok {
		return gs, reject(RejectionCatalogMissing, "unknown planet %q", e.Planet)
	}
	taker := gs.PlayerByID(e.Player)
	if taker.ControlsPlanet(e.Planet) {
		return gs, reject(RejectionAlreadyDone, "player %q already controls %q", e.Player, e.Planet)
	}
	next := gs.clone()
	var attachments []catalog.PlanetAttachmentID
	for i := range next.Players {
		if prev, ok := next.Players[i].Planets[e.Planet]; ok {
			attachments = prev
			delete(next.Players[i].Planets, e.Planet)
		}
	}
	owner := next.PlayerByID(e.Player)
	if owner.Planets == nil {
		owner.Planets = make(map[catalog.PlanetID][]catalog.PlanetAttachmentID)
	}
	owner.Planets[e.Planet] = attachments
	next.Action.Tactical.InvasionDone = true
	return next, nil
}

// applyTakeAnotherTurn flags that the current action's end-of-turn keeps
// the active player instead of advancing the initiative order.
func applyTakeAnotherTurn(gs GameState, e TakeAnotherTurn) (GameState, error) {
	switch gs.Phase {
	case PhaseStrategicAction, PhaseTacticalAction, PhaseActionCardAction,
		PhaseLeaderAction, PhaseFrontierCardAction, PhaseRelicAction:
	default:
		return gs, reject(RejectionWrongPhase, "no action in progress to follow with another turn")
	}
	if err := requireActivePlayer(gs, e.Player); err != nil {
		return gs, err
	}
	if gs.RepeatTurn {
		return gs, reject(RejectionAlreadyDone, "another turn already declared")
	}
	next := gs.clone()
	next.RepeatTurn = true
	return next, nil
}

// applyRevealExtraPublicObjective reveals a public objective outside the
// status phase's normal reveal, e.g. by an agenda directive.
func applyRevealExtraPublicObjective(gs GameState, e RevealExtraPublicObjective) (GameState, error) {
	if gs.Phase == PhaseCreation || gs.Phase == PhaseSetup {
		return gs, reject(RejectionWrongPhase, "objectives are revealed once the game has started")
	}
	if _, ok := catalog.LookupObjective(e.Objective); !ok {
		return gs, reject(RejectionCatalogMissing, "unknown objective %q", e.Objective)
	}
	if _, revealed := gs.Score.RevealedObjectives[e.Objective]; revealed {
		return gs, reject(RejectionAlreadyDone, "objective %q already revealed", e.Objective)
	}
	next := gs.clone()
	next.Score.RevealedObjectives[e.Objective] = make(map[PlayerId]bool)
	return next, nil
}

// applyScoreExtraSecretObjective records a secret scored outside the status
// phase's one-per-round slot.
func applyScoreExtraSecretObjective(gs GameState, e ScoreExtraSecretObjective) (GameState, error) {
	if gs.Phase == PhaseCreation || gs.Phase == PhaseSetup {
		return gs, reject(RejectionWrongPhase, "objectives are scored once the game has started")
	}
	if gs.PlayerByID(e.Player) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	if _, ok := catalog.LookupSecretObjective(e.Secret); !ok {
		return gs, reject(RejectionCatalogMissing, "unknown secret objective %q", e.Secret)
	}
	if gs.Score.SecretObjectives[e.Player][e.Secret] {
		return gs, reject(RejectionDomainRule, "player %q already scored %q", e.Player, e.Secret)
	}
	next := gs.clone()
	if next.Score.SecretObjectives[e.Player] == nil {
		next.Score.SecretObjectives[e.Player] = make(map[catalog.SecretObjectiveID]bool)
	}
	next.Score.SecretObjectives[e.Player][e.Secret] = true
	return next, nil
}

// applyUnscoreSecretObjective retracts a recorded secret objective score.
func applyUnscoreSecretObjective(gs GameState, e UnscoreSecretObjective) (GameState, error) {
	if gs.PlayerByID(e.Player) == nil {
		return gs, reject(RejectionUnknownEntity, "unknown player %q", e.Player)
	}
	if !gs.Score.SecretObjectives[e.Player][e.Secret] {
		return gs, reject(RejectionInvalidArgument, "player %q has not scored %q", e.Player, e.Secret)
	}
	next := gs.clone()
	delete(next.Score.SecretObjectives[e.Player], e.Secret)
	return next, nil
}

// applyTrackTime accumulates elapsed wall-clock time for the previously
// active player since the last TrackTime event, then applies the new
// paused state.
// Pausing/resuming never itself counts as elapsed time for the player whose
// turn it was.
func applyTrackTime(gs GameState, e TrackTime, now time.Time) (GameState, error) {
	next := gs.clone()
	nowMillis := now.UnixMilli()
	if !gs.TimeTrackingPaused && gs.LastEventAtMillis != unsetLastEventAtMillis && gs.ActivePlayer != "" {
		next.PlayersPlayTime[gs.ActivePlayer] += nowMillis - gs.LastEventAtMillis
	}
	next.TimeTrackingPaused = e.Paused
	next.LastEventAtMillis = nowMillis
	return next, nil
}
