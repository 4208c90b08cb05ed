package ti4

import (
	"testing"
	"time"

	"github.com/ti-assistant/server/internal/catalog"
)

// newNaaluGame seats a Naalu table for the initiative-token tests.
func newNaaluGame(t *testing.T) *Game {
	t.Helper()
	catalog.Init()
	g := NewGame("naalu test", GameSettings{MaxPoints: 10, Expansions: catalog.Expansions{}})
	now := time.Unix(0, 0)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	must(g.Apply(AddPlayer{ID: "nina", Faction: catalog.NaaluCollective}, now))
	must(g.Apply(AddPlayer{ID: "bob", Faction: catalog.BaronyOfLetnev}, now))
	must(g.Apply(AddPlayer{ID: "carol", Faction: catalog.ClanOfSaar}, now))
	must(g.Apply(AssignColors{Seed: 1}, now))
	must(g.Apply(StartGame{SpeakerID: "nina"}, now))
	return g
}

func pickNaaluCards(t *testing.T, g *Game) {
	t.Helper()
	now := time.Unix(1, 0)
	picks := []struct {
		player PlayerId
		card   catalog.StrategyCard
	}{
		{"bob", catalog.Leadership},
		{"carol", catalog.Diplomacy},
		{"nina", catalog.Imperial},
		{"bob", catalog.Politics},
		{"carol", catalog.Construction},
		{"nina", catalog.Technology},
	}
	for _, p := range picks {
		if err := g.Apply(SelectStrategyCard{Player: p.player, Card: p.card}, now); err != nil {
			t.Fatalf("select %s for %s: %v", p.card, p.player, err)
		}
	}
}

func TestNaaluZeroTokenActsFirst(t *testing.T) {
	g := newNaaluGame(t)
	pickNaaluCards(t, g)
	// Nina holds the highest-numbered cards, but the Naalu "0" token still
	// puts her first in initiative.
	if g.State().ActivePlayer != "nina" {
		t.Fatalf("expected nina (naalu) to act first, got %s", g.State().ActivePlayer)
	}
}

func TestGiftOfPrescienceMovesTheZeroToken(t *testing.T) {
	g := newNaaluGame(t)
	now := time.Unix(1, 0)
	if err := g.Apply(PlayGiftOfPrescience{Player: "bob"}, now); err != nil {
		t.Fatalf("play gift of prescience: %v", err)
	}
	if err := g.Apply(PlayGiftOfPrescience{Player: "nina"}, now); err == nil {
		t.Fatalf("expected rejection: the naalu player already holds the token")
	}
	pickNaaluCards(t, g)
	if g.State().ActivePlayer != "bob" {
		t.Fatalf("expected bob (gift of prescience) to act first, got %s", g.State().ActivePlayer)
	}
}

func TestGiftOfPrescienceRequiresNaaluAtTheTable(t *testing.T) {
	g := newTestGame(t)
	err := g.Apply(PlayGiftOfPrescience{Player: "alice"}, time.Unix(1, 0))
	if err == nil {
		t.Fatalf("expected rejection: no naalu player seated")
	}
}

func TestTakeAnotherTurnKeepsTheActivePlayer(t *testing.T) {
	g := newTestGame(t)
	pickAllStrategyCards(t, g)
	now := time.Unix(4, 0)
	active := g.State().ActivePlayer

	if err := g.Apply(StartTacticalAction{Player: active, System: 18}, now); err != nil {
		t.Fatalf("start tactical action: %v", err)
	}
	if err := g.Apply(TakeAnotherTurn{Player: active}, now); err != nil {
		t.Fatalf("take another turn: %v", err)
	}
	if err := g.Apply(CompleteTacticalAction{Player: active}, now); err != nil {
		t.Fatalf("complete tactical action: %v", err)
	}
	if g.State().ActivePlayer != active {
		t.Fatalf("expected %s to keep the turn, got %s", active, g.State().ActivePlayer)
	}
	if g.State().RepeatTurn {
		t.Fatalf("expected the repeat-turn flag to be consumed")
	}

	// Without the declaration the next completion advances normally.
	if err := g.Apply(StartTacticalAction{Player: active, System: 18}, now); err != nil {
		t.Fatalf("second tactical action: %v", err)
	}
	if err := g.Apply(CompleteTacticalAction{Player: active}, now); err != nil {
		t.Fatalf("complete second tactical action: %v", err)
	}
	if g.State().ActivePlayer == active {
		t.Fatalf("expected the turn to advance after an undeclared completion")
	}
}

func TestTakePlanetKeepsAttachments(t *testing.T) {
	g := newTestGame(t)
	pickAllStrategyCards(t, g)
	now := time.Unix(4, 0)
	active := g.State().ActivePlayer

	// Nestphar is the Arborec home planet; stick an attachment on it first
	// so the transfer has something to preserve.
	if err := g.Apply(AttachToPlanet{Planet: "nestphar", Attachment: catalog.AttachmentTerraform}, now); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := g.Apply(TakePlanet{Player: active, Planet: "nestphar"}, now); err == nil {
		t.Fatalf("expected rejection: no tactical action in progress")
	}
	if err := g.Apply(StartTacticalAction{Player: active, System: 18}, now); err != nil {
		t.Fatalf("start tactical action: %v", err)
	}
	if active == "alice" {
		// Alice owns nestphar in this fixture; taking a planet you already
		// control is rejected, which is all there is to verify here.
		if err := g.Apply(TakePlanet{Player: active, Planet: "nestphar"}, now); err == nil {
			t.Fatalf("expected rejection: already controlled")
		}
		return
	}
	if err := g.Apply(TakePlanet{Player: active, Planet: "nestphar"}, now); err != nil {
		t.Fatalf("take planet: %v", err)
	}
	state := g.State()
	if state.PlayerByID("alice").ControlsPlanet("nestphar") {
		t.Fatalf("alice should have lost nestphar")
	}
	taker := state.PlayerByID(active)
	attachments, ok := taker.Planets["nestphar"]
	if !ok {
		t.Fatalf("%s should control nestphar", active)
	}
	if len(attachments) != 1 || attachments[0] != catalog.AttachmentTerraform {
		t.Fatalf("expected the terraform attachment to survive the transfer, got %v", attachments)
	}
	if !state.Action.Tactical.InvasionDone {
		t.Fatalf("expected the invasion step to be marked done")
	}
}

func TestExtraObjectiveEvents(t *testing.T) {
	g := newTestGame(t)
	pickAllStrategyCards(t, g)
	now := time.Unix(4, 0)

	if err := g.Apply(RevealExtraPublicObjective{Objective: "erect_a_monument"}, now); err != nil {
		t.Fatalf("reveal extra objective: %v", err)
	}
	if err := g.Apply(RevealExtraPublicObjective{Objective: "erect_a_monument"}, now); err == nil {
		t.Fatalf("expected rejection: objective already revealed")
	}

	if err := g.Apply(ScoreExtraSecretObjective{Player: "alice", Secret: "sway_the_council"}, now); err != nil {
		t.Fatalf("score extra secret: %v", err)
	}
	if got := g.State().Score.Points("alice"); got != 1 {
		t.Fatalf("expected 1 point, got %d", got)
	}
	if err := g.Apply(ScoreExtraSecretObjective{Player: "alice", Secret: "sway_the_council"}, now); err == nil {
		t.Fatalf("expected rejection: secret already scored")
	}
	if err := g.Apply(UnscoreSecretObjective{Player: "alice", Secret: "sway_the_council"}, now); err != nil {
		t.Fatalf("unscore secret: %v", err)
	}
	if got := g.State().Score.Points("alice"); got != 0 {
		t.Fatalf("expected 0 points after unscore, got %d", got)
	}
	if err := g.Apply(UnscoreSecretObjective{Player: "alice", Secret: "sway_the_council"}, now); err == nil {
		t.Fatalf("expected rejection: nothing to unscore")
	}
}

func TestStatusPhaseRejectsDoubleScoringDecision(t *testing.T) {
	g := newTestGame(t)
	pickAllStrategyCards(t, g)
	now := time.Unix(4, 0)
	for _, p := range initiativeOrder(*g.State()) {
		if err := g.Apply(PassActionTurn{Player: p}, now); err != nil {
			t.Fatalf("pass %s: %v", p, err)
		}
	}

	public := catalog.ObjectiveID("corner_the_market")
	if err := g.Apply(ScoreObjective{Player: "alice", Public: &public}, now); err != nil {
		t.Fatalf("score public: %v", err)
	}
	other := catalog.ObjectiveID("diversify_research")
	if err := g.Apply(ScoreObjective{Player: "alice", Public: &other}, now); err == nil {
		t.Fatalf("expected rejection: alice already made her public decision this round")
	}
	// A skip after a public score fills only the still-open secret slot.
	if err := g.Apply(ScoreObjective{Player: "alice"}, now); err != nil {
		t.Fatalf("skip remaining: %v", err)
	}
	if got := g.State().Status.ScoredPublicObjectives["alice"]; got == nil || *got != public {
		t.Fatalf("skip must not overwrite alice's public score")
	}
	if _, decided := g.State().Status.ScoredSecretObjectives["alice"]; !decided {
		t.Fatalf("expected alice's secret slot to be recorded as skipped")
	}
}

func TestMiltyImportAssignsColorsAndMovesToSetup(t *testing.T) {
	catalog.Init()
	g := NewGame("milty test", GameSettings{MaxPoints: 10})
	now := time.Unix(0, 0)
	err := g.Apply(ImportFromMilty{
		MaxPoints: 10,
		GameName:  "imported",
		Players: []MiltyPlayer{
			{Name: "Tux", Faction: catalog.SardakkNorr, Order: 1},
			{Name: "Vidde", Faction: catalog.UniversitiesOfJolNar, Order: 2},
			{Name: "Gurr", Faction: catalog.NekroVirus, Order: 3},
		},
		Expansions: catalog.Expansions{ProphecyOfKings: true},
		TTSString:  "1 2 3 4 5 6",
	}, now)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	state := g.State()
	if state.Phase != PhaseSetup {
		t.Fatalf("expected setup phase after import, got %s", state.Phase)
	}
	want := map[PlayerId]catalog.Color{"Tux": catalog.Black, "Vidde": catalog.Blue, "Gurr": catalog.Red}
	for id, color := range want {
		p := state.PlayerByID(id)
		if p == nil {
			t.Fatalf("player %s not seated", id)
		}
		if p.Color != color {
			t.Fatalf("expected %s to be %s, got %s", id, color, p.Color)
		}
	}
}
