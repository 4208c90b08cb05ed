package catalog

// RelicID identifies a relic card.
type RelicID string

const (
	ShardOfTheThrone RelicID = "shard_of_the_throne"
	CrownOfEmphidia  RelicID = "crown_of_emphidia"
	TheCodex         RelicID = "the_codex"
	DynamisCore      RelicID = "dynamis_core"
)

// Relic is a relic card. ScoresVictoryPoint marks the two relics that grant
// their holder a victory point while held (Shard of the Throne and Crown of
// Emphidia), matching the score-computation rule in the scoring component.
type Relic struct {
	ID                 RelicID
	Name               string
	ScoresVictoryPoint bool
}

var relics = []Relic{
	{ID: ShardOfTheThrone, Name: "Shard of the Throne", ScoresVictoryPoint: true},
	{ID: CrownOfEmphidia, Name: "Crown of Emphidia", ScoresVictoryPoint: true},
	{ID: TheCodex, Name: "The Codex"},
	{ID: DynamisCore, Name: "Dynamis Core"},
}

var relicByID map[RelicID]Relic

func initRelics() {
	relicByID = make(map[RelicID]Relic, len(relics))
	for _, r := range relics {
		relicByID[r.ID] = r
	}
}

// LookupRelic returns a relic's catalog entry.
func LookupRelic(id RelicID) (Relic, bool) {
	r, ok := relicByID[id]
	return r, ok
}
