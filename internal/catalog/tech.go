package catalog

// TechID identifies a technology in the research tree.
type TechID string

// TechColor is the research category a technology belongs to; the zero
// value means the technology is an unaligned (faction or upgrade) tech.
type TechColor string

const (
	TechBiotic    TechColor = "biotic"
	TechPropulsion TechColor = "propulsion"
	TechCybernetic TechColor = "cybernetic"
	TechWarfare    TechColor = "warfare"
	TechUnaligned  TechColor = ""
)

const (
	NeuralMotivator     TechID = "neural_motivator"
	AntimassDeflectors  TechID = "antimass_deflectors"
	SarweenTools        TechID = "sarween_tools"
	PlasmaScoring       TechID = "plasma_scoring"
	GravityDrive        TechID = "gravity_drive"
	FleetLogistics      TechID = "fleet_logistics"
	SelfAssemblyRoutines TechID = "self_assembly_routines"
	MagenDefenseGrid    TechID = "magen_defense_grid"
)

// Tech describes one researchable technology and its prerequisites.
type Tech struct {
	ID            TechID
	Name          string
	Color         TechColor
	Prerequisites []TechColor
	Faction       Faction // empty unless this is a faction-specific tech
}

// techs is a representative slice of the full tree, enough to exercise
// prerequisite checking and faction-restricted research.
var techs = []Tech{
	{ID: NeuralMotivator, Name: "Neural Motivator", Color: TechBiotic},
	{ID: AntimassDeflectors, Name: "Antimass Deflectors", Color: TechPropulsion},
	{ID: SarweenTools, Name: "Sarween Tools", Color: TechCybernetic},
	{ID: PlasmaScoring, Name: "Plasma Scoring", Color: TechWarfare},
	{ID: GravityDrive, Name: "Gravity Drive", Color: TechPropulsion, Prerequisites: []TechColor{TechPropulsion}},
	{ID: FleetLogistics, Name: "Fleet Logistics", Color: TechPropulsion, Prerequisites: []TechColor{TechPropulsion, TechPropulsion}},
	{ID: SelfAssemblyRoutines, Name: "Self-Assembly Routines", Color: TechUnaligned, Faction: L1Z1XMindnet},
	{ID: MagenDefenseGrid, Name: "Magen Defense Grid", Color: TechBiotic, Prerequisites: []TechColor{TechBiotic}},
}

var techByID map[TechID]Tech

func initTechs() {
	techByID = make(map[TechID]Tech, len(techs))
	for _, t := range techs {
		techByID[t.ID] = t
	}
}

// LookupTech returns the tech catalog entry, ok is false for an unknown id.
func LookupTech(id TechID) (Tech, bool) {
	t, ok := techByID[id]
	return t, ok
}
