package catalog

// Faction identifies one of the playable civilizations.
type Faction string

const (
	Arborec              Faction = "arborec"
	BaronyOfLetnev       Faction = "barony_of_letnev"
	ClanOfSaar           Faction = "clan_of_saar"
	EmbersOfMuaat        Faction = "embers_of_muaat"
	EmiratesOfHacan      Faction = "emirates_of_hacan"
	FederationOfSol      Faction = "federation_of_sol"
	GhostsOfCreuss       Faction = "ghosts_of_creuss"
	L1Z1XMindnet         Faction = "l1z1x_mindnet"
	MentakCoalition      Faction = "mentak_coalition"
	NaaluCollective      Faction = "naalu_collective"
	NekroVirus           Faction = "nekro_virus"
	SardakkNorr          Faction = "sardakk_norr"
	UniversitiesOfJolNar Faction = "universities_of_jol_nar"
	Winnu                Faction = "winnu"
	XxchaKingdom         Faction = "xxcha_kingdom"
	YinBrotherhood       Faction = "yin_brotherhood"
	YssarilTribes        Faction = "yssaril_tribes"

	ArgentFlight        Faction = "argent_flight"
	Empyrean            Faction = "empyrean"
	MahactGeneSorcerers Faction = "mahact_gene_sorcerers"
	NaazRokhaAlliance   Faction = "naaz_rokha_alliance"
	Nomad               Faction = "nomad"
	TitansOfUl          Faction = "titans_of_ul"
	VuilRaithCabal      Faction = "vuilraith_cabal"

	CouncilKeleres Faction = "council_keleres"
)

// AllFactions lists every faction the catalog knows about, base game
// first, then Prophecy of Kings, then the codex additions.
var AllFactions = []Faction{
	Arborec, BaronyOfLetnev, ClanOfSaar, EmbersOfMuaat, EmiratesOfHacan,
	FederationOfSol, GhostsOfCreuss, L1Z1XMindnet, MentakCoalition,
	NaaluCollective, NekroVirus, SardakkNorr, UniversitiesOfJolNar, Winnu,
	XxchaKingdom, YinBrotherhood, YssarilTribes,
	ArgentFlight, Empyrean, MahactGeneSorcerers, NaazRokhaAlliance, Nomad,
	TitansOfUl, VuilRaithCabal,
	CouncilKeleres,
}

var factionNames = map[Faction]string{
	Arborec:              "The Arborec",
	BaronyOfLetnev:       "The Barony of Letnev",
	ClanOfSaar:           "The Clan of Saar",
	EmbersOfMuaat:        "The Embers of Muaat",
	EmiratesOfHacan:      "The Emirates of Hacan",
	FederationOfSol:      "The Federation of Sol",
	GhostsOfCreuss:       "The Ghosts of Creuss",
	L1Z1XMindnet:         "The L1Z1X Mindnet",
	MentakCoalition:      "The Mentak Coalition",
	NaaluCollective:      "The Naalu Collective",
	NekroVirus:           "The Nekro Virus",
	SardakkNorr:          "Sardakk N'orr",
	UniversitiesOfJolNar: "The Universities of Jol-Nar",
	Winnu:                "The Winnu",
	XxchaKingdom:         "The Xxcha Kingdom",
	YinBrotherhood:       "The Yin Brotherhood",
	YssarilTribes:        "The Yssaril Tribes",
	ArgentFlight:         "The Argent Flight",
	Empyrean:             "The Empyrean",
	MahactGeneSorcerers:  "The Mahact Gene Sorcerers",
	NaazRokhaAlliance:    "The Naaz-Rokha Alliance",
	Nomad:                "The Nomad",
	TitansOfUl:           "The Titans of Ul",
	VuilRaithCabal:       "The Vuil'Raith Cabal",
	CouncilKeleres:       "The Council of Keleres",
}

// Name returns the faction's display name.
func (f Faction) Name() string {
	if n, ok := factionNames[f]; ok {
		return n
	}
	return string(f)
}

var factionExpansion = map[Faction]Expansion{
	CouncilKeleres: ExpansionCodex,

	ArgentFlight:        ExpansionProphecyOfKings,
	Empyrean:            ExpansionProphecyOfKings,
	MahactGeneSorcerers: ExpansionProphecyOfKings,
	NaazRokhaAlliance:   ExpansionProphecyOfKings,
	Nomad:               ExpansionProphecyOfKings,
	TitansOfUl:          ExpansionProphecyOfKings,
	VuilRaithCabal:      ExpansionProphecyOfKings,
}

// Expansion reports which box the faction ships in; factions not in the
// override map are base-game factions.
func (f Faction) Expansion() Expansion {
	if e, ok := factionExpansion[f]; ok {
		return e
	}
	return ExpansionBase
}

// startingTechs lists the technologies a faction begins the game owning.
// Factions that choose their starting technology at setup (Sardakk N'orr,
// Winnu, Argent Flight, Council of Keleres) are intentionally left empty.
var startingTechs = map[Faction][]TechID{
	BaronyOfLetnev:       {AntimassDeflectors, PlasmaScoring},
	UniversitiesOfJolNar: {NeuralMotivator, AntimassDeflectors, SarweenTools, PlasmaScoring},
	L1Z1XMindnet:         {AntimassDeflectors, SarweenTools},
	EmbersOfMuaat:        {PlasmaScoring},
	NaaluCollective:      {SarweenTools, NeuralMotivator},
	NekroVirus:           {AntimassDeflectors, SarweenTools, NeuralMotivator, PlasmaScoring},
}

// StartingTechnologies returns the technologies the faction owns before any
// research has happened.
func (f Faction) StartingTechnologies() []TechID {
	return append([]TechID(nil), startingTechs[f]...)
}

// StartingPlanets returns the planet IDs of the faction's home system.
func (f Faction) StartingPlanets() []PlanetID {
	sys, ok := HomeSystem(f)
	if !ok {
		return nil
	}
	out := make([]PlanetID, len(sys.Planets))
	for i, p := range sys.Planets {
		out[i] = p.ID
	}
	return out
}
