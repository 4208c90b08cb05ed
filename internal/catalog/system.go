package catalog

// PlanetID identifies a planet within the reference catalog.
type PlanetID string

// PlanetTrait categorizes a planet for agenda "elect a planet with trait X"
// resolution.
type PlanetTrait string

const (
	TraitCultural    PlanetTrait = "cultural"
	TraitHazardous   PlanetTrait = "hazardous"
	TraitIndustrial  PlanetTrait = "industrial"
)

// Planet is one planet within a system.
type Planet struct {
	ID        PlanetID
	Name      string
	Resources int
	Influence int
	Traits    []PlanetTrait
}

// HasTrait reports whether the planet carries the given trait.
func (p Planet) HasTrait(t PlanetTrait) bool {
	for _, pt := range p.Traits {
		if pt == t {
			return true
		}
	}
	return false
}

// MiltyID is the numeric system identifier used by the milty tile-string
// format ("18" for Mecatol Rex, "82" for the wormhole nexus, and so on).
type MiltyID uint32

// SystemType distinguishes home systems, Mecatol Rex, and ordinary systems.
type SystemType int

const (
	SystemTypeNormal SystemType = iota
	SystemTypeMecatolRex
	SystemTypeHomeSystem
	SystemTypeHyperlane
)

// System is a single tile in the reference catalog: a milty id, its planets
// (if any), and any notable features (wormholes).
type System struct {
	MiltyID  MiltyID
	Type     SystemType
	HomeOf   Faction // only set when Type == SystemTypeHomeSystem
	Planets  []Planet
	Wormhole string // "alpha", "beta", "delta" ("creuss" wormhole id 17), or ""
}

// Notable milty ids referenced directly by the hex map parser.
const (
	MecatolRexID      MiltyID = 18
	MecatolRexOmegaID MiltyID = 112
	WormholeNexusID   MiltyID = 82
	CreussWormholeID  MiltyID = 17
	CreussHomeID      MiltyID = 51
)

var systems = []System{
	{MiltyID: MecatolRexID, Type: SystemTypeMecatolRex, Planets: []Planet{
		{ID: "mecatol_rex", Name: "Mecatol Rex", Resources: 1, Influence: 6},
	}},
	{MiltyID: 1, Type: SystemTypeHomeSystem, HomeOf: Arborec, Planets: []Planet{
		{ID: "nestphar", Name: "Nestphar", Resources: 3, Influence: 2},
	}},
	{MiltyID: 2, Type: SystemTypeHomeSystem, HomeOf: BaronyOfLetnev, Planets: []Planet{
		{ID: "arc_prime", Name: "Arc Prime", Resources: 4, Influence: 1},
		{ID: "wren_terra", Name: "Wren Terra", Resources: 2, Influence: 1},
	}},
	{MiltyID: 3, Type: SystemTypeHomeSystem, HomeOf: ClanOfSaar, Planets: []Planet{
		{ID: "lisis_ii", Name: "Lisis II", Resources: 1, Influence: 0},
		{ID: "ragh", Name: "Ragh", Resources: 2, Influence: 1},
	}},
	{MiltyID: 4, Type: SystemTypeHomeSystem, HomeOf: UniversitiesOfJolNar, Planets: []Planet{
		{ID: "jol", Name: "Jol", Resources: 1, Influence: 2},
		{ID: "nar", Name: "Nar", Resources: 1, Influence: 1},
	}},
	{MiltyID: 17, Type: SystemTypeHomeSystem, HomeOf: GhostsOfCreuss, Wormhole: "delta", Planets: []Planet{
		{ID: "creuss", Name: "Creuss", Resources: 2, Influence: 0},
	}},
	{MiltyID: 51, Type: SystemTypeHomeSystem, HomeOf: GhostsOfCreuss, Planets: nil},
	{MiltyID: 82, Type: SystemTypeNormal, Wormhole: "delta", Planets: nil},
	{MiltyID: 20, Type: SystemTypeNormal, Wormhole: "alpha", Planets: []Planet{
		{ID: "quinarra", Name: "Quinarra", Resources: 3, Influence: 1, Traits: []PlanetTrait{TraitIndustrial}},
	}},
	{MiltyID: 26, Type: SystemTypeNormal, Planets: []Planet{
		{ID: "mordai_ii", Name: "Mordai II", Resources: 4, Influence: 0, Traits: []PlanetTrait{TraitHazardous}},
	}},
	{MiltyID: 29, Type: SystemTypeNormal, Planets: []Planet{
		{ID: "mellon", Name: "Mellon", Resources: 0, Influence: 2, Traits: []PlanetTrait{TraitCultural}},
		{ID: "zohbat", Name: "Zohbat", Resources: 3, Influence: 1, Traits: []PlanetTrait{TraitHazardous}},
	}},
}

var (
	systemByMiltyID map[MiltyID]System
	planetToSystem  map[PlanetID]MiltyID
)

// initSystems builds the memoized lookup maps and panics if a planet is
// listed in more than one system — that is a reference-catalog bug, not a
// recoverable runtime condition.
func initSystems() {
	systemByMiltyID = make(map[MiltyID]System, len(systems))
	planetToSystem = make(map[PlanetID]MiltyID)
	for _, sys := range systems {
		systemByMiltyID[sys.MiltyID] = sys
		for _, p := range sys.Planets {
			if prev, exists := planetToSystem[p.ID]; exists {
				panic("catalog bug: planet " + string(p.ID) + " appears in systems " +
					itoa(uint32(prev)) + " and " + itoa(uint32(sys.MiltyID)))
			}
			planetToSystem[p.ID] = sys.MiltyID
		}
	}
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// LookupSystem returns the catalog system for a milty id.
func LookupSystem(id MiltyID) (System, bool) {
	s, ok := systemByMiltyID[id]
	return s, ok
}

// HomeSystem returns the home system for a faction, if the catalog has one.
func HomeSystem(f Faction) (System, bool) {
	for _, sys := range systems {
		if sys.Type == SystemTypeHomeSystem && sys.HomeOf == f {
			return sys, true
		}
	}
	return System{}, false
}

// PlanetSystem returns the milty id of the system a planet belongs to.
func PlanetSystem(id PlanetID) (MiltyID, bool) {
	m, ok := planetToSystem[id]
	return m, ok
}
