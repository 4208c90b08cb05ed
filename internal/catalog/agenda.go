package catalog

// AgendaID identifies an agenda card.
type AgendaID string

// AgendaKind distinguishes laws (persist once passed) from directives
// (resolved once and discarded).
type AgendaKind string

const (
	AgendaKindLaw       AgendaKind = "law"
	AgendaKindDirective AgendaKind = "directive"
)

// AgendaElectKind describes what kind of candidate a vote elects among.
type AgendaElectKind string

const (
	ElectForOrAgainst     AgendaElectKind = "for_or_against"
	ElectPlayer           AgendaElectKind = "player"
	ElectStrategyCard     AgendaElectKind = "strategy_card"
	ElectLaw              AgendaElectKind = "law"
	ElectSecretObjective  AgendaElectKind = "secret_objective"
	ElectPlanet           AgendaElectKind = "planet"
	ElectPlanetWithTrait  AgendaElectKind = "planet_with_trait"
	ElectCulturalPlanet   AgendaElectKind = "cultural_planet"
	ElectHazardousPlanet  AgendaElectKind = "hazardous_planet"
	ElectIndustrialPlanet AgendaElectKind = "industrial_planet"
)

// Agenda is a single agenda card in the catalog.
type Agenda struct {
	ID   AgendaID
	Name string
	Kind AgendaKind
	Elect AgendaElectKind
}

var agendas = []Agenda{
	{ID: "anti_intellectual_revolution", Name: "Anti-Intellectual Revolution", Kind: AgendaKindDirective, Elect: ElectForOrAgainst},
	{ID: "classified_document_leaks", Name: "Classified Document Leaks", Kind: AgendaKindDirective, Elect: ElectSecretObjective},
	{ID: "committee_formation", Name: "Committee Formation", Kind: AgendaKindLaw, Elect: ElectPlayer},
	{ID: "miscount_disclosed", Name: "Miscount Disclosed", Kind: AgendaKindDirective, Elect: ElectStrategyCard},
	{ID: "archived_secret", Name: "Archived Secret", Kind: AgendaKindDirective, Elect: ElectCulturalPlanet},
	{ID: "holy_planet_of_ixth", Name: "Holy Planet of Ixth", Kind: AgendaKindLaw, Elect: ElectPlanet},
	{ID: "terraforming_initiative", Name: "Terraforming Initiative", Kind: AgendaKindLaw, Elect: ElectHazardousPlanet},
	{ID: "economic_equality", Name: "Economic Equality", Kind: AgendaKindDirective, Elect: ElectForOrAgainst},
	{ID: "articles_of_war", Name: "Articles of War", Kind: AgendaKindLaw, Elect: ElectForOrAgainst},
	{ID: "repeal_law", Name: "Repeal Law", Kind: AgendaKindDirective, Elect: ElectLaw},
	{ID: "colonial_redistribution", Name: "Colonial Redistribution", Kind: AgendaKindDirective, Elect: ElectPlanetWithTrait},
}

var agendaByID map[AgendaID]Agenda

func initAgendas() {
	agendaByID = make(map[AgendaID]Agenda, len(agendas))
	for _, a := range agendas {
		agendaByID[a.ID] = a
	}
}

// LookupAgenda returns an agenda's catalog entry.
func LookupAgenda(id AgendaID) (Agenda, bool) {
	a, ok := agendaByID[id]
	return a, ok
}
