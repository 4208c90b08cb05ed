package catalog

// ObjectiveID identifies a public objective card.
type ObjectiveID string

// SecretObjectiveID identifies a secret objective card.
type SecretObjectiveID string

// ObjectivePhase is the stage of the game an objective is drawn from.
type ObjectivePhase int

const (
	StageI ObjectivePhase = iota
	StageII
)

// Objective is a public objective: a score condition worth a fixed number
// of victory points.
type Objective struct {
	ID     ObjectiveID
	Name   string
	Stage  ObjectivePhase
	Points int
}

// SecretObjective is a secret objective, always worth one point.
type SecretObjective struct {
	ID   SecretObjectiveID
	Name string
}

var objectives = []Objective{
	{ID: "corner_the_market", Name: "Corner the Market", Stage: StageI, Points: 1},
	{ID: "diversify_research", Name: "Diversify Research", Stage: StageI, Points: 1},
	{ID: "negotiate_trade_routes", Name: "Negotiate Trade Routes", Stage: StageI, Points: 1},
	{ID: "develop_weaponry", Name: "Develop Weaponry", Stage: StageI, Points: 1},
	{ID: "intimidate_council", Name: "Intimidate Council", Stage: StageI, Points: 1},
	{ID: "erect_a_monument", Name: "Erect a Monument", Stage: StageII, Points: 2},
	{ID: "form_a_spy_network", Name: "Form a Spy Network", Stage: StageII, Points: 2},
}

var secretObjectives = []SecretObjective{
	{ID: "make_an_example_of_this_world", Name: "Make an Example of This World"},
	{ID: "sway_the_council", Name: "Sway the Council"},
	{ID: "learn_the_secrets_of_the_cosmos", Name: "Learn the Secrets of the Cosmos"},
	{ID: "destroy_their_greatest_ship", Name: "Destroy Their Greatest Ship"},
}

var (
	objectiveByID map[ObjectiveID]Objective
	secretByID    map[SecretObjectiveID]SecretObjective
)

func initObjectives() {
	objectiveByID = make(map[ObjectiveID]Objective, len(objectives))
	for _, o := range objectives {
		objectiveByID[o.ID] = o
	}
	secretByID = make(map[SecretObjectiveID]SecretObjective, len(secretObjectives))
	for _, s := range secretObjectives {
		secretByID[s.ID] = s
	}
}

// LookupObjective returns a public objective's catalog entry.
func LookupObjective(id ObjectiveID) (Objective, bool) {
	o, ok := objectiveByID[id]
	return o, ok
}

// LookupSecretObjective returns a secret objective's catalog entry.
func LookupSecretObjective(id SecretObjectiveID) (SecretObjective, bool) {
	s, ok := secretByID[id]
	return s, ok
}

// AllSecretObjectives returns every secret objective in the catalog.
func AllSecretObjectives() []SecretObjective {
	return append([]SecretObjective(nil), secretObjectives...)
}
