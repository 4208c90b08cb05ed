package catalog

// PlanetAttachmentID identifies a planet attachment card (exploration
// frontier finds, Nekro's Mask of the Onceruling, Terraform action cards,
// and similar cards that stick to a planet permanently once played).
type PlanetAttachmentID string

const (
	AttachmentTerraform       PlanetAttachmentID = "terraform"
	AttachmentDemilitarizedZone PlanetAttachmentID = "demilitarized_zone"
	AttachmentNanoForge       PlanetAttachmentID = "nano_forge"
	AttachmentMiningWorld     PlanetAttachmentID = "mining_world"
)

// PlanetAttachment is a card that permanently modifies a planet's
// resources/influence/traits once attached.
type PlanetAttachment struct {
	ID                  PlanetAttachmentID
	Name                string
	ResourceModifier    int
	InfluenceModifier   int
	AddsTrait           PlanetTrait
}

var planetAttachments = []PlanetAttachment{
	{ID: AttachmentTerraform, Name: "Terraform", ResourceModifier: 1, InfluenceModifier: 1},
	{ID: AttachmentDemilitarizedZone, Name: "Demilitarized Zone"},
	{ID: AttachmentNanoForge, Name: "Nano-Forge", ResourceModifier: 2, InfluenceModifier: 2},
	{ID: AttachmentMiningWorld, Name: "Mining World", ResourceModifier: 1},
}

var planetAttachmentByID map[PlanetAttachmentID]PlanetAttachment

func initPlanetAttachments() {
	planetAttachmentByID = make(map[PlanetAttachmentID]PlanetAttachment, len(planetAttachments))
	for _, a := range planetAttachments {
		planetAttachmentByID[a.ID] = a
	}
}

// LookupPlanetAttachment returns a planet attachment's catalog entry.
func LookupPlanetAttachment(id PlanetAttachmentID) (PlanetAttachment, bool) {
	a, ok := planetAttachmentByID[id]
	return a, ok
}
