package ti4

import "github.com/ti-assistant/server/internal/catalog"

// PlayerId is a free-text display name chosen at game creation; it is not
// an account identifier and carries no uniqueness guarantee outside a
// single game.
type PlayerId string

// Player is one seat at the table.
type Player struct {
	ID           PlayerId          `json:"id"`
	Faction      catalog.Faction   `json:"faction"`
	Color        catalog.Color     `json:"color"`
	IsBot        bool              `json:"isBot"`
	Eliminated   bool              `json:"eliminated"`
	Technologies []catalog.TechID `json:"technologies"`

	// Planets maps each planet the player controls to the attachments
	// stuck to it. A planet with no attachments is still present as a key
	// with a nil/empty slice, so control can be distinguished from "never
	// controlled".
	Planets map[catalog.PlanetID][]catalog.PlanetAttachmentID `json:"planets,omitempty"`
	Relics  []catalog.RelicID                                 `json:"relics,omitempty"`
}

// ControlsPlanet reports whether the player currently controls the planet.
func (p Player) ControlsPlanet(id catalog.PlanetID) bool {
	_, ok := p.Planets[id]
	return ok
}

// HasRelic reports whether the player currently holds the given relic.
func (p Player) HasRelic(id catalog.RelicID) bool {
	for _, r := range p.Relics {
		if r == id {
			return true
		}
	}
	return false
}

// HasTech reports whether the player has researched the given technology.
func (p Player) HasTech(id catalog.TechID) bool {
	for _, t := range p.Technologies {
		if t == id {
			return true
		}
	}
	return false
}
