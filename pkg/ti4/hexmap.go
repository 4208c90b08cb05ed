// Package ti4 implements the event-sourced game-state engine: the map,
// phase state machine, event taxonomy, and the pure reducer that applies
// one event to one state. The package's only third-party dependency is
// zerolog, which game.go uses for logging; every other external effect
// (persistence, broadcast, randomness source) is injected by a caller.
package ti4

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ti-assistant/server/internal/catalog"
)

// ringStartingIndices gives the first tile index of each ring, ring 0 being
// Mecatol Rex alone at index 0.
var ringStartingIndices = [7]int{0, 1, 7, 19, 37, 61, 91}

// Coordinate is a tile's position within the hex map.
type Coordinate struct {
	Ring     int
	Position int
	Rotation int
}

// TileKind distinguishes standard system tiles from hyperlane tiles and
// empty (no-tile) slots.
type TileKind int

const (
	TileEmpty TileKind = iota
	TileStandard
	TileHyperlane
)

// Tile is one hex in the map, either inside the drafted galaxy or appended
// outside it (the wormhole nexus, and conditionally the Creuss home system).
type Tile struct {
	Kind          TileKind
	MiltyID       catalog.MiltyID
	Variant       int
	Rotation      int
	Coordinate    Coordinate
	OutsideGalaxy bool
}

// HexMap is the parsed galaxy: the ordered list of placed tiles and the
// number of rings the draft covered.
type HexMap struct {
	Tiles    []Tile
	RingCount int
}

// ParseMiltyString parses a space-separated milty tile-draft string into a
// HexMap. Mecatol Rex is always prepended at the center. Tokens of "0" are
// empty slots and are skipped when building Tiles but still consume a
// coordinate slot. The wormhole nexus tile is
// always appended outside the galaxy; the Creuss home system is appended
// outside the galaxy only if a Creuss wormhole token ("17") appeared
// anywhere in the input.
func ParseMiltyString(s string) (HexMap, error) {
	tokens := strings.Fields(s)
	tiles := make([]Tile, 0, len(tokens)+2)

	mecatol, err := parseMiltyToken(fmt.Sprintf("%d", catalog.MecatolRexID))
	if err != nil {
		return HexMap{}, err
	}
	tiles = append(tiles, Tile{
		Kind:       TileStandard,
		MiltyID:    mecatol.id,
		Variant:    mecatol.variant,
		Coordinate: Coordinate{Ring: 0, Position: 0},
	})

	sawCreussWormhole := false
	ring := 0
	ringIdx := 0
	for i, tok := range tokens {
		parsed, err := parseMiltyToken(tok)
		if err != nil {
			return HexMap{}, fmt.Errorf("ti4: tile %d: %w", i, err)
		}
		if parsed.id == catalog.CreussWormholeID {
			sawCreussWormhole = true
		}

		pos := i + 1 // account for Mecatol Rex occupying index 0
		for ring+1 < len(ringStartingIndices) && pos >= ringStartingIndices[ring+1] {
			ring++
		}
		ringIdx = pos - ringStartingIndices[ring]

		if parsed.kind == TileEmpty {
			continue
		}
		tiles = append(tiles, Tile{
			Kind:       parsed.kind,
			MiltyID:    parsed.id,
			Variant:    parsed.variant,
			Rotation:   parsed.rotation,
			Coordinate: Coordinate{Ring: ring, Position: ringIdx, Rotation: parsed.rotation},
		})
	}

	tiles = append(tiles, Tile{
		Kind:          TileStandard,
		MiltyID:       catalog.WormholeNexusID,
		OutsideGalaxy: true,
	})
	if sawCreussWormhole {
		tiles = append(tiles, Tile{
			Kind:          TileStandard,
			MiltyID:       catalog.CreussHomeID,
			OutsideGalaxy: true,
		})
	}

	return HexMap{Tiles: tiles, RingCount: ring}, nil
}

type miltyToken struct {
	kind     TileKind
	id       catalog.MiltyID
	variant  int
	rotation int
}

// parseMiltyToken parses one whitespace-delimited token of a milty string:
// "0" for empty, "NN" for a standard system, or "NN" followed by a letter
// and a rotation digit (e.g. "83A2") for hyperlane tiles. The digits after
// the letter become the rotation; the letter itself is not recorded, so a
// hyperlane tile's Variant is always 0.
func parseMiltyToken(tok string) (miltyToken, error) {
	if tok == "0" {
		return miltyToken{kind: TileEmpty}, nil
	}
	// Hyperlane tokens carry a letter + rotation digit suffix, e.g. "83A2".
	if idx := strings.IndexFunc(tok, func(r rune) bool { return r < '0' || r > '9' }); idx > 0 {
		numPart := tok[:idx]
		suffix := tok[idx:]
		n, err := strconv.Atoi(numPart)
		if err != nil {
			return miltyToken{}, fmt.Errorf("parse hyperlane id %q: %w", tok, err)
		}
		variant := 0
		rotation := 0
		if len(suffix) >= 2 {
			if v, err := strconv.Atoi(suffix[1:]); err == nil {
				rotation = v
			}
		}
		return miltyToken{kind: TileHyperlane, id: catalog.MiltyID(n), variant: variant, rotation: rotation}, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return miltyToken{}, fmt.Errorf("parse system id %q: %w", tok, err)
	}
	return miltyToken{kind: TileStandard, id: catalog.MiltyID(n)}, nil
}
