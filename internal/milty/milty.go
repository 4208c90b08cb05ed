// Package milty imports a completed draft from the external milty.shenanigans.be
// service and turns it into the data a ti4.ImportFromMilty event needs.
package milty

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"sort"

	"github.com/ti-assistant/server/internal/catalog"
	"github.com/ti-assistant/server/pkg/ti4"
)

const baseURL = "https://milty.shenanigans.be/api/data"

// Importer fetches and decodes a milty draft.
type Importer struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewImporter returns an Importer using http.DefaultClient.
func NewImporter() *Importer {
	return &Importer{HTTPClient: http.DefaultClient, BaseURL: baseURL}
}

type draftResponse struct {
	Success bool       `json:"success"`
	Draft   draftState `json:"draft"`
}

type draftState struct {
	Done    bool                    `json:"done"`
	Config  draftConfig             `json:"config"`
	Players map[string]draftPlayer  `json:"players"`
	Slices  string                  `json:"ttsString"`
	Name    string                  `json:"gameName"`
}

type draftConfig struct {
	IncludePoK      bool `json:"pok"`
	IncludeTEFactions bool `json:"includeTeFactions"`
	IncludeTETiles  bool `json:"includeTeTiles"`
	DiscordantStars bool `json:"discordantStars"`
}

type draftPlayer struct {
	Faction  string `json:"faction"`
	Position string `json:"position"`
}

// Result is the resolved import, ready to embed in a ti4.ImportFromMilty
// event. The reducer itself stays I/O-free — all network access and
// external validation happens here, before the event is ever constructed.
type Result struct {
	GameName   string
	Expansions catalog.Expansions
	Players    []ti4.MiltyPlayer
	TTSString  string
}

// Import fetches draft miltyID and validates it into a Result. It errors
// if the draft is not done, if Discordant Stars content is enabled
// (unsupported), if any drafted faction's expansion isn't enabled, or if
// player names or factions collide.
func (imp *Importer) Import(ctx context.Context, milityID string) (Result, error) {
	url := imp.BaseURL
	if url == "" {
		url = baseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?draft=%s", url, milityID), nil)
	if err != nil {
		return Result{}, fmt.Errorf("milty: build request: %w", err)
	}
	client := imp.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("milty: fetch draft %s: %w", milityID, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("milty: read response: %w", err)
	}
	var decoded draftResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Result{}, fmt.Errorf("milty: decode response: %w", err)
	}
	if !decoded.Success {
		return Result{}, fmt.Errorf("milty: draft %s: service reported failure", milityID)
	}
	if !decoded.Draft.Done {
		return Result{}, fmt.Errorf("milty: draft %s is not finished", milityID)
	}
	if decoded.Draft.Config.DiscordantStars {
		return Result{}, fmt.Errorf("milty: draft %s uses Discordant Stars, which is not supported", milityID)
	}

	expansions := catalog.Expansions{
		ProphecyOfKings: decoded.Draft.Config.IncludePoK,
		Codex1:          true,
		Codex2:          true,
		Codex3:          true,
	}

	names := make(map[string]bool, len(decoded.Draft.Players))
	factions := make(map[string]bool, len(decoded.Draft.Players))
	players := make([]ti4.MiltyPlayer, 0, len(decoded.Draft.Players))
	for name, dp := range decoded.Draft.Players {
		decodedName := html.UnescapeString(name)
		if names[decodedName] {
			return Result{}, fmt.Errorf("milty: duplicate player name %q", decodedName)
		}
		names[decodedName] = true
		if factions[dp.Faction] {
			return Result{}, fmt.Errorf("milty: duplicate faction %q", dp.Faction)
		}
		factions[dp.Faction] = true

		faction := catalog.Faction(dp.Faction)
		if !expansions.Enabled(faction.Expansion()) {
			return Result{}, fmt.Errorf("milty: faction %q requires an expansion that is not enabled", dp.Faction)
		}
		players = append(players, ti4.MiltyPlayer{
			Name:    ti4.PlayerId(decodedName),
			Faction: faction,
			Order:   parseOrder(dp.Position),
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Order < players[j].Order })

	return Result{
		GameName:   html.UnescapeString(decoded.Draft.Name),
		Expansions: expansions,
		Players:    players,
		TTSString:  decoded.Draft.Slices,
	}, nil
}

func parseOrder(position string) int {
	n := 0
	for _, r := range position {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
