package ti4

import "testing"

func TestParseMiltyStringPrependsMecatolRex(t *testing.T) {
	hm, err := ParseMiltyString("1 2 3 4 5 6")
	if err != nil {
		t.Fatalf("ParseMiltyString: %v", err)
	}
	if len(hm.Tiles) == 0 || hm.Tiles[0].MiltyID != 18 {
		t.Fatalf("expected Mecatol Rex (18) first, got %+v", hm.Tiles[0])
	}
}

func TestParseMiltyStringAppendsWormholeNexus(t *testing.T) {
	hm, err := ParseMiltyString("1 2 3")
	if err != nil {
		t.Fatalf("ParseMiltyString: %v", err)
	}
	found := false
	for _, tile := range hm.Tiles {
		if tile.MiltyID == 82 && tile.OutsideGalaxy {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected wormhole nexus tile (82) outside galaxy, got %+v", hm.Tiles)
	}
}

func TestParseMiltyStringAppendsCreussOnlyWhenWormholePresent(t *testing.T) {
	without, err := ParseMiltyString("1 2 3")
	if err != nil {
		t.Fatalf("ParseMiltyString: %v", err)
	}
	for _, tile := range without.Tiles {
		if tile.MiltyID == 51 {
			t.Fatalf("did not expect Creuss home system without a Creuss wormhole token")
		}
	}

	with, err := ParseMiltyString("1 17 3")
	if err != nil {
		t.Fatalf("ParseMiltyString: %v", err)
	}
	found := false
	for _, tile := range with.Tiles {
		if tile.MiltyID == 51 && tile.OutsideGalaxy {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Creuss home system outside galaxy when wormhole token present, got %+v", with.Tiles)
	}
}

func TestParseMiltyStringSkipsEmptyTokens(t *testing.T) {
	hm, err := ParseMiltyString("1 0 3")
	if err != nil {
		t.Fatalf("ParseMiltyString: %v", err)
	}
	for _, tile := range hm.Tiles {
		if tile.Kind == TileEmpty {
			t.Fatalf("empty tokens must not produce a tile entry")
		}
	}
}
