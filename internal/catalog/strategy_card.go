package catalog

// StrategyCard is one of the eight strategy cards players select during the
// strategy phase; its CardNumber doubles as the initiative order.
type StrategyCard string

const (
	Leadership  StrategyCard = "leadership"
	Diplomacy   StrategyCard = "diplomacy"
	Politics    StrategyCard = "politics"
	Construction StrategyCard = "construction"
	Trade       StrategyCard = "trade"
	Warfare     StrategyCard = "warfare"
	Technology  StrategyCard = "technology"
	Imperial    StrategyCard = "imperial"
)

// AllStrategyCards lists the eight cards in initiative order.
var AllStrategyCards = []StrategyCard{
	Leadership, Diplomacy, Politics, Construction, Trade, Warfare, Technology, Imperial,
}

var cardNumbers = map[StrategyCard]int{
	Leadership: 1, Diplomacy: 2, Politics: 3, Construction: 4,
	Trade: 5, Warfare: 6, Technology: 7, Imperial: 8,
}

// CardNumber returns the card's printed number, which is also its
// initiative rank (lower resolves first).
func (c StrategyCard) CardNumber() int {
	return cardNumbers[c]
}
