// Package catalog holds the static reference data for a game: factions,
// colors, the system/planet map, technologies, strategy cards, objectives,
// agendas and relics. It never changes once Init has run and carries no
// per-game state.
package catalog

import "sync"

var initOnce sync.Once

// Init builds every memoized lookup table. It is safe to call more than
// once; only the first call does work. It panics if the static data
// violates a catalog invariant (e.g. a planet listed in two systems) —
// that is a programming error in this package, not a runtime condition a
// caller can recover from.
func Init() {
	initOnce.Do(func() {
		initSystems()
		initTechs()
		initObjectives()
		initAgendas()
		initRelics()
		initPlanetAttachments()
	})
}
