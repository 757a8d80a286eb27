// Package avatar holds the fixed catalog of player identity tokens.
package avatar

import (
	"math/rand"
	"sync"
	"time"

	"quizlive/internal/domain"
)

// Catalog is the full set of selectable avatars. Entries are constants; a
// player's avatar is fixed at join time and never changes for the session.
var Catalog = []domain.Avatar{
	{ID: "moses", Name: "Moses", Emoji: "👨‍🦳", Color: "from-blue-500 to-indigo-600", Description: "The Liberator"},
	{ID: "david", Name: "David", Emoji: "👑", Color: "from-yellow-500 to-orange-600", Description: "The Psalmist King"},
	{ID: "mary", Name: "Mary", Emoji: "👸", Color: "from-pink-500 to-rose-600", Description: "The Mother of Jesus"},
	{ID: "noah", Name: "Noah", Emoji: "🚢", Color: "from-green-500 to-teal-600", Description: "The Ark Builder"},
	{ID: "abraham", Name: "Abraham", Emoji: "👴", Color: "from-purple-500 to-violet-600", Description: "The Father of Faith"},
	{ID: "esther", Name: "Esther", Emoji: "👸🏽", Color: "from-red-500 to-pink-600", Description: "The Brave Queen"},
	{ID: "solomon", Name: "Solomon", Emoji: "👨‍⚖️", Color: "from-amber-500 to-yellow-600", Description: "The Wise King"},
	{ID: "daniel", Name: "Daniel", Emoji: "🦁", Color: "from-orange-500 to-red-600", Description: "The Fearless Prophet"},
	{ID: "ruth", Name: "Ruth", Emoji: "🌾", Color: "from-emerald-500 to-green-600", Description: "The Loyal One"},
	{ID: "joshua", Name: "Joshua", Emoji: "⚔️", Color: "from-slate-500 to-gray-600", Description: "The Warrior"},
	{ID: "deborah", Name: "Deborah", Emoji: "👩‍⚖️", Color: "from-cyan-500 to-blue-600", Description: "The Judge"},
	{ID: "elijah", Name: "Elijah", Emoji: "🔥", Color: "from-red-600 to-orange-700", Description: "The Prophet of Fire"},
}

var (
	mu  sync.Mutex
	rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// PickRandom returns a uniformly random catalog entry.
func PickRandom() domain.Avatar {
	mu.Lock()
	defer mu.Unlock()
	return Catalog[rnd.Intn(len(Catalog))]
}

// PickRandomFrom draws from the catalog using the supplied source, for
// deterministic selection in tests.
func PickRandomFrom(r *rand.Rand) domain.Avatar {
	return Catalog[r.Intn(len(Catalog))]
}
