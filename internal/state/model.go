package state

import (
	"MandalaBoard/internal/mandala"
)

// Stroke is the replicated form of one drawing session: the accepted
// pointer positions and the palette the fill used. Replaying it on another
// board produces the same mandala.
type Stroke struct {
	ID      string          `json:"id"`
	OwnerID string          `json:"owner_id"`
	Points  []mandala.Point `json:"points"`
	Palette int             `json:"palette"`
	Lamport uint64          `json:"lamport"`
}

// newer reports whether s should replace cur: higher Lamport time wins,
// ties go to the larger ID.
func (s Stroke) newer(cur Stroke) bool {
	if s.Lamport != cur.Lamport {
		return s.Lamport > cur.Lamport
	}
	return s.ID > cur.ID
}
