package state

import (
	"sync"

	"MandalaBoard/internal/mandala"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StrokeLog decides which stroke a board shows. Only the current stroke is
// kept: every peer converges on the stroke with the highest Lamport time,
// so a board that hears an older or duplicate stroke ignores it.
type StrokeLog struct {
	siteID string
	clock  Clock
	log    *zap.Logger

	mu      sync.Mutex
	current Stroke
	has     bool
}

func NewStrokeLog(l *zap.Logger) *StrokeLog {
	if l == nil {
		l = zap.NewNop()
	}
	return &StrokeLog{siteID: uuid.NewString(), log: l}
}

// SiteID identifies this board instance.
func (sl *StrokeLog) SiteID() string { return sl.siteID }

// Local records a stroke drawn on this board and returns it ready to be
// broadcast.
func (sl *StrokeLog) Local(owner string, points []mandala.Point, palette int) Stroke {
	s := Stroke{
		ID:      uuid.NewString(),
		OwnerID: owner,
		Points:  points,
		Palette: palette,
		Lamport: sl.clock.Tick(),
	}
	sl.mu.Lock()
	sl.current, sl.has = s, true
	sl.mu.Unlock()
	sl.log.Debug("local stroke", zap.String("id", s.ID), zap.Uint64("lamport", s.Lamport), zap.Int("points", len(s.Points)))
	return s
}

// Accept merges a stroke heard from a peer. It returns true when the
// stroke replaces the current one and should be replayed.
func (sl *StrokeLog) Accept(s Stroke) bool {
	sl.clock.Update(s.Lamport)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.has && (s.ID == sl.current.ID || !s.newer(sl.current)) {
		sl.log.Debug("stale stroke ignored", zap.String("id", s.ID), zap.Uint64("lamport", s.Lamport))
		return false
	}
	sl.current, sl.has = s, true
	sl.log.Debug("remote stroke accepted", zap.String("id", s.ID), zap.String("owner", s.OwnerID), zap.Uint64("lamport", s.Lamport))
	return true
}

// Current returns the stroke on display, if any.
func (sl *StrokeLog) Current() (Stroke, bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.current, sl.has
}

// LocalReset forgets the current stroke and returns the Lamport time to
// broadcast with the reset.
func (sl *StrokeLog) LocalReset() uint64 {
	ts := sl.clock.Tick()
	sl.mu.Lock()
	sl.current, sl.has = Stroke{}, false
	sl.mu.Unlock()
	return ts
}

// AcceptReset applies a peer's reset unless the current stroke is newer
// than it.
func (sl *StrokeLog) AcceptReset(ts uint64) bool {
	sl.clock.Update(ts)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.has && sl.current.Lamport > ts {
		return false
	}
	sl.current, sl.has = Stroke{}, false
	return true
}
