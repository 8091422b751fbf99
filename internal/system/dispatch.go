package system

import (
	"time"

	"github.com/menagerie/server/internal/core/event"
	coresys "github.com/menagerie/server/internal/core/system"
)

// DispatchSystem rotates the event bus and delivers last tick's events to
// their subscribers (broadcast, journal queue, Lua hooks). Phase 1 (Update).
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *DispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
