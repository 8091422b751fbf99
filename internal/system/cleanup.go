package system

import (
	"time"

	"github.com/menagerie/server/internal/core/event"
	coresys "github.com/menagerie/server/internal/core/system"
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/world"
	"go.uber.org/zap"
)

// CleanupSystem reaps closed sessions at tick end. Phase 4 (Cleanup).
type CleanupSystem struct {
	netServer *net.Server
	world     *world.State
	bus       *event.Bus
	log       *zap.Logger
}

func NewCleanupSystem(netServer *net.Server, ws *world.State, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{
		netServer: netServer,
		world:     ws,
		bus:       bus,
		log:       log,
	}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	// Drain explicit dead notifications first, then sweep for sessions that
	// closed without one.
	for {
		select {
		case id := <-s.netServer.DeadSessions():
			s.remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	var dead []uint64
	s.world.AllSessions(func(sess *net.Session) {
		if sess.IsClosed() {
			dead = append(dead, sess.ID)
		}
	})
	for _, id := range dead {
		s.remove(id)
	}
}

func (s *CleanupSystem) remove(id uint64) {
	sess := s.world.GetSession(id)
	if sess == nil {
		return
	}
	sess.Close()
	s.world.RemoveSession(id)
	event.Emit(s.bus, event.SessionClosed{SessionID: id})
	s.log.Info("session removed", zap.Uint64("session", id))
}
