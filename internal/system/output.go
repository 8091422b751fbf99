package system

import (
	"time"

	coresys "github.com/menagerie/server/internal/core/system"
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/world"
)

// OutputSystem flushes every session's buffered packets to its write
// queue. Phase 3 (Output).
type OutputSystem struct {
	world *world.State
}

func NewOutputSystem(ws *world.State) *OutputSystem {
	return &OutputSystem{world: ws}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.world.AllSessions(func(sess *net.Session) {
		if !sess.IsClosed() {
			sess.FlushOutput()
		}
	})
}
