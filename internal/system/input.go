package system

import (
	"time"

	"github.com/menagerie/server/internal/core/event"
	coresys "github.com/menagerie/server/internal/core/system"
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
	"github.com/menagerie/server/internal/world"
	"go.uber.org/zap"
)

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	netServer  *net.Server
	registry   *packet.Registry
	world      *world.State
	bus        *event.Bus
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(
	netServer *net.Server,
	registry *packet.Registry,
	ws *world.State,
	bus *event.Bus,
	maxPerTick int,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		netServer:  netServer,
		registry:   registry,
		world:      ws,
		bus:        bus,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.world.AddSession(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Drain packets from each session (up to maxPerTick per session).
	// Closed sessions are left for CleanupSystem at tick end.
	s.world.AllSessions(func(sess *net.Session) {
		if sess.IsClosed() {
			return
		}
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.log.Debug("packet dispatch error",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				return
			}
		}
	})
}
