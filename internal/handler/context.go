package handler

import (
	"github.com/menagerie/server/internal/config"
	"github.com/menagerie/server/internal/data"
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
	"github.com/menagerie/server/internal/registry"
	"github.com/menagerie/server/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Registry *registry.Registry
	Traits   *data.TraitTable
	Config   *config.Config
	Log      *zap.Logger
	World    *world.State
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Handshake phase
	reg.Register(packet.C_OPCODE_VERSION,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, r *packet.Reader) {
			HandleVersion(sess.(*net.Session), r, deps)
		},
	)

	// Ready phase
	reg.Register(packet.C_OPCODE_CREATE,
		[]packet.SessionState{packet.StateReady},
		func(sess any, r *packet.Reader) {
			HandleCreate(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_GET,
		[]packet.SessionState{packet.StateReady},
		func(sess any, r *packet.Reader) {
			HandleGet(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_COUNT,
		[]packet.SessionState{packet.StateReady},
		func(sess any, r *packet.Reader) {
			HandleCount(sess.(*net.Session), r, deps)
		},
	)
}
