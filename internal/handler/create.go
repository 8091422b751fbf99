package handler

import (
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleCreate processes C_CREATE, the only externally callable creation
// entry point. Format: [S name]. Any text is accepted, empty and duplicate
// names included; the registry derives the DNA from the name.
func HandleCreate(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadS()

	id := deps.Registry.CreateRandomEntityFrom(name, sess.ID)
	entity, _ := deps.Registry.Get(id)

	deps.Log.Info("entity created",
		zap.Uint64("id", id),
		zap.String("name", name),
		zap.Uint64("dna", entity.DNA),
		zap.Uint64("session", sess.ID),
	)

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CREATED)
	w.WriteQ(id)
	w.WriteS(entity.Name)
	w.WriteQ(entity.DNA)
	sess.Send(w.Bytes())
}
