package handler

import (
	"github.com/menagerie/server/internal/core/event"
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
	"github.com/menagerie/server/internal/world"
)

// BroadcastSpawn sends S_SPAWN for a creation to every ready session except
// the one that requested it; the creator already got S_CREATED in reply.
// Fire-and-forget: slow sessions are dropped by FlushOutput, never waited on.
func BroadcastSpawn(ws *world.State, ev event.EntityCreated) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SPAWN)
	w.WriteQ(ev.ID)
	w.WriteS(ev.Name)
	w.WriteQ(ev.DNA)
	data := w.Bytes()

	ws.ReadySessions(func(sess *net.Session) {
		if sess.ID == ev.Origin {
			return
		}
		sess.Send(data)
	})
}
