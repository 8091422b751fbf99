package handler

import (
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
)

// HandleGet processes C_GET. Format: [Q id]. Replies with S_ENTITY carrying
// the stored record plus its decoded traits, or S_ERROR for an unknown id.
func HandleGet(sess *net.Session, r *packet.Reader, deps *Deps) {
	id := r.ReadQ()

	entity, ok := deps.Registry.Get(id)
	if !ok {
		sendError(sess, packet.C_OPCODE_GET, "no such entity")
		return
	}

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ENTITY)
	w.WriteQ(id)
	w.WriteS(entity.Name)
	w.WriteQ(entity.DNA)

	traits := deps.Traits.Decode(entity.DNA)
	w.WriteC(byte(len(traits)))
	for _, tv := range traits {
		w.WriteS(tv.Name)
		w.WriteS(tv.Variant)
	}
	sess.Send(w.Bytes())
}

// HandleCount processes C_COUNT. Replies with the registry length.
func HandleCount(sess *net.Session, r *packet.Reader, deps *Deps) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_COUNT)
	w.WriteQ(uint64(deps.Registry.Len()))
	sess.Send(w.Bytes())
}

func sendError(sess *net.Session, reqOpcode byte, msg string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ERROR)
	w.WriteC(reqOpcode)
	w.WriteS(msg)
	sess.Send(w.Bytes())
}
