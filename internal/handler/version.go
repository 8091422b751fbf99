package handler

import (
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleVersion processes C_VERSION. Responds with S_VERSION and
// transitions the session to Ready.
func HandleVersion(sess *net.Session, r *packet.Reader, deps *Deps) {
	clientVersion := r.ReadH()
	deps.Log.Debug("client handshake",
		zap.Uint64("session", sess.ID),
		zap.Uint16("client_version", clientVersion),
	)

	cfg := deps.Config
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_VERSION)
	w.WriteH(packet.ProtocolVersion)
	w.WriteC(byte(cfg.Server.ID))
	w.WriteS(cfg.Server.Name)
	w.WriteQ(uint64(cfg.Server.StartTime))
	w.WriteC(byte(deps.Registry.Digits()))

	sess.Send(w.Bytes())
	sess.SetState(packet.StateReady)
}
