package handler

import (
	stdnet "net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/menagerie/server/internal/config"
	"github.com/menagerie/server/internal/core/event"
	"github.com/menagerie/server/internal/data"
	gonet "github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
	"github.com/menagerie/server/internal/registry"
	"github.com/menagerie/server/internal/world"
	"go.uber.org/zap"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()

	reg, err := registry.New(registry.DefaultDigits, nil)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}

	yamlPath := filepath.Join(t.TempDir(), "trait_list.yaml")
	body := `
traits:
  - {slot: 0, name: head, variants: ["round", "square"]}
  - {slot: 1, name: eyes, variants: ["wide", "narrow", "beady"]}
`
	if err := os.WriteFile(yamlPath, []byte(body), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	traits, err := data.LoadTraitTable(yamlPath)
	if err != nil {
		t.Fatalf("LoadTraitTable: %v", err)
	}

	return &Deps{
		Registry: reg,
		Traits:   traits,
		Config: &config.Config{
			Server: config.ServerConfig{Name: "test", ID: 3, StartTime: 1700000000},
		},
		Log:   zap.NewNop(),
		World: world.NewState(),
	}
}

func newTestSession(t *testing.T, id uint64) *gonet.Session {
	t.Helper()
	client, server := stdnet.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return gonet.NewSession(server, id, 8, 8, time.Second, zap.NewNop())
}

// recvPacket flushes the session's out-buffer and returns the next packet.
func recvPacket(t *testing.T, sess *gonet.Session) *packet.Reader {
	t.Helper()
	sess.FlushOutput()
	select {
	case data := <-sess.OutQueue:
		return packet.NewReader(data)
	default:
		t.Fatal("no packet buffered")
		return nil
	}
}

func TestHandleVersion(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t, 1)

	w := packet.NewWriterWithOpcode(packet.C_OPCODE_VERSION)
	w.WriteH(packet.ProtocolVersion)
	HandleVersion(sess, packet.NewReader(w.Bytes()), deps)

	r := recvPacket(t, sess)
	if r.Opcode() != packet.S_OPCODE_VERSION {
		t.Fatalf("opcode = %#x", r.Opcode())
	}
	if v := r.ReadH(); v != packet.ProtocolVersion {
		t.Errorf("version = %d", v)
	}
	if id := r.ReadC(); id != 3 {
		t.Errorf("server id = %d", id)
	}
	if name := r.ReadS(); name != "test" {
		t.Errorf("server name = %q", name)
	}
	if start := r.ReadQ(); start != 1700000000 {
		t.Errorf("start time = %d", start)
	}
	if digits := r.ReadC(); digits != registry.DefaultDigits {
		t.Errorf("digits = %d", digits)
	}
	if sess.State() != packet.StateReady {
		t.Errorf("state = %s", sess.State())
	}
}

func TestHandleCreateRepliesWithStoredEntity(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t, 1)

	w := packet.NewWriterWithOpcode(packet.C_OPCODE_CREATE)
	w.WriteS("Alice")
	HandleCreate(sess, packet.NewReader(w.Bytes()), deps)

	r := recvPacket(t, sess)
	if r.Opcode() != packet.S_OPCODE_CREATED {
		t.Fatalf("opcode = %#x", r.Opcode())
	}
	if id := r.ReadQ(); id != 0 {
		t.Errorf("id = %d", id)
	}
	if name := r.ReadS(); name != "Alice" {
		t.Errorf("name = %q", name)
	}
	wantDNA := deps.Registry.DeriveAttribute("Alice")
	if dna := r.ReadQ(); dna != wantDNA {
		t.Errorf("dna = %d, want %d", dna, wantDNA)
	}
	if deps.Registry.Len() != 1 {
		t.Errorf("registry len = %d", deps.Registry.Len())
	}
}

func TestHandleCreateSequentialAndDuplicate(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t, 1)

	for want := uint64(0); want < 3; want++ {
		w := packet.NewWriterWithOpcode(packet.C_OPCODE_CREATE)
		w.WriteS("Alice") // duplicates allowed
		HandleCreate(sess, packet.NewReader(w.Bytes()), deps)
		r := recvPacket(t, sess)
		if id := r.ReadQ(); id != want {
			t.Fatalf("create %d returned id %d", want, id)
		}
	}
}

func TestHandleGet(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t, 1)
	id := deps.Registry.CreateRandomEntity("Bob")

	w := packet.NewWriterWithOpcode(packet.C_OPCODE_GET)
	w.WriteQ(id)
	HandleGet(sess, packet.NewReader(w.Bytes()), deps)

	r := recvPacket(t, sess)
	if r.Opcode() != packet.S_OPCODE_ENTITY {
		t.Fatalf("opcode = %#x", r.Opcode())
	}
	if got := r.ReadQ(); got != id {
		t.Errorf("id = %d", got)
	}
	if name := r.ReadS(); name != "Bob" {
		t.Errorf("name = %q", name)
	}
	dna := r.ReadQ()
	if want := deps.Registry.DeriveAttribute("Bob"); dna != want {
		t.Errorf("dna = %d, want %d", dna, want)
	}
	if n := r.ReadC(); n != 2 {
		t.Fatalf("trait count = %d", n)
	}
	// Trait slots decode from the stored dna.
	head := [2]string{r.ReadS(), r.ReadS()}
	if head[0] != "head" {
		t.Errorf("first trait = %q", head[0])
	}
}

func TestHandleGetUnknownID(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t, 1)

	w := packet.NewWriterWithOpcode(packet.C_OPCODE_GET)
	w.WriteQ(99)
	HandleGet(sess, packet.NewReader(w.Bytes()), deps)

	r := recvPacket(t, sess)
	if r.Opcode() != packet.S_OPCODE_ERROR {
		t.Fatalf("opcode = %#x", r.Opcode())
	}
	if req := r.ReadC(); req != packet.C_OPCODE_GET {
		t.Errorf("request opcode = %#x", req)
	}
}

func TestHandleCount(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t, 1)
	deps.Registry.CreateRandomEntity("a")
	deps.Registry.CreateRandomEntity("b")

	HandleCount(sess, packet.NewReader([]byte{packet.C_OPCODE_COUNT}), deps)

	r := recvPacket(t, sess)
	if r.Opcode() != packet.S_OPCODE_COUNT {
		t.Fatalf("opcode = %#x", r.Opcode())
	}
	if n := r.ReadQ(); n != 2 {
		t.Errorf("count = %d", n)
	}
}

// TestCreatorReceivesOnlyCreatedReply wires the observer, bus, and broadcast
// together the way the server boot does and checks that a creation reaches
// the creator as S_CREATED alone while other ready sessions get S_SPAWN.
func TestCreatorReceivesOnlyCreatedReply(t *testing.T) {
	deps := newTestDeps(t)

	bus := event.NewBus()
	reg, err := registry.New(registry.DefaultDigits, registry.ObserverFunc(func(c registry.Creation) {
		event.Emit(bus, event.EntityCreated{ID: c.ID, Name: c.Name, DNA: c.DNA, Origin: c.Origin})
	}))
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	deps.Registry = reg
	event.Subscribe(bus, func(ev event.EntityCreated) {
		BroadcastSpawn(deps.World, ev)
	})

	creator := newTestSession(t, 1)
	creator.SetState(packet.StateReady)
	other := newTestSession(t, 2)
	other.SetState(packet.StateReady)
	deps.World.AddSession(creator)
	deps.World.AddSession(other)

	w := packet.NewWriterWithOpcode(packet.C_OPCODE_CREATE)
	w.WriteS("Alice")
	HandleCreate(creator, packet.NewReader(w.Bytes()), deps)

	bus.SwapBuffers()
	bus.DispatchAll()

	r := recvPacket(t, creator)
	if r.Opcode() != packet.S_OPCODE_CREATED {
		t.Fatalf("creator got opcode %#x, want S_CREATED", r.Opcode())
	}
	select {
	case data := <-creator.OutQueue:
		t.Fatalf("creator received a second packet, opcode %#x", data[0])
	default:
	}

	r = recvPacket(t, other)
	if r.Opcode() != packet.S_OPCODE_SPAWN {
		t.Fatalf("other session got opcode %#x, want S_SPAWN", r.Opcode())
	}
	if id := r.ReadQ(); id != 0 {
		t.Errorf("spawn id = %d", id)
	}
	if name := r.ReadS(); name != "Alice" {
		t.Errorf("spawn name = %q", name)
	}
}

func TestBroadcastSpawnReachesOnlyReadySessions(t *testing.T) {
	deps := newTestDeps(t)
	ready := newTestSession(t, 1)
	ready.SetState(packet.StateReady)
	pending := newTestSession(t, 2)
	deps.World.AddSession(ready)
	deps.World.AddSession(pending)

	BroadcastSpawn(deps.World, event.EntityCreated{ID: 5, Name: "Eve", DNA: 77})

	r := recvPacket(t, ready)
	if r.Opcode() != packet.S_OPCODE_SPAWN {
		t.Fatalf("opcode = %#x", r.Opcode())
	}
	if id := r.ReadQ(); id != 5 {
		t.Errorf("id = %d", id)
	}
	if name := r.ReadS(); name != "Eve" {
		t.Errorf("name = %q", name)
	}
	if dna := r.ReadQ(); dna != 77 {
		t.Errorf("dna = %d", dna)
	}

	pending.FlushOutput()
	select {
	case data := <-pending.OutQueue:
		t.Fatalf("handshake session received broadcast: %v", data)
	default:
	}
}
