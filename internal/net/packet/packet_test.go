package packet

import (
	"testing"

	"go.uber.org/zap"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriterWithOpcode(S_OPCODE_CREATED)
	w.WriteQ(7)
	w.WriteS("Alice")
	w.WriteQ(8229261107219457921)
	w.WriteH(42)
	w.WriteC(3)

	r := NewReader(w.Bytes())
	if r.Opcode() != S_OPCODE_CREATED {
		t.Fatalf("opcode = %#x", r.Opcode())
	}
	if got := r.ReadQ(); got != 7 {
		t.Errorf("id = %d", got)
	}
	if got := r.ReadS(); got != "Alice" {
		t.Errorf("name = %q", got)
	}
	if got := r.ReadQ(); got != 8229261107219457921 {
		t.Errorf("dna = %d", got)
	}
	if got := r.ReadH(); got != 42 {
		t.Errorf("h = %d", got)
	}
	if got := r.ReadC(); got != 3 {
		t.Errorf("c = %d", got)
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining = %d", r.Remaining())
	}
}

func TestReadSEmptyAndUnterminated(t *testing.T) {
	w := NewWriterWithOpcode(C_OPCODE_CREATE)
	w.WriteS("")
	r := NewReader(w.Bytes())
	if got := r.ReadS(); got != "" {
		t.Errorf("empty string read as %q", got)
	}

	// No terminator: string runs to end of frame.
	r2 := NewReader([]byte{C_OPCODE_CREATE, 'B', 'o', 'b'})
	if got := r2.ReadS(); got != "Bob" {
		t.Errorf("unterminated string read as %q", got)
	}
}

func TestReadSNormalizesNFC(t *testing.T) {
	// "é" as 'e' + combining acute (NFD) must come out precomposed.
	w := NewWriterWithOpcode(C_OPCODE_CREATE)
	w.WriteS("Zoé")
	r := NewReader(w.Bytes())
	if got := r.ReadS(); got != "Zoé" {
		t.Errorf("name = %q, want NFC form", got)
	}
}

func TestShortReadsReturnZero(t *testing.T) {
	r := NewReader([]byte{C_OPCODE_GET, 0x01})
	if got := r.ReadQ(); got != 0 {
		t.Errorf("short ReadQ = %d", got)
	}
	r.ReadC()
	if got := r.ReadC(); got != 0 {
		t.Errorf("exhausted ReadC = %d", got)
	}
}

func TestRegistryStateGating(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	called := 0
	reg.Register(C_OPCODE_CREATE, []SessionState{StateReady}, func(any, *Reader) { called++ })

	frame := []byte{C_OPCODE_CREATE, 0}
	if err := reg.Dispatch(nil, StateHandshake, frame); err == nil {
		t.Error("dispatch allowed in Handshake state")
	}
	if called != 0 {
		t.Fatalf("handler called %d times", called)
	}
	if err := reg.Dispatch(nil, StateReady, frame); err != nil {
		t.Fatalf("dispatch in Ready: %v", err)
	}
	if called != 1 {
		t.Fatalf("handler called %d times", called)
	}
}

func TestRegistryIgnoresUnknownOpcode(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Dispatch(nil, StateReady, []byte{0x77}); err != nil {
		t.Fatalf("unknown opcode returned error: %v", err)
	}
	if err := reg.Dispatch(nil, StateReady, nil); err == nil {
		t.Error("empty frame accepted")
	}
}

func TestRegistryRecoversHandlerPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(C_OPCODE_COUNT, []SessionState{StateReady}, func(any, *Reader) {
		panic("boom")
	})
	if err := reg.Dispatch(nil, StateReady, []byte{C_OPCODE_COUNT}); err == nil {
		t.Error("panic not surfaced as error")
	}
}
