package event

import "testing"

func TestEmitDeliversNextSwap(t *testing.T) {
	b := NewBus()
	var got []EntityCreated
	Subscribe(b, func(ev EntityCreated) { got = append(got, ev) })

	Emit(b, EntityCreated{ID: 0, Name: "Alice", DNA: 42})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("event delivered before swap: %+v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0].Name != "Alice" || got[0].DNA != 42 {
		t.Fatalf("got %+v", got)
	}

	// Delivered again only if re-emitted.
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event delivered twice: %+v", got)
	}
}

func TestEmissionOrderPreserved(t *testing.T) {
	b := NewBus()
	var ids []uint64
	Subscribe(b, func(ev EntityCreated) { ids = append(ids, ev.ID) })

	for i := uint64(0); i < 5; i++ {
		Emit(b, EntityCreated{ID: i})
	}
	b.SwapBuffers()
	b.DispatchAll()

	if len(ids) != 5 {
		t.Fatalf("got %d events", len(ids))
	}
	for i, id := range ids {
		if id != uint64(i) {
			t.Fatalf("order broken: %v", ids)
		}
	}
}

func TestMultipleSubscribersAndTypes(t *testing.T) {
	b := NewBus()
	createdA, createdB, closed := 0, 0, 0
	Subscribe(b, func(EntityCreated) { createdA++ })
	Subscribe(b, func(EntityCreated) { createdB++ })
	Subscribe(b, func(SessionClosed) { closed++ })

	Emit(b, EntityCreated{ID: 1})
	Emit(b, SessionClosed{SessionID: 9})
	b.SwapBuffers()
	b.DispatchAll()

	if createdA != 1 || createdB != 1 {
		t.Errorf("created handlers: %d, %d", createdA, createdB)
	}
	if closed != 1 {
		t.Errorf("closed handler: %d", closed)
	}
}

func TestEmitWithNoSubscribersIsDropped(t *testing.T) {
	b := NewBus()
	Emit(b, EntityCreated{ID: 3})
	b.SwapBuffers()
	b.DispatchAll() // must not panic
}
