package event

// EntityCreated mirrors the registry's creation notification. The registry
// observer emits one per append; subscribers (broadcast, journal, Lua hooks)
// see it at the next dispatch. Origin is the session that requested the
// creation, zero when none did.
type EntityCreated struct {
	ID     uint64
	Name   string
	DNA    uint64
	Origin uint64
}

// SessionClosed reports a dead connection so systems can drop their
// per-session state.
type SessionClosed struct {
	SessionID uint64
}
