// Package registry implements the append-only entity registry: sequential
// identifiers, Keccak-derived DNA attributes, and a creation notification
// per append.
package registry

import (
	"fmt"
	"math/big"
	"sync"
)

// Entity is an immutable record. Its identity is its index in the registry.
type Entity struct {
	Name string
	DNA  uint64
}

// Creation is the notification record emitted once per append. Origin is an
// opaque tag for the caller that requested the creation (a session id in the
// server); zero means no caller.
type Creation struct {
	ID     uint64
	Name   string
	DNA    uint64
	Origin uint64
}

// Observer receives creation notifications. The registry holds a reference
// but does not own delivery: the callback runs synchronously after each
// append and the registry never retries or verifies anything past it.
type Observer interface {
	EntityCreated(Creation)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Creation)

func (f ObserverFunc) EntityCreated(c Creation) { f(c) }

// Registry owns the ordered entity sequence. The mutex serializes the
// append-and-notify pair so "id = prior length" holds under concurrent
// callers; reads take the same lock.
type Registry struct {
	mu       sync.Mutex
	entities []Entity

	digits   int
	modulus  *big.Int
	observer Observer
}

// New creates an empty registry. digits fixes the attribute magnitude for
// the life of the registry; obs may be nil.
func New(digits int, obs Observer) (*Registry, error) {
	if digits < 1 || digits > MaxDigits {
		return nil, fmt.Errorf("registry digits %d out of range [1,%d]", digits, MaxDigits)
	}
	return &Registry{
		entities: make([]Entity, 0, 256),
		digits:   digits,
		modulus:  new(big.Int).SetUint64(pow10(digits)),
		observer: obs,
	}, nil
}

// Digits returns the configured attribute digit count.
func (r *Registry) Digits() int { return r.digits }

// Modulus returns 10^digits. Every stored DNA is strictly below it.
func (r *Registry) Modulus() uint64 { return r.modulus.Uint64() }

// DeriveAttribute computes the DNA for a seed. Pure with respect to registry
// state: it reads neither the sequence nor anything environmental.
func (r *Registry) DeriveAttribute(seed string) uint64 {
	return deriveDNA(seed, r.modulus)
}

// CreateRandomEntity derives the DNA from name and appends a new entity.
// Any text is accepted, duplicates included. Returns the new entity's
// identifier.
func (r *Registry) CreateRandomEntity(name string) uint64 {
	return r.CreateRandomEntityFrom(name, 0)
}

// CreateRandomEntityFrom is CreateRandomEntity with the creation notification
// tagged by origin, so subscribers can tell which caller asked.
func (r *Registry) CreateRandomEntityFrom(name string, origin uint64) uint64 {
	dna := r.DeriveAttribute(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createEntity(name, dna, origin)
}

// createEntity appends Entity{name, dna} and notifies the observer.
// Caller holds r.mu and guarantees dna < modulus.
func (r *Registry) createEntity(name string, dna, origin uint64) uint64 {
	id := uint64(len(r.entities))
	r.entities = append(r.entities, Entity{Name: name, DNA: dna})
	if r.observer != nil {
		r.observer.EntityCreated(Creation{ID: id, Name: name, DNA: dna, Origin: origin})
	}
	return id
}

// Get returns the entity at id, or false when id >= Len().
func (r *Registry) Get(id uint64) (Entity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id >= uint64(len(r.entities)) {
		return Entity{}, false
	}
	return r.entities[id], true
}

// Len returns the number of entities created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities)
}

// Restore seeds the sequence from persisted rows at boot. Valid only on an
// empty registry; rows must already be in identifier order. No notifications
// are emitted: these creations were observed when they first happened.
func (r *Registry) Restore(entities []Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entities) != 0 {
		return fmt.Errorf("restore on non-empty registry (%d entities)", len(r.entities))
	}
	max := r.modulus.Uint64()
	for i, e := range entities {
		if e.DNA >= max {
			return fmt.Errorf("restore: entity %d dna %d exceeds modulus %d", i, e.DNA, max)
		}
	}
	r.entities = append(r.entities, entities...)
	return nil
}
