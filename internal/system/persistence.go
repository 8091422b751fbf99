package system

import (
	"context"
	"time"

	"github.com/menagerie/server/internal/core/event"
	coresys "github.com/menagerie/server/internal/core/system"
	"github.com/menagerie/server/internal/persist"
	"go.uber.org/zap"
)

// PersistenceSystem flushes newly created entities to the entity store and
// the creation journal in batches. Phase 2 (Persist).
//
// Failures keep the batch queued and retry next tick; the in-memory
// registry is the source of truth and never waits on the database.
type PersistenceSystem struct {
	entityRepo  *persist.EntityRepo
	journalRepo *persist.JournalRepo
	log         *zap.Logger

	pending []event.EntityCreated
}

func NewPersistenceSystem(entityRepo *persist.EntityRepo, journalRepo *persist.JournalRepo, bus *event.Bus, log *zap.Logger) *PersistenceSystem {
	s := &PersistenceSystem{
		entityRepo:  entityRepo,
		journalRepo: journalRepo,
		log:         log,
	}
	event.Subscribe(bus, s.onEntityCreated)
	return s
}

func (s *PersistenceSystem) onEntityCreated(ev event.EntityCreated) {
	s.pending = append(s.pending, ev)
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.Flush()
}

// Flush writes all pending creations. Also called once at shutdown so an
// in-flight batch is not lost.
func (s *PersistenceSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows := make([]persist.EntityRow, len(s.pending))
	entries := make([]persist.JournalEntry, len(s.pending))
	for i, ev := range s.pending {
		rows[i] = persist.EntityRow{ID: int64(ev.ID), Name: ev.Name, DNA: int64(ev.DNA)}
		entries[i] = persist.JournalEntry{EntityID: int64(ev.ID), Name: ev.Name, DNA: int64(ev.DNA)}
	}

	if err := s.entityRepo.InsertBatch(ctx, rows); err != nil {
		s.log.Warn("entity batch save failed, will retry",
			zap.Int("batch", len(rows)),
			zap.Error(err),
		)
		return
	}
	if err := s.journalRepo.WriteBatch(ctx, entries); err != nil {
		// Entities are saved; drop only the journal entries after logging.
		// Re-inserting the entity rows next tick would violate the primary key.
		s.log.Warn("creation journal write failed",
			zap.Int("batch", len(entries)),
			zap.Error(err),
		)
	}
	s.pending = s.pending[:0]
}
