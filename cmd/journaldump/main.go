// journaldump lists pending creation-journal entries, one per line, and
// optionally acknowledges them so the next run starts clean.
//
// Usage:
//
//	go run ./cmd/journaldump [-config path] [-ack]
//
// Output: one "seq<TAB>id<TAB>name<TAB>dna" line per pending entry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/menagerie/server/internal/config"
	"github.com/menagerie/server/internal/persist"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "config/server.toml", "server config file")
	ack := flag.Bool("ack", false, "mark the listed entries as processed")
	flag.Parse()

	if err := run(*cfgPath, *ack); err != nil {
		fmt.Fprintf(os.Stderr, "journaldump: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string, ack bool) error {
	if p := os.Getenv("MENAGERIE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, zap.NewNop())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	journalRepo := persist.NewJournalRepo(db)
	entries, err := journalRepo.LoadPending(ctx)
	if err != nil {
		return fmt.Errorf("load pending: %w", err)
	}
	for _, e := range entries {
		fmt.Printf("%d\t%d\t%s\t%d\n", e.Seq, e.EntityID, e.Name, e.DNA)
	}

	total, err := persist.NewEntityRepo(db).Count(ctx)
	if err != nil {
		return fmt.Errorf("count entities: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%d pending of %d entities\n", len(entries), total)

	if ack && len(entries) > 0 {
		if err := journalRepo.MarkProcessed(ctx); err != nil {
			return fmt.Errorf("mark processed: %w", err)
		}
	}
	return nil
}
