package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/hackclub/ship-search/internal/airtable"
	"github.com/hackclub/ship-search/internal/embeddings"
	"github.com/hackclub/ship-search/internal/search"
	"github.com/hackclub/ship-search/internal/storage"
)

// DefaultInterval is the tick cadence: one fetch-extract-embed-upsert cycle
// per second, bounding request rate against the origin and embedding APIs.
const DefaultInterval = time.Second

// Origin is the paginated read side of the remote dataset.
type Origin interface {
	FetchPage(ctx context.Context, cursor string) ([]airtable.Record, string, error)
}

// Notifier receives the end-of-sweep side effect. Failures are logged by the
// engine and never propagated.
type Notifier interface {
	SweepComplete(ctx context.Context, total int) error
}

// Engine drives repeated full sweeps of the origin dataset. Each sweep
// re-extracts, re-embeds and re-upserts every record; correctness rests on
// upsert idempotency, not change detection. The engine holds one piece of
// state between ticks: the continuation cursor.
type Engine struct {
	origin   Origin
	db       *storage.DB
	vectors  *search.VectorIndex
	keywords *search.KeywordIndex // optional
	embedder embeddings.Embedder
	notifier Notifier // optional
	limiter  *rate.Limiter

	cursor string
}

// NewEngine creates a sweep engine. keywords and notifier may be nil.
func NewEngine(origin Origin, db *storage.DB, vectors *search.VectorIndex,
	keywords *search.KeywordIndex, embedder embeddings.Embedder, notifier Notifier,
	interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		origin:   origin,
		db:       db,
		vectors:  vectors,
		keywords: keywords,
		embedder: embedder,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Run ticks for process lifetime. Tick failures are logged and retried on
// the next tick from the same cursor; only context cancellation returns.
func (e *Engine) Run(ctx context.Context) error {
	log.Println("Starting sync loop...")
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		if _, err := e.tick(ctx); err != nil {
			log.Printf("Sync tick failed (will retry): %v", err)
		}
	}
}

// Sweep drives exactly one full sweep to completion, honoring the tick
// cadence. Used by the one-shot sync command.
func (e *Engine) Sweep(ctx context.Context) error {
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		done, err := e.tick(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// tick runs one fetch-extract-embed-upsert cycle. It reports done=true when
// the fetched page was short, which ends the current sweep. On any error the
// cursor is left unchanged so the next tick retries the same page.
func (e *Engine) tick(ctx context.Context) (bool, error) {
	records, next, err := e.origin.FetchPage(ctx, e.cursor)
	if err != nil {
		return false, fmt.Errorf("fetch page: %w", err)
	}

	// Records are applied in fetch order. One record's failure aborts the
	// remaining work of this tick; the unchanged cursor makes the next tick
	// re-attempt the identical page.
	for _, rec := range records {
		ship, err := airtable.ExtractShip(rec)
		if err != nil {
			return false, fmt.Errorf("extract record: %w", err)
		}
		if err := e.processShip(ctx, ship); err != nil {
			return false, err
		}
	}

	if len(records) < airtable.PageSize {
		e.finishSweep(ctx)
		e.cursor = ""
		return true, nil
	}

	e.cursor = next
	return false, nil
}

// processShip embeds (when a description is present), upserts the store, and
// keeps the search indexes in step.
func (e *Engine) processShip(ctx context.Context, ship *storage.Ship) error {
	var vec []float32
	if ship.HasDescription() {
		var err error
		vec, err = e.embedder.Embed(ctx, *ship.Description)
		if err != nil {
			return fmt.Errorf("embed %s: %w", ship.ID, err)
		}
		ship.Embedding = embeddings.Serialize(vec)
	}

	if err := e.db.Upsert(ship); err != nil {
		return fmt.Errorf("upsert %s: %w", ship.ID, err)
	}

	if vec != nil {
		if err := e.vectors.Upsert(ctx, ship.ID, vec); err != nil {
			return fmt.Errorf("index %s: %w", ship.ID, err)
		}
	} else {
		// No description means no embedding; drop any vector left from a
		// previous sweep.
		if err := e.vectors.Remove(ctx, ship.ID); err != nil {
			return fmt.Errorf("unindex %s: %w", ship.ID, err)
		}
	}

	if e.keywords != nil {
		if err := e.keywords.IndexShip(ship); err != nil {
			return fmt.Errorf("keyword index %s: %w", ship.ID, err)
		}
	}

	return nil
}

// finishSweep fires the end-of-sweep notification. Failures here are
// swallowed: the notification is fire-and-forget.
func (e *Engine) finishSweep(ctx context.Context) {
	total, err := e.db.Count()
	if err != nil {
		log.Printf("Warning: count after sweep failed: %v", err)
		return
	}

	log.Printf("Sweep complete: %d ships synced", total)

	if e.notifier == nil {
		return
	}
	if err := e.notifier.SweepComplete(ctx, total); err != nil {
		log.Printf("Warning: sweep notification failed: %v", err)
	}
}
