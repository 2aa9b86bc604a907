package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/hackclub/ship-search/internal/airtable"
	"github.com/hackclub/ship-search/internal/config"
	"github.com/hackclub/ship-search/internal/embeddings"
	"github.com/hackclub/ship-search/internal/notify"
	"github.com/hackclub/ship-search/internal/search"
	"github.com/hackclub/ship-search/internal/storage"
	"github.com/hackclub/ship-search/internal/sync"
	"github.com/hackclub/ship-search/internal/web"
)

func main() {
	// Secrets may live in a .env file during development
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	switch os.Args[1] {
	case "serve":
		serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
		csvPath := serveFlags.String("csv", "", "Serve listing from a legacy CSV export (read-only, no sync)")
		serveFlags.Parse(os.Args[2:])

		if *csvPath != "" {
			runServeCSV(cfg, *csvPath)
		} else {
			runServe(cfg)
		}
	case "sync":
		runSync(cfg)
	case "search":
		searchFlags := flag.NewFlagSet("search", flag.ExitOnError)
		keyword := searchFlags.Bool("keyword", false, "Use keyword search instead of semantic")
		searchFlags.Parse(os.Args[2:])

		if searchFlags.NArg() < 1 {
			fmt.Println("Error: search query required")
			fmt.Println("Usage: ship-search search [-keyword] <query>")
			os.Exit(1)
		}
		runSearch(cfg, searchFlags.Arg(0), *keyword)
	case "stats":
		runStats(cfg)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ship-search - sync and search approved ship submissions")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ship-search <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve [-csv=<file>]       Run the sweep loop and HTTP API (or serve a legacy CSV export)")
	fmt.Println("  sync                      Run one full sweep of the origin dataset, then exit")
	fmt.Println("  search [-keyword] <query> Find the best-matching ship")
	fmt.Println("  stats                     Show store and index counts")
	fmt.Println()
	fmt.Println("Configuration is read from ./config.yaml; secrets come from the")
	fmt.Println("environment (AIRTABLE_PAT, OPENAI_KEY, GITHUB_TOKEN by default).")
}

// openAll wires the store and both search indexes from the data directory.
func openAll(cfg *config.Config) (*storage.DB, *search.VectorIndex, *search.KeywordIndex) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Error creating data directory: %v", err)
	}

	db, err := storage.Open(cfg.DataDir + "/ships.db")
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	vectors, err := search.NewVectorIndex()
	if err != nil {
		log.Fatalf("Error creating vector index: %v", err)
	}
	if err := vectors.Rebuild(context.Background(), db); err != nil {
		log.Fatalf("Error rebuilding vector index: %v", err)
	}

	keywords, err := search.OpenKeyword(cfg.DataDir + "/bleve")
	if err != nil {
		log.Fatalf("Error opening keyword index: %v", err)
	}

	return db, vectors, keywords
}

func newEngine(cfg *config.Config, db *storage.DB, vectors *search.VectorIndex,
	keywords *search.KeywordIndex, embedder embeddings.Embedder) *sync.Engine {
	var notifier sync.Notifier
	if cfg.Sync.NotifyRepo != "" {
		notifier = notify.NewRepoUpdater(cfg.Sync.NotifyRepo, cfg.NotifyToken(), "")
	}

	origin := airtable.NewClientWithBaseURL(cfg.AirtableToken(), cfg.Airtable.BaseURL, cfg.Airtable.View)
	interval := time.Duration(cfg.Sync.IntervalSecs) * time.Second

	return sync.NewEngine(origin, db, vectors, keywords, embedder, notifier, interval)
}

func runServe(cfg *config.Config) {
	if cfg.AirtableToken() == "" {
		log.Fatalf("Error: %s environment variable required", cfg.Airtable.TokenEnv)
	}
	if cfg.EmbeddingsKey() == "" {
		log.Fatalf("Error: %s environment variable required", cfg.Embeddings.APIKeyEnv)
	}

	db, vectors, keywords := openAll(cfg)
	defer db.Close()
	defer vectors.Close()
	defer keywords.Close()

	embedder := embeddings.NewOpenAIClient(cfg.Embeddings.BaseURL, cfg.EmbeddingsKey())
	engine := newEngine(cfg, db, vectors, keywords, embedder)
	searcher := search.NewService(embedder, vectors)
	server := web.NewServer(db, searcher, keywords, vectors)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Serving on http://%s", addr)

	// The sweep loop and the HTTP server run side by side; request handling
	// never waits on the sweep.
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return engine.Run(ctx)
	})
	g.Go(func() error {
		return http.ListenAndServe(addr, server.Handler())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Error: %v", err)
	}
}

func runServeCSV(cfg *config.Config, csvPath string) {
	server := web.NewServer(web.NewCSVLister(csvPath), nil, nil, nil)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Serving legacy CSV listing from %s on http://%s", csvPath, addr)

	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}

func runSync(cfg *config.Config) {
	if cfg.AirtableToken() == "" {
		log.Fatalf("Error: %s environment variable required", cfg.Airtable.TokenEnv)
	}
	if cfg.EmbeddingsKey() == "" {
		log.Fatalf("Error: %s environment variable required", cfg.Embeddings.APIKeyEnv)
	}

	db, vectors, keywords := openAll(cfg)
	defer db.Close()
	defer vectors.Close()
	defer keywords.Close()

	embedder := embeddings.NewOpenAIClient(cfg.Embeddings.BaseURL, cfg.EmbeddingsKey())
	if err := embedder.Health(context.Background()); err != nil {
		log.Fatalf("Error: embeddings service not available: %v", err)
	}

	engine := newEngine(cfg, db, vectors, keywords, embedder)

	start := time.Now()
	if err := engine.Sweep(context.Background()); err != nil {
		log.Fatalf("Error syncing: %v", err)
	}

	total, err := db.Count()
	if err != nil {
		log.Fatalf("Error counting ships: %v", err)
	}

	fmt.Println()
	fmt.Println("=== Sync Complete ===")
	fmt.Printf("Ships:    %d\n", total)
	fmt.Printf("Embedded: %d\n", vectors.Count())
	fmt.Printf("Duration: %v\n", time.Since(start).Round(time.Second))
}

func runSearch(cfg *config.Config, query string, keyword bool) {
	db, vectors, keywords := openAll(cfg)
	defer db.Close()
	defer vectors.Close()
	defer keywords.Close()

	var id string
	if keyword {
		hits, err := keywords.Search(query, 1)
		if err != nil {
			log.Fatalf("Error searching: %v", err)
		}
		if len(hits) == 0 {
			fmt.Println("No results found")
			os.Exit(1)
		}
		id = hits[0].ID
	} else {
		if cfg.EmbeddingsKey() == "" {
			log.Fatalf("Error: %s environment variable required", cfg.Embeddings.APIKeyEnv)
		}
		embedder := embeddings.NewOpenAIClient(cfg.Embeddings.BaseURL, cfg.EmbeddingsKey())
		searcher := search.NewService(embedder, vectors)

		var err error
		id, err = searcher.Search(context.Background(), query)
		if errors.Is(err, search.ErrNoMatch) {
			fmt.Println("No results found")
			os.Exit(1)
		}
		if err != nil {
			log.Fatalf("Error searching: %v", err)
		}
	}

	ship, err := db.Get(id)
	if err != nil {
		log.Fatalf("Error retrieving ship: %v", err)
	}

	fmt.Printf("Best match: %s\n", id)
	if ship != nil {
		if ship.Description != nil {
			fmt.Printf("  Description: %s\n", *ship.Description)
		}
		if ship.DemoURL != nil {
			fmt.Printf("  Demo: %s\n", *ship.DemoURL)
		}
		if ship.CodeURL != nil {
			fmt.Printf("  Code: %s\n", *ship.CodeURL)
		}
	}
}

func runStats(cfg *config.Config) {
	db, vectors, keywords := openAll(cfg)
	defer db.Close()
	defer vectors.Close()
	defer keywords.Close()

	total, err := db.Count()
	if err != nil {
		log.Fatalf("Error getting database count: %v", err)
	}

	indexed, err := keywords.Count()
	if err != nil {
		log.Fatalf("Error getting index count: %v", err)
	}

	fmt.Println("=== Index Statistics ===")
	fmt.Printf("Ships in database:      %d\n", total)
	fmt.Printf("Ships with embeddings:  %d\n", vectors.Count())
	fmt.Printf("Ships in keyword index: %d\n", indexed)
}
