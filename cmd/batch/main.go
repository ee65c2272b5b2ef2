package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"libhub/internal/ingest"
	"libhub/internal/registry"
	"libhub/pkg/database"
	"libhub/pkg/utils"
)

func main() {
	var (
		primaryOnly   = flag.Bool("primary-only", false, "ingest the primary source and stop")
		secondaryOnly = flag.Bool("secondary-only", false, "skip the primary source, reconcile the secondary only")
		timeout       = flag.Duration("timeout", 30*time.Minute, "overall run timeout")
	)
	flag.Parse()

	_ = godotenv.Load()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	srcCfg := utils.LoadSourceConfig()
	repo := registry.NewRepo(db)
	pipeline := ingest.NewPipeline(repo, nil, srcCfg.PageSize)

	if !*secondaryOnly {
		nlss := ingest.NewNLSSClient(srcCfg.NLSSBaseURL)
		stats, err := pipeline.IngestPrimary(ctx, nlss)
		if err != nil {
			log.Fatalf("primary ingestion failed after %d pages: %v", stats.Pages, err)
		}
		log.Printf("primary done: pages=%d fetched=%d inserted=%d skipped=%d",
			stats.Pages, stats.Fetched, stats.Inserted, stats.Skipped)
	}

	if !*primaryOnly {
		d4l := ingest.NewData4LibClient(srcCfg.Data4LibBaseURL, srcCfg.Data4LibAuthKey)
		stats, rstats, err := pipeline.IngestSecondaryAndReconcile(ctx, d4l)
		if err != nil {
			log.Fatalf("secondary reconciliation failed after %d pages: %v", stats.Pages, err)
		}
		log.Printf("secondary done: pages=%d fetched=%d matched=%d unmatched=%d already_linked=%d",
			stats.Pages, stats.Fetched, rstats.Matched, rstats.Unmatched, rstats.AlreadyLinked)
	}
}
