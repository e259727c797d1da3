package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/export"
	"leadscout-engine/internal/scrape"
	"leadscout-engine/internal/scrape/util"
	"leadscout-engine/internal/secrets"
	"leadscout-engine/internal/store"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config.yml (default <data-dir>/config.yml)")
		dataDir     = flag.String("data", "", "data directory (default $LEADSCOUT_DATA_DIR or .)")
		mergeFile   = flag.String("merge", "", "merge enrichment columns from an edited export CSV and re-export")
		showHistory = flag.Bool("history", false, "print recent run history and exit")
		setProxyKey = flag.Bool("set-proxy-key", false, "read a proxy API key from stdin and store it in the keychain")
		checkConfig = flag.Bool("check-config", false, "validate the config and exit")
	)
	flag.Parse()

	dir := *dataDir
	if dir == "" {
		dir = os.Getenv("LEADSCOUT_DATA_DIR")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatal(err)
	}

	cfgPath := *configPath
	if cfgPath == "" {
		p, err := config.EnsureUserConfig(dir)
		if err != nil {
			log.Fatalf("config bootstrap failed: %v", err)
		}
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", cfgPath, err)
	}
	cfg, validation := config.NormalizeAndValidate(cfg)
	for _, w := range validation.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !validation.OK() {
		for _, e := range validation.Errors {
			log.Printf("[config] error: %s", e)
		}
		log.Fatalf("config invalid (%s)", cfgPath)
	}
	if *checkConfig {
		fmt.Println("config ok")
		return
	}

	if *setProxyKey {
		if err := storeProxyKey(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	// One engine at a time per data dir; overlapping runs would interleave
	// store writes and exports.
	lock := flock.New(filepath.Join(dir, ".leadscout.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock: %v", err)
	}
	if !locked {
		log.Fatalf("another leadscout run holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	db, err := store.Open(filepath.Join(dir, "leadscout.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	switch {
	case *showHistory:
		err = printHistory(db)
	case *mergeFile != "":
		err = runMerge(db, cfg, dir, *mergeFile)
	default:
		err = runScrape(db, cfg, dir)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runScrape(db *store.DB, cfg config.Config, dataDir string) error {
	var proxy *util.Proxy
	if cfg.Proxy.Enabled {
		key, err := secrets.GetProxyAPIKey(secrets.ProxyKeyringAccount(cfg.Proxy.Endpoint))
		if err != nil {
			return fmt.Errorf("proxy enabled but %w", err)
		}
		proxy = &util.Proxy{Endpoint: cfg.Proxy.Endpoint, APIKey: key}
	}

	runner, err := scrape.NewRunner(cfg, proxy)
	if err != nil {
		return err
	}
	runner.RawDir = filepath.Join(dataDir, "raw")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Run.TimeoutSeconds)*time.Second)
	defer cancel()

	log.Printf("[run] roles=%d location=%q", len(cfg.Search.Roles), cfg.Search.Location)
	res, postings, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if res.Failed() {
		log.Printf("[run] every role failed; see summary for details")
	}

	if err := exportAll(cfg, res, postings); err != nil {
		return err
	}

	sctx, scancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer scancel()
	for _, p := range postings {
		if err := store.UpsertPosting(sctx, db.Pool, p); err != nil {
			return fmt.Errorf("store posting: %w", err)
		}
	}
	if err := store.InsertRun(sctx, db.Pool, res); err != nil {
		return fmt.Errorf("store run: %w", err)
	}

	log.Printf("[run] ok fetched=%d deduped=%d avg_quality=%.2f",
		res.TotalFetched, res.TotalAfterDedup, res.AvgQualityScore)
	return nil
}

func exportAll(cfg config.Config, res *scrape.RunResult, postings []domain.JobPosting) error {
	ts := res.FinishedAt
	outDir := cfg.App.OutputDir

	csvPath := export.CSVPath(outDir, ts)
	if err := export.WriteCSV(postings, csvPath); err != nil {
		return err
	}
	log.Printf("[export] csv: %s", csvPath)

	if cfg.Export.Excel {
		xlsxPath := export.XLSXPath(outDir, ts)
		if err := export.WriteXLSX(postings, xlsxPath); err != nil {
			return err
		}
		log.Printf("[export] xlsx: %s", xlsxPath)
	}

	sumPath := export.SummaryPath(outDir, ts)
	if err := export.WriteSummary(res, postings, sumPath); err != nil {
		return err
	}
	log.Printf("[export] summary: %s", sumPath)
	return nil
}

// runMerge folds a hand-enriched export back into the stored postings and
// writes a fresh export with the merged columns.
func runMerge(db *store.DB, cfg config.Config, dataDir, file string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	base, err := store.ListPostings(ctx, db.Pool)
	if err != nil {
		return err
	}
	if len(base) == 0 {
		return fmt.Errorf("no stored postings to merge into; run a scrape first")
	}

	enriched, err := export.ReadCSV(file)
	if err != nil {
		return err
	}

	n := export.MergeEnrichment(base, enriched)
	log.Printf("[merge] %d postings enriched from %s", n, file)

	for _, p := range base {
		if err := store.UpsertPosting(ctx, db.Pool, p); err != nil {
			return fmt.Errorf("store posting: %w", err)
		}
	}

	out := export.CSVPath(cfg.App.OutputDir, time.Now())
	if err := export.WriteCSV(base, out); err != nil {
		return err
	}
	log.Printf("[merge] exported: %s", out)
	return nil
}

func printHistory(db *store.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runs, err := store.ListRuns(ctx, db.Pool, 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("#%d  %s  fetched=%d deduped=%d avg_quality=%.2f errors=%v\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.TotalFetched, r.TotalAfterDedup,
			r.AvgQualityScore, r.ErrorCounts)
	}
	return nil
}

func storeProxyKey(cfg config.Config) error {
	if cfg.Proxy.Endpoint == "" {
		return fmt.Errorf("set proxy.endpoint in config before storing a key")
	}
	fmt.Fprint(os.Stderr, "proxy API key: ")
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return fmt.Errorf("no key read from stdin")
	}
	account := secrets.ProxyKeyringAccount(cfg.Proxy.Endpoint)
	if err := secrets.SetProxyAPIKey(account, sc.Text()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "stored under %s\n", account)
	return nil
}
