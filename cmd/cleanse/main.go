// Package main wires the cleaning pipeline end-to-end: it loads the pipeline
// config, reads the raw source through the configured parser, runs the
// five-stage cleaner, and persists the result through the storage factory.
// The CLI layer stays thin: it depends only on storage-agnostic interfaces
// and never imports database drivers directly.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cleanse/internal/catalog"
	"cleanse/internal/cleaner"
	"cleanse/internal/config"
	"cleanse/internal/metrics"
	"cleanse/internal/metrics/datadog"
	"cleanse/internal/metrics/prompush"
	csvparser "cleanse/internal/parser/csv"
	xlsxparser "cleanse/internal/parser/xlsx"
	"cleanse/internal/schema"
	"cleanse/internal/storage"

	// register all backends with the storage factory; the config selects
	// which one to use at runtime.
	_ "cleanse/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/sample.json", "pipeline config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var p config.Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	setupMetrics(metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, p.Job, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	raws, err := readSource(p)
	if err != nil {
		fatalf("read source: %v", err)
	}
	if *verbose {
		log.Printf("source: kind=%s path=%s records=%d", p.Source.Kind, p.Source.File.Path, len(raws))
	}

	mode, err := cleaner.ParseMode(p.Cleaning.CompletionMode)
	if err != nil {
		fatalf("completion mode: %v", err)
	}
	var cat *catalog.Catalog
	if len(p.Cleaning.Catalog) > 0 {
		cat = catalog.New(p.Cleaning.Catalog)
	}

	pipe := cleaner.New(cleaner.Config{
		Catalog: cat,
		Mode:    mode,
		Workers: p.Cleaning.Workers,
		Job:     p.Job,
	})
	res, err := pipe.Run(ctx, raws)
	if err != nil {
		fatalf("pipeline: %v", err)
	}

	logReport(res.Report, *verbose)

	if err := persist(ctx, p, res.Final); err != nil {
		fatalf("persist: %v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// readSource opens the configured source file and parses it into raw records.
func readSource(p config.Pipeline) ([]schema.RawRecord, error) {
	if p.Source.Kind != "file" {
		return nil, fmt.Errorf("unsupported source.kind=%s", p.Source.Kind)
	}
	f, err := os.Open(p.Source.File.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch p.Parser.Kind {
	case "csv":
		pr := csvparser.NewParser(csvparser.Options{
			HasHeader: p.Parser.Options.Bool("has_header", true),
			Comma:     p.Parser.Options.Rune("comma", ','),
			TrimSpace: p.Parser.Options.Bool("trim_space", true),
			HeaderMap: p.Parser.Options.StringMap("header_map"),
			Encoding:  p.Parser.Options.String("encoding", ""),
		})
		return pr.ReadAll(f)
	case "xlsx":
		pr := xlsxparser.NewParser(xlsxparser.Options{
			Sheet:     p.Parser.Options.String("sheet", ""),
			HeaderMap: p.Parser.Options.StringMap("header_map"),
		})
		return pr.ReadAll(f)
	}
	return nil, fmt.Errorf("unsupported parser.kind=%s", p.Parser.Kind)
}

// persist writes the cleaned set through the configured storage backend.
// Kind "none" (or empty) skips persistence.
func persist(ctx context.Context, p config.Pipeline, recs []*schema.Transaction) error {
	if p.Storage.Kind == "" || p.Storage.Kind == "none" {
		return nil
	}
	repo, err := storage.New(ctx, storage.Config{
		Kind:            p.Storage.Kind,
		DSN:             p.Storage.DB.DSN,
		Table:           p.Storage.DB.Table,
		AutoCreateTable: p.Storage.DB.AutoCreateTable,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	if p.Storage.DB.AutoCreateTable {
		if err := repo.EnsureTable(ctx); err != nil {
			return err
		}
	}
	n, err := storage.Write(ctx, repo, recs, p.Storage.BatchSize)
	if err != nil {
		return err
	}
	metrics.RecordRows(p.Job, "inserted", n)
	log.Printf("storage: kind=%s table=%s inserted=%d", p.Storage.Kind, p.Storage.DB.Table, n)
	return nil
}

// setupMetrics installs the selected metrics backend; the nop backend stays
// in place when disabled or misconfigured.
func setupMetrics(backendFlg, gwURLFlg, ddAddrFlg, job string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	if job == "" {
		job = "cleanse"
	}

	switch backendName {
	case "pushgateway":
		gwURL := gwURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%s job=%s", gwURL, job)
		metrics.SetBackend(b)

	case "datadog":
		addr := ddAddrFlg
		if addr == "" {
			addr = os.Getenv("DOGSTATSD_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "cleanse."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%s job=%s", addr, job)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

// logReport prints the end-of-run summary: global counts plus per-stage
// change stats when verbose.
func logReport(rep cleaner.Report, verbose bool) {
	log.Printf("run %s: mode=%s input=%d output=%d dropped=%d (%.2f%%) in %s",
		rep.RunID, rep.Mode, rep.Input, rep.Output, rep.Dropped,
		rep.DroppedFraction*100, rep.Duration.Truncate(time.Millisecond))
	if !verbose {
		return
	}
	for _, st := range rep.Stages {
		log.Printf("stage %-18s in=%d out=%d changed=%d took=%s",
			st.Name, st.In, st.Out, st.Changed, st.Duration.Truncate(time.Microsecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
