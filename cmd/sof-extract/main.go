package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/laytimelab/sof-extractor/internal/config"
	"github.com/laytimelab/sof-extractor/internal/diag"
	"github.com/laytimelab/sof-extractor/internal/export"
	"github.com/laytimelab/sof-extractor/internal/extraction"
	"github.com/laytimelab/sof-extractor/internal/scheduler"
	"github.com/laytimelab/sof-extractor/internal/sof"
)

func main() {
	inputPath := flag.String("input", "", "Path to a document JSON file (role, name, reference, pages)")
	outputPath := flag.String("output", "", "Path to write the extracted event list JSON (defaults to stdout)")
	xlsxPath := flag.String("xlsx", "", "Optional path to write a timeline XLSX workbook")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var doc sof.Document
	if err := json.Unmarshal(in, &doc); err != nil {
		log.Fatalf("decode document JSON: %v", err)
	}
	if len(doc.Pages) == 0 {
		log.Fatal("document has no pages")
	}

	client, err := extraction.NewAnthropicExtractorFromEnv(cfg.Model)
	if err != nil {
		log.Fatalf("extractor: %v", err)
	}

	var recorder diag.Recorder = diag.LogRecorder{}
	if cfg.DiagDBPath != "" {
		store, err := diag.NewSQLiteRecorder(cfg.DiagDBPath)
		if err != nil {
			log.Fatalf("diagnostics store: %v", err)
		}
		defer store.Close()
		recorder = store
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pipeline := extraction.NewPipeline(client, recorder, scheduler.Options{
		BatchSize:      cfg.BatchSize,
		MaxConcurrency: cfg.MaxConcurrency,
		MaxRetries:     cfg.MaxRetries,
		BaseDelay:      cfg.BaseDelay,
	})
	log.Printf("sof-extract document=%q role=%s pages=%d batch_size=%d", doc.Name, doc.Role, len(doc.Pages), cfg.BatchSize)

	res, err := pipeline.Run(ctx, doc)
	if err != nil {
		log.Fatalf("extraction: %v", err)
	}

	out, err := json.MarshalIndent(sof.EventList{Data: res.Events}, "", "  ")
	if err != nil {
		log.Fatalf("encode events: %v", err)
	}
	if err := writeOutput(*outputPath, append(out, '\n')); err != nil {
		log.Fatalf("write output: %v", err)
	}

	if *xlsxPath != "" {
		wb, err := export.TimelineXLSX(doc.Name, res.Events)
		if err != nil {
			log.Fatalf("timeline workbook: %v", err)
		}
		if err := os.WriteFile(*xlsxPath, wb, 0o644); err != nil {
			log.Fatalf("write workbook: %v", err)
		}
	}

	log.Printf("sof-extract run=%s events=%d failed_batches=%d/%d", res.RunID, len(res.Events), res.FailedBatches, res.Batches)
	if res.FailedBatches > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d of %d batches failed permanently; event list is incomplete\n", res.FailedBatches, res.Batches)
		os.Exit(2)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
