package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/laytimelab/sof-extractor/internal/align"
	"github.com/laytimelab/sof-extractor/internal/config"
	"github.com/laytimelab/sof-extractor/internal/export"
	"github.com/laytimelab/sof-extractor/internal/sof"
)

func main() {
	masterPath := flag.String("master", "", "Path to the master statement's event list JSON")
	agentPath := flag.String("agent", "", "Path to the agent statement's event list JSON")
	outputPath := flag.String("output", "", "Path to write the comparison JSON (defaults to stdout)")
	xlsxPath := flag.String("xlsx", "", "Optional path to write a comparison XLSX workbook")
	flag.Parse()

	if *masterPath == "" || *agentPath == "" {
		log.Fatal("missing required -master and -agent")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	master := align.Rows(readEvents(*masterPath))
	agent := align.Rows(readEvents(*agentPath))

	finder, err := align.NewAnthropicKeyFinderFromEnv(cfg.Model)
	if err != nil {
		log.Fatalf("key finder: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmp, err := align.Align(ctx, master, agent, finder)
	if err != nil {
		log.Fatalf("align: %v", err)
	}

	out, err := json.MarshalIndent(cmp, "", "  ")
	if err != nil {
		log.Fatalf("encode comparison: %v", err)
	}
	if err := writeOutput(*outputPath, append(out, '\n')); err != nil {
		log.Fatalf("write output: %v", err)
	}

	if *xlsxPath != "" {
		wb, err := export.ComparisonXLSX(cmp, master, agent)
		if err != nil {
			log.Fatalf("comparison workbook: %v", err)
		}
		if err := os.WriteFile(*xlsxPath, wb, 0o644); err != nil {
			log.Fatalf("write workbook: %v", err)
		}
	}
}

func readEvents(path string) []sof.Event {
	in, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	var list sof.EventList
	if err := json.Unmarshal(in, &list); err != nil {
		log.Fatalf("decode %s: %v", path, err)
	}
	return list.Data
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
