package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/laytimelab/sof-extractor/internal/align"
	"github.com/laytimelab/sof-extractor/internal/report"
	"github.com/laytimelab/sof-extractor/internal/sof"
)

func main() {
	masterPath := flag.String("master", "", "Path to the master statement's event list JSON")
	agentPath := flag.String("agent", "", "Path to the agent statement's event list JSON")
	comparisonPath := flag.String("comparison", "", "Path to the comparison JSON produced by sof-compare")
	vessel := flag.String("vessel", "", "Vessel name for the report header")
	port := flag.String("port", "", "Port name for the report header")
	markdownPath := flag.String("output", "", "Path to write the report markdown (defaults to stdout)")
	pdfPath := flag.String("pdf", "", "Optional path to render the report as PDF (requires Chromium)")
	flag.Parse()

	if *masterPath == "" || *agentPath == "" || *comparisonPath == "" {
		log.Fatal("missing required -master, -agent and -comparison")
	}

	var cmp sof.Comparison
	decodeFile(*comparisonPath, &cmp)

	in := report.Input{
		Vessel:     *vessel,
		Port:       *port,
		MasterName: *masterPath,
		AgentName:  *agentPath,
		MasterRows: align.Rows(readEvents(*masterPath)),
		AgentRows:  align.Rows(readEvents(*agentPath)),
		Comparison: cmp,
	}
	markdown := report.BuildMarkdown(in)

	if err := writeOutput(*markdownPath, []byte(markdown)); err != nil {
		log.Fatalf("write markdown: %v", err)
	}

	if *pdfPath != "" {
		pdf, err := report.NewPDFRenderer().Render(context.Background(), markdown)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
	}
}

func readEvents(path string) []sof.Event {
	var list sof.EventList
	decodeFile(path, &list)
	return list.Data
}

func decodeFile(path string, v any) {
	in, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(in, v); err != nil {
		log.Fatalf("decode %s: %v", path, err)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
