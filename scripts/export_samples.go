package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/likhita8305/sales-dashboard-atomic/internal/logger"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
)

func main() {
	output := flag.String("output", "data/samples.csv", "Output CSV file path")
	flag.Parse()

	log := logger.Must("dev", "info").Sugar()
	defer log.Sync() //nolint:errcheck

	datasets := data.SampleDatasets()
	log.Infof("Exporting %d sample datasets...", len(datasets))

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create file: %v", err)
	}
	defer file.Close()

	if err := data.WriteCSV(file, datasets); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}

	rows := 0
	for _, ds := range datasets {
		for _, r := range ds.Records {
			rows += len(r.Values)
			if r.Target != nil {
				rows++
			}
		}
	}
	log.Infof("Saved %d rows to %s", rows, *output)
}
