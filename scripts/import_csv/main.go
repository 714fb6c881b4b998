// Command import_csv converts a learning-activity CSV into the JSON records
// file served by the api-gateway in file mode. It reuses the same parsing and
// normalisation as the /data/import endpoint, so a file produced here reads
// back identically.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/learnytics/insights-api/internal/repository"
	"github.com/learnytics/insights-api/internal/service"
)

func main() {
	var (
		input  = flag.String("in", "", "path to the source CSV file")
		output = flag.String("out", "./data/records.json", "path to the JSON records file to write")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	file, err := os.Open(*input)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer file.Close() //nolint:errcheck

	store, err := repository.NewFileStore(*output)
	if err != nil {
		log.Fatalf("open records file: %v", err)
	}

	imports := service.NewImportService(store, nil, nil, zap.NewNop())
	count, err := imports.ImportCSV(context.Background(), filepath.Base(*input), file)
	if err != nil {
		log.Fatalf("import csv: %v", err)
	}

	fmt.Printf("imported %d records to %s\n", count, *output)
}
