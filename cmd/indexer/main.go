// Command indexer bulk-loads an ICD-10 vocabulary CSV (columns: code,
// short, long) into the Qdrant collection the suggestion service searches.
// Each row is embedded from "short long" (falling back to the bare code
// when both descriptions are empty) with the same model the service uses,
// so query and index vectors stay comparable.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/clinvec/clinvec/internal/config"
	"github.com/clinvec/clinvec/internal/index"
	"github.com/clinvec/clinvec/internal/llm"
)

func main() {
	cfgPath := flag.String("config", "config/config.toml", "path to config file")
	csvPath := flag.String("csv", "diagnosis.csv", "path to ICD-10 CSV (code,short,long)")
	collection := flag.String("collection", "", "override the configured collection name")
	batchSize := flag.Int("batch", 200, "points per upsert batch")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using built-in defaults", *cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if *collection != "" {
		cfg.Qdrant.Collection = *collection
	}

	if err := run(context.Background(), cfg, *csvPath, *batchSize); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, csvPath string, batchSize int) error {
	_, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("initialize embedder: %w", err)
	}
	if embedder == nil {
		return fmt.Errorf("provider %q has no embedding support", cfg.LLM.Provider)
	}

	client, err := index.New(index.Config{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		APIKey:     cfg.Qdrant.APIKey,
		UseTLS:     cfg.Qdrant.UseTLS,
		Collection: cfg.Qdrant.Collection,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rows, err := readConceptRows(f)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d ICD-10 codes from %s", len(rows), csvPath)

	created := false
	total := 0
	batch := make([]index.Concept, 0, batchSize)
	for _, row := range rows {
		vector, err := embedder.Embed(ctx, embeddingText(row))
		if err != nil {
			return fmt.Errorf("embed %q: %w", row.Code, err)
		}
		if !created {
			if err := client.EnsureCollection(ctx, len(vector)); err != nil {
				return err
			}
			log.Printf("Collection %q ready (dimension %d)", cfg.Qdrant.Collection, len(vector))
			created = true
		}
		row.Vector = vector
		batch = append(batch, row)
		if len(batch) == batchSize {
			if err := client.Upsert(ctx, batch); err != nil {
				return err
			}
			total += len(batch)
			log.Printf("Upserted %d/%d", total, len(rows))
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := client.Upsert(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
	}

	log.Printf("Done: %d points in collection %q", total, cfg.Qdrant.Collection)
	return nil
}

// readConceptRows parses the vocabulary CSV. A header row is detected by a
// literal "code" in the first column and skipped; rows with an empty code
// are dropped.
func readConceptRows(r io.Reader) ([]index.Concept, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []index.Concept
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse CSV: %w", err)
		}
		if first {
			first = false
			if len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "code") {
				continue
			}
		}
		if len(record) == 0 {
			continue
		}
		row := index.Concept{Code: strings.TrimSpace(record[0])}
		if row.Code == "" {
			continue
		}
		if len(record) > 1 {
			row.ShortDesc = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			row.LongDesc = strings.TrimSpace(record[2])
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no usable rows in dataset")
	}
	return rows, nil
}

func embeddingText(c index.Concept) string {
	text := strings.TrimSpace(c.ShortDesc + " " + c.LongDesc)
	if text == "" {
		return c.Code
	}
	return text
}
