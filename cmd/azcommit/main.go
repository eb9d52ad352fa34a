// azcommit reads JSON-lines documents and commits them to an Azure Search
// index in batches.
//
// Each input line is one operation:
//
//	{"id":"doc-1","fields":{"title":["A Title"],"tags":["go","search"]}}
//	{"delete":"doc-2"}
//
// Connection settings come from AZURE_SEARCH_* environment variables (see
// pkg/azsearch). Logging is controlled by LOG_LEVEL and LOG_FORMAT.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dmitrymomot/azcommit/pkg/azsearch"
	"github.com/dmitrymomot/azcommit/pkg/logger"
)

func main() {
	input := flag.String("input", "-", "path to a JSON-lines input file, or - for stdin")
	flag.Parse()

	log := logger.NewFromEnv("azcommit")
	logger.SetAsDefault(log)

	cfg, err := azsearch.Load()
	if err != nil {
		log.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *input); err != nil {
		log.Error("commit run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// record is one line of input: either an upload (id + fields) or a delete.
type record struct {
	ID     string              `json:"id"`
	Fields map[string][]string `json:"fields"`
	Delete string              `json:"delete"`
}

func run(ctx context.Context, cfg azsearch.Config, log *slog.Logger, input string) error {
	in, err := open(input)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	committer := azsearch.New(cfg, azsearch.WithLogger(log))
	defer func() { _ = committer.Close() }()

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	var (
		batch azsearch.Batch
		line  int
	)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		op, err := parseRecord(raw, cfg)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, op)
		if len(batch) >= batchSize {
			if _, err := committer.Commit(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	if len(batch) > 0 {
		if _, err := committer.Commit(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func parseRecord(raw []byte, cfg azsearch.Config) (azsearch.Operation, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	if rec.Delete != "" {
		return azsearch.DeleteOperation{Ref: rec.Delete}, nil
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("record has neither id nor delete")
	}

	// Sort field names so payloads are deterministic across runs.
	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var meta azsearch.Metadata
	for _, name := range names {
		meta.Add(name, rec.Fields[name]...)
	}
	return azsearch.AddOperation{Ref: rec.ID, Fields: meta}, nil
}

func open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}
