// Command import-localstorage loads a browser localStorage export into the
// configured storage backend.
//
// The export is a JSON object of key to string value, as produced by
// JSON.stringify(localStorage) in the browser console. Only the
// ghostwriter keys are imported; each value is validated before it is
// written.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/ghostwriter/internal/config"
	"github.com/debemdeboas/ghostwriter/internal/db"
	"github.com/debemdeboas/ghostwriter/internal/kv"
	"github.com/debemdeboas/ghostwriter/internal/logger"
	"github.com/debemdeboas/ghostwriter/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the config file")
	exportPath := flag.String("export", "-", "localStorage export to read, or - for stdin")
	dryRun := flag.Bool("dry-run", false, "Validate the export without writing anything")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	kv.SetLogger(logger.Component(log, "kv"))
	db.SetLogger(logger.Component(log, "db"))

	if err := run(cfg, *exportPath, *dryRun, log); err != nil {
		log.Error().Err(err).Msg("Import failed")
		os.Exit(1)
	}
}

// run imports the export into the configured backend. The backend is
// closed before run returns, on every path.
func run(cfg *config.Config, exportPath string, dryRun bool, log zerolog.Logger) (err error) {
	export, err := readExport(exportPath)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", exportPath, err)
	}

	opts := kv.OptionsFromConfig(cfg.Storage)
	// The export keys carry the namespace already.
	namespace := opts.Namespace
	opts.Namespace = ""

	backend, closeStorage, err := kv.Open(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("error opening storage: %w", err)
	}
	defer func() {
		if cerr := closeStorage(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing storage: %w", cerr)
		}
	}()

	imported, err := importExport(backend, export, namespace, dryRun, log)
	if err != nil {
		return err
	}
	log.Info().Int("keys", imported).Bool("dry_run", dryRun).Msg("Import finished")
	return nil
}

func readExport(path string) (map[string]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var export map[string]string
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("error decoding export: %w", err)
	}
	return export, nil
}

// importExport writes every namespaced key of export to backend and
// returns how many were written. Invalid values are skipped and reported
// in the returned error; the rest are still imported.
func importExport(backend kv.Store, export map[string]string, namespace string, dryRun bool, log zerolog.Logger) (int, error) {
	keys := make([]string, 0, len(export))
	for key := range export {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var (
		imported int
		failed   []string
	)
	for _, key := range keys {
		name, ok := strings.CutPrefix(key, namespace)
		if !ok {
			log.Debug().Str("key", key).Msg("Skipping key outside the namespace")
			continue
		}

		c := store.Collection(name)
		value, err := store.Normalize(c, []byte(export[key]))
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("Skipping invalid value")
			failed = append(failed, key)
			continue
		}
		if dryRun {
			imported++
			continue
		}

		if value == nil {
			err = backend.Delete(key)
		} else {
			err = backend.Set(key, value)
		}
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("Error writing value")
			failed = append(failed, key)
			continue
		}
		log.Info().Str("key", key).Int("bytes", len(value)).Msg("Imported")
		imported++
	}

	if len(failed) > 0 {
		return imported, fmt.Errorf("%d keys failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return imported, nil
}
