package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/debemdeboas/ghostwriter/internal/config"
	"github.com/debemdeboas/ghostwriter/internal/db"
	"github.com/debemdeboas/ghostwriter/internal/util/compression"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFS     = "fs"
	BackendS3     = "s3"
)

type Options struct {
	Backend      string
	Namespace    string
	Quota        int
	SQLiteDriver string
	SQLitePath   string
	Compression  string
	Dir          string
	S3           S3Options
}

// Open builds the configured backend wrapped with the namespace prefix. The
// returned close function releases backend resources and is never nil.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	var (
		store   Store
		closeFn = noop
	)

	switch opts.Backend {
	case BackendMemory:
		store = NewMemoryStore(opts.Quota)

	case BackendSQLite, "":
		compressor, err := compression.ByName(opts.Compression)
		if err != nil {
			return nil, noop, err
		}
		database := db.NewSQLite(opts.SQLiteDriver, opts.SQLitePath)
		if err := database.InitDB(); err != nil {
			return nil, noop, fmt.Errorf("error initializing database: %w", err)
		}
		store = NewSQLiteStore(database, compressor)
		closeFn = database.Close

	case BackendFS:
		fsStore, err := NewFSStore(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		store = fsStore

	case BackendS3:
		s3Store, err := NewS3Store(ctx, opts.S3)
		if err != nil {
			return nil, noop, err
		}
		store = s3Store

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	kvLogger.Info().Str("backend", opts.Backend).Str("namespace", opts.Namespace).Msg("Storage opened")
	return WithPrefix(store, opts.Namespace), closeFn, nil
}

// OptionsFromConfig maps the storage section of the config file to Options.
func OptionsFromConfig(c config.StorageConfig) Options {
	return Options{
		Backend:      c.Backend,
		Namespace:    c.Namespace,
		Quota:        c.Quota,
		SQLiteDriver: c.SQLite.Driver,
		SQLitePath:   c.SQLite.Path,
		Compression:  c.SQLite.Compression,
		Dir:          c.FS.Dir,
		S3: S3Options{
			Endpoint:        c.S3.Endpoint,
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			Prefix:          c.S3.Prefix,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			UsePathStyle:    c.S3.UsePathStyle,
			Timeout:         time.Duration(c.S3.TimeoutSeconds) * time.Second,
		},
	}
}
