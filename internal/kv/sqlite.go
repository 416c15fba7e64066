package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/ghostwriter/internal/db"
	"github.com/debemdeboas/ghostwriter/internal/util"
	"github.com/debemdeboas/ghostwriter/internal/util/compression"
)

// SQLiteStore keeps one compressed row per key in kv_entries.
type SQLiteStore struct {
	db         db.DB
	compressor compression.Compressor
}

func NewSQLiteStore(database db.DB, compressor compression.Compressor) *SQLiteStore {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}
	return &SQLiteStore{
		db:         database,
		compressor: compressor,
	}
}

func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var compressed []byte
	var hash string

	err := s.db.QueryRow(`SELECT value, value_hash FROM kv_entries WHERE key = ?`, key).Scan(&compressed, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", key, err)
	}

	if util.ContentHash(compressed) != hash {
		return nil, fmt.Errorf("error reading %q: stored hash does not match value", key)
	}

	value, err := s.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	compressed, err := s.compressor.Compress(value)
	if err != nil {
		return fmt.Errorf("error compressing %q: %w", key, err)
	}

	res, err := s.db.Exec(
		`INSERT INTO kv_entries (key, value, value_hash, modified_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, value_hash = excluded.value_hash, modified_at = excluded.modified_at`,
		key, compressed, util.ContentHash(compressed), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error saving %q: %w", key, err)
	}

	kvLogger.Debug().Str("key", key).Int("size", len(value)).Int("stored", len(compressed)).Interface("result", res).Msg("Entry saved")
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("error deleting %q: %w", key, err)
	}
	return nil
}
