package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// document is one JSON file on disk guarded by a mutex, so concurrent
// writers to the same logical record never interleave. Writes go to a
// temporary file in the same directory followed by a rename; a crash
// mid-write leaves the previous valid version in place.
type document struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
}

func newDocument(path string, log *slog.Logger) *document {
	if log == nil {
		log = slog.Default()
	}

	return &document{path: path, log: log}
}

// load decodes the document into out. A missing or unreadable file
// degrades to leaving out untouched (the caller's typed default) and is
// logged as a warning, never surfaced as an error.
func (d *document) load(out any) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.log.Warn("failed to read document, using defaults",
				slog.String("path", d.path), slog.Any("error", err))
		}
		return
	}

	if err := json.Unmarshal(data, out); err != nil {
		d.log.Warn("failed to decode document, using defaults",
			slog.String("path", d.path), slog.Any("error", err))
	}
}

// save atomically replaces the document with the JSON encoding of in.
func (d *document) save(in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %s: %w", d.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp document: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp document: %w", err)
	}

	if err := os.Rename(tmp.Name(), d.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace document %s: %w", d.path, err)
	}

	return nil
}
