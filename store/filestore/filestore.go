// Package filestore keeps the whole dataset in a single file, rewritten on every append.
//
// The encoding follows the file extension: ".json" is an indented JSON array and
// ".msgpack" (or ".mpk") is a msgpack array. Writes go to a temporary file in the
// same directory which is then renamed over the dataset.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/store"
)

var (
	_ store.ItemStore = (*Store)(nil)
	_ store.Seeder    = (*Store)(nil)
)

// Format is the on-disk encoding of a dataset file.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFor picks the encoding from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("filestore: unsupported dataset extension %q", filepath.Ext(path))
}

// Store is a file-backed ItemStore.
type Store struct {
	mu     sync.Mutex
	path   string
	format Format
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for write diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With().Str("component", "filestore").Logger()
	}
}

// Open returns a store for path. The file does not need to exist yet, but reads fail
// until it does.
func Open(path string, opts ...Option) (*Store, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path, format: format, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the dataset file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ReadAll(ctx context.Context) ([]item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) Append(ctx context.Context, it item.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}
	return s.write(append(items, it))
}

func (s *Store) Replace(ctx context.Context, items []item.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(items)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) read() ([]item.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, store.Wrap("read", err)
	}

	items, err := s.decode(data)
	if err != nil {
		return nil, store.Wrap("decode", fmt.Errorf("%s: %w", s.path, err))
	}
	return items, nil
}

func (s *Store) decode(data []byte) ([]item.Item, error) {
	items := make([]item.Item, 0)
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}

	switch s.format {
	case FormatMsgpack:
		err := msgpack.Unmarshal(data, &items)
		return items, err
	default:
		err := json.Unmarshal(data, &items)
		return items, err
	}
}

func (s *Store) encode(items []item.Item) ([]byte, error) {
	if items == nil {
		items = []item.Item{}
	}
	switch s.format {
	case FormatMsgpack:
		return msgpack.Marshal(items)
	default:
		return json.MarshalIndent(items, "", "  ")
	}
}

func (s *Store) write(items []item.Item) error {
	data, err := s.encode(items)
	if err != nil {
		return store.Wrap("encode", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return store.Wrap("write", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmpName, s.path)
	}
	if werr != nil {
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn().Err(rmErr).Str("file", tmpName).Msg("failed to remove temp file")
		}
		return store.Wrap("write", werr)
	}

	s.logger.Debug().Str("file", s.path).Int("items", len(items)).Msg("dataset written")
	return nil
}
