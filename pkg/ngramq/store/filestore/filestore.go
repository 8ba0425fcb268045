// Package filestore keeps each analysis as an indented JSON document named
// analysis_YYYYMMDD_HHMMSS_<name>.json inside one directory.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/store"
)

const (
	filePrefix = "analysis_"
	fileSuffix = ".json"
	timeLayout = "20060102_150405"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Store implements store.Store on a directory of JSON files.
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// Open creates dir if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// FileName returns the document file name for a.
func FileName(a store.Analysis) string {
	name := strings.Trim(unsafeName.ReplaceAllString(a.Name, "_"), "_")
	return filePrefix + a.Timestamp.Local().Format(timeLayout) + "_" + name + fileSuffix
}

// SaveAnalysis implements store.Store.
func (s *Store) SaveAnalysis(_ context.Context, a store.Analysis) (store.Analysis, error) {
	a = store.Prepare(a, s.now())

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return store.Analysis{}, errors.Wrap(err, "encode analysis")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.pathFor(a)
	if err != nil {
		return store.Analysis{}, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return store.Analysis{}, errors.Wrapf(err, "write %s", path)
	}

	log.Info().Str("path", path).Str("id", a.ID).Msg("analysis saved")
	return a, nil
}

// pathFor reuses the file of an existing document with the same ID, and
// otherwise picks a fresh name, suffixing a counter on collisions.
func (s *Store) pathFor(a store.Analysis) (string, error) {
	docs, err := s.scan()
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if d.doc.ID == a.ID {
			return d.path, nil
		}
	}

	base := FileName(a)
	path := filepath.Join(s.dir, base)
	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, fileSuffix), i, fileSuffix))
	}
}

type entry struct {
	path string
	doc  store.Analysis
}

// scan decodes every analysis document in the directory. Documents written
// without an id are identified by their file name.
func (s *Store) scan() ([]entry, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, err
	}
	out := make([]entry, 0, len(matches))
	for _, path := range matches {
		doc, err := readDoc(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable analysis")
			continue
		}
		out = append(out, entry{path: path, doc: doc})
	}
	return out, nil
}

func readDoc(path string) (store.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Analysis{}, err
	}
	var a store.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return store.Analysis{}, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}
	if a.ID == "" {
		a.ID = strings.TrimSuffix(filepath.Base(path), fileSuffix)
	}
	return a, nil
}

// LoadAnalysis implements store.Store. id may also be a file name.
func (s *Store) LoadAnalysis(_ context.Context, id string) (store.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.find(id)
	if err != nil {
		return store.Analysis{}, err
	}
	log.Info().Str("path", d.path).Msg("analysis loaded")
	return d.doc, nil
}

// find returns the document whose ID is id or whose file name, with or
// without the .json suffix, is id.
func (s *Store) find(id string) (entry, error) {
	docs, err := s.scan()
	if err != nil {
		return entry{}, err
	}
	trimmed := strings.TrimSuffix(filepath.Base(id), fileSuffix)
	for _, d := range docs {
		if d.doc.ID == id || strings.TrimSuffix(filepath.Base(d.path), fileSuffix) == trimmed {
			return d, nil
		}
	}
	return entry{}, internalerr.ErrNotFound
}

// ListAnalyses implements store.Store.
func (s *Store) ListAnalyses(_ context.Context) ([]store.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.scan()
	if err != nil {
		return nil, err
	}
	out := make([]store.Summary, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.doc.Summary())
	}
	store.SortSummaries(out)
	return out, nil
}

// DeleteAnalysis implements store.Store.
func (s *Store) DeleteAnalysis(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(d.path); err != nil {
		return errors.Wrapf(err, "remove %s", d.path)
	}
	log.Info().Str("path", d.path).Msg("analysis deleted")
	return nil
}
