// Package runs persists a record of every pipeline run as JSON on disk.
package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/mlstart-cli/internal/pipeline"
	"github.com/KaramelBytes/mlstart-cli/internal/report"
	"github.com/KaramelBytes/mlstart-cli/internal/utils"
	"github.com/google/uuid"
)

const recordExt = ".json"

// ErrNotFound is returned when no record matches an id or prefix.
var ErrNotFound = errors.New("run not found")

// Record describes one finished run. Trained models are not persisted.
type Record struct {
	ID         string          `json:"id"`
	Dataset    string          `json:"dataset"`
	Target     string          `json:"target"`
	Rows       int             `json:"rows"`
	Features   []string        `json:"features"`
	TrainRows  int             `json:"train_rows"`
	TestRows   int             `json:"test_rows"`
	Summary    *report.Summary `json:"summary"`
	ReportPath string          `json:"report_path,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
	DurationMs int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewRecord builds a record from a pipeline outcome.
func NewRecord(out *pipeline.Outcome, datasetPath string) (*Record, error) {
	sum, err := report.Summarize(out.Result)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(datasetPath); err == nil {
		datasetPath = abs
	}
	return &Record{
		ID:         uuid.NewString(),
		Dataset:    datasetPath,
		Target:     out.Target,
		Rows:       out.Rows,
		Features:   out.Features,
		TrainRows:  out.TrainRows,
		TestRows:   out.TestRows,
		Summary:    sum,
		Warnings:   out.Warnings,
		DurationMs: out.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ShortID returns the first eight characters of the id.
func (r *Record) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// Store keeps one JSON file per record in Dir.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store { return &Store{Dir: dir} }

func (s *Store) path(id string) string { return filepath.Join(s.Dir, id+recordExt) }

// Save writes the record atomically.
func (s *Store) Save(r *Record) error {
	if r.ID == "" {
		return errors.New("run id not set")
	}
	if err := utils.EnsureDir(s.Dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.path(r.ID), data)
}

// Load reads a record by full id or unique id prefix.
func (s *Store) Load(id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	b, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		full, perr := s.resolvePrefix(id)
		if perr != nil {
			return nil, perr
		}
		b, err = os.ReadFile(s.path(full))
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	return &r, nil
}

func (s *Store) resolvePrefix(prefix string) (string, error) {
	ids, err := s.ids()
	if err != nil {
		return "", err
	}
	var match []string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			match = append(match, id)
		}
	}
	switch len(match) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return match[0], nil
	default:
		return "", fmt.Errorf("ambiguous run id %q matches %d runs", prefix, len(match))
	}
}

func (s *Store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), recordExt))
	}
	return ids, nil
}

// List returns every readable record, newest first. Unparseable files are skipped.
func (s *Store) List() ([]*Record, error) {
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	var out []*Record
	for _, id := range ids {
		r, err := s.Load(id)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
