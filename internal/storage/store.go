package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/renewsim/internal/metrics"
	"github.com/san-kum/renewsim/internal/projection"
)

const (
	metadataFile = "metadata.json"
	rowsFile     = "rows.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store archives projection runs as one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Timestamp  time.Time         `json:"timestamp"`
	StartYear  int               `json:"start_year"`
	EndYear    int               `json:"end_year"`
	Integrator string            `json:"integrator"`
	Scenarios  []string          `json:"scenarios"`
	Failed     map[string]string `json:"failed,omitempty"`
	Summaries  []metrics.Summary `json:"summaries,omitempty"`
}

// Save writes meta and rows under a fresh run id derived from meta.Label and
// returns that id. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, rows []projection.Row) (string, error) {
	if meta.Label == "" {
		meta.Label = "run"
	}
	meta.ID = fmt.Sprintf("%s_%s", meta.Label, uuid.NewString()[:8])
	meta.Timestamp = time.Now().UTC()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, rowsFile), func(f *os.File) error {
		return WriteCSV(f, rows)
	}); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the metadata of every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadRows(runID string) ([]projection.Row, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, rowsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return ReadCSV(csv.NewReader(f))
}
