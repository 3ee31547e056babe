// Package storage keeps a journal of scene sessions on disk.
//
// Every session is a run directory named by a UUID holding metadata.json
// and trees.csv. Each scene transition appends one generation to the CSV:
// a row per tree with the cause, the root index and the five attributes.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/fragment"
	"github.com/san-kum/arbor/internal/metrics"
	"github.com/san-kum/arbor/internal/scene"
)

const (
	metadataFile = "metadata.json"
	treesFile    = "trees.csv"
)

var (
	ErrNotFound  = errors.New("storage: run not found")
	ErrAmbiguous = errors.New("storage: run id prefix is ambiguous")
	ErrBadRecord = errors.New("storage: malformed journal row")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir returns the journal's base directory.
func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name,omitempty"`
	Created     time.Time          `json:"created"`
	Updated     time.Time          `json:"updated"`
	Seed        int64              `json:"seed"`
	Preset      string             `json:"preset,omitempty"`
	Trees       int                `json:"trees"`
	Generations int                `json:"generations"`
	Root        int                `json:"root"`
	State       string             `json:"state"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Record is one journaled scene transition.
type Record struct {
	Generation int
	Cause      string
	Root       int
	Trees      []attr.Values
}

// Run is an open journal session. It is safe for concurrent use.
type Run struct {
	mu      sync.Mutex
	dir     string
	meta    RunMetadata
	metrics metrics.Set
	logger  *log.Logger
}

// Create starts a run. meta.ID and the timestamps are filled in.
func (s *Store) Create(meta RunMetadata, logger *log.Logger) (*Run, error) {
	if logger == nil {
		logger = log.Default()
	}
	meta.ID = uuid.NewString()
	meta.Created = time.Now()
	meta.Updated = meta.Created
	meta.Root = -1

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, treesFile))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"generation", "cause", "root", "tree"}
	for _, n := range attr.Names() {
		header = append(header, n.String())
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	r := &Run{dir: dir, meta: meta, metrics: metrics.Default(), logger: logger}
	if err := r.writeMetadata(); err != nil {
		return nil, err
	}
	return r, nil
}

// ID returns the run id.
func (r *Run) ID() string { return r.meta.ID }

// Metadata returns a copy of the run's current metadata.
func (r *Run) Metadata() RunMetadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.meta
	m.Metrics = make(map[string]float64, len(r.meta.Metrics))
	for k, v := range r.meta.Metrics {
		m.Metrics[k] = v
	}
	return m
}

// Append journals one transition.
func (r *Run) Append(cause string, root int, trees []attr.Values) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(r.dir, treesFile), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer f.Close()

	gen := r.meta.Generations
	w := csv.NewWriter(f)
	for i, v := range trees {
		row := []string{strconv.Itoa(gen), cause, strconv.Itoa(root), strconv.Itoa(i)}
		for _, x := range v {
			row = append(row, fragment.FormatValue(x))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	r.metrics.Observe(trees, root)
	r.meta.Generations++
	r.meta.Trees = len(trees)
	r.meta.Root = root
	r.meta.State = fragment.Encode(trees)
	r.meta.Updated = time.Now()
	r.meta.Metrics = r.metrics.Values()
	return r.writeMetadata()
}

// OnChange journals a scene snapshot, so a Run can observe a scene.
func (r *Run) OnChange(s scene.Snapshot) {
	cause := string(s.Cause)
	if cause == "" {
		cause = "snapshot"
	}
	if err := r.Append(cause, s.Root, s.Trees); err != nil {
		r.logger.Error("journal append failed", "run", r.meta.ID, "err", err)
	}
}

func (r *Run) writeMetadata() error {
	tmp := filepath.Join(r.dir, metadataFile+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.meta); err != nil {
		f.Close()
		return fmt.Errorf("storage: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(r.dir, metadataFile))
}

// List returns every run, oldest first.
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

		meta, err := s.readMetadata(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Created.Before(runs[j].Created) })
	return runs, nil
}

func (s *Store) readMetadata(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Resolve finds a run by full id, unique id prefix or name. "latest"
// selects the newest run.
func (s *Store) Resolve(ref string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if ref == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if ref == "latest" && len(runs) > 0 {
		return runs[len(runs)-1].ID, nil
	}

	var matches []string
	for _, r := range runs {
		if r.ID == ref || (r.Name != "" && r.Name == ref) {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, ref) {
			matches = append(matches, r.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d runs", ErrAmbiguous, ref, len(matches))
	}
}

func (s *Store) Load(ref string) (*RunMetadata, error) {
	id, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return s.readMetadata(id)
}

// LoadRecords reads every journaled generation of a run.
func (s *Store) LoadRecords(ref string) ([]Record, error) {
	id, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, id, treesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4 + attr.Count

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if len(rows) < 2 {
		return []Record{}, nil
	}

	var records []Record
	for line, row := range rows[1:] {
		gen, err1 := strconv.Atoi(row[0])
		root, err2 := strconv.Atoi(row[2])
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line+2, err)
		}
		xs := make([]float64, attr.Count)
		for j := range xs {
			x, err := strconv.ParseFloat(row[4+j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line+2, err)
			}
			xs[j] = x
		}
		v, _ := attr.FromSlice(xs)

		if len(records) == 0 || records[len(records)-1].Generation != gen {
			records = append(records, Record{Generation: gen, Cause: row[1], Root: root})
		}
		last := &records[len(records)-1]
		last.Trees = append(last.Trees, v)
	}
	return records, nil
}
