package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/scene"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func twoTrees() []attr.Values {
	return []attr.Values{
		{65, 35, 0.63, 6, 2},
		{70, 40, 0.6, 6, 3},
	}
}

func TestStore_CreateAppendLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	run, err := store.Create(RunMetadata{Name: "session", Seed: 7}, quietLogger())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	trees := twoTrees()
	if err := run.Append("start", 0, trees); err != nil {
		t.Fatalf("Append: %v", err)
	}
	trees[1][attr.Length] = 80
	if err := run.Append("promote", 1, trees); err != nil {
		t.Fatalf("Append: %v", err)
	}

	meta, err := store.Load("session")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.ID != run.ID() {
		t.Errorf("loaded id %s, want %s", meta.ID, run.ID())
	}
	if meta.Generations != 2 || meta.Root != 1 || meta.Trees != 2 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if !strings.HasSuffix(meta.State, ",80_40_0.6_6_3") {
		t.Errorf("state %q does not hold the promoted tree", meta.State)
	}
	if meta.Metrics["segments"] == 0 {
		t.Errorf("expected segment metric, got %v", meta.Metrics)
	}

	records, err := store.LoadRecords(run.ID()[:8])
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Cause != "promote" || records[1].Root != 1 {
		t.Errorf("unexpected record: %+v", records[1])
	}
	if records[1].Trees[1][attr.Length] != 80 {
		t.Errorf("length = %v, want 80", records[1].Trees[1][attr.Length])
	}
	if records[0].Trees[0] != twoTrees()[0] {
		t.Errorf("first tree = %v", records[0].Trees[0])
	}
}

func TestStore_ListSorted(t *testing.T) {
	store := New(t.TempDir())
	store.Init()

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := store.Create(RunMetadata{}, quietLogger())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, run.ID())
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, r := range runs {
		if r.ID != ids[i] {
			t.Errorf("run %d = %s, want %s", i, r.ID, ids[i])
		}
	}

	latest, err := store.Resolve("latest")
	if err != nil || latest != ids[2] {
		t.Errorf("Resolve(latest) = %s, %v", latest, err)
	}
}

func TestStore_ListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/nope").List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStore_ResolveNotFound(t *testing.T) {
	store := New(t.TempDir())
	store.Init()
	if _, err := store.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRun_OnChange(t *testing.T) {
	store := New(t.TempDir())
	store.Init()
	run, err := store.Create(RunMetadata{}, quietLogger())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var obs scene.Observer = run
	obs.OnChange(scene.Snapshot{Root: 0, Trees: twoTrees(), Cause: scene.CauseRandomize})
	obs.OnChange(scene.Snapshot{Root: 1, Trees: twoTrees()})

	records, err := store.LoadRecords(run.ID())
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Cause != "randomize" || records[1].Cause != "snapshot" {
		t.Errorf("causes = %q, %q", records[0].Cause, records[1].Cause)
	}
}

func TestExportJSON(t *testing.T) {
	meta := RunMetadata{ID: "abc", Trees: 2}
	records := []Record{{Generation: 0, Cause: "start", Root: 0, Trees: twoTrees()}}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, records); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Run.ID != "abc" || len(data.Generations) != 1 {
		t.Fatalf("unexpected export: %+v", data)
	}
	g := data.Generations[0]
	if g.State != "65_35_0.63_6_2,70_40_0.6_6_3" {
		t.Errorf("state = %q", g.State)
	}
	if g.Trees[1]["branchings"] != 3 {
		t.Errorf("branchings = %v", g.Trees[1]["branchings"])
	}
}

func TestExportCSV(t *testing.T) {
	records := []Record{
		{Generation: 0, Cause: "start", Root: 0, Trees: twoTrees()},
		{Generation: 1, Cause: "promote", Root: 1, Trees: twoTrees()},
	}
	var buf bytes.Buffer
	if err := ExportCSV(&buf, records); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "generation,cause,root,length,divergence,reduction,lineWidth,branchings" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "1,promote,1,70,40,0.6,6,3" {
		t.Errorf("row = %q", lines[2])
	}
}
