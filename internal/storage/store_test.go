package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/organelle/internal/engine"
	"github.com/san-kum/organelle/internal/physics"
)

func sampleRows() []Row {
	return []Row{
		{Frame: 0, Time: 0, ID: "genome", X: 1.5, Y: -2},
		{Frame: 0, Time: 0, ID: "protein", X: -30, Y: 12.25},
		{Frame: 1, Time: 0.016667, ID: "genome", X: 3, Y: -1},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Layout:   "desktop",
		Seed:     42,
		Entities: []string{"genome", "protein"},
		Metrics:  map[string]float64{"mean_speed": 2.5},
	}
	runID, err := st.Save(meta, sampleRows())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Layout != "desktop" || loaded.Seed != 42 {
		t.Errorf("unexpected metadata: %+v", loaded)
	}
	if loaded.Metrics["mean_speed"] != 2.5 {
		t.Errorf("expected mean_speed 2.5, got %f", loaded.Metrics["mean_speed"])
	}
	if loaded.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	rows, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	want := sampleRows()
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], rows[i])
		}
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runID, err := st.Save(RunMetadata{Layout: "mobile"}, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, framesFile} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
	rows, err := st.LoadFrames(runID)
	if err != nil || len(rows) != 0 {
		t.Errorf("expected empty rows, got %v (%v)", rows, err)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	fixed := time.Unix(1700000000, 0)
	st.now = func() time.Time { return fixed }
	first, _ := st.Save(RunMetadata{Layout: "desktop"}, nil)
	second, _ := st.Save(RunMetadata{Layout: "desktop", Timestamp: fixed.Add(time.Second)}, nil)
	if first == second {
		t.Fatalf("expected distinct ids, both %s", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first {
		t.Errorf("expected oldest first, got %s", runs[0].ID)
	}
}

func TestStoreSameSecondIDs(t *testing.T) {
	st := New(t.TempDir())
	fixed := time.Unix(1700000000, 0)
	st.now = func() time.Time { return fixed }

	a, _ := st.Save(RunMetadata{}, nil)
	b, _ := st.Save(RunMetadata{}, nil)
	if a != "run_1700000000" || b != "run_1700000000_1" {
		t.Errorf("unexpected ids %s, %s", a, b)
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadFrames("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder(2)
	for i := 0; i < 5; i++ {
		rec.OnFrame(engine.Frame{
			Index:   i,
			Elapsed: time.Duration(i) * 100 * time.Millisecond,
			Snapshot: physics.Snapshot{
				{ID: "a", X: float64(i), Y: 0},
				{ID: "b", X: 0, Y: float64(i)},
			},
		})
	}

	if rec.Frames() != 3 {
		t.Errorf("expected 3 kept frames, got %d", rec.Frames())
	}
	rows := rec.Rows()
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if last := rows[5]; last.Frame != 4 || last.ID != "b" || last.Y != 4 || last.Time != 0.4 {
		t.Errorf("unexpected last row %+v", last)
	}

	rec.Reset()
	if len(rec.Rows()) != 0 || rec.Frames() != 0 {
		t.Error("expected empty recorder after reset")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, RunMetadata{ID: "x", Layout: "calm"}, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Run.ID != "x" || got.Rows == nil {
		t.Errorf("unexpected export %+v", got)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, RunMetadata{ID: "y"}, sampleRows()); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}
