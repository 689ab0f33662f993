package recorder

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/depthbridge/internal/depth"
)

func openTestRecorder(t *testing.T, path string) *Recorder {
	t.Helper()
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordAndReadBack(t *testing.T) {
	r := openTestRecorder(t, filepath.Join(t.TempDir(), "sweeps.db"))

	var dist depth.DistanceArray
	for i := range dist {
		dist[i] = uint16(100 + i)
	}
	if err := r.Record(1000, dist); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	dist[0] = 801
	if err := r.Record(2000, dist); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	sweeps, err := r.Sweeps()
	if err != nil {
		t.Fatalf("Sweeps() error = %v", err)
	}
	if len(sweeps) != 2 {
		t.Fatalf("got %d sweeps, want 2", len(sweeps))
	}
	if sweeps[0].TimeUsec != 1000 || sweeps[1].TimeUsec != 2000 {
		t.Errorf("timestamps = %d, %d; want 1000, 2000", sweeps[0].TimeUsec, sweeps[1].TimeUsec)
	}
	if sweeps[0].Distances[0] != 100 || sweeps[0].Distances[71] != 171 {
		t.Errorf("first sweep edges = %d, %d; want 100, 171", sweeps[0].Distances[0], sweeps[0].Distances[71])
	}
	if sweeps[1].Distances[0] != 801 {
		t.Errorf("second sweep sector 0 = %d, want sentinel 801", sweeps[1].Distances[0])
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweeps.db")

	first := openTestRecorder(t, path)
	var dist depth.DistanceArray
	if err := first.Record(1, dist); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	first.Close()

	second := openTestRecorder(t, path)
	if first.Session() == second.Session() {
		t.Fatal("two runs must get distinct session IDs")
	}
	n, err := second.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("new session sees %d sweeps, want 0", n)
	}

	sweeps, err := second.Sweeps()
	if err != nil {
		t.Fatalf("Sweeps() error = %v", err)
	}
	if len(sweeps) != 0 {
		t.Errorf("new session reads %d sweeps, want 0", len(sweeps))
	}
}

func TestCount(t *testing.T) {
	r := openTestRecorder(t, filepath.Join(t.TempDir(), "sweeps.db"))

	var dist depth.DistanceArray
	for i := 0; i < 5; i++ {
		if err := r.Record(uint64(i), dist); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	n, err := r.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Count() = %d, want 5", n)
	}
}
