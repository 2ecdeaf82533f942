package history

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecentRoundTrip(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Record("shader.lum", "shader.out", 0, 1024, 12*time.Millisecond)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty run id")
	}

	runs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != id || got.SourcePath != "shader.lum" || got.OutputPath != "shader.out" {
		t.Errorf("got %+v", got)
	}
	if got.Diagnostics != 0 || got.ArtifactSize != 1024 {
		t.Errorf("got %+v", got)
	}
	if got.Duration != 12*time.Millisecond {
		t.Errorf("Duration = %v, want 12ms", got.Duration)
	}
}

func TestRecentOrdersMostRecentFirst(t *testing.T) {
	s := openTestStore(t)

	for i, name := range []string{"first.lum", "second.lum", "third.lum"} {
		if _, err := s.Record(name, "out", i, int64(i), time.Millisecond); err != nil {
			t.Fatalf("Record(%s): %v", name, err)
		}
	}

	runs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	// compiled_at has second resolution; within one second Recent falls
	// back to insertion order, newest first.
	for i, name := range []string{"third.lum", "second.lum", "first.lum"} {
		if runs[i].SourcePath != name {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].SourcePath, name)
		}
	}
}

func TestRecentRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.Record("a.lum", "out", 0, 0, time.Millisecond); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	runs, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestFormatRowShowsOkForCleanRun(t *testing.T) {
	r := Run{ID: "0123456789abcdef", SourcePath: "shader.lum", ArtifactSize: 2048, Duration: 5 * time.Millisecond, CompiledAt: time.Now()}
	out := FormatRow(r)
	if !strings.Contains(out, "ok") || !strings.Contains(out, "shader.lum") {
		t.Errorf("FormatRow = %q", out)
	}
}

func TestFormatRowShowsDiagnosticCount(t *testing.T) {
	r := Run{ID: "0123456789abcdef", SourcePath: "shader.lum", Diagnostics: 3, CompiledAt: time.Now()}
	out := FormatRow(r)
	if !strings.Contains(out, "3 diagnostic(s)") {
		t.Errorf("FormatRow = %q, want it to mention the diagnostic count", out)
	}
}
