package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestRecordAndListImports(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, id := range []string{"calculator", "firefox", "calculator"} {
		imp := &Import{RecordID: id, FlatpakID: "org.example." + id, Replaced: i == 2, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.RecordImport(imp); err != nil {
			t.Fatalf("RecordImport: %v", err)
		}
		if imp.ID == 0 {
			t.Error("expected ID to be set")
		}
	}

	all, err := s.ListImports(0)
	if err != nil {
		t.Fatalf("ListImports: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d imports, want 3", len(all))
	}
	if all[0].RecordID != "calculator" || !all[0].Replaced {
		t.Errorf("latest import = %+v", all[0])
	}
	if !all[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("CreatedAt = %v", all[0].CreatedAt)
	}

	limited, err := s.ListImports(2)
	if err != nil {
		t.Fatalf("ListImports(2): %v", err)
	}
	if len(limited) != 2 || limited[1].RecordID != "firefox" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestRecordImportDefaultsTime(t *testing.T) {
	s := newTestStore(t)
	imp := &Import{RecordID: "x", FlatpakID: "org.example.x"}
	if err := s.RecordImport(imp); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}
	if imp.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestRecordAndListDownloads(t *testing.T) {
	s := newTestStore(t)
	entries := []*Download{
		{RecordID: "calculator", URL: "https://example.org/icon.png", Path: "icons/calculator.png", Bytes: 1200},
		{RecordID: "firefox", URL: "https://example.org/ff.png", Path: "icons/firefox.png", Bytes: 800},
		{RecordID: "calculator", URL: "https://example.org/s0.png", Path: "screenshots/calculator-0.png", Bytes: 90000},
	}
	for _, d := range entries {
		if err := s.RecordDownload(d); err != nil {
			t.Fatalf("RecordDownload: %v", err)
		}
	}

	calc, err := s.ListDownloads("calculator")
	if err != nil {
		t.Fatalf("ListDownloads: %v", err)
	}
	if len(calc) != 2 {
		t.Fatalf("got %d downloads, want 2", len(calc))
	}
	if calc[0].Path != "icons/calculator.png" || calc[1].Bytes != 90000 {
		t.Errorf("downloads = %+v %+v", calc[0], calc[1])
	}

	all, err := s.ListDownloads("")
	if err != nil {
		t.Fatalf("ListDownloads all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d downloads, want 3", len(all))
	}
}
