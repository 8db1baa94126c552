package watch

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coolbeans/boelex/pkg/extract"
)

const page = `<div class="bloque" id="a1"><h5 class="articulo">Artículo 1. Objeto</h5><p>Uno.</p></div>
<div class="bloque" id="a2"><h5 class="articulo">Artículo 2. Ámbito</h5><p>Dos.</p></div>`

type recorder struct {
	mu    sync.Mutex
	calls map[string][]extract.ArticleRecord
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{calls: make(map[string][]extract.ArticleRecord), seen: make(chan string, 16)}
}

func (r *recorder) handle(path string, records []extract.ArticleRecord) {
	r.mu.Lock()
	r.calls[path] = records
	r.mu.Unlock()
	r.seen <- path
}

func TestIsPage(t *testing.T) {
	tests := map[string]bool{
		"ley.html":     true,
		"ley.HTM":      true,
		"dir/ley.htm":  true,
		"ley.html.tmp": false,
		"ley.txt":      false,
		"html":         false,
		"ley.html.swp": false,
		"notas.xhtml":  false,
		"BOE-A-1.Html": true,
		"":             false,
	}
	for path, want := range tests {
		if got := IsPage(path); got != want {
			t.Errorf("IsPage(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatcher_ProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ley.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := newRecorder()
	w := New(dir, rec.handle)

	records, err := w.ProcessFile(path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ProcessFile returned %d records, want 2", len(records))
	}
	if len(rec.calls[path]) != 2 {
		t.Errorf("handler received %d records, want 2", len(rec.calls[path]))
	}

	if _, err := w.ProcessFile(filepath.Join(dir, "missing.html")); err == nil {
		t.Error("ProcessFile of missing file should fail")
	}
}

func TestWatcher_Scan(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"a.html":  page,
		"b.htm":   page,
		"c.txt":   page,
		"d.html~": page,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.html"), 0o755); err != nil {
		t.Fatal(err)
	}

	rec := newRecorder()
	n, err := New(dir, rec.handle).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Scan processed %d files, want 2", n)
	}
}

func TestWatcher_DetectsChanges(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	var logs bytes.Buffer

	w := New(dir, rec.handle, WithDebounce(20*time.Millisecond), WithLogger(log.New(&logs, "", 0)))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "ley.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-rec.seen:
		if got != path {
			t.Errorf("handler called for %q, want %q", got, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	rec.mu.Lock()
	records := rec.calls[path]
	rec.mu.Unlock()
	if len(records) != 2 {
		t.Errorf("handler received %d records, want 2", len(records))
	}
	for name := range rec.calls {
		if strings.HasSuffix(name, ".txt") {
			t.Errorf("non-page file %q was processed", name)
		}
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w := New(t.TempDir(), nil)

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := w.Start(); err == nil {
		t.Error("second Start should fail while running")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), nil)
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("Start on missing directory should fail")
	}
}
