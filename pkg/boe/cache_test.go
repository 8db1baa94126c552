package boe

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiskCache_SetAndGet(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	doc := Document{
		LawID:      "BOE-A-1985-5392",
		URL:        "https://www.boe.es/buscar/act.php?id=BOE-A-1985-5392",
		HTML:       "<p>Artículo 1.</p>",
		StatusCode: 200,
		FetchedAt:  time.Now().UTC(),
	}

	if err := cache.Set(doc.URL, doc); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := cache.Get(doc.URL)
	if !found {
		t.Fatal("Get returned not found for cached URL")
	}
	if got.HTML != doc.HTML {
		t.Errorf("HTML: got %q, want %q", got.HTML, doc.HTML)
	}
	if got.LawID != doc.LawID {
		t.Errorf("LawID: got %q, want %q", got.LawID, doc.LawID)
	}
	if !got.Cached {
		t.Error("Cached: got false, want true")
	}
}

func TestDiskCache_Miss(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	if _, found := cache.Get("https://www.boe.es/nothing"); found {
		t.Error("Get returned found for uncached URL")
	}
}

func TestDiskCache_Expired(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(dir, time.Millisecond)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	url := "https://www.boe.es/expiring"
	if err := cache.Set(url, Document{URL: url}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, found := cache.Get(url); found {
		t.Error("Get returned expired entry")
	}
	if _, err := os.Stat(cache.pathFor(url)); !os.IsNotExist(err) {
		t.Error("expired entry was not removed")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	url := "https://www.boe.es/corrupt"
	if err := os.WriteFile(cache.pathFor(url), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, found := cache.Get(url); found {
		t.Error("Get returned corrupt entry")
	}
}

func TestDiskCache_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	if _, err := NewDiskCache(dir, time.Hour); err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("cache directory not created: %v", err)
	}
}
