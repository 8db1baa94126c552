package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coolbeans/boelex/pkg/boe"
	"github.com/coolbeans/boelex/pkg/snapshot"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOELEX_DATABASE_URL", "DATABASE_URL", "BOELEX_BASE_URL", "BOELEX_USER_AGENT",
		"BOELEX_CACHE_DIR", "AWS_S3_BUCKET", "AWS_REGION", "AWS_ACCESS_KEY_ID",
		"AWS_SECRET_ACCESS_KEY", "BOELEX_WATCH_DIR", "BOELEX_SNAPSHOT_TYPE", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.BOE.BaseURL != boe.DefaultBaseURL {
		t.Errorf("BOE.BaseURL = %q", cfg.BOE.BaseURL)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Snapshot.Enabled {
		t.Error("snapshots should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
	if _, err := cfg.DatabaseURL(); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Errorf("DatabaseURL() = %v, want ErrMissingDatabaseURL", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "boelex.yaml", `
boe:
  base_url: https://boe.example.test
  rate_limit: 250ms
  max_retries: 4
  cache_dir: /tmp/boe-cache
database:
  url: postgres://localhost/boelex
snapshot:
  enabled: true
  type: s3
  s3_bucket: gazette-pages
  s3_prefix: boe
server:
  addr: ":9090"
  mode: debug
watch:
  dir: ./pages
  debounce: 1s
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BOE.BaseURL != "https://boe.example.test" {
		t.Errorf("BOE.BaseURL = %q", cfg.BOE.BaseURL)
	}
	if cfg.BOE.RateLimit != 250*time.Millisecond {
		t.Errorf("BOE.RateLimit = %v", cfg.BOE.RateLimit)
	}
	if cfg.BOE.MaxRetries != 4 {
		t.Errorf("BOE.MaxRetries = %d", cfg.BOE.MaxRetries)
	}
	if cfg.BOE.UserAgent != boe.DefaultUserAgent {
		t.Errorf("unset BOE.UserAgent lost its default: %q", cfg.BOE.UserAgent)
	}
	if url, err := cfg.DatabaseURL(); err != nil || url != "postgres://localhost/boelex" {
		t.Errorf("DatabaseURL() = %q, %v", url, err)
	}
	if !cfg.Snapshot.Enabled || cfg.Snapshot.Type != snapshot.TypeS3 || cfg.Snapshot.S3Bucket != "gazette-pages" {
		t.Errorf("Snapshot = %+v", cfg.Snapshot)
	}
	if cfg.Snapshot.S3Region != "eu-west-1" {
		t.Errorf("unset Snapshot.S3Region lost its default: %q", cfg.Snapshot.S3Region)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.Mode != "debug" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Watch.Dir != "./pages" || cfg.Watch.Debounce != time.Second {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "boelex.yaml", "database:\n  url: postgres://file/db\nserver:\n  addr: \":9090\"\n")

	t.Setenv("DATABASE_URL", "postgres://fallback/db")
	t.Setenv("BOELEX_DATABASE_URL", "postgres://env/db")
	t.Setenv("PORT", "7000")
	t.Setenv("BOELEX_SNAPSHOT_TYPE", "s3")
	t.Setenv("AWS_S3_BUCKET", "env-bucket")
	t.Setenv("BOELEX_CACHE_DIR", "/var/cache/boelex")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.URL != "postgres://env/db" {
		t.Errorf("Database.URL = %q, want BOELEX_DATABASE_URL to win", cfg.Database.URL)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if !cfg.Snapshot.Enabled || cfg.Snapshot.Type != snapshot.TypeS3 || cfg.Snapshot.S3Bucket != "env-bucket" {
		t.Errorf("Snapshot = %+v", cfg.Snapshot)
	}
	if cfg.BOE.CacheDir != "/var/cache/boelex" {
		t.Errorf("BOE.CacheDir = %q", cfg.BOE.CacheDir)
	}
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://fallback/db")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.URL != "postgres://fallback/db" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that exist, even empty ones.
	os.Unsetenv("BOELEX_USER_AGENT")
	t.Cleanup(func() { os.Unsetenv("BOELEX_USER_AGENT") })

	envPath := writeFile(t, t.TempDir(), "test.env", "BOELEX_USER_AGENT=dotenv-agent/1.0\n")

	cfg, err := Load("", envPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BOE.UserAgent != "dotenv-agent/1.0" {
		t.Errorf("BOE.UserAgent = %q", cfg.BOE.UserAgent)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml"), ""); err == nil {
		t.Error("Load of missing config should fail")
	}
	if _, err := Load("", filepath.Join(dir, "missing.env")); err == nil {
		t.Error("Load of explicit missing env file should fail")
	}

	bad := writeFile(t, dir, "bad.yaml", "boe: [unclosed")
	if _, err := Load(bad, ""); err == nil {
		t.Error("Load of malformed YAML should fail")
	}
}

func TestValidate_ReportsEverySection(t *testing.T) {
	cfg := Default()
	cfg.BOE.BaseURL = "not a url"
	cfg.BOE.RateLimit = -time.Second
	cfg.Snapshot.Enabled = true
	cfg.Snapshot.Type = snapshot.TypeS3
	cfg.Server.Addr = ""
	cfg.Server.Mode = "production"
	cfg.Watch.Debounce = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}

	for _, want := range []string{"boe: base_url", "boe: rate_limit", "snapshot: s3_bucket", "server: addr", "server: unknown mode", "watch: debounce"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q:\n%v", want, err)
		}
	}
}

func TestValidate_UnknownSnapshotType(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.Enabled = true
	cfg.Snapshot.Type = "ftp"

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), `unknown type "ftp"`) {
		t.Errorf("Validate() = %v", err)
	}
}
