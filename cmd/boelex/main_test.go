package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const samplePage = `<html><body>
<div class="bloque" id="pr"><h5 class="articulo">Preámbulo</h5><p>Texto del preámbulo.</p></div>
<div class="bloque" id="a4bis"><p class="bloque">[Bloque 6: #a4bis]</p><h5 class="articulo">Artículo 4 bis. Ámbito</h5><p class="parrafo">Se aplica a los arrendamientos.</p></div>
<div class="bloque" id="a4"><h5 class="articulo">Artículo 4.</h5><p class="parrafo">Regla general.</p></div>
</body></html>`

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestNumeralCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"compound", []string{"numeral", "ciento", "ochenta", "y", "cuatro"}, "184\n", false},
		{"ordinal with suffix", []string{"numeral", "cuarto bis"}, "4 bis\n", false},
		{"unknown", []string{"numeral", "mil"}, "", true},
		{"no args", []string{"numeral"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got output %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumeralCommandJSON(t *testing.T) {
	got, err := runCLI(t, "numeral", "treinta y cinco quáter", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out numeralOutput
	if err := json.Unmarshal([]byte(got), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", got, err)
	}
	if out.Resolved != "35 quater" || out.Number != 35 || out.Suffix.String() != "quater" {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestNormalizeCommand(t *testing.T) {
	got, err := runCLI(t, "normalize", "55BIS", "22 quáter", "preámbulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", got)
	}
	if lines[0] != "55BIS\t55 bis" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "22 quáter\t22 quater" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "not an article identifier") {
		t.Errorf("line 2 = %q, want invalid marker", lines[2])
	}
}

func TestNormalizeCommandSorted(t *testing.T) {
	got, err := runCLI(t, "normalize", "--sort", "--format", "json", "4 ter", "4", "4bis", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var results []normalizeOutput
	if err := json.Unmarshal([]byte(got), &results); err != nil {
		t.Fatalf("invalid JSON %q: %v", got, err)
	}
	want := []string{"3", "4", "4 bis", "4 ter"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, w := range want {
		if results[i].Canonical != w {
			t.Errorf("results[%d] = %q, want %q", i, results[i].Canonical, w)
		}
	}
}

func TestExtractCommand(t *testing.T) {
	source := writeTemp(t, "page.html", samplePage)

	t.Run("text", func(t *testing.T) {
		got, err := runCLI(t, "extract", "--source", source)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := strings.Index(got, "Artículo 4\n")
		second := strings.Index(got, "Artículo 4 bis. Ámbito")
		if first < 0 || second < 0 || first > second {
			t.Errorf("articles missing or out of order:\n%s", got)
		}
		if !strings.Contains(got, "2 articles from 3 containers") {
			t.Errorf("missing summary line:\n%s", got)
		}
	})

	t.Run("skipped", func(t *testing.T) {
		got, err := runCLI(t, "extract", "--source", source, "--skipped")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(got, "skipped pr:") {
			t.Errorf("expected preamble to be reported as skipped:\n%s", got)
		}
	})

	t.Run("single article yaml", func(t *testing.T) {
		got, err := runCLI(t, "extract", "--source", source, "--article", "cuarto bis", "--format", "yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var record map[string]any
		if err := yaml.Unmarshal([]byte(got), &record); err != nil {
			t.Fatalf("invalid YAML %q: %v", got, err)
		}
		if record["article_number"] != "4 bis" {
			t.Errorf("article_number = %v", record["article_number"])
		}
		if record["title"] != "Ámbito" {
			t.Errorf("title = %v", record["title"])
		}
	})

	t.Run("missing article", func(t *testing.T) {
		if _, err := runCLI(t, "extract", "--source", source, "--article", "99"); err == nil {
			t.Error("expected error for missing article")
		}
	})
}

func TestExtractCommandRequiresOneSource(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"none", []string{"extract"}},
		{"both", []string{"extract", "--source", "a.html", "--law", "BOE-A-1994-26003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), "exactly one of") {
				t.Errorf("expected source error, got %v", err)
			}
		})
	}
}

func TestCompareCommand(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		got, err := runCLI(t, "compare", "--a", "El plazo será de un mes.", "--b", "el plazo sera de un mes")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "match: true\nsimilarity: 100\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("files", func(t *testing.T) {
		a := writeTemp(t, "a.txt", "arrendamiento de vivienda habitual")
		b := writeTemp(t, "b.txt", "contrato de obra pública licitación")
		got, err := runCLI(t, "compare", a, b, "--format", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(got, `"match": false`) {
			t.Errorf("expected no match, got %s", got)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		if _, err := runCLI(t, "compare", "--a", "solo uno"); err == nil {
			t.Error("expected error when --b is missing")
		}
	})
}

func TestWriteOutput(t *testing.T) {
	value := map[string]int{"total": 2}
	text := func() string { return "total 2\n" }

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"", "total 2\n", false},
		{"text", "total 2\n", false},
		{"json", "{\n  \"total\": 2\n}\n", false},
		{"yaml", "total: 2\n", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeOutput(&buf, tt.format, value, text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestCommandsRequireLaw(t *testing.T) {
	for _, name := range []string{"fetch", "sync"} {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, name)
			if err == nil || !strings.Contains(err.Error(), "--law") {
				t.Errorf("expected --law error, got %v", err)
			}
		})
	}
}
