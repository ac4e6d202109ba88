package recipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/condatools/condafeed/internal/models"
)

func TestReplaceURLsRewritesTemplatedLine(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "condafeed-test-rewrite-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	recipeDir := filepath.Join(tmpDir, "recipes", "pkga-1.2.3")
	os.MkdirAll(recipeDir, 0755)
	pkgsDir := filepath.Join(tmpDir, "pkgs")

	template := filepath.Join(recipeDir, "meta.yaml.template")
	content := `package:
  name: pkga
  version: {{ version }}

source:
  url: https://example.org/archive/{{ version }}.tar.gz
  md5: m5
`
	if err := os.WriteFile(template, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	entries := []models.SourceEntry{
		{
			URL:       "https://example.org/archive/1.2.3.tar.gz",
			HashKind:  "md5",
			HashValue: "m5",
			LocalName: "pkga-1.2.3.tar.gz",
		},
	}

	if err := ReplaceURLs(template, entries, pkgsDir); err != nil {
		t.Fatalf("ReplaceURLs failed: %v", err)
	}

	rewritten, err := os.ReadFile(template)
	if err != nil {
		t.Fatalf("Failed to read rewritten template: %v", err)
	}
	lines := strings.Split(string(rewritten), "\n")

	// The original line is preserved verbatim as a comment
	commented := "#  url: https://example.org/archive/{{ version }}.tar.gz"
	found := -1
	for i, line := range lines {
		if line == commented {
			found = i
			break
		}
	}
	if found == -1 {
		t.Fatalf("Commented original line missing in:\n%s", rewritten)
	}

	// The replacement points at the local copy, relative to the recipe dir
	want := "  url: " + filepath.Join("..", "..", "pkgs", "pkga-1.2.3.tar.gz")
	if lines[found+1] != want {
		t.Errorf("Expected replacement %q, got %q", want, lines[found+1])
	}

	// The version line is not a url line and passes through untouched
	if !strings.Contains(string(rewritten), "version: {{ version }}") {
		t.Error("Non-url templated line was modified")
	}
}

func TestReplaceURLsLeavesUnmatchedLineAlone(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "condafeed-test-rewrite-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	template := filepath.Join(tmpDir, "meta.yaml.template")
	line := "  url: https://other.example.org/{{ version }}.tar.gz"
	if err := os.WriteFile(template, []byte(line+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	entries := []models.SourceEntry{
		{URL: "https://example.org/archive/1.2.3.tar.gz", LocalName: "pkga-1.2.3.tar.gz"},
	}

	if err := ReplaceURLs(template, entries, filepath.Join(tmpDir, "pkgs")); err != nil {
		t.Fatalf("ReplaceURLs failed: %v", err)
	}

	rewritten, err := os.ReadFile(template)
	if err != nil {
		t.Fatalf("Failed to read rewritten template: %v", err)
	}
	if string(rewritten) != line+"\n" {
		t.Errorf("Unmatched line changed:\n%s", rewritten)
	}
}

func TestReplaceURLsListItemForm(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "condafeed-test-rewrite-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	template := filepath.Join(tmpDir, "meta.yaml.template")
	content := "  - url: https://example.org/archive/{{ version }}.tar.gz\n"
	if err := os.WriteFile(template, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	entries := []models.SourceEntry{
		{URL: "https://example.org/archive/1.2.3.tar.gz", LocalName: "pkga-1.2.3.tar.gz"},
	}

	if err := ReplaceURLs(template, entries, filepath.Join(tmpDir, "pkgs")); err != nil {
		t.Fatalf("ReplaceURLs failed: %v", err)
	}

	rewritten, _ := os.ReadFile(template)
	if !strings.Contains(string(rewritten), "  - url: "+filepath.Join("pkgs", "pkga-1.2.3.tar.gz")) {
		t.Errorf("List item url not rewritten:\n%s", rewritten)
	}
}
