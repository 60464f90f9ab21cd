package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/cvingest/internal/fixtures"
)

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after file are moved first",
			args:     []string{"cv.pdf", "-format", "json"},
			expected: []string{"-format", "json", "cv.pdf"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-format", "json", "cv.pdf"},
			expected: []string{"-format", "json", "cv.pdf"},
		},
		{
			name:     "file only returns unchanged",
			args:     []string{"cv.pdf"},
			expected: []string{"cv.pdf"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"a", "b", "-output", "out"},
			expected: []string{"-output", "out", "a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderArgs(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("reorderArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenNoPath(t *testing.T) {
	dir := t.TempDir()
	content := "batch:\n  batch_size: 3\ncache:\n  enabled: false\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if filepath.Base(resolved) != "config.yaml" {
		t.Errorf("resolved = %q, want cwd config.yaml", resolved)
	}
	if cfg.Batch.BatchSize != 3 {
		t.Errorf("BatchSize = %d, want 3", cfg.Batch.BatchSize)
	}
}

func TestLoadConfig_fallsBackToEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("INGESTION_MAX_FILE_SIZE_MB", "3")

	cfg, resolved, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Ingestion.MaxFileSizeMB != 3 {
		t.Errorf("MaxFileSizeMB = %d, want 3", cfg.Ingestion.MaxFileSizeMB)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 9191\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if resolved != path || cfg.Server.Port != 9191 {
		t.Errorf("got (%q, port %d), want (%q, 9191)", resolved, cfg.Server.Port, path)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

// writeConfig writes a config whose cache lives inside dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := "cache:\n  enabled: true\n  dir: ./cache\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunParse(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	cv, err := fixtures.Write(dir, "jane.docx", fixtures.DOCX(fixtures.Resume...))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runParse([]string{cv, "-config", cfgPath, "-format", "json"}, &out); err != nil {
		t.Fatalf("runParse: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got["success"] != true || got["valid"] != true {
		t.Errorf("success=%v valid=%v, want true", got["success"], got["valid"])
	}
	if _, ok := got["record"].(map[string]any); !ok {
		t.Errorf("record missing from output")
	}
}

func TestRunParse_rejected(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	bad, err := fixtures.Write(dir, "broken.pdf", fixtures.CorruptPDF())
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err = runParse([]string{"-config", cfgPath, bad}, &out)
	if !errors.Is(err, errRejected) {
		t.Fatalf("err = %v, want errRejected", err)
	}
	if !strings.Contains(out.String(), "broken.pdf") {
		t.Errorf("text output should name the file:\n%s", out.String())
	}

	if err := runParse([]string{"-config", cfgPath}, &out); err == nil || errors.Is(err, errRejected) {
		t.Errorf("missing file argument: err = %v, want usage error", err)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	in := filepath.Join(dir, "in")
	if err := os.Mkdir(in, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.docx", "b.docx"} {
		if _, err := fixtures.Write(in, name, fixtures.DOCX(fixtures.Resume...)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := fixtures.Write(in, "c.pdf", fixtures.CorruptPDF()); err != nil {
		t.Fatal(err)
	}
	xlsx := filepath.Join(dir, "report.xlsx")

	var out, progress bytes.Buffer
	args := []string{"-config", cfgPath, "-format", "json", "-workers", "2", "-xlsx", xlsx, in}
	if err := runBatch(args, &out, &progress); err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	var rep struct {
		Total     int `json:"total"`
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
		CacheHits int `json:"cacheHits"`
	}
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rep.Total != 3 || rep.Succeeded != 2 || rep.Failed != 1 {
		t.Errorf("report = %+v, want 3 total, 2 succeeded, 1 failed", rep)
	}
	if got := strings.Count(progress.String(), "\n"); got != 3 {
		t.Errorf("progress lines = %d, want 3", got)
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("xlsx report not written: %v", err)
	}

	out.Reset()
	if err := runBatch([]string{"-config", cfgPath, "-check", in}, &out, &progress); err != nil {
		t.Fatalf("runBatch -check: %v", err)
	}
	if out.Len() == 0 {
		t.Error("check summary is empty")
	}
}

func TestRunConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var out bytes.Buffer
	if err := runConfig([]string{"-init", path}, &out); err != nil {
		t.Fatalf("runConfig -init: %v", err)
	}
	cfg, _, err := loadConfig(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Ingestion.MaxFileSizeMB != 10 {
		t.Errorf("MaxFileSizeMB = %d, want 10", cfg.Ingestion.MaxFileSizeMB)
	}
	if err := runConfig([]string{"-init", path}, &out); err == nil {
		t.Error("expected error when config already exists")
	}

	out.Reset()
	if err := runConfig([]string{"-config", path}, &out); err != nil {
		t.Fatalf("runConfig: %v", err)
	}
	if !strings.Contains(out.String(), "max_file_size_mb: 10") {
		t.Errorf("effective config missing ingestion section:\n%s", out.String())
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
