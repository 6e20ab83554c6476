package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/conduit/pkg/pipe"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipe.conduit")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSummary(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, writeScript(t, "(up)"), pipe.DefaultConfig(), false, false); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"1 steps, 1 segments", "32 vertices, 32 triangles, 16 quads", "cursor (0,10,0)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunJSONWithDeviation(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, writeScript(t, "(up) (up)"), pipe.DefaultConfig(), true, true); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var doc struct {
		Stats struct {
			Vertices int `json:"vertices"`
		} `json:"stats"`
		Deviation *float64 `json:"deviation"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if doc.Stats.Vertices == 0 {
		t.Error("expected vertices in the JSON stats")
	}
	if doc.Deviation == nil || *doc.Deviation > 1e-6 {
		t.Errorf("deviation = %v, want ~0 for a straight run", doc.Deviation)
	}
}

func TestRunEvalError(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, writeScript(t, "(up"), pipe.DefaultConfig(), false, false)
	if err == nil {
		t.Fatal("expected an error for an unbalanced script")
	}
}

func TestRunMissingFile(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, filepath.Join(t.TempDir(), "nope.conduit"), pipe.DefaultConfig(), false, false); err == nil {
		t.Fatal("expected an error for a missing script")
	}
}

func TestValidateWarnings(t *testing.T) {
	var out bytes.Buffer
	if err := validate(&out, writeScript(t, "(up) (down) (size 40) (left)"), pipe.DefaultConfig()); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "reverses") || !strings.Contains(got, "size index 40") {
		t.Errorf("expected reversal and size warnings:\n%s", got)
	}
	if !strings.Contains(got, "4 steps ok") {
		t.Errorf("expected a success line:\n%s", got)
	}
}

func TestValidateEmptyScriptWarns(t *testing.T) {
	var out bytes.Buffer
	if err := validate(&out, writeScript(t, ""), pipe.DefaultConfig()); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out.String(), "no steps") {
		t.Errorf("expected an empty route warning:\n%s", out.String())
	}
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pipe.toml")
	if err := os.WriteFile(cfgPath, []byte("detail = 32\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--config", cfgPath, "--format", "yaml"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config command failed: %v", err)
	}
	if !strings.Contains(out.String(), "detail: 32") {
		t.Errorf("expected the loaded detail in YAML output:\n%s", out.String())
	}
}

func TestRunCommandRejectsBadConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", writeScript(t, "(up)"), "--config", "pipe.ini"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected an unknown format error, got %v", err)
	}
}
