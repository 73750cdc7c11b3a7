package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"video-ingest/internal/assets"
	"video-ingest/internal/catalog"
	"video-ingest/internal/database"
	"video-ingest/internal/logging"
)

// setupDirs points UPLOAD_DIR and DATABASE_DIR at fresh temp directories.
func setupDirs(t *testing.T) (uploadDir, databaseDir string) {
	t.Helper()
	uploadDir = t.TempDir()
	databaseDir = t.TempDir()
	t.Setenv("UPLOAD_DIR", uploadDir)
	t.Setenv("DATABASE_DIR", databaseDir)
	return uploadDir, databaseDir
}

func writeAsset(t *testing.T, uploadDir, id string, files ...string) {
	t.Helper()
	dir := filepath.Join(uploadDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func runCommand(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func withTerminal(t *testing.T, isTerminal bool) {
	t.Helper()
	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return isTerminal }
	t.Cleanup(func() { stdinIsTerminal = orig })
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)

	for _, want := range []string{"list", "delete <id>", "prune", "UPLOAD_DIR", "DATABASE_DIR"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected usage to mention %q", want)
		}
	}
}

func TestRunArguments(t *testing.T) {
	setupDirs(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"No command", nil, 1},
		{"Help", []string{"help"}, 0},
		{"Unknown command", []string{"frobnicate"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCommand(t, "", tt.args...)
			if code != tt.wantCode {
				t.Errorf("Expected exit code %d, got %d", tt.wantCode, code)
			}
		})
	}
}

func TestListIntegration(t *testing.T) {
	uploadDir, _ := setupDirs(t)

	code, stdout, _ := runCommand(t, "", "list")
	if code != 0 || !strings.Contains(stdout, "No assets.") {
		t.Fatalf("Expected empty listing, got code=%d out=%q", code, stdout)
	}

	writeAsset(t, uploadDir, "clip", "original.mp4", "high.mp4", "low.mp4")

	code, stdout, stderr := runCommand(t, "", "list")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "clip") {
		t.Errorf("Expected clip in listing, got %q", stdout)
	}
	if !strings.Contains(stdout, "high:ok") || !strings.Contains(stdout, "medium:failed") {
		t.Errorf("Expected per-tier outcomes, got %q", stdout)
	}
}

func TestDeleteIntegration(t *testing.T) {
	uploadDir, _ := setupDirs(t)
	writeAsset(t, uploadDir, "clip", "original.mp4")

	t.Run("Refuses without confirmation off a terminal", func(t *testing.T) {
		withTerminal(t, false)
		code, _, stderr := runCommand(t, "", "delete", "clip")
		if code != 1 || !strings.Contains(stderr, "-y") {
			t.Errorf("Expected refusal, got code=%d stderr=%q", code, stderr)
		}
		if _, err := os.Stat(filepath.Join(uploadDir, "clip")); err != nil {
			t.Errorf("Expected asset to remain: %v", err)
		}
	})

	t.Run("Declined prompt keeps asset", func(t *testing.T) {
		withTerminal(t, true)
		code, stdout, _ := runCommand(t, "n\n", "delete", "clip")
		if code != 0 || !strings.Contains(stdout, "Aborted.") {
			t.Errorf("Expected abort, got code=%d out=%q", code, stdout)
		}
		if _, err := os.Stat(filepath.Join(uploadDir, "clip")); err != nil {
			t.Errorf("Expected asset to remain: %v", err)
		}
	})

	t.Run("Confirmed prompt deletes", func(t *testing.T) {
		withTerminal(t, true)
		code, stdout, _ := runCommand(t, "yes\n", "delete", "clip")
		if code != 0 || !strings.Contains(stdout, "Deleted clip.") {
			t.Errorf("Expected deletion, got code=%d out=%q", code, stdout)
		}
		if _, err := os.Stat(filepath.Join(uploadDir, "clip")); !os.IsNotExist(err) {
			t.Errorf("Expected asset directory to be gone, got %v", err)
		}
	})

	t.Run("Unknown asset fails", func(t *testing.T) {
		code, _, stderr := runCommand(t, "", "delete", "clip", "-y")
		if code != 1 || !strings.Contains(stderr, "not found") {
			t.Errorf("Expected not found, got code=%d stderr=%q", code, stderr)
		}
	})

	t.Run("Missing id", func(t *testing.T) {
		code, _, _ := runCommand(t, "", "delete", "-y")
		if code != 1 {
			t.Errorf("Expected exit code 1, got %d", code)
		}
	})
}

func TestPruneIntegration(t *testing.T) {
	uploadDir, databaseDir := setupDirs(t)
	writeAsset(t, uploadDir, "keep", "original.mp4")
	writeAsset(t, uploadDir, "broken", ".staging-1234.mp4")

	db, err := database.New(context.Background(), filepath.Join(databaseDir, database.FileName), logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ghost := &assets.Asset{ID: "ghost", OriginalExtension: "mp4", Renditions: assets.PendingRenditions(), State: assets.StateReady}
	if err := db.UpsertAsset(context.Background(), ghost); err != nil {
		t.Fatal(err)
	}
	db.Close()

	code, stdout, stderr := runCommand(t, "", "prune", "-older-than", "0s")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Removed 1 incomplete directories and 1 stale index entries.") {
		t.Errorf("Unexpected prune summary %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(uploadDir, "broken")); !os.IsNotExist(err) {
		t.Errorf("Expected broken directory to be removed, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(uploadDir, "keep")); err != nil {
		t.Errorf("Expected committed asset to remain: %v", err)
	}
}

func TestPruneLeavesUploadInProgress(t *testing.T) {
	uploadDir, _ := setupDirs(t)
	cat, err := catalog.New(uploadDir, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	res, err := cat.Reserve("clip.mp4", "mp4")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.WriteStaging(res, strings.NewReader("video bytes")); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCommand(t, "", "prune")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Removed 0 incomplete directories") {
		t.Errorf("Unexpected prune summary %q", stdout)
	}
	if _, err := cat.Commit(res); err != nil {
		t.Errorf("Expected the upload to commit after prune, got %v", err)
	}
}

func TestParseGrace(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    time.Duration
		wantErr bool
	}{
		{"default", nil, catalog.DefaultPruneGrace, false},
		{"separate value", []string{"-older-than", "10m"}, 10 * time.Minute, false},
		{"equals form", []string{"--older-than=2h"}, 2 * time.Hour, false},
		{"zero", []string{"-older-than", "0s"}, 0, false},
		{"missing value", []string{"-older-than"}, 0, true},
		{"negative", []string{"-older-than", "-1h"}, 0, true},
		{"unknown flag", []string{"-force"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGrace(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseGrace(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTierSummary(t *testing.T) {
	r := assets.Renditions{
		"low":  {State: assets.RenditionFailed},
		"high": {State: assets.RenditionSucceeded},
	}
	if got := tierSummary(r); got != "high:ok low:failed" {
		t.Errorf("tierSummary() = %q", got)
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"list", "list"},
		{"rm -rf", "rm_-rf"},
		{"a\nb", "a_b"},
		{"\x1b[31m", "__31m"},
	}

	for _, tt := range tests {
		if got := sanitizeCommand(tt.input); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
