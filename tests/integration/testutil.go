// Package integration runs the agenda binary against isolated data
// directories.
package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// agendaBin is the path to the built agenda binary.
	agendaBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv provides an isolated test environment with its own config and data directory.
type TestEnv struct {
	t       *testing.T
	Config  string
	DataDir string
}

// NewTestEnv creates a new isolated test environment. backend is written to
// config.yaml.
func NewTestEnv(t *testing.T, backend string) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build agenda: %v", buildErr)
	}
	if agendaBin == "" {
		t.Fatal("agenda binary not built (agendaBin is empty)")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configContent := "backend: " + backend + "\nlog:\n  level: error\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &TestEnv{t: t, Config: configDir, DataDir: dataDir}
}

// CmdResult holds the result of an agenda command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunAgenda executes the agenda CLI with the given arguments.
func (e *TestEnv) RunAgenda(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(agendaBin, allArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			e.t.Fatalf("failed to run agenda: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// MustRunAgenda executes the agenda CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunAgenda(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunAgenda(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("agenda %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// MustCreate runs a --json create command and returns the new id.
func (e *TestEnv) MustCreate(args ...string) string {
	e.t.Helper()
	res := ParseJSON[map[string]string](e.t, e.MustRunAgenda(append([]string{"--json"}, args...)...).Stdout)
	if res["id"] == "" {
		e.t.Fatalf("agenda %v returned no id", args)
	}
	return res["id"]
}

// MustList runs a --json list command and decodes the records.
func (e *TestEnv) MustList(args ...string) []Record {
	e.t.Helper()
	return ParseJSON[[]Record](e.t, e.MustRunAgenda(append([]string{"--json"}, args...)...).Stdout)
}

// FallbackFile returns the path of a fallback collection file.
func (e *TestEnv) FallbackFile(collection string) string {
	return filepath.Join(e.DataDir, "kv", collection+".jsonl")
}

// Record is a decoded entity as printed by the CLI.
type Record map[string]any

// ID returns the record id.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// ReadJSONLFile reads a JSONL file (one JSON object per line) and returns a slice.
func ReadJSONLFile[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open JSONL file %s: %v", path, err)
	}
	defer f.Close()

	var results []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			t.Fatalf("failed to parse JSONL line %q: %v", line, err)
		}
		results = append(results, item)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to read JSONL file %s: %v", path, err)
	}
	return results
}
