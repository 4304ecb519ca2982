package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildBinary compiles the CLI into dir.
func buildBinary(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "bin", "skinlog")
	build := exec.Command("go", "build", "-o", bin, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\nOutput: %s", err, out)
	}
	return bin
}

func isolatedEnv(home string) []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "SKINLOG_") {
			continue
		}
		env = append(env, e)
	}
	return append(env, "HOME="+home, "SKINLOG_TIMEZONE=UTC")
}

func TestEndToEndWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end workflow in short mode")
	}

	tempDir := t.TempDir()
	cliPath := buildBinary(t, tempDir)
	env := isolatedEnv(tempDir)
	configDir := filepath.Join(tempDir, "skinlog")

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command(cliPath, append([]string{"--config-dir", configDir}, args...)...)
		cmd.Env = env
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("Command skinlog %v failed: %v\nOutput: %s", args, err, out)
		}
		return string(out)
	}

	run("init")
	run("product", "add", "Gel Cleanser", "-c", "cleanser", "-p", "12.50", "--stash")
	run("product", "add", "SPF 50", "-c", "sunscreen", "--wish")
	run("routine", "add", "AM", "-p", "Gel Cleanser")
	run("log", "apply", "-r", "AM", "-t", "08:00", "-d", "2026-03-01")
	run("routinelog", "start", "AM", "-f", "AM", "-t", "08:05", "-d", "2026-03-01")

	if out := run("stash", "list"); !strings.Contains(out, "Gel Cleanser") {
		t.Errorf("stash list missing product:\n%s", out)
	}
	if out := run("wish", "list"); !strings.Contains(out, "SPF 50") {
		t.Errorf("wish list missing product:\n%s", out)
	}
	out := run("log", "show", "-d", "2026-03-01")
	if !strings.Contains(out, "08:00") || !strings.Contains(out, "AM") {
		t.Errorf("log show missing application:\n%s", out)
	}

	exportPath := filepath.Join(tempDir, "export.yaml")
	run("export", exportPath)
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "Gel Cleanser") {
		t.Errorf("export missing product:\n%s", data)
	}

	if out := run("validate"); !strings.Contains(out, "No conflicts detected.") {
		t.Errorf("unexpected validation output:\n%s", out)
	}
}
