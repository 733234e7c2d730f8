package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfigYAML = `
service:
  name: taskgate-test
placement:
  cluster_id: cluster-1
  task_template_id: task-1
  subnet_ids: [subnet-a, subnet-b]
  security_boundary_id: sg-1
  container_name: worker
backend:
  endpoint: https://orchestrator.internal
`

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stdout failed: %v", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stderr failed: %v", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)

	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCheckValidConfig(t *testing.T) {
	path := writeTestConfig(t, testConfigYAML)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCheck([]string{"--config", path})
	})
	if code != 0 {
		t.Fatalf("runCheck() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Configuration check PASSED") {
		t.Fatalf("stdout missing pass message: %s", stdout)
	}
	if !strings.Contains(stdout, "cluster-1") {
		t.Fatalf("stdout missing placement summary: %s", stdout)
	}
}

func TestRunCheckInvalidConfig(t *testing.T) {
	// One subnet is a startup failure.
	path := writeTestConfig(t, `
placement:
  cluster_id: cluster-1
  task_template_id: task-1
  subnet_ids: [subnet-a]
  security_boundary_id: sg-1
  container_name: worker
backend:
  endpoint: https://orchestrator.internal
`)

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCheck([]string{"--config", path})
	})
	if code != 1 {
		t.Fatalf("runCheck() code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "FAILED") {
		t.Fatalf("stderr missing failure message: %s", stderr)
	}
}

func TestRunLockWritesChecksums(t *testing.T) {
	path := writeTestConfig(t, testConfigYAML)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runLock([]string{"--config", path})
	})
	if code != 0 {
		t.Fatalf("runLock() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "checksums updated") {
		t.Fatalf("stdout missing success message: %s", stdout)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), ".checksums")); err != nil {
		t.Fatalf("expected .checksums to be written: %v", err)
	}
}

func TestRunCheckDetectsTampering(t *testing.T) {
	path := writeTestConfig(t, testConfigYAML)

	if code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runLock([]string{"--config", path})
	}); code != 0 {
		t.Fatalf("runLock() code = %d, stderr: %s", code, stderr)
	}

	if err := os.WriteFile(path, []byte(testConfigYAML+"\n# edited\n"), 0644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCheck([]string{"--config", path})
	})
	if code != 1 {
		t.Fatalf("runCheck() code = %d, want 1 after tampering", code)
	}
	if !strings.Contains(stderr, "tampering") {
		t.Fatalf("stderr missing tampering hint: %s", stderr)
	}
}

func TestPrintUsage(t *testing.T) {
	_, stdout, _ := captureOutputWithExitCode(t, func() int {
		printUsage()
		return 0
	})
	for _, cmd := range []string{"start", "check", "lock", "version"} {
		if !strings.Contains(stdout, cmd) {
			t.Fatalf("usage missing %q command: %s", cmd, stdout)
		}
	}
}
