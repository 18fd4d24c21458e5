package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireLockCreatesFileWithPID(t *testing.T) {
	stateDir := t.TempDir()

	lock, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	lockPath := filepath.Join(stateDir, LockFileName)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("failed to read lock file: %v", err)
	}
	want := fmt.Sprintf("pid=%d\n", os.Getpid())
	if string(data) != want {
		t.Errorf("expected lock content %q, got %q", want, string(data))
	}
}

func TestAcquireLockCreatesStateDirectory(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "nested", "state")

	lock, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("AcquireLock should create missing directories: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(stateDir); err != nil {
		t.Errorf("state directory was not created: %v", err)
	}
}

func TestReleaseRemovesLockFile(t *testing.T) {
	stateDir := t.TempDir()

	lock, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	lockPath := filepath.Join(stateDir, LockFileName)
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("lock file should be removed after release")
	}

	// Releasing twice is safe.
	if err := lock.Release(); err != nil {
		t.Errorf("second Release should be a no-op: %v", err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	stateDir := t.TempDir()

	lock, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("first AcquireLock failed: %v", err)
	}
	lock.Release()

	lock2, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("reacquire after release failed: %v", err)
	}
	lock2.Release()
}

func TestExtractPID(t *testing.T) {
	if got := extractPID("pid=12345\n"); got != 12345 {
		t.Errorf("expected 12345, got %d", got)
	}
	if got := extractPID("garbage"); got != 0 {
		t.Errorf("expected 0 for missing pid, got %d", got)
	}
	if got := extractPID("pid=\n"); got != 0 {
		t.Errorf("expected 0 for empty pid, got %d", got)
	}
}

func TestLockErrorMessage(t *testing.T) {
	err := &LockError{LockPath: "/tmp/x.lock", Holder: "PID 42 (running)"}
	msg := err.Error()
	if !strings.Contains(msg, "/tmp/x.lock") {
		t.Errorf("message should name the lock file: %q", msg)
	}
	if !strings.Contains(msg, "PID 42") {
		t.Errorf("message should describe the holder: %q", msg)
	}
}
