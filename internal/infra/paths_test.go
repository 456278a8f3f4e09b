package infra

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestCreateLockFile(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "instance.lock")

	unlock, err := CreateLockFile(dir)
	if err != nil {
		t.Fatalf("CreateLockFile failed: %v", err)
	}

	data, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("Lock file not readable: %v", err)
	}
	if got := string(data); got != strconv.Itoa(os.Getpid()) {
		t.Errorf("Lock file content = %q, want current pid", got)
	}

	if _, err := CreateLockFile(dir); err == nil {
		t.Error("Second instance must be rejected while the lock is held")
	}

	unlock()
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Unlock must remove the lock file")
	}

	// Lock can be taken again after release.
	unlock2, err := CreateLockFile(dir)
	if err != nil {
		t.Fatalf("Relock after unlock failed: %v", err)
	}
	unlock2()
}
