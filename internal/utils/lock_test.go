package utils

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDBLockWaitTimesOut(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cache.sqlite")
	first, err := NewDBLock(db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(first.Path(), "cache.sqlite.lock") {
		t.Fatalf("lock path = %s", first.Path())
	}
	if err := first.Lock(); err != nil {
		t.Fatalf("first lock: %v", err)
	}

	second, _ := NewDBLock(db)
	second.Wait = 50 * time.Millisecond
	if err := second.Lock(); err == nil {
		t.Fatal("second lock should time out while the first is held")
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := second.Lock(); err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	_ = second.Unlock()
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("WARN"); err != nil {
		t.Fatal(err)
	}
	if Log.GetLevel().String() != "warning" {
		t.Fatalf("level = %s", Log.GetLevel())
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Fatal("expected an error")
	}
	_ = SetLogLevel("info")
}
