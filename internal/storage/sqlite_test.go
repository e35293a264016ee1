package storage

import (
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_GetSetRemove(t *testing.T) {
	store := newTestStore(t)

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) ok=%v err=%v, want absent", ok, err)
	}

	if err := store.Set("a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set("a", "2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := store.Get("a")
	if err != nil || !ok || v != "2" {
		t.Fatalf("Get(a)=%q ok=%v err=%v, want 2", v, ok, err)
	}

	if err := store.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := store.Get("a"); ok {
		t.Fatalf("key still present after Remove")
	}
	// 删除不存在的 key 不是错误 / Removing an absent key is not an error
	if err := store.Remove("a"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "studyroom.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Set(KeyIdentity, `{"name":"lin"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	v, ok, err := reopened.Get(KeyIdentity)
	if err != nil || !ok || v != `{"name":"lin"}` {
		t.Fatalf("after reopen Get=%q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteStore_Keys(t *testing.T) {
	store := newTestStore(t)
	for _, k := range []string{"u/b/x", "u/a/y", "u/a/x", "identity"} {
		if err := store.Set(k, "v"); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := store.Keys("u/a/")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if strings.Join(keys, ",") != "u/a/x,u/a/y" {
		t.Fatalf("Keys=%v", keys)
	}
}

func TestSQLiteStore_Closed(t *testing.T) {
	store := newTestStore(t)
	_ = store.Close()
	if err := store.Set("k", "v"); err != ErrClosed {
		t.Fatalf("Set after close err=%v, want ErrClosed", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
