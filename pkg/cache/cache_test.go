package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/convgraph/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("NullCache.Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("empty cache should miss")
	}
	if err := c.Set(ctx, "svg", []byte("<svg/>"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "svg")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "svg"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	path := c.(*FileCache).path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	svg := k.RenderKey("digraph G {}", "svg")
	if svg[:7] != "render:" {
		t.Errorf("RenderKey unexpected: %s", svg)
	}
	if svg == k.RenderKey("digraph G {}", "png") {
		t.Error("Different formats should produce different keys")
	}
	if svg == k.RenderKey("digraph H {}", "svg") {
		t.Error("Different sources should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "v1:")
	key := scoped.RenderKey("digraph G {}", "svg")
	if key != "v1:"+NewDefaultKeyer().RenderKey("digraph G {}", "svg") {
		t.Errorf("ScopedKeyer RenderKey unexpected: %s", key)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestObserved(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	inner, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Observed(inner, "render")

	c.Get(ctx, "k")
	c.Set(ctx, "k", []byte("v"), 0)
	c.Get(ctx, "k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hooks = %d hits, %d misses, %d sets", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.(*FileCache).Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Clear = %d, %v; want 3", n, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir removed: %v", err)
	}
}
