package batch

import (
	"os"
	"path/filepath"
	"testing"

	"mzify/internal/convert"
)

func TestCachePutGet(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	key := KeyFor("src", convert.Options{})
	if _, _, ok, err := cache.Get(key); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := cache.Put(key, "out", convert.Report{"a"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out, report, ok, err := cache.Get(key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out != "out" || len(report) != 1 || report[0] != "a" {
		t.Fatalf("unexpected payload %q %v", out, report)
	}
}

func TestCacheKeyDependsOnOptions(t *testing.T) {
	base := KeyFor("src", convert.Options{})
	if KeyFor("src", convert.Options{KeepMVColor: true}) == base {
		t.Fatalf("KeepMVColor must change the key")
	}
	if KeyFor("src", convert.Options{PluginName: "x"}) == base {
		t.Fatalf("PluginName must change the key")
	}
	if KeyFor("src2", convert.Options{}) == base {
		t.Fatalf("text must change the key")
	}
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	key := KeyFor("src", convert.Options{})
	p := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte("not msgpack"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, ok, err := cache.Get(key); ok || err != nil {
		t.Fatalf("expected miss for corrupt entry, got ok=%v err=%v", ok, err)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	if err := cache.Put(Digest{}, "x", nil); err != nil {
		t.Fatalf("Put on nil cache: %v", err)
	}
	if _, _, ok, _ := cache.Get(Digest{}); ok {
		t.Fatalf("nil cache must miss")
	}
}

func TestCacheDir(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	if cache.Dir() != dir {
		t.Fatalf("Dir = %q, want %q", cache.Dir(), dir)
	}
	var none *Cache
	if none.Dir() != "" {
		t.Fatalf("nil cache Dir = %q", none.Dir())
	}
}
