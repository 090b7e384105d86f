package batch

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"mzify/internal/convert"
	"mzify/internal/rules"
)

// Current schema version - increment when cachePayload format changes
const cacheSchemaVersion uint16 = 1

// Digest keys a cached conversion.
type Digest [32]byte

// Cache stores conversion results on disk keyed by input content, catalog
// version and options. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema  uint16
	Catalog string
	Output  string
	Changes uint32
	Report  []string
}

// DefaultCacheDir returns the per-user cache location for app.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// OpenCache initializes a cache rooted at dir.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// KeyFor hashes everything that affects the result of converting text.
func KeyFor(text string, opts convert.Options) Digest {
	h := sha256.New()
	writeField := func(s string) {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	writeField(rules.Version)
	writeField(fmt.Sprintf("keep=%t inject=%t", opts.KeepMVColor, opts.InjectHeader))
	writeField(opts.PluginName)
	writeField(text)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "conv", hexKey[:2], hexKey+".mp")
}

// Put stores a conversion result.
func (c *Cache) Put(key Digest, output string, report convert.Report) error {
	if c == nil {
		return nil
	}
	changes, err := safecast.Conv[uint32](len(report))
	if err != nil {
		return fmt.Errorf("cache: report too large: %w", err)
	}
	payload := cachePayload{
		Schema:  cacheSchemaVersion,
		Catalog: rules.Version,
		Output:  output,
		Changes: changes,
		Report:  []string(report),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get returns a cached result. Stale or corrupt entries are reported as misses.
func (c *Cache) Get(key Digest) (string, convert.Report, bool, error) {
	if c == nil {
		return "", nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 -- path is derived from the cache key
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, false, nil
		}
		return "", nil, false, err
	}
	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return "", nil, false, nil
	}
	if payload.Schema != cacheSchemaVersion || payload.Catalog != rules.Version {
		return "", nil, false, nil
	}
	n, err := safecast.Conv[int](payload.Changes)
	if err != nil || n != len(payload.Report) {
		return "", nil, false, nil
	}
	report := make(convert.Report, 0, n)
	report = append(report, payload.Report...)
	return payload.Output, report, true, nil
}
