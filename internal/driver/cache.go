package driver

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"kestrel/internal/platform"
	"kestrel/internal/project"
)

// Bump when CacheEntry or the emitted text format changes.
const cacheSchemaVersion uint16 = 1

// Key identifies one build: target, build constants, root module and the
// exact bytes of every input tree, in order.
type Key = project.Digest

// CacheEntry is the stored outcome of a clean build.
type CacheEntry struct {
	Schema  uint16   `msgpack:"v"`
	Target  string   `msgpack:"t"`
	Modules []Output `msgpack:"m"`
}

// DiskCache keeps emitted modules on disk, one msgpack file per key.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache uses dir, or $XDG_CACHE_HOME/app (~/.cache/app) when dir is
// empty.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *DiskCache) Dir() string {
	return c.dir
}

// CacheKey hashes everything a build's output depends on.
func CacheKey(arch platform.Arch, root []string, trees [][]byte) Key {
	parts := make([]project.Digest, 0, len(trees)+1)
	var hdr strings.Builder
	hdr.WriteString(arch.Triple)
	hdr.WriteByte(0)
	hdr.WriteString(strings.Join(root, "."))
	for _, k := range slices.Sorted(maps.Keys(arch.Constants)) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(arch.Constants[k]))
		hdr.WriteByte(0)
		hdr.WriteString(k)
		hdr.Write(buf[:])
	}
	parts = append(parts, project.Sum([]byte(hdr.String())))
	for _, t := range trees {
		parts = append(parts, project.Sum(t))
	}
	return project.Combine(project.Sum([]byte{byte(cacheSchemaVersion)}), parts...)
}

func (c *DiskCache) pathFor(key Key) string {
	return filepath.Join(c.dir, "ssa", hex.EncodeToString(key[:])+".mp")
}

// Put writes entry atomically through a temp file.
func (c *DiskCache) Put(key Key, entry *CacheEntry) (err error) {
	if c == nil {
		return nil
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
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = msgpack.NewEncoder(f).Encode(entry); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the entry for key. Entries of another schema are misses.
func (c *DiskCache) Get(key Key, out *CacheEntry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 -- path is derived from a hex digest
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == cacheSchemaVersion, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
