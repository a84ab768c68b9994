package driver

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"tyco/internal/diag"
	"tyco/internal/source"
)

// cacheSchemaVersion increments when CacheEntry changes shape.
const cacheSchemaVersion uint16 = 1

// DiskCache stores per-file check artifacts keyed by content hash, so
// unchanged files skip the pipeline on the next run. Thread-safe.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CacheEntry is the serialized per-file artifact.
type CacheEntry struct {
	Schema      uint16
	OptionsHash string
	Output      string
	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic with file identity stripped (the hash
// key already pins the content; the file id is reassigned on restore).
type CachedDiagnostic struct {
	Code     uint32
	Severity uint8
	Message  string
	Start    uint32
	End      uint32
}

func fromDiagnostic(d *diag.Diagnostic) CachedDiagnostic {
	return CachedDiagnostic{
		Code:     uint32(d.Code),
		Severity: uint8(d.Severity),
		Message:  d.Message,
		Start:    d.Primary.Start,
		End:      d.Primary.End,
	}
}

func (c CachedDiagnostic) toDiagnostic(file source.FileID) diag.Diagnostic {
	return diag.Diagnostic{
		Code:     diag.Code(c.Code),
		Severity: diag.Severity(c.Severity),
		Message:  c.Message,
		Primary:  source.Span{File: file, Start: c.Start, End: c.End},
	}
}

// OpenDiskCache initializes a cache under the standard location
// ($XDG_CACHE_HOME/<app> or ~/.cache/<app>).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a cache at an explicit directory (tests).
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes an entry.
func (c *DiskCache) Put(key [32]byte, entry *CacheEntry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry.Schema = cacheSchemaVersion
	data, err := msgpack.Marshal(entry)
	if err != nil {
		return err
	}
	path := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Get reads an entry; misses and schema mismatches report !ok.
func (c *DiskCache) Get(key [32]byte) (*CacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var entry CacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Schema != cacheSchemaVersion {
		return nil, false
	}
	return &entry, true
}
