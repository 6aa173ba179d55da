package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"flint/internal/config"
	"flint/internal/diag"
	"flint/internal/rules"
	"flint/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 hash used as a cache key.
type Digest = [32]byte

// DiskCache хранит готовые диагностики файла на диске.
// Ключ учитывает содержимое файла, конфигурацию и ревизию набора правил,
// поэтому любое их изменение автоматически инвалидирует запись.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores cached per-file diagnostics.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	// RulesRevision pins the rule-set the diagnostics were produced by.
	RulesRevision uint16

	Items []DiskDiagnostic
}

// DiskDiagnostic is one diagnostic with file-relative spans.
// The FileID is not cached: spans are re-bound on replay.
type DiskDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []DiskNote
}

// DiskNote is a secondary note attached to a cached diagnostic.
type DiskNote struct {
	Message string
	Start   uint32
	End     uint32
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
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

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Для удобства читаемости/очистки — подкаталог "files".
	return filepath.Join(c.dir, "files", hexKey+".mp")
}

// cacheKey derives the lookup key from the file content, the effective
// configuration and the rule-set revision.
func cacheKey(file *source.File, cfg config.Config) Digest {
	h := sha256.New()
	h.Write(file.Hash[:])
	cfgHash := cfg.Hash()
	h.Write(cfgHash[:])
	_, _ = fmt.Fprintf(h, "rules=%d", rules.Revision)
	var key Digest
	copy(key[:], h.Sum(nil))
	return key
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
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
		// Rename обычно уже забрал файл; остаток убираем молча.
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	err = enc.Encode(payload)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим в фоне
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// Lookup replays cached diagnostics for the file, re-binding spans to the
// file's current ID. A stale schema or rule revision counts as a miss.
func (c *DiskCache) Lookup(file *source.File, cfg config.Config, maxDiagnostics int) (*diag.Bag, bool) {
	if c == nil {
		return nil, false
	}
	var payload DiskPayload
	ok, err := c.Get(cacheKey(file, cfg), &payload)
	if err != nil || !ok {
		return nil, false
	}
	if payload.Schema != diskCacheSchemaVersion || payload.RulesRevision != rules.Revision {
		return nil, false
	}

	bag := diag.NewBag(maxDiagnostics)
	for _, item := range payload.Items {
		d := diag.Diagnostic{
			Severity: diag.Severity(item.Severity),
			Code:     diag.Code(item.Code),
			Message:  item.Message,
			Primary:  source.Span{File: file.ID, Start: item.Start, End: item.End},
		}
		for _, n := range item.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: file.ID, Start: n.Start, End: n.End},
				Msg:  n.Message,
			})
		}
		bag.Add(d)
	}
	return bag, true
}

// Store persists the bag for the file. Cache write failures are ignored:
// the run already has its diagnostics and a cold cache is not an error.
func (c *DiskCache) Store(file *source.File, cfg config.Config, bag *diag.Bag) {
	if c == nil {
		return
	}
	payload := DiskPayload{
		Schema:        diskCacheSchemaVersion,
		RulesRevision: rules.Revision,
		Items:         make([]DiskDiagnostic, 0, bag.Len()),
	}
	for _, d := range bag.Items() {
		item := DiskDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			item.Notes = append(item.Notes, DiskNote{
				Message: n.Msg,
				Start:   n.Span.Start,
				End:     n.Span.End,
			})
		}
		payload.Items = append(payload.Items, item)
	}
	_ = c.Put(cacheKey(file, cfg), &payload)
}
