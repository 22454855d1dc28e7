package material

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/Faultbox/scenekit/internal/engine/texture"
)

// ErrTextureNotFound is returned when a texture file cannot be read.
var ErrTextureNotFound = errors.New("texture not found")

// Cache deduplicates textures by normalized path for one import session.
// Entries are created lazily and never evicted; Clear ends the session.
// Cache is safe for concurrent use; each path is loaded at most once.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	nfc     bool

	hits   int
	misses int
}

type cacheEntry struct {
	done chan struct{} // closed once tex/err are set
	tex  *Texture
	err  error
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithUnicodeNormalization additionally folds keys to Unicode NFC so that
// composed and decomposed spellings of a file name share one entry.
func WithUnicodeNormalization() CacheOption {
	return func(c *Cache) { c.nfc = true }
}

// NewCache creates an empty texture cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{entries: make(map[string]*cacheEntry)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizePath converts Windows path separators to forward slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

func (c *Cache) key(path string) string {
	key := NormalizePath(path)
	if c.nfc {
		key = norm.NFC.String(key)
	}
	return key
}

// Resolve returns the shared texture for path, reading the file on the
// first request. A failed load is remembered and returned for later
// requests of the same path.
func (c *Cache) Resolve(path string, role Role) (*Texture, error) {
	key := c.key(path)
	return c.resolve(key, role, func() ([]byte, error) {
		data, err := os.ReadFile(key)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrTextureNotFound, key)
			}
			return nil, err
		}
		return data, nil
	})
}

// ResolveData is like Resolve for images that do not live in their own
// file, such as textures embedded in a binary scene. key must be unique
// per image and read supplies the encoded bytes.
func (c *Cache) ResolveData(key string, role Role, read func() ([]byte, error)) (*Texture, error) {
	return c.resolve(c.key(key), role, read)
}

func (c *Cache) resolve(key string, role Role, read func() ([]byte, error)) (*Texture, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
		e = &cacheEntry{done: make(chan struct{})}
		c.entries[key] = e
	}
	c.mu.Unlock()

	// The caller that inserted the entry loads it outside the map lock;
	// everyone else waits for that load and shares its result.
	if !ok {
		e.fill(key, role, read)
	}
	<-e.done
	return e.tex, e.err
}

// fill loads the entry and releases waiters. A panic in read or in a
// decoder is stored as the entry's error.
func (e *cacheEntry) fill(key string, role Role, read func() ([]byte, error)) {
	defer close(e.done)
	defer func() {
		if r := recover(); r != nil {
			e.tex, e.err = nil, fmt.Errorf("loading texture %s: %v", key, r)
		}
	}()
	e.tex, e.err = load(key, role, read)
}

func load(key string, role Role, read func() ([]byte, error)) (*Texture, error) {
	data, err := read()
	if err != nil {
		return nil, err
	}
	info, err := texture.DecodeInfo(key, data)
	if err != nil {
		return nil, err
	}
	return &Texture{
		Path:   key,
		Role:   role,
		Format: info.Format,
		Width:  info.Width,
		Height: info.Height,
		read:   read,
	}, nil
}

// Len returns the number of cached paths, including failed ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns lookup hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Textures returns the successfully loaded textures sorted by path.
func (c *Cache) Textures() []*Texture {
	c.mu.Lock()
	entries := make([]*cacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	var out []*Texture
	for _, e := range entries {
		// Wait for in-flight loads so the snapshot is complete.
		<-e.done
		if e.tex != nil {
			out = append(out, e.tex)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Clear drops every entry and resets statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.hits = 0
	c.misses = 0
}
