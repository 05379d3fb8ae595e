// Package cache provides a content-addressed cache for compiled function
// output, keyed by a hash of the function's canonicalized pre-SSA
// instruction stream. The key deliberately excludes the active pipeline's
// pass list: a hit identifies the same function reaching the same SSA
// form, and the entry separately records which optimization passes have
// already been applied to it, so a hit lets the driver skip SSA
// conversion and re-run only the passes a differently configured -O
// pipeline still asks for (block building, CFG construction and dominator
// analysis still run). An in-process LRU tier is always on; an
// optional on-disk tier backs it for reuse across process invocations.
package cache

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"strings"

	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/birlc/birl/ir"
	_ "modernc.org/sqlite"
)

// Key identifies one cached compilation result.
type Key string

// ComputeKey hashes a function's canonicalized instruction stream. Two
// invocations of the same function, regardless of which pipeline is
// requested for this run, produce the same key: the key names the
// function's pre-SSA input, not any particular optimized output.
func ComputeKey(fn *ir.Function) Key {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00", fn.Name)
	for _, arg := range fn.Args {
		fmt.Fprintf(h, "%s:%s\x00", arg.Name, arg.Type)
	}
	fmt.Fprintf(h, "\x01")
	for _, instr := range fn.Instrs {
		fmt.Fprintf(h, "%d|%s|%s|%s|%s|%s|%s|%s|%v\x00",
			instr.Kind, instr.Label, instr.Op, instr.Dest, instr.Type,
			strings.Join(instr.Args, ","), strings.Join(instr.Funcs, ","),
			strings.Join(instr.Labels, ","), instr.Value)
	}
	return Key(fmt.Sprintf("%x", h.Sum64()))
}

// Entry is one cached compilation result: the pruned-SSA instruction
// stream for a function, keyed by block id, plus the ordered list of
// optimization passes already folded into it. A hit whose AppliedPasses
// already covers the requested pipeline needs no further work; a hit
// whose AppliedPasses is a strict prefix of the requested pipeline only
// needs the remaining passes re-run.
type Entry struct {
	Blocks        map[int][]*ir.Instruction
	AppliedPasses []string
}

// Cache is a two-tier store: an always-on in-process LRU plus an optional
// on-disk SQLite tier for cross-invocation reuse.
type Cache struct {
	memory *lru.Cache[Key, Entry]
	db     *sql.DB
}

// New creates a cache with only the in-process tier.
func New(capacity int) (*Cache, error) {
	memory, err := lru.New[Key, Entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{memory: memory}, nil
}

// Open creates a cache backed by both the in-process tier and an on-disk
// SQLite database at path.
func Open(capacity int, path string) (*Cache, error) {
	c, err := New(capacity)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entries (key TEXT PRIMARY KEY, payload TEXT NOT NULL)`); err != nil {
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}
	c.db = db
	return c, nil
}

// Close releases the on-disk tier, if any.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get looks up key, checking the in-process tier first and falling back to
// the on-disk tier (promoting the result back into memory on a disk hit).
func (c *Cache) Get(key Key) (Entry, bool) {
	if entry, ok := c.memory.Get(key); ok {
		return entry, true
	}
	if c.db == nil {
		return Entry{}, false
	}

	var payload string
	err := c.db.QueryRow(`SELECT payload FROM entries WHERE key = ?`, string(key)).Scan(&payload)
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return Entry{}, false
	}
	c.memory.Add(key, entry)
	return entry, true
}

// Put stores an entry in both tiers.
func (c *Cache) Put(key Key, entry Entry) error {
	c.memory.Add(key, entry)
	if c.db == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", key, err)
	}
	_, err = c.db.Exec(`INSERT INTO entries (key, payload) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`,
		string(key), string(payload))
	if err != nil {
		return fmt.Errorf("cache: writing %s: %w", key, err)
	}
	return nil
}
