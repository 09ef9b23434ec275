// Package cache memoizes interprocedural summaries: the abstract return
// sign of a callee analyzed under a given set of entry bindings. Entries
// are kept in an LRU and can be persisted to disk with msgpack, so a
// long session re-analyzing the same project skips repeated callees.
package cache

import (
	"container/list"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tdinh-labs/go-sign-flow/pkg/sign"
	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

// Summary is one memoized callee result.
type Summary struct {
	Function  string    `msgpack:"function"`
	Return    int       `msgpack:"return"` // sign.Sign as int
	CreatedAt time.Time `msgpack:"created_at"`
}

// Cache is a thread-safe LRU of summaries keyed by function identity and
// entry bindings.
type Cache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
}

type entry struct {
	key     string
	summary Summary
}

// New creates a cache holding at most maxSize summaries. A non-positive
// size means unbounded.
func New(maxSize int) *Cache {
	return &Cache{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// Key derives a stable cache key from the function's body and the signs
// bound to its parameters at entry. Two textually identical functions
// called with the same argument signs share a key.
func Key(fn *syntax.Function, bindings map[string]sign.Sign) string {
	h := fnv.New64a()
	io.WriteString(h, fn.Name)
	for _, stmt := range fn.Body {
		io.WriteString(h, stmt.Text)
	}

	params := make([]string, 0, len(bindings))
	for p := range bindings {
		params = append(params, p)
	}
	sort.Strings(params)

	key := fmt.Sprintf("%s@%x", fn.Name, h.Sum64())
	for _, p := range params {
		key += fmt.Sprintf("|%s=%s", p, bindings[p])
	}
	return key
}

// SummaryGet returns the memoized return sign for a callee and binding
// set, if present.
func (c *Cache) SummaryGet(fn *syntax.Function, bindings map[string]sign.Sign) (sign.Sign, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[Key(fn, bindings)]
	if !ok {
		return sign.Top, false
	}
	c.order.MoveToFront(elem)
	return sign.Sign(elem.Value.(*entry).summary.Return), true
}

// SummarySet memoizes a callee result, evicting the least recently used
// entry when full.
func (c *Cache) SummarySet(fn *syntax.Function, bindings map[string]sign.Sign, ret sign.Sign) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(fn, bindings)
	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry).summary.Return = int(ret)
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry{
		key: key,
		summary: Summary{
			Function:  fn.Name,
			Return:    int(ret),
			CreatedAt: time.Now(),
		},
	})

	if c.maxSize > 0 && c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Len returns the number of cached summaries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// snapshot is the msgpack wire form: keys paired with summaries in LRU
// order, most recent first.
type snapshot struct {
	Keys      []string  `msgpack:"keys"`
	Summaries []Summary `msgpack:"summaries"`
}

// Save writes the cache contents to w.
func (c *Cache) Save(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := snapshot{}
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry)
		snap.Keys = append(snap.Keys, e.key)
		snap.Summaries = append(snap.Summaries, e.summary)
	}
	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return nil
}

// Load replaces the cache contents from r.
func (c *Cache) Load(r io.Reader) error {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding cache: %w", err)
	}
	if len(snap.Keys) != len(snap.Summaries) {
		return fmt.Errorf("corrupt cache: %d keys, %d summaries", len(snap.Keys), len(snap.Summaries))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, len(snap.Keys))
	c.order.Init()
	// iterate backwards so the most recent entry ends up at the front
	for i := len(snap.Keys) - 1; i >= 0; i-- {
		c.items[snap.Keys[i]] = c.order.PushFront(&entry{
			key:     snap.Keys[i],
			summary: snap.Summaries[i],
		})
	}
	return nil
}

// SaveFile persists the cache to a file.
func (c *Cache) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()
	return c.Save(f)
}

// LoadFile restores the cache from a file. A missing file is not an
// error; the cache just starts empty.
func (c *Cache) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}
