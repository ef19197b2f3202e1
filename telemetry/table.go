package telemetry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/coral-compass/network"
)

// Entry is one published key/value pair
type Entry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Table is a named set of numeric entries shared with dashboards
// Writers call PutNumber every tick; Version moves only when a value changes
type Table struct {
	name    string
	mu      sync.RWMutex
	items   map[string]*AtomicFloat
	version atomic.Uint64
}

// NewTable creates an empty table
func NewTable(name string) *Table {
	return &Table{
		name:  name,
		items: make(map[string]*AtomicFloat),
	}
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// PutNumber stores value under key
func (t *Table) PutNumber(key string, value float64) {
	slot, created := t.slot(key)
	if slot.Swap(value) || created {
		t.version.Add(1)
	}
}

// GetNumber returns the value for key, or def when absent
func (t *Table) GetNumber(key string, def float64) float64 {
	t.mu.RLock()
	slot, ok := t.items[key]
	t.mu.RUnlock()
	if !ok {
		return def
	}
	return slot.Get()
}

// Entries returns all entries in key order
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0, len(t.items))
	for k, v := range t.items {
		out = append(out, Entry{Key: k, Value: v.Get()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Version increases on every change
func (t *Table) Version() uint64 {
	return t.version.Load()
}

// slot returns the cell for key, creating it if absent
func (t *Table) slot(key string) (*AtomicFloat, bool) {
	t.mu.RLock()
	if ptr, ok := t.items[key]; ok {
		t.mu.RUnlock()
		return ptr, false
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	if ptr, ok := t.items[key]; ok {
		return ptr, false
	}
	ptr := new(AtomicFloat)
	t.items[key] = ptr
	return ptr, true
}

func toWire(entries []Entry) []network.Entry {
	out := make([]network.Entry, len(entries))
	for i, e := range entries {
		out[i] = network.Entry{Key: e.Key, Value: e.Value}
	}
	return out
}
