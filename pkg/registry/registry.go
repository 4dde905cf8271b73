// Package registry resolves the numeric protocol ids found in packet
// payloads to the names used by the game data generator.
//
// The input is the registries.json report produced by the server jar's data
// generator:
//
//	{
//	  "minecraft:item": {
//	    "protocol_id": 5,
//	    "entries": {
//	      "minecraft:stone": {"protocol_id": 1},
//	      ...
//	    }
//	  },
//	  ...
//	}
package registry

import (
	"fmt"
	"io"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ItemRegistry is the name of the item registry.
const ItemRegistry = "minecraft:item"

// Table is one registry: names and protocol ids in both directions.
type Table struct {
	byName map[string]int32
	byID   map[int32]string
}

// ID returns the protocol id of name.
func (t *Table) ID(name string) (int32, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the name registered under id.
func (t *Table) Name(id int32) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.byID[id]
	return name, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byName)
}

// Names returns the entry names sorted by protocol id.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return t.byName[names[i]] < t.byName[names[j]]
	})
	return names
}

// Registry holds every table of a registries.json report. It is read-only
// after Load and safe for concurrent use.
type Registry struct {
	tables map[string]*Table
}

type reportEntry struct {
	ProtocolID *int32 `json:"protocol_id"`
}

type reportRegistry struct {
	Entries map[string]reportEntry `json:"entries"`
}

// Load parses a registries.json report. A report without an item registry
// is accepted; item lookups then miss.
func Load(r io.Reader) (*Registry, error) {
	var report map[string]reportRegistry
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("registry: parse report: %w", err)
	}

	reg := &Registry{tables: make(map[string]*Table, len(report))}
	for regName, rr := range report {
		t := &Table{
			byName: make(map[string]int32, len(rr.Entries)),
			byID:   make(map[int32]string, len(rr.Entries)),
		}
		for name, e := range rr.Entries {
			if e.ProtocolID == nil {
				return nil, fmt.Errorf("registry: %s entry %q has no protocol_id", regName, name)
			}
			id := *e.ProtocolID
			if prev, dup := t.byID[id]; dup {
				return nil, fmt.Errorf("registry: %s protocol_id %d used by %q and %q", regName, id, prev, name)
			}
			t.byName[name] = id
			t.byID[id] = name
		}
		reg.tables[regName] = t
	}
	return reg, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Entries returns the named table, or nil when the report has none.
func (r *Registry) Entries(registryName string) *Table {
	return r.tables[registryName]
}

// Registries returns the table names in sorted order.
func (r *Registry) Registries() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Item returns the item name for a protocol id.
func (r *Registry) Item(id int32) (string, bool) {
	return r.Entries(ItemRegistry).Name(id)
}

// ItemID returns the protocol id of an item name.
func (r *Registry) ItemID(name string) (int32, bool) {
	return r.Entries(ItemRegistry).ID(name)
}
