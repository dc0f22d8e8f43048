package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog is the in-memory form of repo.yaml: records keyed by ID.
type Catalog struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{records: make(map[string]*Record)}
}

// Load reads a catalog file. A missing file yields an empty catalog so the
// first import can create it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	records := make(map[string]*Record)
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	for id, r := range records {
		// an entry with no fields decodes to nil
		if r == nil {
			records[id] = &Record{}
		}
	}
	return &Catalog{records: records}, nil
}

// Marshal encodes the catalog as YAML with keys in sorted order.
func (c *Catalog) Marshal() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := yaml.Marshal(c.records)
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog: %w", err)
	}
	return data, nil
}

// Save writes the catalog to path, creating parent directories as needed.
// The file is replaced atomically.
func (c *Catalog) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing catalog: %w", err)
	}
	return nil
}

// Get returns the record with the given ID.
func (c *Catalog) Get(id string) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[id]
	return r, ok
}

// Put stores a copy of r under id. It reports whether a record was replaced.
func (c *Catalog) Put(id string, r *Record) (replaced bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, replaced = c.records[id]
	c.records[id] = r.Clone()
	return replaced
}

// Delete removes a record. It reports whether the record existed.
func (c *Catalog) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[id]
	delete(c.records, id)
	return ok
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// IDs returns all record IDs sorted.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedIDs()
}

func (c *Catalog) sortedIDs() []string {
	ids := make([]string, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Search returns the IDs of records matching query against ID, name,
// summary, keywords and categories, sorted.
func (c *Catalog) Search(query string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if query == "" {
		return c.sortedIDs()
	}

	q := strings.ToLower(query)
	var results []string
	for _, id := range c.sortedIDs() {
		if matches(id, c.records[id], q) {
			results = append(results, id)
		}
	}
	return results
}

// DuplicateSrcPkgNames groups record IDs by src_pkg_name and returns the
// groups with more than one member. IDs within a group are sorted. Records
// that set src_pkg_name to an empty value are grouped under ""; records
// without the key are left out.
func (c *Catalog) DuplicateSrcPkgNames() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bySrc := make(map[string][]string)
	for _, id := range c.sortedIDs() {
		r := c.records[id]
		if r.SrcPkgName == "" && !r.HasKey("src_pkg_name") {
			continue
		}
		bySrc[r.SrcPkgName] = append(bySrc[r.SrcPkgName], id)
	}

	dups := make(map[string][]string)
	for src, ids := range bySrc {
		if len(ids) > 1 {
			dups[src] = ids
		}
	}
	return dups
}

func matches(id string, r *Record, query string) bool {
	if strings.Contains(strings.ToLower(id), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Summary), query) {
		return true
	}
	for _, kw := range r.Keywords {
		if strings.Contains(strings.ToLower(kw), query) {
			return true
		}
	}
	for _, cat := range r.Categories {
		if strings.Contains(strings.ToLower(cat), query) {
			return true
		}
	}
	return false
}
