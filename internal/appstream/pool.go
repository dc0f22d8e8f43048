package appstream

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Pool is an in-memory set of components loaded from one or more
// collections. It is safe for concurrent use.
type Pool struct {
	mu         sync.RWMutex
	components []*Component
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// LoadFile parses a collection file and adds its components.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	comps, err := Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	p.Add(comps...)
	return nil
}

// Load reads every path that exists. Missing files are skipped; any other
// error is returned. It returns the number of files read.
func (p *Pool) Load(paths ...string) (int, error) {
	loaded := 0
	for _, path := range paths {
		if err := p.LoadFile(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// Add appends components to the pool.
func (p *Pool) Add(comps ...*Component) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.components = append(p.components, comps...)
}

// Components returns a snapshot of all loaded components.
func (p *Pool) Components() []*Component {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Component, len(p.components))
	copy(out, p.components)
	return out
}

// Len returns the number of loaded components.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.components)
}

// Find returns the first component with the given ID whose origin matches.
// An empty origin matches any.
func (p *Pool) Find(id, origin string) (*Component, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.components {
		if c.ID == id && (origin == "" || c.Origin == origin) {
			return c, true
		}
	}
	return nil, false
}
