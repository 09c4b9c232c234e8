package markup

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Link is the target of a link reference definition.
type Link struct {
	Href  string
	Title string
}

// LinkDefinitions is the label to target table shared by an engine and all of
// its clones. It is safe for concurrent use.
type LinkDefinitions struct {
	mu    sync.RWMutex
	links map[string]Link
}

func NewLinkDefinitions() *LinkDefinitions {
	return &LinkDefinitions{links: make(map[string]Link)}
}

// Define binds label to link, replacing any earlier definition.
func (d *LinkDefinitions) Define(label string, link Link) {
	key := NormalizeLabel(label)
	if key == "" {
		return
	}
	d.mu.Lock()
	d.links[key] = link
	d.mu.Unlock()
}

func (d *LinkDefinitions) Lookup(label string) (Link, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	link, ok := d.links[NormalizeLabel(label)]
	return link, ok
}

func (d *LinkDefinitions) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.links)
}

// Labels returns the normalized labels in sorted order.
func (d *LinkDefinitions) Labels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Sorted(maps.Keys(d.links))
}

// NormalizeLabel trims, collapses inner whitespace and lower-cases label.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
