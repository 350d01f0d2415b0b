package disposable

import "sync"

// Group disposes a set of disposables together.
//
// After Dispose the group is empty but still usable: Add allocates fresh
// storage, and Reset is provided for callers that want to say so explicitly.
type Group struct {
	mu      sync.Mutex
	members []Disposable
}

// NewGroup returns a group holding the given members.
func NewGroup(members ...Disposable) *Group {
	g := &Group{}
	g.Add(members...)
	return g
}

// Add appends disposables for later cleanup. Nil members are ignored.
func (g *Group) Add(members ...Disposable) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, m := range members {
		if m != nil {
			g.members = append(g.members, m)
		}
	}
}

// Dispose disposes every member in insertion order and clears the group.
func (g *Group) Dispose() {
	g.mu.Lock()
	members := g.members
	g.members = nil
	g.mu.Unlock()

	for _, m := range members {
		m.Dispose()
	}
}

// Destroy is an alias for Dispose.
func (g *Group) Destroy() {
	g.Dispose()
}

// Reset disposes the current members and leaves an empty group ready for reuse.
func (g *Group) Reset() {
	g.Dispose()
	g.mu.Lock()
	g.members = make([]Disposable, 0)
	g.mu.Unlock()
}

// Len returns the number of members currently held.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}
