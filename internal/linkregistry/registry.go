// Package linkregistry stores card chains and the occupancy set.
//
// Edges live in an arena and are addressed by stable slot indices. A chain is
// a stack of slots (bottom first) registered under the primary card of its top
// edge. Group identifiers are not stored on edges: Edges stamps the current
// head when materializing a chain, so re-keying a chain is a single map move.
package linkregistry

import (
	"fmt"
	"sort"

	"github.com/starford/cardlinks/internal/apperr"
	"github.com/starford/cardlinks/internal/models"
)

var (
	ErrChainNotFound = fmt.Errorf("chain: %w", apperr.ErrNotFound)
	ErrHeadTaken     = fmt.Errorf("chain head already registered: %w", apperr.ErrConflict)
)

// Edge is a stored link: Primary sits immediately above Linked.
type Edge struct {
	Primary string
	Linked  string
	Reason  string
}

type chain struct {
	slots []int
}

func (c *chain) top() int {
	return c.slots[len(c.slots)-1]
}

// Registry maps chain heads to chains. It is not safe for concurrent use.
type Registry struct {
	arena    []Edge
	free     []int
	chains   map[string]*chain
	occupied map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		chains:   make(map[string]*chain),
		occupied: make(map[string]struct{}),
	}
}

// Occupied reports whether id is in the occupancy set.
func (r *Registry) Occupied(id string) bool {
	_, ok := r.occupied[id]
	return ok
}

// Occupy adds ids to the occupancy set.
func (r *Registry) Occupy(ids ...string) {
	for _, id := range ids {
		r.occupied[id] = struct{}{}
	}
}

// Release removes ids from the occupancy set.
func (r *Registry) Release(ids ...string) {
	for _, id := range ids {
		delete(r.occupied, id)
	}
}

// IsHead reports whether a chain is registered under id.
func (r *Registry) IsHead(id string) bool {
	_, ok := r.chains[id]
	return ok
}

// Heads returns every registered head in ascending order.
func (r *Registry) Heads() []string {
	out := make([]string, 0, len(r.chains))
	for h := range r.chains {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// OccupiedIDs returns the occupancy set in ascending order.
func (r *Registry) OccupiedIDs() []string {
	out := make([]string, 0, len(r.occupied))
	for id := range r.occupied {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Depth returns the number of edges in the chain under head, or 0.
func (r *Registry) Depth(head string) int {
	c, ok := r.chains[head]
	if !ok {
		return 0
	}
	return len(c.slots)
}

// Start registers a new single-edge chain under e.Primary.
func (r *Registry) Start(e Edge) error {
	if r.IsHead(e.Primary) {
		return ErrHeadTaken
	}
	r.chains[e.Primary] = &chain{slots: []int{r.alloc(e)}}
	return nil
}

// Extend pushes e on top of the chain headed by e.Linked and re-registers
// the chain under e.Primary.
func (r *Registry) Extend(e Edge) error {
	c, ok := r.chains[e.Linked]
	if !ok {
		return ErrChainNotFound
	}
	if e.Primary != e.Linked && r.IsHead(e.Primary) {
		return ErrHeadTaken
	}
	c.slots = append(c.slots, r.alloc(e))
	r.move(e.Linked, e.Primary, c)
	return nil
}

// At returns the edge depth levels below the head (0 is the head edge).
func (r *Registry) At(head string, depth int) (Edge, bool) {
	c, ok := r.chains[head]
	if !ok || depth < 0 || depth >= len(c.slots) {
		return Edge{}, false
	}
	return r.arena[c.slots[len(c.slots)-1-depth]], true
}

// Trim removes the head edge of the chain under head and returns it. An
// emptied chain is dropped; otherwise the chain is re-registered under the
// primary card of its new top edge.
func (r *Registry) Trim(head string) (Edge, error) {
	c, ok := r.chains[head]
	if !ok {
		return Edge{}, ErrChainNotFound
	}
	n := len(c.slots)
	if n == 1 {
		top := r.arena[c.top()]
		r.freeSlot(c.top())
		delete(r.chains, head)
		return top, nil
	}

	next := r.arena[c.slots[n-2]].Primary
	if next != head && r.IsHead(next) {
		return Edge{}, ErrHeadTaken
	}
	top := r.arena[c.top()]
	r.freeSlot(c.top())
	c.slots = c.slots[:n-1]
	r.move(head, next, c)
	return top, nil
}

// Replace overwrites the edge depth levels below head. Replacing the head
// edge re-registers the chain under the new edge's primary card.
func (r *Registry) Replace(head string, depth int, e Edge) error {
	c, ok := r.chains[head]
	if !ok || depth < 0 || depth >= len(c.slots) {
		return ErrChainNotFound
	}
	if depth == 0 && e.Primary != head && r.IsHead(e.Primary) {
		return ErrHeadTaken
	}
	r.arena[c.slots[len(c.slots)-1-depth]] = e
	if depth == 0 {
		r.move(head, e.Primary, c)
	}
	return nil
}

// Edges returns the chain under head ordered head to tail, each stamped with
// head as its GroupID. The result is a fresh slice; it is empty when no chain
// is registered under head.
func (r *Registry) Edges(head string) []models.CardLink {
	c, ok := r.chains[head]
	if !ok {
		return []models.CardLink{}
	}
	out := make([]models.CardLink, 0, len(c.slots))
	for i := len(c.slots) - 1; i >= 0; i-- {
		e := r.arena[c.slots[i]]
		out = append(out, models.CardLink{
			PrimaryCardID: e.Primary,
			LinkedCardID:  e.Linked,
			GroupID:       head,
			Reason:        e.Reason,
		})
	}
	return out
}

func (r *Registry) move(from, to string, c *chain) {
	if from != to {
		delete(r.chains, from)
	}
	r.chains[to] = c
}

func (r *Registry) alloc(e Edge) int {
	if n := len(r.free); n > 0 {
		i := r.free[n-1]
		r.free = r.free[:n-1]
		r.arena[i] = e
		return i
	}
	r.arena = append(r.arena, e)
	return len(r.arena) - 1
}

func (r *Registry) freeSlot(i int) {
	r.arena[i] = Edge{}
	r.free = append(r.free, i)
}
