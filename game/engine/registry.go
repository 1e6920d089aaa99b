package engine

import "strings"

// Registry is the session-owned collection of players. Iteration order is
// insertion order; the leaderboard tie-break and countdown broadcasts rely on
// it being stable. The registry is not safe for concurrent use; the session
// serializes all access.
type Registry struct {
	byID  map[string]*Player
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Player)}
}

// Add inserts a player keyed by its ID. Adding an existing ID replaces the
// record but keeps its original position.
func (r *Registry) Add(p *Player) {
	if _, exists := r.byID[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = p
}

// Get returns the player for id, or nil.
func (r *Registry) Get(id string) *Player {
	return r.byID[id]
}

// Remove deletes the player for id, preserving the order of the rest.
func (r *Registry) Remove(id string) {
	if _, exists := r.byID[id]; !exists {
		return
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Players returns all players in insertion order.
func (r *Registry) Players() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// NameTaken reports whether name collides case-insensitively with a
// registered player's name.
func (r *Registry) NameTaken(name string) bool {
	want := strings.ToLower(name)
	for _, p := range r.byID {
		if strings.ToLower(p.Name) == want {
			return true
		}
	}
	return false
}

// Alive returns the alive players in insertion order.
func (r *Registry) Alive() []*Player {
	var out []*Player
	for _, id := range r.order {
		if p := r.byID[id]; p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// AliveCount returns the number of alive players.
func (r *Registry) AliveCount() int {
	n := 0
	for _, p := range r.byID {
		if p.Alive {
			n++
		}
	}
	return n
}

// AliveUnfinished returns alive players that have not finished this round, in
// insertion order.
func (r *Registry) AliveUnfinished() []*Player {
	var out []*Player
	for _, id := range r.order {
		if p := r.byID[id]; p.Alive && !p.Finished() {
			out = append(out, p)
		}
	}
	return out
}

// Reset removes every player.
func (r *Registry) Reset() {
	r.byID = make(map[string]*Player)
	r.order = nil
}
