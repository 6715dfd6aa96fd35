package inventory

import (
	"fmt"
	"sort"
)

// Registry holds all loaded weapon and item definitions indexed by ID.
// It is read-only after NewRegistry returns.
type Registry struct {
	weapons map[string]*WeaponDef
	items   map[string]*ItemDef
}

// NewRegistry indexes weapons and items by ID.
//
// Precondition: every definition has passed Validate.
// Postcondition: returns an error on a duplicate ID or on an item whose
// weapon_ref names no registered weapon.
func NewRegistry(weapons []*WeaponDef, items []*ItemDef) (*Registry, error) {
	r := &Registry{
		weapons: make(map[string]*WeaponDef, len(weapons)),
		items:   make(map[string]*ItemDef, len(items)),
	}
	for _, w := range weapons {
		if _, exists := r.weapons[w.ID]; exists {
			return nil, fmt.Errorf("inventory: weapon ID %q already registered", w.ID)
		}
		r.weapons[w.ID] = w
	}
	for _, it := range items {
		if _, exists := r.items[it.ID]; exists {
			return nil, fmt.Errorf("inventory: item ID %q already registered", it.ID)
		}
		if it.WeaponRef != "" {
			if _, ok := r.weapons[it.WeaponRef]; !ok {
				return nil, fmt.Errorf("inventory: item %q references unknown weapon %q", it.ID, it.WeaponRef)
			}
		}
		r.items[it.ID] = it
	}
	return r, nil
}

// Weapon returns the WeaponDef for id and whether it was found.
func (r *Registry) Weapon(id string) (*WeaponDef, bool) {
	w, ok := r.weapons[id]
	return w, ok
}

// Item returns the ItemDef for id and whether it was found.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	it, ok := r.items[id]
	return it, ok
}

// IDs returns every registered weapon ID in sorted order.
func (r *Registry) IDs() []string {
	return sortedKeys(r.weapons)
}

// ItemIDs returns every registered item ID in sorted order.
func (r *Registry) ItemIDs() []string {
	return sortedKeys(r.items)
}

// MissingItems returns the ids that name no registered item, sorted and
// without repeats.
func (r *Registry) MissingItems(ids []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range ids {
		if _, ok := r.items[id]; ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// StashValue sums the value of quantity units of each item id. Unknown ids
// are worth nothing.
func (r *Registry) StashValue(quantities map[string]int) int {
	total := 0
	for id, qty := range quantities {
		if it, ok := r.items[id]; ok {
			total += it.Value * qty
		}
	}
	return total
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
