package draw

import (
	"sort"
	"time"
)

type InventoryKey struct {
	Kind    PrizeKind
	PrizeID string
}

func (p Prize) Key() InventoryKey {
	return InventoryKey{Kind: p.Kind, PrizeID: p.ID}
}

type InventoryEntry struct {
	Prize      Prize
	Count      int
	ObtainedAt time.Time
}

// Inventory holds the consumable prizes won by one user. An entry exists only
// while its count is positive.
type Inventory struct {
	entries map[InventoryKey]*InventoryEntry
}

func NewInventory(entries ...InventoryEntry) *Inventory {
	inv := &Inventory{entries: make(map[InventoryKey]*InventoryEntry, len(entries))}
	for _, e := range entries {
		if e.Count <= 0 {
			continue
		}

		entry := e
		inv.entries[e.Prize.Key()] = &entry
	}

	return inv
}

// Add stores one more unit of the prize. Prizes which are not consumable are
// ignored and false is returned.
func (inv *Inventory) Add(prize Prize, now time.Time) bool {
	if !prize.Kind.Consumable() {
		return false
	}

	if entry, ok := inv.entries[prize.Key()]; ok {
		entry.Count++
		return true
	}

	inv.entries[prize.Key()] = &InventoryEntry{Prize: prize, Count: 1, ObtainedAt: now}
	return true
}

func (inv *Inventory) Get(key InventoryKey) (InventoryEntry, bool) {
	entry, ok := inv.entries[key]
	if !ok || entry.Count <= 0 {
		return InventoryEntry{}, false
	}

	return *entry, true
}

// Take removes one unit of the entry and returns its prize. The entry is
// deleted when its count reaches zero.
func (inv *Inventory) Take(key InventoryKey) (Prize, error) {
	entry, ok := inv.entries[key]
	if !ok || entry.Count <= 0 {
		return Prize{}, ErrItemNotFound
	}

	entry.Count--
	if entry.Count == 0 {
		delete(inv.entries, key)
	}

	return entry.Prize, nil
}

func (inv *Inventory) Len() int {
	return len(inv.entries)
}

// Entries returns a snapshot ordered by acquisition time, then by key.
func (inv *Inventory) Entries() []InventoryEntry {
	result := make([]InventoryEntry, 0, len(inv.entries))
	for _, e := range inv.entries {
		result = append(result, *e)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].ObtainedAt.Equal(result[j].ObtainedAt) {
			return result[i].ObtainedAt.Before(result[j].ObtainedAt)
		}

		if result[i].Prize.Kind != result[j].Prize.Kind {
			return result[i].Prize.Kind < result[j].Prize.Kind
		}

		return result[i].Prize.ID < result[j].Prize.ID
	})

	return result
}
