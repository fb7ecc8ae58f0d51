package game

import (
	"slices"

	"github.com/pixil98/hamlet/internal/protocol"
)

// Inventory maps item kind to a positive amount. Entries that reach zero
// are removed.
type Inventory map[string]int

func (inv Inventory) Add(item string, amount int) {
	if item == "" || amount <= 0 {
		return
	}
	inv[item] += amount
}

// Covers reports whether every cost entry is available.
func (inv Inventory) Covers(cost map[string]int) bool {
	for item, amount := range cost {
		if inv[item] < amount {
			return false
		}
	}
	return true
}

// Deduct removes the full cost or nothing at all.
func (inv Inventory) Deduct(cost map[string]int) bool {
	if !inv.Covers(cost) {
		return false
	}
	for item, amount := range cost {
		inv[item] -= amount
		if inv[item] <= 0 {
			delete(inv, item)
		}
	}
	return true
}

func (inv Inventory) Clone() Inventory {
	c := make(Inventory, len(inv))
	for k, v := range inv {
		c[k] = v
	}
	return c
}

// Entries lists the inventory sorted by item name.
func (inv Inventory) Entries() []protocol.InventoryEntry {
	items := make([]string, 0, len(inv))
	for item := range inv {
		items = append(items, item)
	}
	slices.Sort(items)

	entries := make([]protocol.InventoryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, protocol.InventoryEntry{Item: item, Amount: inv[item]})
	}
	return entries
}
