package cart

import (
	"github.com/yungbote/storefront-backend/internal/domain"
)

// Transitions are pure functions of (items, arguments) -> (items, changed).
// They never mutate their input slice; the engine swaps the whole slice in
// under its lock so a reader can never observe a half-applied mutation.

func applyAdd(items []domain.LineItem, p domain.Product, qty int) ([]domain.LineItem, bool) {
	// A non-positive quantity would violate the quantity >= 1 invariant, so
	// it is rejected outright rather than silently clamped.
	if qty <= 0 {
		return items, false
	}
	for i, it := range items {
		if it.ProductID == p.ID {
			next := cloneItems(items)
			next[i].Quantity += qty
			return next, true
		}
	}
	next := cloneItems(items)
	next = append(next, domain.LineItem{
		ProductID:      p.ID,
		Title:          p.Name,
		UnitPriceCents: p.PriceCents,
		Quantity:       qty,
		ImageRef:       p.Picture,
	})
	return next, true
}

func applyRemoveOne(items []domain.LineItem, productID int64) ([]domain.LineItem, bool) {
	for i, it := range items {
		if it.ProductID != productID {
			continue
		}
		if it.Quantity > 1 {
			next := cloneItems(items)
			next[i].Quantity--
			return next, true
		}
		return deleteAt(items, i), true
	}
	return items, false
}

// applySetQuantity sets the exact quantity. Values below 1 are rejected as a
// no-op: deletion stays the exclusive job of applyRemove, keeping each
// operation's contract unambiguous.
func applySetQuantity(items []domain.LineItem, productID int64, qty int) ([]domain.LineItem, bool) {
	if qty < 1 {
		return items, false
	}
	for i, it := range items {
		if it.ProductID == productID {
			if it.Quantity == qty {
				return items, false
			}
			next := cloneItems(items)
			next[i].Quantity = qty
			return next, true
		}
	}
	return items, false
}

func applyRemove(items []domain.LineItem, productID int64) ([]domain.LineItem, bool) {
	for i, it := range items {
		if it.ProductID == productID {
			return deleteAt(items, i), true
		}
	}
	return items, false
}

func applyClear(items []domain.LineItem) ([]domain.LineItem, bool) {
	if len(items) == 0 {
		return items, false
	}
	return nil, true
}

// sanitizeItems enforces structural invariants on externally sourced item
// lists (persisted snapshot, remote pull): duplicate product ids merge into
// the first occurrence, entries with non-positive quantity or price drop out.
// Insertion order of surviving entries is preserved.
func sanitizeItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 || it.UnitPriceCents < 0 {
			continue
		}
		if i, seen := index[it.ProductID]; seen {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	next := make([]domain.LineItem, len(items))
	copy(next, items)
	return next
}

func deleteAt(items []domain.LineItem, i int) []domain.LineItem {
	next := make([]domain.LineItem, 0, len(items)-1)
	next = append(next, items[:i]...)
	next = append(next, items[i+1:]...)
	return next
}
