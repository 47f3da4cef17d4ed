package cart

import (
	"testing"

	"github.com/yungbote/storefront-backend/internal/domain"
)

var (
	tee  = domain.Product{ID: 1, Name: "Tee", PriceCents: 1999}
	tote = domain.Product{ID: 2, Name: "Canvas Tote", PriceCents: 1499}
)

func TestApplyAddMergesByProductID(t *testing.T) {
	items, changed := applyAdd(nil, tee, 1)
	if !changed || len(items) != 1 {
		t.Fatalf("first add: changed=%v len=%d", changed, len(items))
	}
	items, changed = applyAdd(items, tee, 1)
	if !changed {
		t.Fatalf("second add should change state")
	}
	if len(items) != 1 {
		t.Fatalf("same product must merge into one line, got %d lines", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("merged quantity = %d, want 2", items[0].Quantity)
	}
}

func TestApplyAddRejectsNonPositiveQuantity(t *testing.T) {
	items, _ := applyAdd(nil, tee, 1)
	for _, qty := range []int{0, -1, -100} {
		next, changed := applyAdd(items, tote, qty)
		if changed {
			t.Fatalf("add with qty %d must be a no-op", qty)
		}
		if len(next) != 1 {
			t.Fatalf("add with qty %d changed items", qty)
		}
	}
}

func TestApplyAddPreservesInsertionOrder(t *testing.T) {
	items, _ := applyAdd(nil, tee, 1)
	items, _ = applyAdd(items, tote, 1)
	items, _ = applyAdd(items, tee, 3)
	if items[0].ProductID != 1 || items[1].ProductID != 2 {
		t.Fatalf("insertion order not preserved: %+v", items)
	}
}

func TestApplyRemoveOne(t *testing.T) {
	items, _ := applyAdd(nil, tee, 3)

	items, changed := applyRemoveOne(items, 1)
	if !changed || items[0].Quantity != 2 {
		t.Fatalf("after removeOne: changed=%v items=%+v", changed, items)
	}
	items, _ = applyRemoveOne(items, 1)
	items, _ = applyRemoveOne(items, 1)
	if len(items) != 0 {
		t.Fatalf("removing the last unit must delete the line, got %+v", items)
	}

	// Absent id is a harmless no-op.
	next, changed := applyRemoveOne(items, 42)
	if changed || len(next) != 0 {
		t.Fatalf("removeOne on absent id must be a no-op")
	}
}

func TestApplySetQuantity(t *testing.T) {
	items, _ := applyAdd(nil, tee, 1)

	next, changed := applySetQuantity(items, 1, 5)
	if !changed || next[0].Quantity != 5 {
		t.Fatalf("setQuantity(5): changed=%v items=%+v", changed, next)
	}

	// Below-1 values are rejected; use remove for deletion.
	for _, qty := range []int{0, -1} {
		got, changed := applySetQuantity(next, 1, qty)
		if changed || got[0].Quantity != 5 {
			t.Fatalf("setQuantity(%d) must be a no-op", qty)
		}
	}

	// Absent id is a no-op.
	if _, changed := applySetQuantity(next, 99, 3); changed {
		t.Fatalf("setQuantity on absent id must be a no-op")
	}

	// Setting the current quantity is not a change.
	if _, changed := applySetQuantity(next, 1, 5); changed {
		t.Fatalf("setQuantity to the current value must be a no-op")
	}
}

func TestApplyRemove(t *testing.T) {
	items, _ := applyAdd(nil, tee, 7)
	items, _ = applyAdd(items, tote, 1)

	next, changed := applyRemove(items, 1)
	if !changed || len(next) != 1 || next[0].ProductID != 2 {
		t.Fatalf("remove(1): changed=%v items=%+v", changed, next)
	}
	if _, changed := applyRemove(next, 1); changed {
		t.Fatalf("remove on absent id must be a no-op")
	}
}

func TestApplyClear(t *testing.T) {
	items, _ := applyAdd(nil, tee, 2)
	next, changed := applyClear(items)
	if !changed || len(next) != 0 {
		t.Fatalf("clear: changed=%v items=%+v", changed, next)
	}
	if _, changed := applyClear(next); changed {
		t.Fatalf("clear on empty cart must be a no-op")
	}
}

func TestSanitizeItems(t *testing.T) {
	raw := []domain.LineItem{
		{ProductID: 1, Title: "Tee", UnitPriceCents: 1999, Quantity: 2},
		{ProductID: 2, Title: "Bad", UnitPriceCents: 100, Quantity: 0},
		{ProductID: 1, Title: "Tee", UnitPriceCents: 1999, Quantity: 3},
		{ProductID: 3, Title: "Negative", UnitPriceCents: -5, Quantity: 1},
		{ProductID: 4, Title: "Tote", UnitPriceCents: 1499, Quantity: 1},
	}
	got := sanitizeItems(raw)
	if len(got) != 2 {
		t.Fatalf("sanitize kept %d items, want 2: %+v", len(got), got)
	}
	if got[0].ProductID != 1 || got[0].Quantity != 5 {
		t.Fatalf("duplicate product ids must merge: %+v", got[0])
	}
	if got[1].ProductID != 4 {
		t.Fatalf("order of surviving entries must hold: %+v", got)
	}
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	items, _ := applyAdd(nil, tee, 2)
	before := items[0].Quantity

	applyAdd(items, tee, 1)
	applyRemoveOne(items, 1)
	applySetQuantity(items, 1, 9)
	applyRemove(items, 1)

	if items[0].Quantity != before || len(items) != 1 {
		t.Fatalf("input slice was mutated: %+v", items)
	}
}
