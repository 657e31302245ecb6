package cart

import (
	"testing"

	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

func TestStockGuardBlocksAddPastCeiling(t *testing.T) {
	t.Parallel()

	store := NewStore()
	guard := NewStockGuard(store)

	product := ProductSnapshot{ID: 1, DisplayName: "p", UnitPrice: decimal.New(100, -2), AvailableQty: 2}
	if _, err := guard.AddItem(product, ""); err != nil {
		t.Fatalf("first add should pass: %v", err)
	}
	if _, err := guard.AddItem(product, ""); err != nil {
		t.Fatalf("second add should pass: %v", err)
	}

	_, err := guard.AddItem(product, "")
	if err == nil {
		t.Fatal("expected stock ceiling to block third add")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error code: %v", err)
	}
	if store.ItemCount() != 2 {
		t.Fatalf("cart should hold 2 units, got %d", store.ItemCount())
	}
}

func TestStockGuardSetQuantityCeiling(t *testing.T) {
	t.Parallel()

	store := NewStore()
	guard := NewStockGuard(store)

	product := ProductSnapshot{ID: 1, DisplayName: "p", UnitPrice: decimal.New(100, -2), AvailableQty: 5}
	line, _ := guard.AddItem(product, "")

	if err := guard.SetQuantity(line.LineID, 5); err != nil {
		t.Fatalf("quantity at ceiling should pass: %v", err)
	}
	if err := guard.SetQuantity(line.LineID, 6); err == nil {
		t.Fatal("expected quantity above ceiling to be rejected")
	}

	// The raw store stays permissive even through absurd values.
	store.SetQuantity(line.LineID, 1000000)
	got, _ := store.Find(line.LineID)
	if got.Quantity != 1000000 {
		t.Fatalf("raw store must not clamp, got %d", got.Quantity)
	}
}

func TestStockGuardZeroQuantityRemoves(t *testing.T) {
	t.Parallel()

	store := NewStore()
	guard := NewStockGuard(store)
	line, _ := guard.AddItem(ProductSnapshot{ID: 1, UnitPrice: decimal.New(100, -2), AvailableQty: 5}, "")

	if err := guard.SetQuantity(line.LineID, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("zero quantity should remove the line")
	}
}
