package cart

import (
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
)

// StockGuard wraps a Store with advisory stock checks against the quantity
// captured in each product snapshot. The checks are best-effort: the
// snapshot may be stale, and the underlying Store never enforces stock on
// its own.
type StockGuard struct {
	store *Store
}

func NewStockGuard(store *Store) *StockGuard {
	return &StockGuard{store: store}
}

// AddItem rejects the add when the merged quantity would exceed the
// snapshot's available stock.
func (g *StockGuard) AddItem(product ProductSnapshot, note string) (Line, error) {
	current := 0
	for _, line := range g.store.Lines() {
		if line.ProductID == product.ID && line.CustomizationNote == note {
			current = line.Quantity
			break
		}
	}
	if product.AvailableQty > 0 && current+1 > product.AvailableQty {
		return Line{}, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product")
	}
	return g.store.AddItem(product, note)
}

// SetQuantity rejects quantities above the line's stock snapshot; values
// below 1 fall through to removal like the plain store.
func (g *StockGuard) SetQuantity(lineID string, quantity int) error {
	if quantity < 1 {
		g.store.SetQuantity(lineID, quantity)
		return nil
	}
	line, ok := g.store.Find(lineID)
	if !ok {
		return nil
	}
	if line.AvailableQty > 0 && quantity > line.AvailableQty {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product")
	}
	g.store.SetQuantity(lineID, quantity)
	return nil
}
