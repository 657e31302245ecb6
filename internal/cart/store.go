package cart

import (
	"unicode/utf8"

	"github.com/google/uuid"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxNoteLength bounds the per-line customization note.
const MaxNoteLength = 500

// ProductSnapshot is the read-only view of a catalog product captured when a
// line is added. Prices are frozen at insertion time; later catalog changes
// never update existing lines.
type ProductSnapshot struct {
	ID           int64
	DisplayName  string
	UnitPrice    decimal.Decimal
	SellerID     int64
	AvailableQty int
}

// Line is one cart entry. Identity is (ProductID, CustomizationNote): the
// same product added with a different note produces a distinct line. LineID
// is the stable handle for an entry once created.
type Line struct {
	LineID            string          `json:"line_id"`
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	CustomizationNote string          `json:"customization_note,omitempty"`
	SellerID          int64           `json:"seller_id,omitempty"`
	AvailableQty      int             `json:"available_qty"`
}

// Subtotal returns unit price times quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store holds the in-memory cart lines for the current session. It performs
// no I/O and is not safe for concurrent mutation; all callers run on the
// same goroutine.
type Store struct {
	lines []Line
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{}
}

// AddItem merges into an existing line with the same product and note, or
// appends a new line with quantity 1, capturing price, seller and available
// quantity from the snapshot.
func (s *Store) AddItem(product ProductSnapshot, note string) (Line, error) {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "customization note exceeds 500 characters")
	}

	for i := range s.lines {
		if s.lines[i].ProductID == product.ID && s.lines[i].CustomizationNote == note {
			s.lines[i].Quantity++
			return s.lines[i], nil
		}
	}

	line := Line{
		LineID:            uuid.NewString(),
		ProductID:         product.ID,
		ProductName:       product.DisplayName,
		UnitPrice:         product.UnitPrice,
		Quantity:          1,
		CustomizationNote: note,
		SellerID:          product.SellerID,
		AvailableQty:      product.AvailableQty,
	}
	s.lines = append(s.lines, line)
	return line, nil
}

// RemoveItem deletes the line with the given id. Removing an unknown id is a
// no-op.
func (s *Store) RemoveItem(lineID string) {
	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity overwrites the quantity of the line exactly; values below 1
// remove the line instead. Stock limits are not enforced here; callers that
// want advisory stock checks wrap the store in a StockGuard.
func (s *Store) SetQuantity(lineID string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(lineID)
		return
	}
	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			s.lines[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.lines = nil
}

// Total returns the sum of unit price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount returns the sum of quantities, which differs from Len when any
// line holds more than one unit.
func (s *Store) ItemCount() int {
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	return len(s.lines)
}

// Lines returns a copy of the current entries in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Find returns the line with the given id.
func (s *Store) Find(lineID string) (Line, bool) {
	for _, line := range s.lines {
		if line.LineID == lineID {
			return line, true
		}
	}
	return Line{}, false
}

// Restore replaces the cart contents with previously snapshotted lines.
func (s *Store) Restore(lines []Line) {
	s.lines = make([]Line, len(lines))
	copy(s.lines, lines)
}
