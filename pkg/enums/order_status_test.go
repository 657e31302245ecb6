package enums

import "testing"

func TestOrderStatusValidity(t *testing.T) {
	t.Parallel()

	for _, status := range []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusInTransit,
		OrderStatusDelivered,
		OrderStatusCancelled,
	} {
		if !status.IsValid() {
			t.Fatalf("%s must be valid", status)
		}
	}
	if OrderStatus("despachado").IsValid() {
		t.Fatal("unknown status must be invalid")
	}
}

func TestOrderStatusLabelsAndColors(t *testing.T) {
	t.Parallel()

	if got := OrderStatusInTransit.Label(); got != "Em Transporte" {
		t.Fatalf("label = %q", got)
	}
	if got := OrderStatusPending.Color(); got != "#f59e0b" {
		t.Fatalf("color = %q", got)
	}
	if got := OrderStatus("desconhecido").Color(); got != "#6b7280" {
		t.Fatalf("fallback color = %q", got)
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseOrderStatus("em_transporte")
	if err != nil || status != OrderStatusInTransit {
		t.Fatalf("got %v, %v", status, err)
	}
	if _, err := ParseOrderStatus("enviado"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestProductMenuVisibility(t *testing.T) {
	t.Parallel()

	if !ProductMenuEcommerce.VisibleInStorefront() || !ProductMenuBoth.VisibleInStorefront() {
		t.Fatal("online menus must be visible")
	}
	if ProductMenuPDV.VisibleInStorefront() {
		t.Fatal("pdv-only products must stay off the storefront")
	}
	if _, err := ParseProductMenu("delivery"); err == nil {
		t.Fatal("expected error for unknown menu")
	}
}
