package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/pdv-commerce/storefront/internal/api"
	"github.com/pdv-commerce/storefront/internal/cart"
	"github.com/pdv-commerce/storefront/pkg/config"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
	"github.com/pdv-commerce/storefront/pkg/metrics"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "orders-test"})
}

func newTestGateway(t *testing.T, handler http.Handler) Gateway {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClient(config.APIConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, nil, nil)
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}

	gw, err := NewGateway(client, testLogger(t), metrics.NewDispatchMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	return gw
}

func line(id string, productID int64, qty int, note string, sellerID int64) cart.Line {
	return cart.Line{
		LineID:            id,
		ProductID:         productID,
		ProductName:       fmt.Sprintf("product-%d", productID),
		UnitPrice:         decimal.NewFromFloat(29.90),
		Quantity:          qty,
		CustomizationNote: note,
		SellerID:          sellerID,
		AvailableQty:      10,
	}
}

func TestDispatchPlacesOneOrderPerLine(t *testing.T) {
	t.Parallel()

	var requests []createOrderRequest
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		json.NewDecoder(r.Body).Decode(&req)
		requests = append(requests, req)
		json.NewEncoder(w).Encode(map[string]int64{"pedido_id": int64(100 + len(requests))})
	}))

	outcome, err := gw.Dispatch(context.Background(), DispatchRequest{
		Lines: []cart.Line{
			line("a", 1, 2, "", 7),
			line("b", 2, 1, "sem açúcar", 7),
		},
		BuyerID: 12,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(outcome.Succeeded) != 2 || len(outcome.Failed) != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Succeeded[0].OrderID != 101 || outcome.Succeeded[1].OrderID != 102 {
		t.Fatalf("order ids = %+v", outcome.Succeeded)
	}
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}
	// Lines go out in cart order, one request each.
	if requests[0].ProductID != 1 || requests[1].ProductID != 2 {
		t.Fatalf("request order: %+v", requests)
	}
}

func TestDispatchIsolatesFailedLines(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ProductID == 2 {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"Estoque insuficiente"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]int64{"pedido_id": 500})
	}))

	outcome, err := gw.Dispatch(context.Background(), DispatchRequest{
		Lines: []cart.Line{
			line("a", 1, 1, "", 7),
			line("b", 2, 1, "", 7),
			line("c", 3, 1, "", 7),
		},
		BuyerID: 12,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(outcome.Succeeded) != 2 {
		t.Fatalf("succeeded = %d, want 2", len(outcome.Succeeded))
	}
	if len(outcome.Failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(outcome.Failed))
	}
	if outcome.Failed[0].LineID != "b" {
		t.Fatalf("failed line = %q, want b", outcome.Failed[0].LineID)
	}
	coded := pkgerrors.As(outcome.Failed[0].Reason)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("failure reason: %v", outcome.Failed[0].Reason)
	}
	if !outcome.AnySuccess() || outcome.TotalFailure() {
		t.Fatal("partial batch misclassified")
	}
}

func TestDispatchTotalFailure(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"erro"}`))
	}))

	outcome, err := gw.Dispatch(context.Background(), DispatchRequest{
		Lines:   []cart.Line{line("a", 1, 1, "", 7), line("b", 2, 1, "", 7)},
		BuyerID: 12,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !outcome.TotalFailure() {
		t.Fatalf("expected total failure, got %+v", outcome)
	}
}

func TestDispatchRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server must not be reached")
	}))

	_, err := gw.Dispatch(context.Background(), DispatchRequest{BuyerID: 12})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatchSellerFallbackAndNotes(t *testing.T) {
	t.Parallel()

	var requests []createOrderRequest
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		json.NewDecoder(r.Body).Decode(&req)
		requests = append(requests, req)
		json.NewEncoder(w).Encode(map[string]int64{"pedido_id": 1})
	}))

	deliveryAt := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	_, err := gw.Dispatch(context.Background(), DispatchRequest{
		Lines: []cart.Line{
			line("a", 1, 1, "sem açúcar", 0),
			line("b", 2, 1, "", 9),
		},
		BuyerID:         12,
		DeliveryNote:    "Entregar na portaria",
		DeliveryAt:      deliveryAt,
		DefaultSellerID: 7,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if requests[0].SellerID != 7 {
		t.Fatalf("fallback seller = %d, want 7", requests[0].SellerID)
	}
	if requests[1].SellerID != 9 {
		t.Fatalf("line seller = %d, want 9", requests[1].SellerID)
	}

	wantNote := "Entregar na portaria\nCustomização: sem açúcar"
	if requests[0].Note != wantNote {
		t.Fatalf("note = %q, want %q", requests[0].Note, wantNote)
	}
	if requests[1].Note != "Entregar na portaria" {
		t.Fatalf("note = %q", requests[1].Note)
	}
	if !strings.HasPrefix(requests[0].DeliveryAt, "2026-09-02T14:00:00") {
		t.Fatalf("delivery at = %q", requests[0].DeliveryAt)
	}
}

func TestMergeNotes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		delivery, custom, want string
	}{
		{"", "", ""},
		{"na portaria", "", "na portaria"},
		{"", "sem gelo", "Customização: sem gelo"},
		{"na portaria", "sem gelo", "na portaria\nCustomização: sem gelo"},
	}
	for _, tc := range cases {
		if got := mergeNotes(tc.delivery, tc.custom); got != tc.want {
			t.Fatalf("mergeNotes(%q, %q) = %q, want %q", tc.delivery, tc.custom, got, tc.want)
		}
	}
}
