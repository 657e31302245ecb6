package orders

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pdv-commerce/storefront/internal/api"
	"github.com/pdv-commerce/storefront/internal/cart"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
	"github.com/pdv-commerce/storefront/pkg/metrics"
)

// customizationPrefix labels the buyer's per-line note inside the merged
// order note so sellers can tell it apart from delivery instructions.
const customizationPrefix = "Customização: "

// DispatchRequest carries everything one checkout needs to turn cart
// lines into orders.
type DispatchRequest struct {
	Lines        []cart.Line
	BuyerID      int64
	DeliveryNote string
	DeliveryAt   time.Time
	// DefaultSellerID backs lines whose snapshot carries no seller.
	DefaultSellerID int64
}

// CreatedOrder is one successfully placed order line.
type CreatedOrder struct {
	OrderID   int64
	LineID    string
	ProductID int64
	Quantity  int
}

// LineFailure is one cart line the marketplace rejected.
type LineFailure struct {
	LineID      string
	ProductID   int64
	ProductName string
	Reason      error
}

// Outcome aggregates a dispatch batch. Both lists can be non-empty at
// once; a partial batch still counts as a placed purchase.
type Outcome struct {
	Succeeded []CreatedOrder
	Failed    []LineFailure
}

// AnySuccess reports whether at least one line became an order.
func (o Outcome) AnySuccess() bool {
	return len(o.Succeeded) > 0
}

// TotalFailure reports whether every line failed.
func (o Outcome) TotalFailure() bool {
	return len(o.Succeeded) == 0 && len(o.Failed) > 0
}

func (o Outcome) label() string {
	switch {
	case len(o.Failed) == 0:
		return "success"
	case o.AnySuccess():
		return "partial"
	default:
		return "failure"
	}
}

// Gateway turns cart lines into marketplace orders, one request per
// line. A rejected line never aborts the rest of the batch.
type Gateway interface {
	Dispatch(ctx context.Context, req DispatchRequest) (Outcome, error)
}

type gateway struct {
	client  *api.Client
	logg    *logger.Logger
	metrics *metrics.DispatchMetrics
	now     func() time.Time
}

func NewGateway(client *api.Client, logg *logger.Logger, m *metrics.DispatchMetrics) (Gateway, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &gateway{
		client:  client,
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}, nil
}

type createOrderRequest struct {
	ProductID  int64           `json:"produto_id"`
	Quantity   int             `json:"quantidade"`
	UnitPrice  decimal.Decimal `json:"valor_unitario"`
	SellerID   int64           `json:"empresa_id"`
	Note       string          `json:"observacao,omitempty"`
	DeliveryAt string          `json:"data_entrega,omitempty"`
}

type createOrderResponse struct {
	OrderID int64 `json:"pedido_id"`
}

func (g *gateway) Dispatch(ctx context.Context, req DispatchRequest) (Outcome, error) {
	if len(req.Lines) == 0 {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "cannot dispatch an empty cart")
	}

	started := g.now()
	ctx = g.logg.WithUserID(ctx, req.BuyerID)

	var outcome Outcome
	for _, line := range req.Lines {
		order, err := g.dispatchLine(ctx, req, line)
		if err != nil {
			g.metrics.IncLine("failure")
			lineCtx := g.logg.WithProductID(ctx, line.ProductID)
			g.logg.Error(lineCtx, "order line rejected", err)
			outcome.Failed = append(outcome.Failed, LineFailure{
				LineID:      line.LineID,
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Reason:      err,
			})
			continue
		}
		g.metrics.IncLine("success")
		outcome.Succeeded = append(outcome.Succeeded, order)
	}

	g.metrics.ObserveBatch(outcome.label(), g.now().Sub(started))
	g.logg.Info(g.logg.WithFields(ctx, map[string]any{
		"succeeded": len(outcome.Succeeded),
		"failed":    len(outcome.Failed),
	}), "order batch dispatched")

	return outcome, nil
}

func (g *gateway) dispatchLine(ctx context.Context, req DispatchRequest, line cart.Line) (CreatedOrder, error) {
	sellerID := line.SellerID
	if sellerID == 0 {
		sellerID = req.DefaultSellerID
	}

	payload := createOrderRequest{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		SellerID:  sellerID,
		Note:      mergeNotes(req.DeliveryNote, line.CustomizationNote),
	}
	if !req.DeliveryAt.IsZero() {
		payload.DeliveryAt = req.DeliveryAt.Format(time.RFC3339)
	}

	var resp createOrderResponse
	if err := g.client.Post(ctx, "/pedidos", payload, &resp); err != nil {
		return CreatedOrder{}, err
	}
	return CreatedOrder{
		OrderID:   resp.OrderID,
		LineID:    line.LineID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
	}, nil
}

// mergeNotes joins the checkout-level delivery note with the line's
// customization note, keeping the customization labelled.
func mergeNotes(deliveryNote, customization string) string {
	parts := make([]string, 0, 2)
	if deliveryNote != "" {
		parts = append(parts, deliveryNote)
	}
	if customization != "" {
		parts = append(parts, customizationPrefix+customization)
	}
	return strings.Join(parts, "\n")
}
