package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pdv-commerce/storefront/internal/api"
	"github.com/pdv-commerce/storefront/internal/cart"
	"github.com/pdv-commerce/storefront/pkg/enums"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
)

// Order is a placed order as seen by the buyer.
type Order struct {
	ID           int64             `json:"id"`
	ProductID    int64             `json:"product_id"`
	ProductName  string            `json:"product_name"`
	Quantity     int               `json:"quantity"`
	Total        decimal.Decimal   `json:"total"`
	Status       enums.OrderStatus `json:"status"`
	Note         string            `json:"note,omitempty"`
	CustomerName string            `json:"customer_name,omitempty"`
	SellerID     int64             `json:"seller_id"`
	PlacedAt     time.Time         `json:"placed_at"`
}

// ListFilter narrows order-history queries. Zero values mean "any".
type ListFilter struct {
	Status    enums.OrderStatus
	ProductID int64
	SellerID  int64
}

// Service reads and mutates existing orders. Placing new ones is the
// Gateway's job.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	Get(ctx context.Context, orderID int64) (Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error
	ConfirmPayment(ctx context.Context, created []CreatedOrder, lines []cart.Line) (Outcome, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

type service struct {
	client *api.Client
	logg   *logger.Logger
}

func NewService(client *api.Client, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{client: client, logg: logg}, nil
}

type rawOrder struct {
	PedidoID   int64           `json:"pedido_id"`
	ProdutoID  int64           `json:"produto_id"`
	Produto    string          `json:"produto_nome"`
	Quantidade int             `json:"quantidade"`
	ValorTotal decimal.Decimal `json:"valor_total"`
	Status     string          `json:"status"`
	Observacao string          `json:"observacao"`
	Cliente    string          `json:"cliente_nome"`
	EmpresaID  int64           `json:"empresa_id"`
	DataPedido time.Time       `json:"data_pedido"`
}

func (r rawOrder) normalize() Order {
	return Order{
		ID:           r.PedidoID,
		ProductID:    r.ProdutoID,
		ProductName:  r.Produto,
		Quantity:     r.Quantidade,
		Total:        r.ValorTotal,
		Status:       enums.OrderStatus(r.Status),
		Note:         r.Observacao,
		CustomerName: r.Cliente,
		SellerID:     r.EmpresaID,
		PlacedAt:     r.DataPedido,
	}
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	query := url.Values{}
	if filter.Status != "" {
		if !filter.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		query.Set("status", filter.Status.String())
	}
	if filter.ProductID > 0 {
		query.Set("produto_id", strconv.FormatInt(filter.ProductID, 10))
	}
	if filter.SellerID > 0 {
		query.Set("empresa_id", strconv.FormatInt(filter.SellerID, 10))
	}

	var raw []rawOrder
	if err := s.client.Get(ctx, "/pedidos", query, &raw); err != nil {
		return nil, err
	}

	result := make([]Order, 0, len(raw))
	for _, r := range raw {
		result = append(result, r.normalize())
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, orderID int64) (Order, error) {
	if orderID <= 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var raw rawOrder
	if err := s.client.Get(ctx, fmt.Sprintf("/pedidos/%d", orderID), nil, &raw); err != nil {
		return Order{}, err
	}
	return raw.normalize(), nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error {
	if orderID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	path := fmt.Sprintf("/pedidos/%d/status", orderID)
	payload := map[string]string{"status": status.String()}
	if err := s.client.Put(ctx, path, payload, nil); err != nil {
		return err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID,
		"status":   status.String(),
	}), "order status updated")
	return nil
}

// ConfirmPayment finalizes a dispatched batch: each created order is
// moved to confirmado and its product stock decremented. Per-order
// failures are isolated so one rejected confirmation does not abort the
// rest of the batch.
func (s *service) ConfirmPayment(ctx context.Context, created []CreatedOrder, lines []cart.Line) (Outcome, error) {
	if len(created) == 0 {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "no orders to confirm")
	}

	names := make(map[string]string, len(lines))
	for _, line := range lines {
		names[line.LineID] = line.ProductName
	}

	var outcome Outcome
	for _, order := range created {
		if err := s.confirmOrder(ctx, order); err != nil {
			s.logg.Error(s.logg.WithFields(ctx, map[string]any{
				"order_id":   order.OrderID,
				"product_id": order.ProductID,
			}), "payment confirmation failed", err)
			outcome.Failed = append(outcome.Failed, LineFailure{
				LineID:      order.LineID,
				ProductID:   order.ProductID,
				ProductName: names[order.LineID],
				Reason:      err,
			})
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, order)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"confirmed": len(outcome.Succeeded),
		"failed":    len(outcome.Failed),
	}), "payment confirmation finished")
	return outcome, nil
}

func (s *service) confirmOrder(ctx context.Context, order CreatedOrder) error {
	path := fmt.Sprintf("/pedidos/%d/confirmar-pagamento", order.OrderID)
	if err := s.client.Put(ctx, path, nil, nil); err != nil {
		return err
	}
	return s.DecrementStock(ctx, order.ProductID, order.Quantity)
}

// DecrementStock reduces a product's available quantity after a
// successful dispatch.
func (s *service) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	if productID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	path := fmt.Sprintf("/produtos/%d/estoque", productID)
	payload := map[string]int{"decremento": quantity}
	return s.client.Put(ctx, path, payload, nil)
}
