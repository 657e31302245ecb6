package devserver

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pdv-commerce/storefront/pkg/enums"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
)

// Repository owns all database access for the devserver.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db handle is required")
	}
	return &Repository{db: db}, nil
}

// Migrate creates or updates the schema.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&User{}, &Product{}, &Order{}, &Conversation{}, &Message{})
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Credenciais inválidas")
	}
	if err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (r *Repository) Products(ctx context.Context, sellerID int64) ([]Product, error) {
	query := r.db.WithContext(ctx).Order("id")
	if sellerID > 0 {
		query = query.Where("seller_id = ?", sellerID)
	}
	var products []Product
	if err := query.Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return products, nil
}

func (r *Repository) ProductByID(ctx context.Context, id int64) (Product, error) {
	var product Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "Produto não encontrado")
	}
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

// DecrementStock reduces the available quantity, refusing to go
// negative.
func (r *Repository) DecrementStock(ctx context.Context, productID int64, quantity int) (Product, error) {
	var product Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Produto não encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if product.Quantity < quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "Estoque insuficiente")
		}
		product.Quantity -= quantity
		return tx.Model(&Product{}).Where("id = ?", productID).
			Update("quantity", product.Quantity).Error
	})
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

// CreateOrder places one order line and decrements the product stock in
// the same transaction.
func (r *Repository) CreateOrder(ctx context.Context, order Order) (Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.First(&product, order.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Produto não encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if product.Quantity < order.Quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "Estoque insuficiente")
		}

		order.ProductName = product.Name
		order.UnitPrice = product.Price
		order.Total = product.Price.Mul(decimal.NewFromInt(int64(order.Quantity)))
		order.Status = enums.OrderStatusPending.String()
		order.CreatedAt = time.Now()

		// Stock is only checked here; the buyer decrements it through the
		// estoque endpoint when payment is confirmed.
		if err := tx.Create(&order).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// OrderFilter narrows a customer's order history. Zero values mean "any".
type OrderFilter struct {
	Status    string
	ProductID int64
	SellerID  int64
}

func (r *Repository) OrdersByCustomer(ctx context.Context, customerID int64, filter OrderFilter) ([]Order, error) {
	tx := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.ProductID > 0 {
		tx = tx.Where("product_id = ?", filter.ProductID)
	}
	if filter.SellerID > 0 {
		tx = tx.Where("seller_id = ?", filter.SellerID)
	}

	var orders []Order
	if err := tx.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return orders, nil
}

func (r *Repository) OrderByID(ctx context.Context, orderID, customerID int64) (Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
	}
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error {
	result := r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ?", orderID).
		Update("status", status.String())
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "update order status")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
	}
	return nil
}

// ConfirmPayment moves a pending order to confirmed. Any other starting
// status is a state conflict.
func (r *Repository) ConfirmPayment(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.Status != enums.OrderStatusPending.String() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Pedido já processado")
		}
		return tx.Model(&Order{}).Where("id = ?", orderID).
			Update("status", enums.OrderStatusConfirmed.String()).Error
	})
}

func (r *Repository) ConversationsByUser(ctx context.Context, userID int64) ([]Conversation, error) {
	var conversations []Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ? OR seller_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&conversations).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list conversations")
	}
	return conversations, nil
}

func (r *Repository) ConversationByID(ctx context.Context, conversationID int64) (Conversation, error) {
	var conversation Conversation
	err := r.db.WithContext(ctx).First(&conversation, conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Conversation{}, pkgerrors.New(pkgerrors.CodeNotFound, "Conversa não encontrada")
	}
	if err != nil {
		return Conversation{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load conversation")
	}
	return conversation, nil
}

// CreateConversation opens a thread between a customer and a seller,
// reusing the existing one when the pair already talked.
func (r *Repository) CreateConversation(ctx context.Context, customerID, sellerID int64) (Conversation, bool, error) {
	var conversation Conversation
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("customer_id = ? AND seller_id = ?", customerID, sellerID).
			First(&conversation).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load conversation")
		}

		var seller User
		if err := tx.First(&seller, sellerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Destinatário não encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipient")
		}

		conversation = Conversation{
			CustomerID: customerID,
			SellerID:   sellerID,
			SellerName: seller.Name,
			UpdatedAt:  time.Now(),
		}
		if err := tx.Create(&conversation).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create conversation")
		}
		created = true
		return nil
	})
	if err != nil {
		return Conversation{}, false, err
	}
	return conversation, created, nil
}

// MessagesByConversation reads a thread without touching read flags.
func (r *Repository) MessagesByConversation(ctx context.Context, conversationID int64) ([]Message, error) {
	var messages []Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at").
		Find(&messages).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list messages")
	}
	return messages, nil
}

// MarkConversationRead flags every message the reader did not send as read.
func (r *Repository) MarkConversationRead(ctx context.Context, conversationID, readerID int64) error {
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = ?", conversationID, readerID, false).
		Update("read", true).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark conversation read")
	}
	return nil
}

func (r *Repository) CreateMessage(ctx context.Context, message Message) (Message, error) {
	message.SentAt = time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create message")
		}
		return tx.Model(&Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("updated_at", message.SentAt).Error
	})
	if err != nil {
		return Message{}, err
	}
	return message, nil
}

func (r *Repository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("messages.read = ? AND messages.sender_id <> ?", false, userID).
		Where("conversations.customer_id = ? OR conversations.seller_id = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unread messages")
	}
	return int(count), nil
}
