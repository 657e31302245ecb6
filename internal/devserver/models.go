package devserver

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a marketplace account, buyer or seller.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:512;not null"`
	Type         string `gorm:"size:32;not null"`
	CreatedAt    time.Time
}

// Product is a catalog entry owned by a seller.
type Product struct {
	ID          int64           `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"size:2000"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity    int             `gorm:"not null"`
	SellerID    int64           `gorm:"index;not null"`
	SellerName  string          `gorm:"size:255"`
	Menu        string          `gorm:"size:32;not null;default:ecommerce"`
	ImageURL    string          `gorm:"size:1024"`
	CreatedAt   time.Time
}

// Order is one placed order line.
type Order struct {
	ID           int64           `gorm:"primaryKey"`
	ProductID    int64           `gorm:"index;not null"`
	ProductName  string          `gorm:"size:255"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status       string          `gorm:"size:32;not null"`
	Note         string          `gorm:"size:2000"`
	CustomerID   int64           `gorm:"index;not null"`
	CustomerName string          `gorm:"size:255"`
	SellerID     int64           `gorm:"index;not null"`
	DeliveryAt   *time.Time
	CreatedAt    time.Time
}

// Conversation is a buyer-seller chat thread.
type Conversation struct {
	ID         int64 `gorm:"primaryKey"`
	CustomerID int64 `gorm:"index;not null"`
	SellerID   int64 `gorm:"index;not null"`
	SellerName string `gorm:"size:255"`
	UpdatedAt  time.Time
}

// Message is one chat entry.
type Message struct {
	ID             int64  `gorm:"primaryKey"`
	ConversationID int64  `gorm:"index;not null"`
	SenderID       int64  `gorm:"index;not null"`
	SenderName     string `gorm:"size:255"`
	Body           string `gorm:"size:4000;not null"`
	Read           bool   `gorm:"not null;default:false"`
	SentAt         time.Time
}
