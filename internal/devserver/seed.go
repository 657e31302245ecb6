package devserver

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pdv-commerce/storefront/pkg/config"
	"github.com/pdv-commerce/storefront/pkg/enums"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/security"
)

// Seed fills an empty database with a demo seller, a demo buyer and a
// small catalog. A database that already has users is left alone.
func (r *Repository) Seed(ctx context.Context, passwords config.PasswordConfig) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	if count > 0 {
		return nil
	}

	hash, err := security.HashPassword("senha123", passwords)
	if err != nil {
		return err
	}

	users := []User{
		{Name: "Ana Souza", Email: "ana@example.com", PasswordHash: hash, Type: "cliente"},
		{Name: "Cafeteria Central", Email: "vendas@cafeteria.example.com", PasswordHash: hash, Type: "empresa"},
	}
	if err := r.db.WithContext(ctx).Create(&users).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed users")
	}

	seller := users[1]
	products := []Product{
		{
			Name:        "Café Especial 250g",
			Description: "Torra média, notas de chocolate",
			Price:       decimal.RequireFromString("29.90"),
			Quantity:    25,
			SellerID:    seller.ID,
			SellerName:  seller.Name,
			Menu:        enums.ProductMenuEcommerce.String(),
			ImageURL:    "https://cdn.example.com/cafe-especial.png",
		},
		{
			Name:        "Filtro de Papel 103",
			Description: "Caixa com 30 unidades",
			Price:       decimal.RequireFromString("15.00"),
			Quantity:    40,
			SellerID:    seller.ID,
			SellerName:  seller.Name,
			Menu:        enums.ProductMenuBoth.String(),
		},
		{
			Name:       "Combo do Balcão",
			Price:      decimal.RequireFromString("9.90"),
			Quantity:   10,
			SellerID:   seller.ID,
			SellerName: seller.Name,
			Menu:       enums.ProductMenuPDV.String(),
		},
	}
	if err := r.db.WithContext(ctx).Create(&products).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed products")
	}

	conversation := Conversation{
		CustomerID: users[0].ID,
		SellerID:   seller.ID,
		SellerName: seller.Name,
		UpdatedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&conversation).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed conversation")
	}

	welcome := Message{
		ConversationID: conversation.ID,
		SenderID:       seller.ID,
		SenderName:     seller.Name,
		Body:           "Olá! Posso ajudar com o seu pedido?",
		SentAt:         time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&welcome).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed message")
	}
	return nil
}
