package products

import (
	"github.com/shopspring/decimal"

	"github.com/pdv-commerce/storefront/internal/cart"
	"github.com/pdv-commerce/storefront/pkg/enums"
)

// Product is the normalized catalog entry the engine works with.
type Product struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Quantity    int               `json:"quantity"`
	SellerID    int64             `json:"seller_id"`
	SellerName  string            `json:"seller_name"`
	Menu        enums.ProductMenu `json:"menu"`
	ImageURL    string            `json:"image_url"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Quantity > 0
}

// Snapshot converts the product to the shape the cart freezes at
// insertion time.
func (p Product) Snapshot() cart.ProductSnapshot {
	return cart.ProductSnapshot{
		ID:           p.ID,
		DisplayName:  p.Name,
		UnitPrice:    p.Price,
		SellerID:     p.SellerID,
		AvailableQty: p.Quantity,
	}
}

// rawProduct mirrors the wire shape the marketplace API sends. Listing
// and detail endpoints disagree on field names, so every alias is kept.
type rawProduct struct {
	ProdutoID int64           `json:"produto_id"`
	ID        int64           `json:"id"`
	Nome      string          `json:"nome"`
	Descricao string          `json:"descricao"`
	Valor     decimal.Decimal `json:"valor"`
	Qtd       int             `json:"quantidade"`
	EmpresaID int64           `json:"empresa_id"`
	Empresa   string          `json:"empresa_nome"`
	Menu      string          `json:"menu"`

	// Image aliases in descending priority.
	ImagemURL string `json:"imagem_url"`
	ImageData string `json:"imageData"`
	Image     string `json:"image"`
	URLImagem string `json:"url_imagem"`
}

func (r rawProduct) normalize() Product {
	id := r.ProdutoID
	if id == 0 {
		id = r.ID
	}
	return Product{
		ID:          id,
		Name:        r.Nome,
		Description: r.Descricao,
		Price:       r.Valor,
		Quantity:    r.Qtd,
		SellerID:    r.EmpresaID,
		SellerName:  r.Empresa,
		Menu:        enums.ProductMenu(r.Menu),
		ImageURL:    r.imageURL(),
	}
}

func (r rawProduct) imageURL() string {
	for _, candidate := range []string{r.ImagemURL, r.ImageData, r.Image, r.URLImagem} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}
