package enums

import "fmt"

// ProductMenu marks which sales channel a catalog product belongs to.
type ProductMenu string

const (
	ProductMenuEcommerce ProductMenu = "ecommerce"
	ProductMenuPDV       ProductMenu = "pdv"
	ProductMenuBoth      ProductMenu = "ambos"
)

var validProductMenus = []ProductMenu{
	ProductMenuEcommerce,
	ProductMenuPDV,
	ProductMenuBoth,
}

// String implements fmt.Stringer.
func (p ProductMenu) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductMenu.
func (p ProductMenu) IsValid() bool {
	for _, candidate := range validProductMenus {
		if candidate == p {
			return true
		}
	}
	return false
}

// VisibleInStorefront reports whether products on this menu are shown to
// storefront buyers.
func (p ProductMenu) VisibleInStorefront() bool {
	return p == ProductMenuEcommerce || p == ProductMenuBoth
}

// ParseProductMenu converts raw input into a ProductMenu.
func ParseProductMenu(value string) (ProductMenu, error) {
	for _, candidate := range validProductMenus {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product menu %q", value)
}
