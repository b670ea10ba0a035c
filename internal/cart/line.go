package cart

import (
	"joyeria/internal/domain"
	"joyeria/internal/stock"
)

const noVariation = "none"

// ProductSnapshot is the part of a catalog product a cart line keeps. It is not
// refreshed after the line is created.
type ProductSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	ImageURL string `json:"image_url,omitempty"`
}

type VariationSnapshot struct {
	ID            string `json:"id"`
	Brand         string `json:"brand"`
	Thickness     string `json:"thickness"`
	Length        string `json:"length"`
	PriceModifier int64  `json:"price_modifier"`
}

type Line struct {
	Product   ProductSnapshot    `json:"product"`
	Variation *VariationSnapshot `json:"variation,omitempty"`
	Quantity  int                `json:"quantity"`
}

func SnapshotProduct(p domain.Product) ProductSnapshot {
	return ProductSnapshot{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category, ImageURL: p.ImageURL}
}

func SnapshotVariation(v domain.Variation) *VariationSnapshot {
	return &VariationSnapshot{
		ID: v.ID, Brand: v.Brand, Thickness: v.Thickness, Length: v.Length,
		PriceModifier: v.PriceModifier,
	}
}

func (l Line) VariationID() string {
	if l.Variation == nil {
		return ""
	}
	return l.Variation.ID
}

func (l Line) StockKey() stock.Key {
	return stock.Key{ProductID: l.Product.ID, VariationID: l.VariationID()}
}

func (l Line) UnitPrice() int64 {
	if l.Variation == nil {
		return l.Product.Price
	}
	return l.Product.Price + l.Variation.PriceModifier
}

func (l Line) Subtotal() int64 { return l.UnitPrice() * int64(l.Quantity) }

func (l Line) VariationLabel() string {
	if l.Variation == nil {
		return ""
	}
	return l.Variation.Brand + " " + l.Variation.Thickness + " / " + l.Variation.Length
}

func lineKey(productID, variationID string) string {
	if variationID == "" {
		variationID = noVariation
	}
	return productID + "|" + variationID
}

func (l Line) key() string { return lineKey(l.Product.ID, l.VariationID()) }
