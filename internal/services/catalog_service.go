package services

import (
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"joyeria/internal/cart"
	"joyeria/internal/domain"
	"joyeria/internal/pricing"
	"joyeria/internal/repos"
	"joyeria/internal/validate"
)

var ErrProductNotFound = errors.New("product not found")

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Vars  *repos.VariationRepo

	loads singleflight.Group
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, vars *repos.VariationRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Vars: vars}
}

// ProductCard is a product as the storefront lists it.
type ProductCard struct {
	domain.Product
	DisplayPrice int64 `json:"display_price"`
}

type VariationOption struct {
	domain.Variation
	Label        string `json:"label"`
	DisplayPrice int64  `json:"display_price"`
}

type ProductDetail struct {
	ProductCard
	Variations []VariationOption `json:"variations"`
}

func card(p domain.Product) ProductCard {
	return ProductCard{Product: p, DisplayPrice: pricing.RoundToProfessionalPrice(p.Price)}
}

func cards(ps []domain.Product) []ProductCard {
	out := make([]ProductCard, 0, len(ps))
	for _, p := range ps {
		out = append(out, card(p))
	}
	return out
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List(true)
}

func (s *CatalogService) Category(slug string) (domain.Category, error) {
	c, err := s.Cats.Get(slug)
	if err == nil && !c.IsActive {
		return c, repos.ErrNotFound
	}
	return c, err
}

func (s *CatalogService) ListProductsByCategory(slug string, page, pageSize int) ([]ProductCard, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	ps, err := s.Prods.List(repos.ProductFilter{Category: slug, Limit: pageSize, Offset: (page - 1) * pageSize})
	if err != nil {
		return nil, err
	}
	return cards(ps), nil
}

func (s *CatalogService) Featured(limit int) ([]ProductCard, error) {
	ps, err := s.Prods.List(repos.ProductFilter{FeaturedOnly: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return cards(ps), nil
}

func (s *CatalogService) NewArrivals(limit int) ([]ProductCard, error) {
	ps, err := s.Prods.List(repos.ProductFilter{NewOnly: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return cards(ps), nil
}

func (s *CatalogService) Search(q, category string, page, pageSize int) ([]ProductCard, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	ps, err := s.Prods.List(repos.ProductFilter{
		Query: q, Category: category, Limit: pageSize, Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}
	return cards(ps), nil
}

// load fetches a product whatever its active flag. Concurrent loads of the
// same id share one query.
func (s *CatalogService) load(id string) (domain.Product, error) {
	v, err, _ := s.loads.Do("product:"+id, func() (any, error) {
		return s.Prods.Get(id)
	})
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}

// GetProduct returns an active product.
func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.load(id)
	if err != nil {
		return p, err
	}
	if !p.IsActive {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) Detail(id string) (ProductDetail, error) {
	p, err := s.GetProduct(id)
	if err != nil {
		return ProductDetail{}, err
	}
	vars, err := s.Vars.ListByProduct(id, true)
	if err != nil {
		return ProductDetail{}, err
	}
	d := ProductDetail{ProductCard: card(p), Variations: make([]VariationOption, 0, len(vars))}
	for _, v := range vars {
		d.Variations = append(d.Variations, VariationOption{
			Variation:    v,
			Label:        v.Label(),
			DisplayPrice: pricing.CalculateDisplayPrice(p.Price, v.PriceModifier),
		})
	}
	return d, nil
}

// Variation loads a variation for the cart. An empty id means no variation;
// an unknown one is an invalid variation.
func (s *CatalogService) Variation(id string) (*domain.Variation, error) {
	if id == "" {
		return nil, nil
	}
	v, err := s.Vars.Get(id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, cart.ErrInvalidVariation
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Admin writes.

func (s *CatalogService) AllProducts(limit, offset int) ([]domain.Product, error) {
	return s.Prods.List(repos.ProductFilter{IncludeOff: true, Limit: limit, Offset: offset})
}

func (s *CatalogService) CreateProduct(p domain.Product) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if err := s.checkCategory(p.Category); err != nil {
		return err
	}
	return s.Prods.Create(p)
}

func (s *CatalogService) UpdateProduct(p domain.Product) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if err := s.checkCategory(p.Category); err != nil {
		return err
	}
	s.loads.Forget("product:" + p.ID)
	return s.Prods.Update(p)
}

// checkCategory rejects a product pointing at a category that does not exist.
func (s *CatalogService) checkCategory(slug string) error {
	_, err := s.Cats.Get(slug)
	if errors.Is(err, repos.ErrNotFound) {
		return fmt.Errorf("%w: unknown category %q", validate.ErrInvalid, slug)
	}
	return err
}

func (s *CatalogService) DeleteProduct(id string) error {
	s.loads.Forget("product:" + id)
	return s.Prods.Delete(id)
}

func (s *CatalogService) ListVariations(productID string) ([]domain.Variation, error) {
	return s.Vars.ListByProduct(productID, false)
}

func (s *CatalogService) CreateVariation(v domain.Variation) error {
	if err := validate.Struct(v); err != nil {
		return err
	}
	if _, err := s.Prods.Get(v.ProductID); err != nil {
		return err
	}
	return s.Vars.Create(v)
}

func (s *CatalogService) UpdateVariation(v domain.Variation) error {
	if err := validate.Struct(v); err != nil {
		return err
	}
	return s.Vars.Update(v)
}

func (s *CatalogService) DeleteVariation(productID, id string) error {
	return s.Vars.Delete(productID, id)
}

func (s *CatalogService) AllCategories() ([]domain.Category, error) {
	return s.Cats.List(false)
}

func (s *CatalogService) SaveCategory(c domain.Category) error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, ok := validate.Slug(c.Slug); !ok {
		return fmt.Errorf("%w: Slug: slug", validate.ErrInvalid)
	}
	return s.Cats.Save(c)
}

func (s *CatalogService) DeleteCategory(slug string) error {
	return s.Cats.Delete(slug)
}
