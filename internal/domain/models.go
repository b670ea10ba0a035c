package domain

type Category struct {
	Slug      string `db:"slug" json:"slug" validate:"required,max=64"`
	Name      string `db:"name" json:"name" validate:"required,max=80"`
	IsActive  bool   `db:"is_active" json:"is_active"`
	SortOrder int    `db:"sort_order" json:"sort_order" validate:"gte=0"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}

// Product prices are integer CLP.
type Product struct {
	ID          string `db:"id" json:"id" validate:"required,max=64"`
	Name        string `db:"name" json:"name" validate:"required,max=120"`
	Description string `db:"description" json:"description" validate:"max=2000"`
	Price       int64  `db:"price" json:"price" validate:"gte=0"`
	Stock       int    `db:"stock" json:"stock" validate:"gte=0"`
	Category    string `db:"category" json:"category" validate:"required,max=64"`
	ImageURL    string `db:"image_url" json:"image_url" validate:"omitempty,max=500"`
	IsNew       bool   `db:"is_new" json:"is_new"`
	IsFeatured  bool   `db:"is_featured" json:"is_featured"`
	IsActive    bool   `db:"is_active" json:"is_active"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}

// Variation is a chain option of a product with its own stock.
type Variation struct {
	ID            string `db:"id" json:"id" validate:"required,max=64"`
	ProductID     string `db:"product_id" json:"product_id" validate:"required,max=64"`
	Brand         string `db:"brand" json:"brand" validate:"required,max=60"`
	Thickness     string `db:"thickness" json:"thickness" validate:"required,max=30"`
	Length        string `db:"length" json:"length" validate:"required,max=30"`
	Stock         int    `db:"stock" json:"stock" validate:"gte=0"`
	PriceModifier int64  `db:"price_modifier" json:"price_modifier"`
	IsActive      bool   `db:"is_active" json:"is_active"`
}

func (v Variation) Label() string {
	return v.Brand + " " + v.Thickness + " / " + v.Length
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

type Subscriber struct {
	Email     string `db:"email" json:"email"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
