package domain

const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderFailed    = "FAILED"
	OrderCancelled = "CANCELLED"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []string{OrderPending, OrderPaid, OrderFailed, OrderCancelled, OrderShipped, OrderDelivered}

func ValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string      `db:"id" json:"id"`
	CartID          string      `db:"cart_id" json:"-"`
	CustomerName    string      `db:"customer_name" json:"customer_name"`
	CustomerEmail   string      `db:"customer_email" json:"customer_email"`
	CustomerPhone   string      `db:"customer_phone" json:"customer_phone"`
	ShippingAddress string      `db:"shipping_address" json:"shipping_address"`
	Total           int64       `db:"total" json:"total"`
	Status          string      `db:"status" json:"status"`
	PaymentProvider string      `db:"payment_provider" json:"payment_provider"`
	PaymentRef      string      `db:"payment_ref" json:"payment_ref,omitempty"`
	PaymentURL      string      `db:"payment_url" json:"payment_url,omitempty"`
	CreatedAt       string      `db:"created_at" json:"created_at"`
	UpdatedAt       string      `db:"updated_at" json:"updated_at,omitempty"`
	Items           []OrderItem `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	OrderID        string `db:"order_id" json:"-"`
	ProductID      string `db:"product_id" json:"product_id"`
	VariationID    string `db:"variation_id" json:"variation_id,omitempty"`
	Name           string `db:"name" json:"name"`
	VariationLabel string `db:"variation_label" json:"variation_label,omitempty"`
	UnitPrice      int64  `db:"unit_price" json:"unit_price"`
	Qty            int    `db:"qty" json:"qty"`
}

func (it OrderItem) Subtotal() int64 { return it.UnitPrice * int64(it.Qty) }

// Contact is the checkout form payload.
type Contact struct {
	Name    string `json:"name" validate:"required,max=80"`
	Email   string `json:"email" validate:"required,email,max=120"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Address string `json:"address" validate:"required,max=300"`
}
