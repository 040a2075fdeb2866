package order

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type OrderStatus string

// Status strings are stored verbatim and shown in the storefront UI.
const (
	StatusPendingPayment OrderStatus = "Pending Payment"
	StatusProcessing     OrderStatus = "Processing"
	StatusShipped        OrderStatus = "Shipped"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
)

type Order struct {
	ID        string      `json:"id"`
	UserEmail string      `json:"user_email"`
	StoreID   int64       `json:"store_id"`
	Phone     string      `json:"phone"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Discount  float64     `json:"discount"`
	Taxes     float64     `json:"taxes"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderItem is a snapshot of the product at order time. Later catalog edits
// must not alter historical orders.
type OrderItem struct {
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	ImageURLs []string `json:"image_urls"`
	Quantity  int      `json:"quantity"`
}

// NewOrderID returns a fresh order id, which doubles as the gateway
// transaction id (txnid). It is assigned before the first write because the
// gateway needs it ahead of settlement. ULIDs keep ids time-ordered and
// collision-resistant across instances.
func NewOrderID() string {
	return "AURA-" + ulid.Make().String()
}
