package models

// OrderStatus values, in lifecycle order.
const (
	StatusCreated    = "Created"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusCompleted  = "Completed"
)

// TrackingInProgress is reported by order tracking while an order has not shipped.
const TrackingInProgress = "In progress"

// DeliveryDays is the expected delay between order date and delivery.
const DeliveryDays = 7

var statusRank = map[string]int{
	StatusCreated:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusCompleted:  3,
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether an order may move from one status to
// another. Moves are forward only; staying put is allowed.
func CanTransition(from, to string) bool {
	f, ok := statusRank[from]
	if !ok {
		return false
	}
	t, ok := statusRank[to]
	if !ok {
		return false
	}
	return t >= f
}

// Cancelable reports whether an order in status s may still be canceled.
func Cancelable(s string) bool {
	return s != StatusShipped && s != StatusCompleted
}

// TrackingStatus is the customer-facing status string for s.
func TrackingStatus(s string) string {
	if s == StatusCreated || s == StatusProcessing || s == "" {
		return TrackingInProgress
	}
	return s
}

type Order struct {
	OrderID    uint      `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id"`
	Date       Date      `gorm:"not null" json:"date"`
	CustomerID uint      `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Status     string    `gorm:"size:20;not null;default:Created" json:"status"`
	Products   []Product `gorm:"-" json:"products,omitempty"`

	OrderProducts []OrderProduct `gorm:"foreignKey:OrderID" json:"-"`
}

func (Order) TableName() string { return "Orders" }

// OrderProduct is the association row between an order and a product. Its
// foreign keys are declared by the has-many fields on Order and Product.
type OrderProduct struct {
	OrderID   uint `gorm:"column:order_id;primaryKey;autoIncrement:false" json:"order_id"`
	ProductID uint `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"product_id"`
}

func (OrderProduct) TableName() string { return "Order_Product" }

// OrderPatch is a partial order update. ProductIDs, when set, replaces the
// order's product set.
type OrderPatch struct {
	Date       *Date
	CustomerID *uint
	Status     *string
	ProductIDs *[]uint
}

// Tracking is the derived delivery view of an order.
type Tracking struct {
	OrderID              uint   `json:"order_id"`
	Date                 Date   `json:"date"`
	ExpectedDeliveryDate Date   `json:"expected_delivery_date"`
	CustomerID           uint   `json:"customer_id"`
	Status               string `json:"status"`
}

// Track derives the tracking view of o.
func (o Order) Track() Tracking {
	return Tracking{
		OrderID:              o.OrderID,
		Date:                 o.Date,
		ExpectedDeliveryDate: o.Date.AddDays(DeliveryDays),
		CustomerID:           o.CustomerID,
		Status:               TrackingStatus(o.Status),
	}
}

// OrderTotal is the price summary of an order's products.
type OrderTotal struct {
	OrderID      uint    `json:"order_id"`
	CustomerID   uint    `json:"customer_id"`
	TotalPrice   float64 `json:"total_price"`
	ProductCount int     `json:"product_count"`
}
