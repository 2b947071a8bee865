package models

import "time"

// Order statuses, in lifecycle order.
const (
	OrderPending        = "pending"
	OrderConfirmed      = "confirmed"
	OrderPreparing      = "preparing"
	OrderReady          = "ready"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
	OrderCompleted      = "completed"
	OrderCancelled      = "cancelled"
)

// OrderStatusFlow maps each status to the statuses it may advance to.
var OrderStatusFlow = map[string][]string{
	OrderPending:        {OrderConfirmed, OrderCancelled},
	OrderConfirmed:      {OrderPreparing, OrderCancelled},
	OrderPreparing:      {OrderReady, OrderCancelled},
	OrderReady:          {OrderOutForDelivery, OrderCancelled},
	OrderOutForDelivery: {OrderDelivered},
	OrderDelivered:      {OrderCompleted},
}

// OrderLine is one meal-and-quantity entry within a regular order. The meal
// name is snapshotted at checkout so the order survives later catalog edits.
type OrderLine struct {
	MealID   string  `json:"mealId" bson:"mealId"`
	MealName string  `json:"mealName" bson:"mealName"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Price    float64 `json:"price" bson:"price"` // unit price at checkout
}

// Order is a finalized regular order (direct meal purchases).
type Order struct {
	OrderID        string      `json:"orderId" bson:"orderId"`
	UserID         string      `json:"userId" bson:"userId"`
	CustomerName   string      `json:"customerName" bson:"customerName"`
	Status         string      `json:"status" bson:"status"`
	Items          []OrderLine `json:"items" bson:"items"`
	Address        string      `json:"address,omitempty" bson:"address,omitempty"`
	CouponCode     string      `json:"couponCode,omitempty" bson:"couponCode,omitempty"`
	Discount       float64     `json:"discount,omitempty" bson:"discount,omitempty"`
	Total          float64     `json:"total" bson:"total"`
	CollectionDate string      `json:"collectionDate" bson:"collectionDate"` // YYYY-MM-DD
	CreatedAt      time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// PackageOrder is a bundle purchase; its contents are meal selections that
// must be resolved against the catalog before kitchen aggregation.
type PackageOrder struct {
	OrderID        string          `json:"orderId" bson:"orderId"`
	UserID         string          `json:"userId" bson:"userId"`
	CustomerName   string          `json:"customerName" bson:"customerName"`
	Status         string          `json:"status" bson:"status"`
	PackageID      string          `json:"packageId" bson:"packageId"`
	PackageName    string          `json:"packageName" bson:"packageName"`
	Selections     []MealSelection `json:"selections" bson:"selections"`
	CouponCode     string          `json:"couponCode,omitempty" bson:"couponCode,omitempty"`
	Discount       float64         `json:"discount,omitempty" bson:"discount,omitempty"`
	Total          float64         `json:"total" bson:"total"`
	Subscription   bool            `json:"subscription,omitempty" bson:"subscription,omitempty"`
	CollectionDate string          `json:"collectionDate" bson:"collectionDate"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// CartItem is a single meal (or package) in a user's cart.
type CartItem struct {
	UserID    string    `json:"userId" bson:"userId"`
	ItemId    string    `json:"itemId" bson:"itemId"`     // mealId or packageId
	ItemName  string    `json:"itemName" bson:"itemName"` // snapshot for display
	ItemType  string    `json:"itemType" bson:"itemType"` // "meal" or "package"
	Quantity  int       `json:"quantity" bson:"quantity"`
	Price     float64   `json:"price" bson:"price"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
	TouchedAt time.Time `json:"touchedAt" bson:"touchedAt"` // for abandonment detection
}

// Coupon is a storefront discount code.
type Coupon struct {
	Code      string    `json:"code" bson:"code"`
	Percent   float64   `json:"percent,omitempty" bson:"percent,omitempty"` // e.g. 10 means 10%
	Fixed     float64   `json:"fixed,omitempty" bson:"fixed,omitempty"`     // absolute amount off
	MinSpend  float64   `json:"minSpend,omitempty" bson:"minSpend,omitempty"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// RecoveryEmail records a recovery attempt for an abandoned cart.
type RecoveryEmail struct {
	UserID   string    `json:"userId" bson:"userId"`
	Email    string    `json:"email" bson:"email"`
	Items    int       `json:"items" bson:"items"`
	Subtotal float64   `json:"subtotal" bson:"subtotal"`
	SentAt   time.Time `json:"sentAt" bson:"sentAt"`
}
