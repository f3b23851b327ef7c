package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Order is a bulk purchase placed by a customer
type Order struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	OrderNumber   string         `json:"orderNumber" db:"order_number"`
	UserID        uuid.UUID      `json:"-" db:"user_id"`
	Status        OrderStatus    `json:"status" db:"status"`
	TotalAmount   float64        `json:"totalAmount" db:"total_amount"`
	Currency      string         `json:"currency" db:"currency"`
	PaymentStatus PaymentStatus  `json:"paymentStatus" db:"payment_status"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
	Customer      *OrderCustomer `json:"user,omitempty"`
	Items         []OrderItem    `json:"items"`
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderCustomer is the customer projection embedded in order listings
type OrderCustomer struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Company string    `json:"company,omitempty"`
}

// OrderItem is a line of an order. The product is a snapshot taken when
// the order was placed.
type OrderItem struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	OrderID    uuid.UUID    `json:"-" db:"order_id"`
	Quantity   int          `json:"quantity" db:"quantity"`
	UnitPrice  float64      `json:"unitPrice" db:"unit_price"`
	TotalPrice float64      `json:"totalPrice" db:"total_price"`
	Product    OrderProduct `json:"product"`
}

// OrderProduct identifies the product of an order line
type OrderProduct struct {
	ID       string `json:"id" db:"product_id"`
	Name     string `json:"name" db:"product_name"`
	Category string `json:"category" db:"product_category"`
}

// NewOrder creates a pending order for userID
func NewOrder(userID uuid.UUID, orderNumber, currency string, items []OrderItem) *Order {
	now := time.Now().UTC()
	o := &Order{
		ID:            uuid.New(),
		OrderNumber:   orderNumber,
		UserID:        userID,
		Status:        OrderStatusPending,
		Currency:      currency,
		PaymentStatus: PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, item := range items {
		item.ID = uuid.New()
		item.OrderID = o.ID
		item.TotalPrice = float64(item.Quantity) * item.UnitPrice
		o.TotalAmount += item.TotalPrice
		o.Items = append(o.Items, item)
	}
	return o
}
