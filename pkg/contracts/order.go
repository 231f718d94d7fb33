package contracts

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gamarriando/pkg/schema"
)

var ErrTotalMismatch = errors.New("order total does not match subtotal - discount + shipping + tax")

type OrderItem struct {
	ProductID    int64   `json:"productId" validate:"gt=0"`
	Quantity     int     `json:"quantity" validate:"gt=0"`
	Price        float64 `json:"price" validate:"gt=0"`
	Total        float64 `json:"total" validate:"gt=0"`
	ProductName  string  `json:"productName" validate:"required"`
	ProductSKU   string  `json:"productSku" validate:"required"`
	ProductImage *string `json:"productImage,omitempty" validate:"omitempty,url"`
}

type ShippingAddress struct {
	FirstName    string  `json:"firstName" validate:"min=1"`
	LastName     string  `json:"lastName" validate:"min=1"`
	Company      *string `json:"company,omitempty"`
	AddressLine1 string  `json:"addressLine1" validate:"min=1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city" validate:"min=1"`
	State        string  `json:"state" validate:"min=1"`
	PostalCode   string  `json:"postalCode" validate:"min=1"`
	Country      string  `json:"country" validate:"min=1"`
	Phone        *string `json:"phone,omitempty"`
}

// OrderBase - суммы заказа. Равенство total = subtotal - discount + shipping + tax
// здесь не проверяется, для этого есть CheckOrderTotal.
type OrderBase struct {
	UserID          int64            `json:"userId" validate:"gt=0"`
	VendorID        *int64           `json:"vendorId,omitempty" validate:"omitempty,gt=0"`
	Status          OrderStatus      `json:"status" validate:"enum"`
	Subtotal        float64          `json:"subtotal" validate:"gt=0"`
	Tax             float64          `json:"tax" validate:"min=0"`
	Shipping        float64          `json:"shipping" validate:"min=0"`
	Discount        float64          `json:"discount" validate:"min=0"`
	Total           float64          `json:"total" validate:"gt=0"`
	Currency        string           `json:"currency" validate:"len=3"`
	Notes           *string          `json:"notes,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress" validate:"required"`
	BillingAddress  *ShippingAddress `json:"billingAddress,omitempty" validate:"omitempty"`
}

func defaultOrderBase() OrderBase {
	return OrderBase{Status: OrderStatusPending, Currency: "USD"}
}

// ComputedTotal считает итог по слагаемым с округлением до центов
func (o OrderBase) ComputedTotal() float64 {
	return roundCents(o.Subtotal - o.Discount + o.Shipping + o.Tax)
}

// CheckOrderTotal сверяет объявленный total с вычисленным с точностью до цента
func CheckOrderTotal(o OrderBase) error {
	if want := o.ComputedTotal(); roundCents(o.Total) != want {
		return fmt.Errorf("%w: got %.2f, want %.2f", ErrTotalMismatch, o.Total, want)
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

type OrderCreate struct {
	OrderBase
	Items []OrderItem `json:"items" validate:"min=1,dive"`
}

// ItemsSubtotal - сумма total по позициям
func (o OrderCreate) ItemsSubtotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Total
	}
	return roundCents(sum)
}

type OrderUpdate struct {
	UserID          *int64           `json:"userId,omitempty" validate:"omitempty,gt=0"`
	VendorID        *int64           `json:"vendorId,omitempty" validate:"omitempty,gt=0"`
	Status          *OrderStatus     `json:"status,omitempty" validate:"omitempty,enum"`
	Subtotal        *float64         `json:"subtotal,omitempty" validate:"omitempty,gt=0"`
	Tax             *float64         `json:"tax,omitempty" validate:"omitempty,min=0"`
	Shipping        *float64         `json:"shipping,omitempty" validate:"omitempty,min=0"`
	Discount        *float64         `json:"discount,omitempty" validate:"omitempty,min=0"`
	Total           *float64         `json:"total,omitempty" validate:"omitempty,gt=0"`
	Currency        *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes           *string          `json:"notes,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty" validate:"omitempty"`
	BillingAddress  *ShippingAddress `json:"billingAddress,omitempty" validate:"omitempty"`
	Items           []OrderItem      `json:"items,omitempty" validate:"omitempty,dive"`
}

type OrderResponse struct {
	OrderBase
	ID             int64       `json:"id" validate:"gt=0"`
	OrderNumber    string      `json:"orderNumber" validate:"required"`
	Items          []OrderItem `json:"items" validate:"required,dive"`
	CreatedAt      time.Time   `json:"createdAt" validate:"required"`
	UpdatedAt      time.Time   `json:"updatedAt" validate:"required"`
	ShippedAt      *time.Time  `json:"shippedAt,omitempty"`
	DeliveredAt    *time.Time  `json:"deliveredAt,omitempty"`
	TrackingNumber *string     `json:"trackingNumber,omitempty"`
	TrackingURL    *string     `json:"trackingUrl,omitempty" validate:"omitempty,url"`
}

var (
	OrderItemSchema       = schema.New[OrderItem]("order_item")
	ShippingAddressSchema = schema.New[ShippingAddress]("shipping_address")
	OrderBaseSchema       = schema.New[OrderBase]("order.base", schema.WithDefaults(defaultOrderBase))

	OrderCreateSchema = schema.New[OrderCreate]("order.create",
		schema.WithDefaults(func() OrderCreate { return OrderCreate{OrderBase: defaultOrderBase()} }))

	OrderUpdateSchema = schema.New[OrderUpdate]("order.update")

	OrderResponseSchema = schema.New[OrderResponse]("order.response",
		schema.WithDefaults(func() OrderResponse { return OrderResponse{OrderBase: defaultOrderBase()} }))
)
