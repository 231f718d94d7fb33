package contracts

import (
	"time"

	"gamarriando/pkg/schema"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCryptocurrency PaymentMethod = "cryptocurrency"
)

var paymentMethods = schema.Members[PaymentMethod]{
	PaymentCreditCard, PaymentDebitCard, PaymentPayPal,
	PaymentBankTransfer, PaymentCashOnDelivery, PaymentCryptocurrency,
}

func (m PaymentMethod) Valid() bool    { return paymentMethods.Contains(m) }
func (PaymentMethod) Values() []string { return paymentMethods.Strings() }

// PaymentCreate - то, что присылает клиент. Поля результата обработки
// (status, transactionId, gatewayResponse, failureReason, processedAt)
// назначает только сервер.
type PaymentCreate struct {
	OrderID  int64         `json:"orderId" validate:"gt=0"`
	UserID   int64         `json:"userId" validate:"gt=0"`
	Amount   float64       `json:"amount" validate:"gt=0"`
	Currency string        `json:"currency" validate:"len=3"`
	Method   PaymentMethod `json:"method" validate:"enum"`
}

type PaymentBase struct {
	PaymentCreate
	Status          PaymentStatus  `json:"status" validate:"enum"`
	TransactionID   *string        `json:"transactionId,omitempty"`
	GatewayResponse map[string]any `json:"gatewayResponse,omitempty"`
	FailureReason   *string        `json:"failureReason,omitempty"`
	ProcessedAt     *time.Time     `json:"processedAt,omitempty"`
}

func defaultPaymentBase() PaymentBase {
	return PaymentBase{
		PaymentCreate: PaymentCreate{Currency: "USD"},
		Status:        PaymentStatusPending,
	}
}

type PaymentUpdate struct {
	OrderID         *int64         `json:"orderId,omitempty" validate:"omitempty,gt=0"`
	UserID          *int64         `json:"userId,omitempty" validate:"omitempty,gt=0"`
	Amount          *float64       `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Currency        *string        `json:"currency,omitempty" validate:"omitempty,len=3"`
	Method          *PaymentMethod `json:"method,omitempty" validate:"omitempty,enum"`
	Status          *PaymentStatus `json:"status,omitempty" validate:"omitempty,enum"`
	TransactionID   *string        `json:"transactionId,omitempty"`
	GatewayResponse map[string]any `json:"gatewayResponse,omitempty"`
	FailureReason   *string        `json:"failureReason,omitempty"`
	ProcessedAt     *time.Time     `json:"processedAt,omitempty"`
}

type PaymentResponse struct {
	PaymentBase
	ID        int64     `json:"id" validate:"gt=0"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}

// PaymentIntent - рукопожатие с внешним платежным шлюзом, у него свой жизненный цикл.
// Статус приходит от шлюза как есть и не сводится к PaymentStatus.
type PaymentIntent struct {
	ClientSecret    string  `json:"clientSecret" validate:"required"`
	PaymentIntentID string  `json:"paymentIntentId" validate:"required"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	Currency        string  `json:"currency" validate:"required"`
	Status          string  `json:"status" validate:"required"`
}

var (
	PaymentBaseSchema = schema.New[PaymentBase]("payment.base", schema.WithDefaults(defaultPaymentBase))

	PaymentCreateSchema = schema.New[PaymentCreate]("payment.create",
		schema.WithDefaults(func() PaymentCreate { return PaymentCreate{Currency: "USD"} }))

	PaymentUpdateSchema = schema.New[PaymentUpdate]("payment.update")

	PaymentResponseSchema = schema.New[PaymentResponse]("payment.response",
		schema.WithDefaults(func() PaymentResponse { return PaymentResponse{PaymentBase: defaultPaymentBase()} }))

	PaymentIntentSchema = schema.New[PaymentIntent]("payment.intent")
)
