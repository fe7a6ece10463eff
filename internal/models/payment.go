package models

import "time"

// Статусы заказов.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

// Payment запись журнала платежей. Только добавляется.
type Payment struct {
	ID               int64
	UserUID          string
	PlanID           *int64
	ProductID        *int64
	Amount           int64
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	CreatedAt        time.Time
}

// Subscription запись о покупке плана. Продление создаёт новую запись.
type Subscription struct {
	ID               int64     `json:"id"`
	UserUID          string    `json:"user_uid"`
	PlanID           int64     `json:"plan_id"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	IsActive         bool      `json:"is_active"`
	GatewayOrderID   string    `json:"gateway_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
}

// Order заказ на покупку товара со снимком товара.
type Order struct {
	ID               int64           `json:"id"`
	UserUID          string          `json:"user_uid"`
	ProductID        int64           `json:"product_id"`
	Amount           int64           `json:"amount"`
	GatewayOrderID   string          `json:"gateway_order_id"`
	GatewayPaymentID string          `json:"gateway_payment_id"`
	Status           string          `json:"status"`
	ProductDetails   ProductSnapshot `json:"product_details"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CheckoutOrder заказ, созданный в платёжном шлюзе, с владельцем и суммой.
type CheckoutOrder struct {
	GatewayOrderID string
	UserUID        string
	Amount         int64
	Currency       string
	Receipt        string
	Status         string
	CreatedAt      time.Time
}

// Download запись журнала скачиваний.
type Download struct {
	ID        int64
	UserUID   string
	ProductID int64
	CreatedAt time.Time
}

// CreateOrderRequest команда создания заказа в шлюзе.
type CreateOrderRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// PaymentCallback данные, которые клиент получил от шлюза после оплаты.
type PaymentCallback struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	GatewaySignature string `json:"gateway_signature" validate:"required,hexadecimal"`
}

// VerifySubscriptionRequest команда подтверждения оплаты плана.
// CouponCode купон, погашенный пользователем перед оплатой.
type VerifySubscriptionRequest struct {
	PaymentCallback
	PlanID     int64  `json:"plan_id" validate:"required,gt=0"`
	CouponCode string `json:"coupon_code,omitempty" validate:"omitempty,max=64"`
}

// VerifyProductRequest команда подтверждения оплаты товара.
type VerifyProductRequest struct {
	PaymentCallback
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}
