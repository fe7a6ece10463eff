package models

import "time"

// MaxAmount верхняя граница цен и значений скидок в младших единицах валюты.
const MaxAmount = 1_000_000_000_000

// Типы скидок.
const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// Coupon купон на скидку. UsedBy заполняется из журнала погашений.
type Coupon struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue int64     `json:"discount_value"`
	ExpiresAt     time.Time `json:"expires_at"`
	UsageLimit    int       `json:"usage_limit"`
	UsedBy        []string  `json:"used_by"`
}

// UsedByUser сообщает, погашал ли пользователь этот купон.
func (c *Coupon) UsedByUser(userUID string) bool {
	for _, uid := range c.UsedBy {
		if uid == userUID {
			return true
		}
	}
	return false
}

// CouponRequest команда создания купона администратором.
type CouponRequest struct {
	Code          string    `json:"code" validate:"required,max=64"`
	DiscountType  string    `json:"discount_type" validate:"required,oneof=percentage flat"`
	DiscountValue int64     `json:"discount_value" validate:"required,gt=0,max=1000000000000"`
	ExpiresAt     time.Time `json:"expires_at" validate:"required"`
	UsageLimit    int       `json:"usage_limit" validate:"required,gt=0"`
}

// ApplyCouponRequest команда применения купона к цене плана.
type ApplyCouponRequest struct {
	Code      string `json:"code" validate:"required"`
	PlanPrice *int64 `json:"plan_price" validate:"required,min=0,max=1000000000000"`
}

// Discount результат применения купона.
type Discount struct {
	DiscountType  string `json:"discount_type"`
	DiscountValue int64  `json:"discount_value"`
	Amount        int64  `json:"discount_amount"`
	FinalAmount   int64  `json:"final_amount"`
}
