// Package models содержит доменные структуры магазина: пользователей, планы,
// купоны, платежи, заказы и записи о скачиваниях, а также типизированные
// команды, которые принимают HTTP-обработчики.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID              string               // Уникальный идентификатор пользователя
	Email             string               // Электронная почта (уникальная)
	PasswordHash      string               // Хэш пароля пользователя
	Role              string               // Роль пользователя, admin или user
	Subscription      SubscriptionSnapshot // Денормализованный снимок текущей подписки
	FreeDownloadsUsed int                  // Израсходованные бесплатные скачивания
	CreatedAt         time.Time
}

// SubscriptionSnapshot копия состояния подписки, хранящаяся в записи пользователя.
// Флаг Active не доверяется надолго: при каждой проверке доступа сверяется с EndDate.
type SubscriptionSnapshot struct {
	PlanID    *int64
	StartDate *time.Time
	EndDate   *time.Time
	Active    bool
	PaymentID string
}

// ActiveAt сообщает, действует ли подписка в момент now.
func (s SubscriptionSnapshot) ActiveAt(now time.Time) bool {
	return s.Active && s.PlanID != nil && s.EndDate != nil && s.EndDate.After(now)
}

// Principal аутентифицированный пользователь, от имени которого выполняется операция.
type Principal struct {
	UserUID string
	Email   string
	Role    string
}

// IsAdmin сообщает, обладает ли пользователь ролью администратора.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// RegisterRequest команда регистрации.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest команда входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
