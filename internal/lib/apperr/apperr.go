// Package apperr содержит таксономию ошибок сервиса. Слои оборачивают их
// через fmt.Errorf("%s: %w", op, err), а HTTP-слой сопоставляет статус через errors.Is.
package apperr

import "errors"

var (
	// ErrValidation отсутствующие или некорректные входные данные, проверяется до любого I/O.
	ErrValidation = errors.New("validation error")
	// ErrNotFound план, продукт, купон, заказ или пользователь не найден.
	ErrNotFound = errors.New("not found")
	// ErrSignatureMismatch подпись платежа не прошла проверку. Повтор не поможет.
	ErrSignatureMismatch = errors.New("payment verification failed")
	// ErrAlreadyUsed пользователь уже применял этот купон.
	ErrAlreadyUsed = errors.New("already used")
	// ErrLimitExceeded исчерпан лимит купона или бесплатных скачиваний.
	ErrLimitExceeded = errors.New("limit exceeded")
	// ErrExpired срок действия купона истёк.
	ErrExpired = errors.New("expired")
	// ErrConflict повтор ключа идемпотентности. Для выдачи доступа это успех.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized нет аутентифицированного пользователя или недостаточно прав.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInUse сущность используется активной подпиской и не может быть изменена.
	ErrInUse = errors.New("in use")
	// ErrPaymentRequired платный продукт нельзя добавить в библиотеку без оплаты.
	ErrPaymentRequired = errors.New("payment required")
	// ErrGatewayUnavailable платёжный шлюз не ответил или ответил ошибкой.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// Retryable сообщает, имеет ли смысл вызывающей стороне повторить запрос.
func Retryable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}
