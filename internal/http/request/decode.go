// Package request разбирает тела HTTP-запросов в типизированные команды.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

// ErrInvalidBody тело запроса не удалось разобрать.
var ErrInvalidBody = errors.New("invalid request body")

// maxBodyBytes предел размера тела команды.
const maxBodyBytes = 1 << 20

// DecodeJSON читает одну JSON-команду. Неизвестные поля и лишние данные
// после объекта считаются ошибкой.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after object", ErrInvalidBody)
	}
	return nil
}

// IDParam читает положительный числовой параметр маршрута.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}
