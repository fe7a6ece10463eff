// Package list реализует HTTP-обработчик библиотеки пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// Service возвращает товары пользователя.
type Service interface {
	Library(ctx context.Context, principal models.Principal) ([]*models.ProductSnapshot, error)
}

// Handler отдаёт библиотеку пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Библиотека пользователя
// @Description Купленные и добавленные бесплатные товары в виде снимков на момент получения.
// @Tags Library
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Товары"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Router /library [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		log.Error("principal not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	items, err := h.service.Library(r.Context(), principal)
	if err != nil {
		log.Error("failed to list library", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count": len(items),
		"products":   items,
	}))
}
