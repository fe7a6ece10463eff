// Package add реализует HTTP-обработчик добавления бесплатного товара в библиотеку.
package add

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/request"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// Service добавляет товары в библиотеку пользователя.
type Service interface {
	AddToLibrary(ctx context.Context, principal models.Principal, productID int64) (bool, error)
}

// Handler обрабатывает добавление товара в библиотеку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Добавить бесплатный товар в библиотеку
// @Tags Library
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID товара"
// @Success 201 {object} response.Response "Товар добавлен"
// @Success 200 {object} response.Response "Товар уже в библиотеке"
// @Failure 402 {object} response.ErrorResponse "Товар платный"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /library/{id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.library.add"
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

	productID, err := request.IDParam(r, "id")
	if err != nil {
		log.Warn("invalid product id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	added, err := h.service.AddToLibrary(r.Context(), principal, productID)
	if err != nil {
		log.Error("failed to add product to library", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	if added {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"product_id": productID,
		"added":      added,
	}))
}
