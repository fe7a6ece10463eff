// Package check реализует HTTP-обработчик проверки доступа к скачиванию товара.
package check

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
	"github.com/magabrotheeeer/storefront/internal/services/download"
)

// Service принимает решение о доступе.
type Service interface {
	CanDownload(ctx context.Context, principal models.Principal, productID int64) (*download.Decision, error)
}

// Handler отвечает на запрос скачивания товара.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить доступ к скачиванию
// @Description Разрешает скачивание купленного товара, по активному платному плану или из бесплатной квоты.
// @Tags Downloads
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID товара"
// @Success 200 {object} response.Response "Скачивание разрешено"
// @Failure 403 {object} response.Response "Квота исчерпана"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /products/{id}/download [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.download.check"
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

	decision, err := h.service.CanDownload(r.Context(), principal, productID)
	if err != nil {
		log.Error("failed to check download access", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	if !decision.Allowed {
		log.Info("download denied", slog.String("reason", decision.Reason))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  decision.Reason,
			Data:   decision,
		})
		return
	}
	render.JSON(w, r, response.OKWithData(decision))
}
