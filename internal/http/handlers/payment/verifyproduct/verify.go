// Package verifyproduct реализует HTTP-обработчик подтверждения оплаты товара.
package verifyproduct

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/request"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/services/entitlement"
)

// Service проверяет оплату и выдаёт товар.
type Service interface {
	PurchaseProduct(ctx context.Context, principal models.Principal, req models.VerifyProductRequest) (*entitlement.ProductGrant, error)
}

// Handler обрабатывает подтверждения оплаты товара.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить оплату товара
// @Description Проверяет подпись шлюза, создаёт заказ со снимком товара и добавляет товар в библиотеку.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.VerifyProductRequest true "Данные платежа и товар"
// @Success 201 {object} response.Response "Товар выдан"
// @Success 200 {object} response.Response "Товар уже был выдан"
// @Failure 400 {object} response.ErrorResponse "Подпись не прошла проверку"
// @Failure 402 {object} response.ErrorResponse "Оплаченная сумма меньше цены"
// @Failure 404 {object} response.ErrorResponse "Товар или заказ не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payments/verify/product [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verifyproduct"
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

	var req models.VerifyProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	grant, err := h.service.PurchaseProduct(r.Context(), principal, req)
	if err != nil {
		log.Warn("product verification rejected", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	if !grant.AlreadyGranted {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"state":           grant.State,
		"order_id":        grant.Order.ID,
		"order":           grant.Order,
		"already_granted": grant.AlreadyGranted,
	}))
}
