// Package apply реализует HTTP-обработчик применения купона к цене плана.
package apply

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
)

// Service применяет купон.
type Service interface {
	Apply(ctx context.Context, principal models.Principal, code string, planPrice int64) (*models.Discount, error)
}

// Handler обрабатывает применение купонов.
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
// @Summary Применить купон
// @Description Погашает купон для текущего пользователя и возвращает скидку. Купон расходуется сразу, даже если оплата не последует.
// @Tags Coupons
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ApplyCouponRequest true "Код купона и цена плана"
// @Success 200 {object} response.Response "Скидка рассчитана"
// @Failure 404 {object} response.ErrorResponse "Купон не найден"
// @Failure 409 {object} response.ErrorResponse "Купон уже использован или исчерпан"
// @Failure 410 {object} response.ErrorResponse "Срок купона истёк"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /coupons/apply [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupon.apply"
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

	var req models.ApplyCouponRequest
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

	discount, err := h.service.Apply(r.Context(), principal, req.Code, *req.PlanPrice)
	if err != nil {
		log.Info("coupon not applied", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(discount))
}
