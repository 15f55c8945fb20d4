// Package planremove реализует HTTP-обработчик снятия тарифа с публикации.
//
// Тариф не удаляется физически: он помечается неактивным и исчезает из
// публичного каталога. Существующие контракты не затрагиваются.
package planremove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/plan-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/lib/apperr"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики снятия тарифа.
type Service interface {
	Deactivate(ctx context.Context, id, advisorUID string) error
}

// Handler управляет HTTP-запросами снятия тарифов с публикации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Снять тариф с публикации
// @Description Помечает тариф неактивным. Операция доступна только автору тарифа.
// @Tags Plans
// @Produce  json
// @Param id path string true "ID тарифа"
// @Success 200 {object} response.Response "Тариф снят с публикации"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден или принадлежит другому консультанту"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	advisorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || advisorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Deactivate(r.Context(), id, advisorUID); err != nil {
		log.Error("failed to deactivate plan", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("failed to deactivate plan"))
		return
	}

	log.Info("plan deactivated", slog.String("plan_id", id))
	render.JSON(w, r, response.OK())
}
