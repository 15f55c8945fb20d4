// Package planimage реализует HTTP-обработчик загрузки изображения тарифа.
//
// Handler принимает multipart/form-data с файлом в поле image, загружает
// его в объектное хранилище и привязывает к тарифу.
package planimage

import (
	"context"
	"io"
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

// maxImageSize ограничивает размер загружаемого изображения.
const maxImageSize = 5 << 20

// Service описывает интерфейс бизнес-логики загрузки изображения.
type Service interface {
	UploadImage(ctx context.Context, id, advisorUID string, data []byte, contentType, filename string) (string, error)
}

// Handler управляет HTTP-запросами загрузки изображений тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Загрузить изображение тарифа
// @Description Загружает изображение в объектное хранилище и привязывает его к тарифу.
// @Tags Plans
// @Accept  mpfd
// @Produce  json
// @Param id path string true "ID тарифа"
// @Param image formData file true "Файл изображения"
// @Success 200 {object} map[string]any "URL изображения"
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует или слишком большой"
// @Failure 403 {object} response.ErrorResponse "Тариф принадлежит другому консультанту"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/{id}/image [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.image"

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

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		log.Error("image file missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("image file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		log.Error("failed to read image file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read image file"))
		return
	}

	id := chi.URLParam(r, "id")
	contentType := header.Header.Get("Content-Type")

	url, err := h.service.UploadImage(r.Context(), id, advisorUID, data, contentType, header.Filename)
	if err != nil {
		log.Error("failed to upload plan image", sl.Err(err))
		w.WriteHeader(apperr.ToStatus(err))
		render.JSON(w, r, response.Error("failed to upload image"))
		return
	}

	log.Info("plan image uploaded", slog.String("plan_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"image_url": url,
	}))
}
