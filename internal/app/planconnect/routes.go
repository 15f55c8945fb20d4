// Package planconnect предоставляет маршруты для основного приложения.
package planconnect

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/chat/chathistory"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/chat/chatremove"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/chat/chatsend"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/chat/chatws"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractapprove"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractcancel"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractcreate"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractget"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractlist"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractmine"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractpending"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractreject"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/contract/contractstats"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/health"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/plan/plancreate"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/plan/planget"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/plan/planimage"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/plan/planlist"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/plan/planmine"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/plan/planremove"
	"github.com/magabrotheeeer/plan-connect/internal/http/handlers/plan/planupdate"
	"github.com/magabrotheeeer/plan-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plan-connect/internal/realtime"
	authservice "github.com/magabrotheeeer/plan-connect/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/plan-connect/internal/services/catalog"
	chatservice "github.com/magabrotheeeer/plan-connect/internal/services/chat"
	contractservice "github.com/magabrotheeeer/plan-connect/internal/services/contract"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	catalogService *catalogservice.CatalogService,
	contractService *contractservice.ContractService,
	chatService *chatservice.ChatService,
	hub *realtime.Hub) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Get("/plans", planlist.New(logger, catalogService).ServeHTTP)
		r.Get("/plans/{id}", planget.New(logger, catalogService).ServeHTTP)

		// Websocket-вход в чат: JWT приходит параметром запроса,
		// поэтому маршрут вне группы с JWT middleware.
		r.Get("/contracts/{id}/chat/ws", chatws.New(logger, authService, chatService, hub).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, 50, 100))

			r.Post("/contracts", contractcreate.New(logger, contractService).ServeHTTP)
			r.Get("/contracts", contractlist.New(logger, contractService).ServeHTTP)
			r.Get("/contracts/{id}", contractget.New(logger, contractService).ServeHTTP)
			r.Post("/contracts/{id}/cancel", contractcancel.New(logger, contractService).ServeHTTP)

			r.Get("/contracts/{id}/chat", chathistory.New(logger, chatService).ServeHTTP)
			r.Post("/contracts/{id}/chat", chatsend.New(logger, chatService).ServeHTTP)
			r.Delete("/chat/messages/{messageID}", chatremove.New(logger, chatService).ServeHTTP)

			// Операции консультанта
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdvisorOnlyMiddleware(logger))

				r.Post("/plans", plancreate.New(logger, catalogService).ServeHTTP)
				r.Put("/plans/{id}", planupdate.New(logger, catalogService).ServeHTTP)
				r.Delete("/plans/{id}", planremove.New(logger, catalogService).ServeHTTP)
				r.Post("/plans/{id}/image", planimage.New(logger, catalogService).ServeHTTP)
				r.Get("/plans/mine", planmine.New(logger, catalogService).ServeHTTP)

				r.Get("/contracts/pending", contractpending.New(logger, contractService).ServeHTTP)
				r.Get("/contracts/mine", contractmine.New(logger, contractService).ServeHTTP)
				r.Get("/contracts/stats", contractstats.New(logger, contractService).ServeHTTP)
				r.Post("/contracts/{id}/approve", contractapprove.New(logger, contractService).ServeHTTP)
				r.Post("/contracts/{id}/reject", contractreject.New(logger, contractService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
