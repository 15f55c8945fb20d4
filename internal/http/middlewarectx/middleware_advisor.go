package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/plan-connect/internal/http/response"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// AdvisorOnlyMiddleware пропускает дальше только пользователей с ролью
// консультанта. Должен стоять после JWTMiddleware.
func AdvisorOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role != models.RoleAdvisor {
				log.Error("advisor role required", slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("advisor role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
