package server

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/FocuswithJustin/JuniperStudy/internal/services"
)

// CORS allows the configured origins; an empty list allows any origin.
// Credentials are only allowed for explicit origins.
func CORS(allowedOrigins []string) echo.MiddlewareFunc {
	return echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: len(allowedOrigins) > 0 && !slices.Contains(allowedOrigins, "*"),
	})
}

// RequireLibrary answers 503 with the loading status until the library has
// been published, and with the failure once loading has failed.
func RequireLibrary(svc *services.StudyService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := svc.Library(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, svc.Status())
			}
			return next(c)
		}
	}
}
