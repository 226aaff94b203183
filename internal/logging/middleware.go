package logging

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = echo.HeaderXRequestID

// RequestID assigns each request an id, honouring an incoming
// X-Request-ID header, and stores it in the request context.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, requestID)
			c.SetRequest(req.WithContext(WithRequestID(req.Context(), requestID)))
			return next(c)
		}
	}
}

// RequestLogger logs every request after it completes.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			HTTPRequestContext(req.Context(), req.Method, req.URL.Path, c.RealIP(), c.Response().Status, time.Since(start))
			return nil
		}
	}
}
