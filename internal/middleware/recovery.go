package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
)

// DefaultStackSize is the default stack trace size (4KB).
const DefaultStackSize = 4 << 10

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	Logger *slog.Logger

	// StackSize is the maximum size of the stack trace to capture.
	StackSize int

	DisablePrintStack bool
}

// DefaultRecoveryConfig returns a RecoveryConfig that logs a 4KB stack.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		Logger:    slog.Default(),
		StackSize: DefaultStackSize,
	}
}

// Recovery returns a middleware that recovers from panics and logs them with logger.
func Recovery(logger *slog.Logger) echo.MiddlewareFunc {
	config := DefaultRecoveryConfig()
	config.Logger = logger
	return RecoveryWithConfig(config)
}

// RecoveryWithConfig returns a recovery middleware with custom configuration.
// The client receives a plain 500 without panic details.
func RecoveryWithConfig(config RecoveryConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.StackSize == 0 {
		config.StackSize = DefaultStackSize
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (returnErr error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}

				req := c.Request()
				attrs := []any{
					slog.String("error", err.Error()),
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
				}
				if requestID := GetRequestID(c); requestID != "" {
					attrs = append(attrs, slog.String("request_id", requestID))
				}
				if !config.DisablePrintStack {
					stack := make([]byte, config.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(stack)))
				}

				config.Logger.ErrorContext(req.Context(), "panic recovered", attrs...)

				if !c.Response().Committed {
					returnErr = c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()

			return next(c)
		}
	}
}
