package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/observability"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders every failure as {"error": message}. Causes of 5xx
// responses are logged and never returned.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
						zap.String("code", domainErr.Code),
						zap.Error(errors.Unwrap(domainErr)))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(fiber.Map{"error": domainErr.Message})
				err = nil
			}
		}()
		return c.Next()
	}
}

// ErrorHandler is the fiber fallback for errors raised outside the middleware chain.
func ErrorHandler(c *fiber.Ctx, err error) error {
	domainErr := toDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Message})
}

func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusMethodNotAllowed:
			return apperrors.ToDomainError(apperrors.NewMethodNotAllowed())
		case fiber.StatusNotFound:
			return apperrors.NewDomainError("NOT_FOUND", "Not found", http.StatusNotFound, nil)
		case fiber.StatusUnauthorized:
			return apperrors.NewDomainError("UNAUTHORIZED", fiberErr.Message, http.StatusUnauthorized, nil)
		case fiber.StatusForbidden:
			return apperrors.NewDomainError("FORBIDDEN", fiberErr.Message, http.StatusForbidden, nil)
		default:
			if fiberErr.Code < fiber.StatusInternalServerError {
				return apperrors.NewDomainError("REQUEST_FAILED", fiberErr.Message, fiberErr.Code, nil)
			}
			return apperrors.ToDomainError(apperrors.NewInternalError(fiberErr))
		}
	}
	return apperrors.ToDomainError(err)
}
