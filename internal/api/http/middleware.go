package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/solterra/operations-service/internal/config"
	"github.com/solterra/operations-service/internal/observability"
	apperrors "github.com/solterra/operations-service/pkg/util"
)

// RegisterMiddlewares installs the global middleware chain. Order matters:
// error handling wraps everything so panics and domain errors from any layer
// become JSON responses, the request logger sees the final status code.
func RegisterMiddlewares(app *fiber.App, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) {
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout := cfg.App.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()))
				err = writeDomainError(c, metrics, apperrors.ToDomainError(apperrors.NewInternalError(nil)))
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "HTTP_ERROR",
					"message": fiberErr.Message,
				},
			})
		}

		domainErr := apperrors.ToDomainError(err)
		if domainErr.HTTPStatus >= 500 {
			logger.Error("request failed",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.Error(err))
		}
		return writeDomainError(c, metrics, domainErr)
	}
}

func writeDomainError(c *fiber.Ctx, metrics *observability.Metrics, domainErr *apperrors.DomainError) error {
	metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}
