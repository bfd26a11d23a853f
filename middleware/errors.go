package middleware

import (
	"errors"

	"intake-app/apperror"
	"intake-app/config"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors returned by handlers in the usual
// {"success": false, "message": ...} shape with a status derived from the
// error kind.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"message": fiberErr.Message,
		})
	}

	kind := apperror.KindOf(err)
	status := StatusFor(kind)
	body := fiber.Map{
		"success": false,
		"message": err.Error(),
		"kind":    string(kind),
	}
	if field := apperror.FieldOf(err); field != "" {
		body["field"] = field
	}
	if apperror.IsRetryable(err) {
		body["retryable"] = true
	}

	if status == fiber.StatusInternalServerError {
		config.LogError(config.GetLogger(), "http", ctx.Route().Path, ctx.Method(), nil, err)
		body["message"] = "Internal Server Error"
	}
	return ctx.Status(status).JSON(body)
}

func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindInconsistency:
		return fiber.StatusUnprocessableEntity
	case apperror.KindUnavailable:
		return fiber.StatusServiceUnavailable
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
