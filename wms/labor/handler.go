package labor

import (
	"github.com/gofiber/fiber/v2"
)

type LaborHandler struct {
	estimator *Estimator
}

func NewLaborHandler(estimator *Estimator) *LaborHandler {
	return &LaborHandler{estimator: estimator}
}

func (h *LaborHandler) Estimate(ctx *fiber.Ctx) error {
	var req struct {
		Product  string  `json:"product"`
		WeightKg float64 `json:"weightKg"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	est, err := h.estimator.Estimate(req.Product, req.WeightKg)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": est})
}

func (h *LaborHandler) SetupRoutes(api fiber.Router) {
	api.Post("/labor/estimate", h.Estimate)
}
