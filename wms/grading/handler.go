package grading

import (
	"intake-app/middleware"
	"intake-app/types"

	"github.com/gofiber/fiber/v2"
)

type GradingHandler struct {
	service *Service
}

func NewGradingHandler(service *Service) *GradingHandler {
	return &GradingHandler{service: service}
}

func (h *GradingHandler) Summarize(ctx *fiber.Ctx) error {
	var req struct {
		Cells []Cell `json:"cells"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	summary, err := h.service.Summarize(req.Cells)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": summary})
}

func (h *GradingHandler) Submit(ctx *fiber.Ctx) error {
	var in SubmitInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	view, err := h.service.Submit(ctx.UserContext(), in)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Counting record submitted",
		"data":    view,
	})
}

func (h *GradingHandler) Correct(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	var in SubmitInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	view, err := h.service.Correct(ctx.UserContext(), id, in)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Counting record corrected",
		"data":    view,
	})
}

func (h *GradingHandler) GetByID(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	view, err := h.service.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": view})
}

func (h *GradingHandler) SetupRoutes(api fiber.Router) {
	api.Post("/grading/summary", h.Summarize)
	api.Post("/counting-records", h.Submit)
	api.Get("/counting-records/:id", h.GetByID)
	api.Post("/counting-records/:id/correct", h.Correct)
}
