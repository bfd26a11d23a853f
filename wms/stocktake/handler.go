package stocktake

import (
	"intake-app/middleware"
	"intake-app/types"

	"github.com/gofiber/fiber/v2"
)

type StockTakeHandler struct {
	service *Service
}

func NewStockTakeHandler(service *Service) *StockTakeHandler {
	return &StockTakeHandler{service: service}
}

func (h *StockTakeHandler) Create(ctx *fiber.Ctx) error {
	var in SubmitInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	record, err := h.service.Submit(ctx.UserContext(), in)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Stock take recorded",
		"data":    record,
	})
}

func (h *StockTakeHandler) GetAll(ctx *fiber.Ctx) error {
	records, err := h.service.ListRecent(ctx.UserContext(), ctx.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": records})
}

func (h *StockTakeHandler) GetByID(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	record, err := h.service.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": record})
}

func (h *StockTakeHandler) SetupRoutes(api fiber.Router) {
	api.Post("/stock-take", h.Create)
	api.Get("/stock-take", h.GetAll)
	api.Get("/stock-take/:id", h.GetByID)
}
