package quality

import (
	"intake-app/middleware"
	"intake-app/types"

	"github.com/gofiber/fiber/v2"
)

type QualityHandler struct {
	service *Service
}

func NewQualityHandler(service *Service) *QualityHandler {
	return &QualityHandler{service: service}
}

func (h *QualityHandler) Create(ctx *fiber.Ctx) error {
	shipmentID, err := types.ParseSnowflakeID(ctx.Params("shipmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid shipment ID")
	}
	var in CheckInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.ShipmentID = shipmentID
	in.Operator = middleware.Actor(ctx)

	qc, created, err := h.service.Check(ctx.UserContext(), in)
	if err != nil {
		return err
	}
	status, message := fiber.StatusCreated, "Quality check recorded"
	if !created {
		status, message = fiber.StatusOK, "Pallet already checked"
	}
	return ctx.Status(status).JSON(fiber.Map{"success": true, "message": message, "data": qc})
}

func (h *QualityHandler) ListByShipment(ctx *fiber.Ctx) error {
	shipmentID, err := types.ParseSnowflakeID(ctx.Params("shipmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid shipment ID")
	}
	checks, err := h.service.ListByShipment(ctx.UserContext(), shipmentID)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": checks})
}

func (h *QualityHandler) GetByID(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	qc, err := h.service.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": qc})
}

func (h *QualityHandler) SetupRoutes(api fiber.Router) {
	api.Post("/shipments/:shipmentId/quality-checks", h.Create)
	api.Get("/shipments/:shipmentId/quality-checks", h.ListByShipment)
	api.Get("/quality-checks/:id", h.GetByID)
}
