package grn

import (
	"time"

	"intake-app/types"

	"github.com/gofiber/fiber/v2"
)

type GRNHandler struct {
	service *Service
}

func NewGRNHandler(service *Service) *GRNHandler {
	return &GRNHandler{service: service}
}

type sourceRequest struct {
	Varieties []string  `json:"varieties"`
	WeightKg  float64   `json:"weight_kg"`
	Crates    int       `json:"crates"`
	At        time.Time `json:"at"`
}

// Preview apportions the posted sources without storing anything.
func (h *GRNHandler) Preview(ctx *fiber.Ctx) error {
	var req struct {
		Sources []sourceRequest `json:"sources"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	sources := make([]Source, 0, len(req.Sources))
	for _, s := range req.Sources {
		sources = append(sources, Source(s))
	}
	lines := Apportion(sources)
	if err := CheckBalance(lines, sources); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": lines})
}

func (h *GRNHandler) ListByShipment(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("shipmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid shipment ID")
	}
	lines, err := h.service.ListByShipment(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": lines})
}

func (h *GRNHandler) SetupRoutes(api fiber.Router) {
	api.Post("/grn/apportion", h.Preview)
	api.Get("/grn/:shipmentId", h.ListByShipment)
}
