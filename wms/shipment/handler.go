package shipment

import (
	"intake-app/middleware"
	"intake-app/types"

	"github.com/gofiber/fiber/v2"
)

type ShipmentHandler struct {
	service *Service
}

func NewShipmentHandler(service *Service) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

type shipmentResponse struct {
	*Shipment
	VarietyList []string `json:"varieties"`
}

func respond(s *Shipment) shipmentResponse {
	return shipmentResponse{Shipment: s, VarietyList: s.Varieties()}
}

func (h *ShipmentHandler) Create(ctx *fiber.Ctx) error {
	var in CreateInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	sh, err := h.service.Create(ctx.UserContext(), in)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Shipment created",
		"data":    respond(sh),
	})
}

func (h *ShipmentHandler) GetAll(ctx *fiber.Ctx) error {
	list, err := h.service.List(ctx.UserContext(), ctx.Query("status"), ctx.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	data := make([]shipmentResponse, 0, len(list))
	for i := range list {
		data = append(data, respond(&list[i]))
	}
	return ctx.JSON(fiber.Map{"success": true, "data": data})
}

func (h *ShipmentHandler) GetByID(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	sh, err := h.service.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    respond(sh),
		"next":    h.service.Machine().Targets(sh.Status, sh.PreDelayStatus),
	})
}

func (h *ShipmentHandler) UpdateStatus(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	sh, err := h.service.SetStatus(ctx.UserContext(), id, req.Status, middleware.Actor(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "message": "Status updated", "data": respond(sh)})
}

func (h *ShipmentHandler) Override(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	sh, err := h.service.Override(ctx.UserContext(), id, req.Status, req.Reason, middleware.Actor(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "message": "Status overridden", "data": respond(sh)})
}

func (h *ShipmentHandler) History(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	changes, err := h.service.History(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": changes})
}

func (h *ShipmentHandler) Transitions(ctx *fiber.Ctx) error {
	m := h.service.Machine()
	return ctx.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"strict":          m.Strict,
			"delay_resumable": m.DelayResumable,
			"table":           m.Table(),
		},
	})
}

func (h *ShipmentHandler) SetupRoutes(api fiber.Router) {
	api.Post("/shipments", h.Create)
	api.Get("/shipments", h.GetAll)
	api.Get("/shipments/transitions", h.Transitions)
	api.Get("/shipments/:id", h.GetByID)
	api.Put("/shipments/:id/status", h.UpdateStatus)
	api.Post("/shipments/:id/override", h.Override)
	api.Get("/shipments/:id/history", h.History)
}
