package intake

import (
	"intake-app/middleware"
	"intake-app/types"
	"intake-app/wms/grading"
	"intake-app/wms/quality"
	"intake-app/wms/weighbridge"

	"github.com/gofiber/fiber/v2"
)

type IntakeHandler struct {
	orchestrator *Orchestrator
}

func NewIntakeHandler(o *Orchestrator) *IntakeHandler {
	return &IntakeHandler{orchestrator: o}
}

func shipmentID(ctx *fiber.Ctx) (types.SnowflakeID, error) {
	id, err := types.ParseSnowflakeID(ctx.Params("shipmentId"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid shipment ID")
	}
	return id, nil
}

func runResponse(ctx *fiber.Ctx, run *IntakeRun, message string) error {
	return ctx.JSON(fiber.Map{"success": true, "message": message, "data": run})
}

func (h *IntakeHandler) CheckIn(ctx *fiber.Ctx) error {
	var in CheckInInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	run, sh, err := h.orchestrator.CheckIn(ctx.UserContext(), in)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Shipment checked in",
		"data":    fiber.Map{"run": run, "shipment": sh},
	})
}

func (h *IntakeHandler) Weigh(ctx *fiber.Ctx) error {
	id, err := shipmentID(ctx)
	if err != nil {
		return err
	}
	var req struct {
		Entries []weighbridge.EntryInput `json:"entries"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	run, err := h.orchestrator.Weigh(ctx.UserContext(), id, req.Entries, middleware.Actor(ctx))
	if err != nil {
		return err
	}
	return runResponse(ctx, run, "Weighing recorded")
}

func (h *IntakeHandler) QualityCheck(ctx *fiber.Ctx) error {
	id, err := shipmentID(ctx)
	if err != nil {
		return err
	}
	var req struct {
		Pallets []quality.CheckInput `json:"pallets"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	run, err := h.orchestrator.QualityCheck(ctx.UserContext(), id, req.Pallets, middleware.Actor(ctx))
	if err != nil {
		return err
	}
	return runResponse(ctx, run, "Quality check recorded")
}

func (h *IntakeHandler) Grade(ctx *fiber.Ctx) error {
	id, err := shipmentID(ctx)
	if err != nil {
		return err
	}
	var req struct {
		Pallets []grading.SubmitInput `json:"pallets"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	run, err := h.orchestrator.Grade(ctx.UserContext(), id, req.Pallets, middleware.Actor(ctx))
	if err != nil {
		return err
	}
	return runResponse(ctx, run, "Grading recorded")
}

func (h *IntakeHandler) Reconcile(ctx *fiber.Ctx) error {
	id, err := shipmentID(ctx)
	if err != nil {
		return err
	}
	run, err := h.orchestrator.Reconcile(ctx.UserContext(), id, middleware.Actor(ctx))
	if err != nil {
		return err
	}
	return runResponse(ctx, run, "Shipment reconciled")
}

func (h *IntakeHandler) Run(ctx *fiber.Ctx) error {
	id, err := shipmentID(ctx)
	if err != nil {
		return err
	}
	var in RunInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	run, err := h.orchestrator.Run(ctx.UserContext(), id, in)
	if err != nil {
		return err
	}
	return runResponse(ctx, run, "Intake complete")
}

func (h *IntakeHandler) GetRun(ctx *fiber.Ctx) error {
	id, err := shipmentID(ctx)
	if err != nil {
		return err
	}
	run, err := h.orchestrator.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": run})
}

func (h *IntakeHandler) SetupRoutes(api fiber.Router) {
	api.Post("/intake/check-in", h.CheckIn)
	api.Get("/intake/:shipmentId", h.GetRun)
	api.Post("/intake/:shipmentId/weigh", h.Weigh)
	api.Post("/intake/:shipmentId/quality-check", h.QualityCheck)
	api.Post("/intake/:shipmentId/grade", h.Grade)
	api.Post("/intake/:shipmentId/reconcile", h.Reconcile)
	api.Post("/intake/:shipmentId/run", h.Run)
}
