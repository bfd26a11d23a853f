package weighbridge

import (
	"intake-app/middleware"
	"intake-app/types"

	"github.com/gofiber/fiber/v2"
)

type WeighbridgeHandler struct {
	service *Service
}

func NewWeighbridgeHandler(service *Service) *WeighbridgeHandler {
	return &WeighbridgeHandler{service: service}
}

type entryResponse struct {
	*WeightEntry
	VarietyList []string `json:"varieties"`
}

func respond(e *WeightEntry) entryResponse {
	return entryResponse{WeightEntry: e, VarietyList: e.VarietyList()}
}

func (h *WeighbridgeHandler) Create(ctx *fiber.Ctx) error {
	var in EntryInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	entry, err := h.service.Record(ctx.UserContext(), in)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Weight entry recorded",
		"data":    respond(entry),
	})
}

func (h *WeighbridgeHandler) GetByID(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	entry, err := h.service.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": respond(entry)})
}

func (h *WeighbridgeHandler) Annotate(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	entry, err := h.service.Annotate(ctx.UserContext(), id, req.Note, middleware.Actor(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": respond(entry)})
}

func (h *WeighbridgeHandler) Supersede(ctx *fiber.Ctx) error {
	id, err := types.ParseSnowflakeID(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	var in EntryInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	entry, err := h.service.Supersede(ctx.UserContext(), id, in)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": respond(entry)})
}

func (h *WeighbridgeHandler) Reconciliation(ctx *fiber.Ctx) error {
	w, err := h.service.ResolveWindow(ctx.Query("window"), ctx.Query("from"), ctx.Query("to"))
	if err != nil {
		return err
	}
	r, err := h.service.Reconcile(ctx.UserContext(), w, middleware.Actor(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": r})
}

func (h *WeighbridgeHandler) SetupRoutes(api fiber.Router) {
	api.Post("/weight-entries", h.Create)
	api.Get("/weight-entries/reconciliation", h.Reconciliation)
	api.Get("/weight-entries/:id", h.GetByID)
	api.Post("/weight-entries/:id/annotate", h.Annotate)
	api.Post("/weight-entries/:id/supersede", h.Supersede)
}
