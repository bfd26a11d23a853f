package supplier

import (
	"intake-app/middleware"

	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	repo *SupplierRepository
}

func NewSupplierHandler(repo *SupplierRepository) *SupplierHandler {
	return &SupplierHandler{repo: repo}
}

func (h *SupplierHandler) GetAllSuppliers(ctx *fiber.Ctx) error {
	suppliers, err := h.repo.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Suppliers retrieved successfully",
		"data":    suppliers,
	})
}

func (h *SupplierHandler) GetSupplierByCode(ctx *fiber.Ctx) error {
	s, err := h.repo.Lookup(ctx.UserContext(), ctx.Params("code"))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true, "data": s})
}

func (h *SupplierHandler) CreateSupplier(ctx *fiber.Ctx) error {
	var in CreateInput
	if err := ctx.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in.Operator = middleware.Actor(ctx)

	s, err := h.repo.Create(ctx.UserContext(), in)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Supplier created successfully",
		"data":    s,
	})
}

func (h *SupplierHandler) SetupRoutes(api fiber.Router) {
	api.Get("/suppliers", h.GetAllSuppliers)
	api.Post("/suppliers", h.CreateSupplier)
	api.Get("/suppliers/:code", h.GetSupplierByCode)
}
