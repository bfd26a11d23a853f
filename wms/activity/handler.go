package activity

import (
	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	store Store
}

func NewActivityHandler(store Store) *ActivityHandler {
	return &ActivityHandler{store: store}
}

func (h *ActivityHandler) GetRecent(ctx *fiber.Ctx) error {
	logs, err := h.store.ListRecent(ctx.UserContext(), ctx.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    logs,
	})
}

func (h *ActivityHandler) SetupRoutes(api fiber.Router) {
	api.Get("/activity", h.GetRecent)
}
