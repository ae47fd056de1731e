package handlers

import (
	"github.com/Chris701117/pagepilot/internal/service"
	"github.com/Chris701117/pagepilot/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type PageHandler struct {
	s service.PageService
}

func NewPageHandler(s service.PageService) *PageHandler {
	return &PageHandler{s: s}
}

func (h *PageHandler) CreatePage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PageCreation
	if err := c.BodyParser(&pc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	page, err := h.s.Create(c.Context(), userID, &pc)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(page)
}

func (h *PageHandler) ListPages(c *fiber.Ctx) error {
	userID := GetUserID(c)

	pages, err := h.s.List(c.Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(pages)
}

func (h *PageHandler) GetPage(c *fiber.Ctx) error {
	pageID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid page id",
		})
	}

	page, err := h.s.Info(c.Context(), int64(pageID))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *PageHandler) DeletePage(c *fiber.Ctx) error {
	userID := GetUserID(c)
	pageID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid page id",
		})
	}

	if err := h.s.Remove(c.Context(), userID, int64(pageID)); err != nil {
		return errorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
