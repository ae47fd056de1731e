package handlers

import (
	"github.com/Chris701117/pagepilot/internal/service"
	"github.com/Chris701117/pagepilot/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type TrashHandler struct {
	s service.TrashService
}

func NewTrashHandler(s service.TrashService) *TrashHandler {
	return &TrashHandler{s: s}
}

func (h *TrashHandler) ListTrash(c *fiber.Ctx) error {
	pageID := c.QueryInt("page_id", 0)
	if pageID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "page_id is required",
		})
	}

	posts, err := h.s.ListDeleted(c.Context(), int64(pageID))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *TrashHandler) RestorePost(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid post id",
		})
	}

	var req transfer.RestoreRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to parse request body",
			})
		}
	}

	post, err := h.s.Restore(c.Context(), int64(postID), req.TargetPageID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *TrashHandler) PurgePost(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid post id",
		})
	}

	if err := h.s.Purge(c.Context(), int64(postID)); err != nil {
		return errorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
