package history

import (
	"cover-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the history.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/records/:id/history", h.HandleList)
}

// HandleList returns the reconciliation history of a record.
// @Summary Reconciliation History
// @Description List stored reconciliation decisions of a record, newest first.
// @Tags history
// @Produce json
// @Param id path string true "Record ID (NZ id when linked)"
// @Param limit query int false "Maximum number of entries"
// @Success 200 {array} Entry "History"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /records/{id}/history [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	entries, err := h.repo.List(c.Context(), c.Params("id"), c.QueryInt("limit", DefaultLimit))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("History lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if entries == nil {
		entries = []Entry{}
	}
	return c.JSON(entries)
}
