package integrity

import (
	"errors"

	"cover-manager/core/logger"
	"cover-manager/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/staging", h.HandleStagingCheck)
	group.Get("/history", h.HandleHistoryCheck)
	group.Get("/catalog", h.HandleCatalogCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Checks the staging bucket, the history table and the catalog endpoint.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	return c.JSON(h.service.Report(c.Context()))
}

// HandleStagingCheck checks and optionally cleans the staging bucket.
// @Summary Check Staging Bucket
// @Description Reports staged objects that are empty or too large. Optionally removes them.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Remove invalid objects"
// @Success 200 {object} checks.StagingReport "Staging Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 501 {object} map[string]string "Staging disabled"
// @Router /integrity/staging [get]
func (h *Handler) HandleStagingCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.QueryBool("fix")

	report, err := h.service.CheckStaging(c.Context())
	if err != nil {
		l.Error("Staging check failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if len(report.Invalid) > 0 {
		l.Warn("Invalid staged objects detected", zap.Int("count", len(report.Invalid)))

		if fix {
			if err := h.service.FixStaging(c.Context(), report.Invalid); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to clean staging bucket",
					"details": err.Error(),
					"invalid": report.Invalid,
				})
			}
			return c.JSON(fiber.Map{
				"status":  "fixed",
				"removed": report.Invalid,
			})
		}
	}

	return c.JSON(report)
}

// HandleHistoryCheck checks and optionally migrates the history table.
// @Summary Check History Schema
// @Description Checks that the reconciliation history table has every mapped column. Optionally migrates it.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Migrate the table"
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 501 {object} map[string]string "Database disabled"
// @Router /integrity/history [get]
func (h *Handler) HandleHistoryCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.QueryBool("fix")

	report, err := h.service.CheckHistory()
	if err != nil {
		l.Error("History schema check failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Matched && fix {
		l.Info("Migrating history table", zap.String("table", report.Table))
		if err := h.service.FixHistory(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to migrate history table",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "fixed", "table": report.Table})
	}

	return c.JSON(report)
}

// HandleCatalogCheck checks the catalog endpoint.
// @Summary Check Catalog
// @Description Resolves the institution code through the catalog configuration endpoint.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.CatalogReport "Catalog Report"
// @Failure 502 {object} checks.CatalogReport "Catalog unreachable"
// @Router /integrity/catalog [get]
func (h *Handler) HandleCatalogCheck(c *fiber.Ctx) error {
	report := h.service.CheckCatalog(c.Context())
	if !report.Reachable {
		logger.WithRayID(h.service.logger, c).Warn("Catalog unreachable", zap.String("error", report.Error))
		return c.Status(fiber.StatusBadGateway).JSON(report)
	}
	return c.JSON(report)
}

func statusFor(err error) int {
	if errors.Is(err, ErrDisabled) || errors.Is(err, checks.ErrNoDatabase) {
		return fiber.StatusNotImplemented
	}
	return fiber.StatusInternalServerError
}
