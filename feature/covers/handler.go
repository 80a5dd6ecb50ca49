package covers

import (
	"errors"
	"io"

	"cover-manager/core/logger"
	"cover-manager/core/marc"
	"cover-manager/core/reconcile"
	"cover-manager/core/retry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionHeader selects the session of a request.
const SessionHeader = "X-Session-ID"

// Handler handles HTTP requests for covers.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the cover routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	records := app.Group("/records")
	records.Delete("/session", h.HandleResetSession)
	records.Get("/:id", h.HandleRefresh)
	records.Post("/:id/apply", h.HandleApply)
	records.Post("/:id/covers", h.HandleUpload)
	records.Post("/:id/covers/staged", h.HandleUploadStaged)
	records.Delete("/:id/covers", h.HandleDelete)

	app.Get("/covers/:source/:code/thumbnail", h.HandleThumbnail)

	staging := app.Group("/staging")
	staging.Get("/", h.HandleListStaged)
	staging.Post("/", h.HandleStage)
}

// sessionID returns the request's session id, generating one when absent.
func sessionID(c *fiber.Ctx) string {
	id := utils.CopyString(c.Get(SessionHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(SessionHeader, id)
	return id
}

// param copies a route parameter; fiber reuses the underlying buffer.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

func options(c *fiber.Ctx) reconcile.Options {
	return reconcile.Options{
		DryRun:    c.QueryBool("dry_run", false),
		Confirmed: true,
	}
}

// HandleRefresh loads a record and reconciles its covers.
// @Summary Refresh Record
// @Description Load a record, extract identifiers and covers, fetch the live cover set and persist drift.
// @Tags covers
// @Produce json
// @Param id path string true "MMS ID"
// @Param dry_run query bool false "Compute the decision without persisting"
// @Param X-Session-ID header string false "Session ID"
// @Success 200 {object} Report "Record Report"
// @Failure 409 {object} map[string]string "Superseded"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /records/{id} [get]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	sid := sessionID(c)
	report, err := h.service.Refresh(c.Context(), sid, param(c, "id"), options(c))
	if err != nil {
		return h.fail(c, "Refresh failed", err)
	}
	return c.JSON(report)
}

// HandleApply persists the pending decision of the session's record.
// @Summary Apply Decision
// @Description Persist the pending active-cover annotation of the loaded record.
// @Tags covers
// @Produce json
// @Param id path string true "MMS ID"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} Report "Record Report"
// @Failure 404 {object} map[string]string "No record loaded"
// @Router /records/{id}/apply [post]
func (h *Handler) HandleApply(c *fiber.Ctx) error {
	report, err := h.service.Apply(c.Context(), sessionID(c), param(c, "id"))
	if err != nil {
		return h.fail(c, "Apply failed", err)
	}
	return c.JSON(report)
}

// HandleResetSession clears the session state.
// @Summary Reset Session
// @Tags covers
// @Param X-Session-ID header string true "Session ID"
// @Success 204
// @Router /records/session [delete]
func (h *Handler) HandleResetSession(c *fiber.Ctx) error {
	h.service.Reset(sessionID(c))
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUpload uploads a new cover for the session's record.
// @Summary Upload Cover
// @Description Upload an image (< 1 MiB) as cover of the loaded record.
// @Tags covers
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "MMS ID"
// @Param cover formData file true "Cover image"
// @Param confirm query bool false "Replace an existing primary cover"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} Report "Record Report"
// @Failure 409 {object} map[string]string "Overwrite not confirmed"
// @Failure 413 {object} map[string]string "Cover too large"
// @Failure 415 {object} map[string]string "Not an image"
// @Router /records/{id}/covers [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("cover")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing cover file",
		})
	}

	f, err := file.Open()
	if err != nil {
		return h.fail(c, "Upload failed", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxCoverSize+1))
	if err != nil {
		return h.fail(c, "Upload failed", err)
	}

	up := Upload{Filename: file.Filename, Data: data, Confirm: c.QueryBool("confirm", false)}
	report, err := h.service.Upload(c.Context(), sessionID(c), param(c, "id"), up, options(c))
	if err != nil {
		return h.fail(c, "Upload failed", err)
	}
	return c.JSON(report)
}

// HandleUploadStaged uploads a staged image as cover of the session's record.
// @Summary Upload Staged Cover
// @Tags covers
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "MMS ID"
// @Param object formData string true "Staging object key"
// @Param confirm query bool false "Replace an existing primary cover"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} Report "Record Report"
// @Router /records/{id}/covers/staged [post]
func (h *Handler) HandleUploadStaged(c *fiber.Ctx) error {
	key := utils.CopyString(c.FormValue("object"))
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing object key",
		})
	}

	report, err := h.service.UploadStaged(c.Context(), sessionID(c), param(c, "id"), key, c.QueryBool("confirm", false), options(c))
	if err != nil {
		return h.fail(c, "Staged upload failed", err)
	}
	return c.JSON(report)
}

// HandleDelete removes a cover of the session's record.
// @Summary Delete Cover
// @Tags covers
// @Produce json
// @Param id path string true "MMS ID"
// @Param type query string true "Identifier type"
// @Param code query string true "Identifier code"
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} Report "Record Report"
// @Router /records/{id}/covers [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	idType, idCode := utils.CopyString(c.Query("type")), utils.CopyString(c.Query("code"))
	if idType == "" || idCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type and code are required",
		})
	}

	report, err := h.service.Delete(c.Context(), sessionID(c), param(c, "id"), idType, idCode, options(c))
	if err != nil {
		return h.fail(c, "Delete failed", err)
	}
	return c.JSON(report)
}

// HandleThumbnail proxies a cover thumbnail.
// @Summary Cover Thumbnail
// @Tags covers
// @Produce image/jpeg
// @Param source path string true "Cover source"
// @Param code path string true "Cover code"
// @Success 200 {file} binary "Image"
// @Router /covers/{source}/{code}/thumbnail [get]
func (h *Handler) HandleThumbnail(c *fiber.Ctx) error {
	thumb, err := h.service.Thumbnail(c.Context(), param(c, "source"), param(c, "code"))
	if err != nil {
		return h.fail(c, "Thumbnail failed", err)
	}
	if thumb.ContentType != "" {
		c.Set(fiber.HeaderContentType, thumb.ContentType)
	}
	return c.Send(thumb.Data)
}

// HandleListStaged lists staged images.
// @Summary List Staged Covers
// @Tags staging
// @Produce json
// @Param prefix query string false "Key prefix"
// @Success 200 {array} storage.StagedObject "Staged objects"
// @Router /staging [get]
func (h *Handler) HandleListStaged(c *fiber.Ctx) error {
	objects, err := h.service.Staged(c.Context(), c.Query("prefix"))
	if err != nil {
		return h.fail(c, "Listing staged covers failed", err)
	}
	return c.JSON(objects)
}

// HandleStage stores an image in the staging bucket.
// @Summary Stage Cover
// @Tags staging
// @Accept multipart/form-data
// @Produce json
// @Param cover formData file true "Cover image"
// @Param key formData string false "Object key, defaults to the file name"
// @Success 201 {object} storage.StagedObject "Staged object"
// @Router /staging [post]
func (h *Handler) HandleStage(c *fiber.Ctx) error {
	file, err := c.FormFile("cover")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing cover file",
		})
	}

	f, err := file.Open()
	if err != nil {
		return h.fail(c, "Staging failed", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxCoverSize+1))
	if err != nil {
		return h.fail(c, "Staging failed", err)
	}

	key := utils.CopyString(c.FormValue("key"))
	if key == "" {
		key = file.Filename
	}

	obj, err := h.service.Stage(c.Context(), key, data)
	if err != nil {
		return h.fail(c, "Staging failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(obj)
}

// fail logs err and writes it with the matching status.
func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := StatusFor(err)
	l := logger.WithRayID(h.service.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// StatusFor maps an error to an HTTP status.
func StatusFor(err error) int {
	var parseErr *marc.ParseError
	switch {
	case errors.Is(err, ErrSuperseded), errors.Is(err, ErrOverwriteNotConfirmed):
		return fiber.StatusConflict
	case errors.Is(err, ErrNoRecord):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNotImage):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, ErrCoverTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, ErrStagingDisabled):
		return fiber.StatusNotImplemented
	case errors.As(err, &parseErr):
		return fiber.StatusUnprocessableEntity
	}
	if status := retry.StatusOf(err); status >= 400 {
		return status
	}
	return fiber.StatusInternalServerError
}
