package materials

import (
	"errors"

	"asset-binder/core/binding"
	"asset-binder/core/logger"
	"asset-binder/core/undo"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for material bindings.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the material binding routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/materials")
	group.Get("/imports", h.HandleListImports)
	group.Get("/preview", h.HandlePreview)

	group.Get("/session", h.HandleGetSession)
	group.Post("/session", h.HandleOpenSession)
	group.Delete("/session", h.HandleCloseSession)
	group.Put("/session/slots", h.HandleEditSlot)
	group.Post("/session/commit", h.HandleCommit)
	group.Post("/session/revert", h.HandleRevert)

	group.Post("/undo", h.HandleUndo)
	group.Post("/redo", h.HandleRedo)
}

// OpenRequest is the body of POST /materials/session.
type OpenRequest struct {
	AssetPath string `json:"asset_path"`
}

// EditRequest is the body of PUT /materials/session/slots.
type EditRequest struct {
	SlotRef
	// Ref is the bound asset. Empty clears the slot.
	Ref string `json:"ref"`
}

// HandleListImports lists stored import configurations.
// @Summary List Imports
// @Description Lists the asset paths of every stored import configuration.
// @Tags materials
// @Produce json
// @Success 200 {object} map[string]interface{} "Asset paths"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /materials/imports [get]
func (h *Handler) HandleListImports(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	paths, err := h.service.ListImports(c.Context())
	if err != nil {
		return h.fail(c, l, "List imports failed", err)
	}
	if paths == nil {
		paths = []string{}
	}
	return c.JSON(fiber.Map{"imports": paths})
}

// HandlePreview returns the read-only binding preview of one asset.
// @Summary Preview Bindings
// @Description Returns the bindings of an import configuration without opening a session.
// @Tags materials
// @Produce json
// @Param asset query string true "Asset path (e.g. 'Models/hero.fbx')"
// @Success 200 {object} preview.Preview "Preview"
// @Failure 400 {object} map[string]string "Missing asset"
// @Failure 404 {object} map[string]string "No data available"
// @Router /materials/preview [get]
func (h *Handler) HandlePreview(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	asset := c.Query("asset")
	if asset == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "asset is required"})
	}

	p, err := h.service.Preview(c.Context(), asset)
	if err != nil {
		return h.fail(c, l, "Preview failed", err)
	}
	return c.JSON(p)
}

// HandleGetSession returns the current session.
// @Summary Get Session
// @Tags materials
// @Produce json
// @Success 200 {object} Session "Session"
// @Router /materials/session [get]
func (h *Handler) HandleGetSession(c *fiber.Ctx) error {
	return c.JSON(h.service.Session())
}

// HandleOpenSession opens a session on an asset, replacing the current one.
// @Summary Open Session
// @Description Opens a binding session. Pending edits of the current session need on_dirty, otherwise 409 is returned.
// @Tags materials
// @Accept json
// @Produce json
// @Param request body OpenRequest true "Asset to open"
// @Param on_dirty query string false "Settle pending edits with commit or revert"
// @Param abort query boolean false "Settle pending edits and stop without opening"
// @Success 200 {object} map[string]interface{} "Outcome and session"
// @Failure 404 {object} map[string]string "No data available"
// @Failure 409 {object} map[string]string "Pending changes need on_dirty"
// @Router /materials/session [post]
func (h *Handler) HandleOpenSession(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req OpenRequest
	if err := c.BodyParser(&req); err != nil || req.AssetPath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "asset_path is required"})
	}
	confirmer, err := Policy(c.Query("on_dirty"), c.QueryBool("abort"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	out, session, err := h.service.Open(c.Context(), req.AssetPath, confirmer)
	if err != nil {
		return h.fail(c, l, "Open session failed", err)
	}
	l.Info("Session opened",
		zap.String("asset", session.AssetPath),
		zap.String("previous", out.AssetPath),
		zap.Stringer("resolution", out.Resolution),
		zap.Bool("aborted", out.Aborted),
	)
	return c.JSON(fiber.Map{"outcome": outcomeJSON(out), "session": session})
}

// HandleCloseSession closes the current session.
// @Summary Close Session
// @Tags materials
// @Produce json
// @Param on_dirty query string false "Settle pending edits with commit or revert"
// @Success 200 {object} map[string]interface{} "Outcome"
// @Failure 409 {object} map[string]string "Pending changes need on_dirty"
// @Router /materials/session [delete]
func (h *Handler) HandleCloseSession(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	confirmer, err := Policy(c.Query("on_dirty"), false)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	out, err := h.service.Close(c.Context(), confirmer)
	if err != nil {
		return h.fail(c, l, "Close session failed", err)
	}
	return c.JSON(fiber.Map{"outcome": outcomeJSON(out)})
}

// HandleEditSlot binds one slot of the session.
// @Summary Edit Slot
// @Description Writes the binding through to the store. An empty ref clears the slot.
// @Tags materials
// @Accept json
// @Produce json
// @Param request body EditRequest true "Slot and reference"
// @Success 200 {object} Session "Session"
// @Failure 400 {object} map[string]string "Unknown slot"
// @Failure 409 {object} map[string]string "No session or reload required"
// @Failure 502 {object} map[string]string "Store rejected the write"
// @Router /materials/session/slots [put]
func (h *Handler) HandleEditSlot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req EditRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "slot name is required"})
	}

	session, err := h.service.Edit(c.Context(), req.SlotRef, binding.AssetRef(req.Ref))
	if err != nil {
		return h.fail(c, l, "Edit slot failed", err)
	}
	return c.JSON(session)
}

// HandleCommit keeps the session's edits.
// @Summary Commit Session
// @Tags materials
// @Produce json
// @Success 200 {object} Session "Session"
// @Failure 409 {object} map[string]string "No session or reload required"
// @Router /materials/session/commit [post]
func (h *Handler) HandleCommit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	session, err := h.service.Commit()
	if err != nil {
		return h.fail(c, l, "Commit failed", err)
	}
	return c.JSON(session)
}

// HandleRevert discards the session's edits.
// @Summary Revert Session
// @Description Writes the committed bindings back. A failure leaves the session failed until it is opened again.
// @Tags materials
// @Produce json
// @Success 200 {object} Session "Session"
// @Failure 409 {object} map[string]string "No session or reload required"
// @Failure 502 {object} map[string]string "Store rejected the write"
// @Router /materials/session/revert [post]
func (h *Handler) HandleRevert(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	session, err := h.service.Revert(c.Context())
	if err != nil {
		return h.fail(c, l, "Revert failed", err)
	}
	return c.JSON(session)
}

// HandleUndo undoes the last binding write.
// @Summary Undo
// @Tags materials
// @Produce json
// @Success 200 {object} map[string]interface{} "Undone step and session"
// @Failure 409 {object} map[string]string "Nothing to undo"
// @Router /materials/undo [post]
func (h *Handler) HandleUndo(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	label, session, err := h.service.Undo(c.Context())
	if err != nil {
		return h.fail(c, l, "Undo failed", err)
	}
	return c.JSON(fiber.Map{"undone": label, "session": session})
}

// HandleRedo re-applies the last undone binding write.
// @Summary Redo
// @Tags materials
// @Produce json
// @Success 200 {object} map[string]interface{} "Redone step and session"
// @Failure 409 {object} map[string]string "Nothing to redo"
// @Router /materials/redo [post]
func (h *Handler) HandleRedo(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	label, session, err := h.service.Redo(c.Context())
	if err != nil {
		return h.fail(c, l, "Redo failed", err)
	}
	return c.JSON(fiber.Map{"redone": label, "session": session})
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := statusOf(err)
	body := fiber.Map{"error": err.Error()}
	if errors.Is(err, binding.ErrNotFound) {
		body["message"] = "no data available"
	}
	if errors.Is(err, binding.ErrReloadRequired) || errors.Is(err, binding.ErrDesync) {
		body["reload_required"] = true
	}

	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Info(msg, zap.Error(err))
	}
	return c.Status(status).JSON(body)
}

func statusOf(err error) int {
	var fatal *binding.FatalError
	switch {
	case errors.As(err, &fatal):
		return fiber.StatusInternalServerError
	case errors.Is(err, binding.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, binding.ErrUnknownSlot):
		return fiber.StatusBadRequest
	case errors.Is(err, binding.ErrStoreWrite):
		return fiber.StatusBadGateway
	case errors.Is(err, binding.ErrNotLoaded),
		errors.Is(err, binding.ErrAlreadyLoaded),
		errors.Is(err, binding.ErrConfirmationRequired),
		errors.Is(err, binding.ErrConfirmationPending),
		errors.Is(err, binding.ErrReloadRequired),
		errors.Is(err, binding.ErrDesync),
		errors.Is(err, undo.ErrNothingToUndo),
		errors.Is(err, undo.ErrNothingToRedo):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func outcomeJSON(out binding.Outcome) fiber.Map {
	return fiber.Map{
		"asset_path": out.AssetPath,
		"resolution": out.Resolution.String(),
		"aborted":    out.Aborted,
	}
}
