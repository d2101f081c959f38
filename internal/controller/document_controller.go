package controller

import (
	"docrag-be/internal/pkg/serverutils"
	"docrag-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Process(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	sessionService service.ISessionService
}

func NewDocumentController(sessionService service.ISessionService) IDocumentController {
	return &documentController{
		sessionService: sessionService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/upload", c.Upload)
	h.Post("/process", c.Process)
	h.Get("/:session_id/status", c.Status)
	h.Delete("/:session_id", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Multipart form is required"))
	}

	files := form.File["files"]
	if len(files) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "At least one file is required"))
	}

	// Optional: attach to an existing session instead of creating one.
	var sessionId *uuid.UUID
	if raw := ctx.FormValue("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session_id"))
		}
		sessionId = &id
	}

	res, err := c.sessionService.Upload(ctx.Context(), userId, sessionId, files)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Documents uploaded", res))
}

func (c *documentController) Process(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}

	var req struct {
		SessionId string `json:"session_id"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	sessionId, err := uuid.Parse(req.SessionId)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session_id"))
	}

	res, err := c.sessionService.Process(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Documents processed", res))
}

func (c *documentController) Status(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("session_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session_id"))
	}

	res, err := c.sessionService.Status(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session status", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("session_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session_id"))
	}

	res, err := c.sessionService.Delete(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session deleted", res))
}
