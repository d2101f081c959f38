package controller

import (
	"bufio"
	"context"

	"docrag-be/internal/dto"
	"docrag-be/internal/pkg/logger"
	"docrag-be/internal/pkg/serverutils"
	"docrag-be/internal/service"
	"docrag-be/pkg/rag/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		logger:      log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Ask)
	h.Get("/history/:session_id", c.History)
}

// Ask answers a question over SSE. Validation and session-state failures
// happen before the stream opens and surface as plain HTTP errors; everything
// after that travels as typed events in the body.
func (c *chatController) Ask(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	// The generation outlives the fasthttp handler, so it gets its own
	// context; cancel stops the model once the client is gone.
	genCtx, cancel := context.WithCancel(context.Background())

	events, err := c.chatService.Ask(genCtx, userId, req.SessionId, req.Query)
	if err != nil {
		cancel()
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for event := range events {
			frame, err := stream.Encode(event)
			if err != nil {
				c.logger.Error("ChatController", "Failed to encode stream event", map[string]interface{}{
					"error": err.Error(),
				})
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				// Client disconnected; cancel tells the generator to stop.
				return
			}
		}
	}))

	return nil
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromLocals(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("session_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session_id"))
	}

	res, err := c.chatService.History(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Chat history", res))
}
