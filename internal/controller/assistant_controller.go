package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"doc-assistant-be/internal/dto"
	"doc-assistant-be/internal/errs"
	"doc-assistant-be/internal/pkg/serverutils"
	"doc-assistant-be/internal/service"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Models(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	DeleteDocument(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Get("health", c.Health)
	h.Post("models", c.Models)
	h.Post("upload", c.Upload)
	h.Get("documents", c.ListDocuments)
	h.Delete("documents/:id", c.DeleteDocument)
	h.Post("chat", c.Chat)
	h.Post("session/end", c.EndSession)
}

func (c *assistantController) Health(ctx *fiber.Ctx) error {
	res := c.assistantService.Health(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", res))
}

func (c *assistantController) Models(ctx *fiber.Ctx) error {
	var req dto.ModelsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.ErrValidation.WithCause(err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Models(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list models", res))
}

func (c *assistantController) Upload(ctx *fiber.Ctx) error {
	sessionID, err := serverutils.SessionID(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return errs.ErrValidation.WithDetail("multipart field 'file' is required")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return errs.ErrExtractionFailed.WithCause(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return errs.ErrExtractionFailed.WithCause(err)
	}

	res, err := c.assistantService.Upload(ctx.Context(), sessionID, fileHeader.Filename, data)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *assistantController) ListDocuments(ctx *fiber.Ctx) error {
	sessionID, err := serverutils.SessionID(ctx)
	if err != nil {
		return err
	}

	res := c.assistantService.ListDocuments(ctx.Context(), sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *assistantController) DeleteDocument(ctx *fiber.Ctx) error {
	sessionID, err := serverutils.SessionID(ctx)
	if err != nil {
		return err
	}
	id := ctx.Params("id")

	if err := c.assistantService.DeleteDocument(ctx.Context(), sessionID, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *assistantController) Chat(ctx *fiber.Ctx) error {
	sessionID, err := serverutils.SessionID(ctx)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.ErrValidation.WithCause(err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Chat(ctx.Context(), sessionID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func (c *assistantController) EndSession(ctx *fiber.Ctx) error {
	sessionID, err := serverutils.SessionID(ctx)
	if err != nil {
		return err
	}

	c.assistantService.EndSession(ctx.Context(), sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Session ended", &dto.EndSessionResponse{Ended: true}))
}
