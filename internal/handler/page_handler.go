package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"strings"

	"quiz-author/internal/domain"
	"quiz-author/internal/logger"
	"quiz-author/internal/middleware"
	"quiz-author/internal/render"
	"quiz-author/internal/service"
	"quiz-author/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	ActionAddQuestion    = "add-question"
	ActionDeleteQuestion = "delete-question"
	ActionAddOption      = "add-option"
	ActionRemoveOption   = "remove-option"
	ActionUpdate         = "update"
)

// PageHandler serves the server-rendered authoring page. Every button posts
// the whole form, so each action first syncs the typed values into the
// draft and then redirects back to the page.
type PageHandler struct {
	service   service.FormService
	renderer  *render.Renderer
	validator *validation.Validator
}

// NewPageHandler creates a new PageHandler instance
func NewPageHandler(service service.FormService, renderer *render.Renderer) *PageHandler {
	return &PageHandler{
		service:   service,
		renderer:  renderer,
		validator: validation.NewValidator(),
	}
}

// Register mounts the page routes on router.
func (h *PageHandler) Register(router fiber.Router, vm *middleware.ValidationMiddleware) {
	router.Get(render.BasePath, h.NewDraft)

	draft := router.Group(render.BasePath+"/:draftID", vm.ValidateDraftID())
	draft.Get("/", h.ShowDraft)
	draft.Post("/actions/:action", h.Action)
	draft.Post("/submit", h.Submit)
}

// NewDraft starts a draft and redirects to its page.
func (h *PageHandler) NewDraft(c *fiber.Ctx) error {
	form, err := h.service.CreateDraft(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Redirect(render.DraftURL(form.ID), fiber.StatusSeeOther)
}

// ShowDraft renders the authoring page.
func (h *PageHandler) ShowDraft(c *fiber.Ctx) error {
	form, err := h.service.GetDraft(c.Context(), middleware.UserID(c), middleware.DraftID(c))
	if err != nil {
		return err
	}
	return h.renderPage(c, fiber.StatusOK, form, "")
}

// Action applies one page button.
func (h *PageHandler) Action(c *fiber.Ctx) error {
	ctx := c.Context()
	ownerID, draftID := middleware.UserID(c), middleware.DraftID(c)
	action := c.Params("action")

	if _, err := h.syncForm(ctx, c, ownerID, draftID); err != nil {
		return err
	}

	var err error
	switch action {
	case ActionUpdate:
	case ActionAddQuestion:
		_, _, err = h.service.AddQuestion(ctx, ownerID, draftID)
	case ActionDeleteQuestion:
		index, verr := h.index(c, "index")
		if verr != nil {
			return verr
		}
		_, err = h.service.DeleteQuestion(ctx, ownerID, draftID, index)
	case ActionAddOption:
		index, verr := h.index(c, "index")
		if verr != nil {
			return verr
		}
		_, err = h.service.AddOption(ctx, ownerID, draftID, index, domain.ParseQuestionType(c.Query("type")))
	case ActionRemoveOption:
		index, verr := h.index(c, "index")
		if verr != nil {
			return verr
		}
		slot, verr := h.index(c, "slot")
		if verr != nil {
			return verr
		}
		_, err = h.service.RemoveOption(ctx, ownerID, draftID, index, slot)
	default:
		return fiber.NewError(fiber.StatusNotFound, "unknown action: "+action)
	}
	if err != nil {
		return err
	}

	logger.Get().Debug("Page action applied",
		zap.String("draft_id", draftID),
		zap.String("action", action))
	return c.Redirect(render.DraftURL(draftID), fiber.StatusSeeOther)
}

// Submit validates and forwards the quiz. A blocked submission re-renders
// the page with the first violation as an alert.
func (h *PageHandler) Submit(c *fiber.Ctx) error {
	ctx := c.Context()
	ownerID, draftID := middleware.UserID(c), middleware.DraftID(c)

	form, err := h.syncForm(ctx, c, ownerID, draftID)
	if err != nil {
		return err
	}

	if _, err := h.service.Submit(ctx, ownerID, draftID, nil); err != nil {
		if serr, ok := isSubmissionError(err); ok {
			return h.renderPage(c, fiber.StatusUnprocessableEntity, form, serr.Message)
		}
		return err
	}

	var buf bytes.Buffer
	if err := h.renderer.Submitted(&buf, render.ConfirmationData{
		Title:     "Quiz Created",
		DraftID:   draftID,
		Questions: len(form.Questions),
		NewURL:    render.BasePath,
	}); err != nil {
		return domain.NewInternalError("failed to render page", err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// syncForm copies the posted fields and uploaded pictures into the draft.
func (h *PageHandler) syncForm(ctx context.Context, c *fiber.Ctx, ownerID, draftID string) (*domain.QuizForm, error) {
	values, files, err := postedForm(c)
	if err != nil {
		return nil, err
	}

	form, err := h.service.SyncFields(ctx, ownerID, draftID, values)
	if err != nil {
		return nil, err
	}

	for _, i := range form.Indices() {
		fh, ok := files[domain.ImageName(i)]
		if !ok || fh.Filename == "" || fh.Size == 0 {
			continue
		}
		if form.Questions[i].Type != domain.TypePictureResponse {
			continue
		}
		file, err := readUpload(domain.ImageName(i), fh)
		if err != nil {
			return nil, err
		}
		if form, err = h.service.AttachImage(ctx, ownerID, draftID, i, file); err != nil {
			return nil, err
		}
	}
	return form, nil
}

func (h *PageHandler) index(c *fiber.Ctx, name string) (int, error) {
	n, errs := h.validator.ParseIndex(name, c.Query(name))
	if len(errs) > 0 {
		return 0, errs
	}
	return n, nil
}

func (h *PageHandler) renderPage(c *fiber.Ctx, status int, form *domain.QuizForm, alert string) error {
	var buf bytes.Buffer
	if err := h.renderer.CreateQuiz(&buf, render.NewPageData(form, alert)); err != nil {
		return domain.NewInternalError("failed to render page", err)
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// postedForm collects the posted fields of either form encoding.
func postedForm(c *fiber.Ctx) (map[string][]string, map[string]*multipart.FileHeader, error) {
	files := make(map[string]*multipart.FileHeader)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, nil, domain.NewInvalidInputError("invalid multipart form")
		}
		for name, headers := range mf.File {
			if len(headers) > 0 {
				files[name] = headers[0]
			}
		}
		return mf.Value, files, nil
	}

	values := make(map[string][]string)
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		values[k] = append(values[k], string(value))
	})
	return values, files, nil
}
