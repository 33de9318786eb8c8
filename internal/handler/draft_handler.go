package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"quiz-author/internal/domain"
	"quiz-author/internal/dto"
	"quiz-author/internal/logger"
	"quiz-author/internal/middleware"
	"quiz-author/internal/service"
	"quiz-author/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DraftHandler exposes the authoring form as a JSON API.
type DraftHandler struct {
	service   service.FormService
	validator *validation.Validator
}

// NewDraftHandler creates a new DraftHandler instance
func NewDraftHandler(service service.FormService) *DraftHandler {
	return &DraftHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// Register mounts the draft routes on router.
func (h *DraftHandler) Register(router fiber.Router, vm *middleware.ValidationMiddleware) {
	router.Post("/drafts", h.CreateDraft)

	draft := router.Group("/drafts/:draftID", vm.ValidateDraftID())
	draft.Get("/", h.GetDraft)
	draft.Delete("/", h.DeleteDraft)
	draft.Post("/questions", h.AddQuestion)
	draft.Post("/validate", h.Validate)
	draft.Post("/submit", h.Submit)

	question := draft.Group("/questions/:index", vm.ValidateQuestionIndex())
	question.Delete("/", h.DeleteQuestion)
	question.Put("/", h.UpdateQuestionText)
	question.Put("/type", h.ChangeType)
	question.Put("/image", h.UploadImage)
	question.Post("/options", h.AddOption)

	option := question.Group("/options/:slot", vm.ValidateSlotIndex())
	option.Put("/", h.UpdateSlot)
	option.Delete("/", h.RemoveOption)
}

// CreateDraft godoc
// @Summary Create a quiz draft
// @Description Starts an authoring session with one default multiple choice question
// @Tags drafts
// @Security ApiKeyAuth
// @Produce json
// @Success 201 {object} dto.DraftResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /drafts [post]
func (h *DraftHandler) CreateDraft(c *fiber.Ctx) error {
	form, err := h.service.CreateDraft(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	c.Location("/api/drafts/" + form.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.NewDraftResponse(form))
}

// GetDraft godoc
// @Summary Get a quiz draft
// @Description Returns the builder state of a draft and the fields each question renders
// @Tags drafts
// @Security ApiKeyAuth
// @Produce json
// @Param draftID path string true "Draft ID"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID} [get]
func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	form, err := h.service.GetDraft(c.Context(), middleware.UserID(c), middleware.DraftID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDraftResponse(form))
}

// DeleteDraft godoc
// @Summary Discard a quiz draft
// @Tags drafts
// @Security ApiKeyAuth
// @Param draftID path string true "Draft ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID} [delete]
func (h *DraftHandler) DeleteDraft(c *fiber.Ctx) error {
	if err := h.service.DiscardDraft(c.Context(), middleware.UserID(c), middleware.DraftID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddQuestion godoc
// @Summary Add a question
// @Description Appends a multiple choice question under the next unused index
// @Tags questions
// @Security ApiKeyAuth
// @Produce json
// @Param draftID path string true "Draft ID"
// @Success 201 {object} dto.DraftResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/questions [post]
func (h *DraftHandler) AddQuestion(c *fiber.Ctx) error {
	form, index, err := h.service.AddQuestion(c.Context(), middleware.UserID(c), middleware.DraftID(c))
	if err != nil {
		return err
	}
	c.Set("X-Question-Index", strconv.Itoa(index))
	return c.Status(fiber.StatusCreated).JSON(dto.NewDraftResponse(form))
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Description Removes a question. Its index is never reused. Deleting a missing question is a no-op.
// @Tags questions
// @Security ApiKeyAuth
// @Produce json
// @Param draftID path string true "Draft ID"
// @Param index path int true "Question index"
// @Success 200 {object} dto.DraftResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/questions/{index} [delete]
func (h *DraftHandler) DeleteQuestion(c *fiber.Ctx) error {
	form, err := h.service.DeleteQuestion(c.Context(), middleware.UserID(c), middleware.DraftID(c), middleware.QuestionIndex(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDraftResponse(form))
}

// UpdateQuestionText godoc
// @Summary Set question text
// @Tags questions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param draftID path string true "Draft ID"
// @Param index path int true "Question index"
// @Param request body dto.QuestionTextRequest true "Question text"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/questions/{index} [put]
func (h *DraftHandler) UpdateQuestionText(c *fiber.Ctx) error {
	var req dto.QuestionTextRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	form, err := h.service.UpdateQuestionText(c.Context(), middleware.UserID(c), middleware.DraftID(c), middleware.QuestionIndex(c), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDraftResponse(form))
}

// ChangeType godoc
// @Summary Change question type
// @Description Replaces the question's option slots with the template of the new type. An empty type clears them.
// @Tags questions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param draftID path string true "Draft ID"
// @Param index path int true "Question index"
// @Param request body dto.QuestionTypeRequest true "Question type"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/questions/{index}/type [put]
func (h *DraftHandler) ChangeType(c *fiber.Ctx) error {
	var req dto.QuestionTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateQuestionType(req.Type); len(errs) > 0 {
		return errs
	}
	form, err := h.service.ChangeType(c.Context(), middleware.UserID(c), middleware.DraftID(c), middleware.QuestionIndex(c), domain.ParseQuestionType(req.Type))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDraftResponse(form))
}

// AddOption godoc
// @Summary Add an option slot
// @Description Appends a removable slot. A type that no longer matches the question is ignored.
// @Tags options
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param draftID path string true "Draft ID"
// @Param index path int true "Question index"
// @Param request body dto.AddOptionRequest false "Type the control was rendered for"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/questions/{index}/options [post]
func (h *DraftHandler) AddOption(c *fiber.Ctx) error {
	var req dto.AddOptionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("invalid request body")
		}
	}
	if errs := h.validator.ValidateQuestionType(req.Type); len(errs) > 0 {
		return errs
	}
	form, err := h.service.AddOption(c.Context(), middleware.UserID(c), middleware.DraftID(c), middleware.QuestionIndex(c), domain.ParseQuestionType(req.Type))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDraftResponse(form))
}

// UpdateSlot godoc
// @Summary Update an option slot
// @Tags options
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param draftID path string true "Draft ID"
// @Param index path int true "Question index"
// @Param slot path int true "Slot index"
// @Param request body dto.SlotRequest true "Slot values"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/questions/{index}/options/{slot} [put]
func (h *DraftHandler) UpdateSlot(c *fiber.Ctx) error {
	var req dto.SlotRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	form, err := h.service.UpdateSlot(c.Context(), middleware.UserID(c), middleware.DraftID(c),
		middleware.QuestionIndex(c), middleware.SlotIndex(c), req.Text, req.Correct)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDraftResponse(form))
}

// RemoveOption godoc
// @Summary Remove an option slot
// @Description Only slots added after the type template can be removed
// @Tags options
// @Security ApiKeyAuth
// @Produce json
// @Param draftID path string true "Draft ID"
// @Param index path int true "Question index"
// @Param slot path int true "Slot index"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/questions/{index}/options/{slot} [delete]
func (h *DraftHandler) RemoveOption(c *fiber.Ctx) error {
	form, err := h.service.RemoveOption(c.Context(), middleware.UserID(c), middleware.DraftID(c), middleware.QuestionIndex(c), middleware.SlotIndex(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDraftResponse(form))
}

// UploadImage godoc
// @Summary Upload the picture of a picture-response question
// @Tags questions
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param draftID path string true "Draft ID"
// @Param index path int true "Question index"
// @Param image formData file true "Image file"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/questions/{index}/image [put]
func (h *DraftHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return domain.NewInvalidInputError("image file is required")
	}
	file, err := readUpload("image", fh)
	if err != nil {
		return err
	}
	form, err := h.service.AttachImage(c.Context(), middleware.UserID(c), middleware.DraftID(c), middleware.QuestionIndex(c), file)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDraftResponse(form))
}

// Validate godoc
// @Summary Check a draft against the submission rules
// @Description Reports the first rule the draft breaks, in question order
// @Tags drafts
// @Security ApiKeyAuth
// @Produce json
// @Param draftID path string true "Draft ID"
// @Success 200 {object} dto.ValidateResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/validate [post]
func (h *DraftHandler) Validate(c *fiber.Ctx) error {
	verr, err := h.service.Validate(c.Context(), middleware.UserID(c), middleware.DraftID(c))
	if err != nil {
		return err
	}
	if verr != nil {
		return c.JSON(dto.ValidateResponse{Valid: false, Error: dto.NewSubmissionErrorResponse(verr)})
	}
	return c.JSON(dto.ValidateResponse{Valid: true})
}

// Submit godoc
// @Summary Submit a quiz
// @Description Validates the draft and forwards it to the quiz store. The draft is deleted on success.
// @Tags drafts
// @Security ApiKeyAuth
// @Produce json
// @Param draftID path string true "Draft ID"
// @Success 200 {object} dto.SubmitResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.SubmissionErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /drafts/{draftID}/submit [post]
func (h *DraftHandler) Submit(c *fiber.Ctx) error {
	draftID := middleware.DraftID(c)
	form, err := h.service.GetDraft(c.Context(), middleware.UserID(c), draftID)
	if err != nil {
		return err
	}
	submission, err := h.service.Submit(c.Context(), middleware.UserID(c), draftID, nil)
	if err != nil {
		return err
	}
	logger.Get().Info("Draft submitted via API",
		zap.String("draft_id", submission.DraftID),
		zap.Int("files", len(submission.Files)))
	return c.JSON(dto.SubmitResponse{
		DraftID:   submission.DraftID,
		Questions: len(form.Questions),
		Status:    "submitted",
	})
}

// readUpload reads an uploaded file into memory.
func readUpload(field string, fh *multipart.FileHeader) (domain.SubmissionFile, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.SubmissionFile{}, domain.NewInvalidInputError("cannot open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.SubmissionFile{}, domain.NewInternalError("failed to read uploaded file", err)
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if contentType == "" || contentType == fiber.MIMEOctetStream {
		contentType = http.DetectContentType(data)
	}
	return domain.SubmissionFile{
		FieldName:   field,
		FileName:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// isSubmissionError reports whether err blocked a submission.
func isSubmissionError(err error) (*domain.SubmissionError, bool) {
	var serr *domain.SubmissionError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
