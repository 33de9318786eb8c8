package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-author/internal/domain"
	"quiz-author/internal/logger"
	"quiz-author/internal/util"
	"quiz-author/internal/validation"

	"go.uber.org/zap"
)

// FormService drives the authoring form of one draft at a time. Every
// mutating call loads the draft, applies one builder operation and saves it
// back, so a draft behaves like a single page the author keeps open.
type FormService interface {
	CreateDraft(ctx context.Context, ownerID string) (*domain.QuizForm, error)
	GetDraft(ctx context.Context, ownerID, draftID string) (*domain.QuizForm, error)
	DiscardDraft(ctx context.Context, ownerID, draftID string) error

	AddQuestion(ctx context.Context, ownerID, draftID string) (*domain.QuizForm, int, error)
	DeleteQuestion(ctx context.Context, ownerID, draftID string, index int) (*domain.QuizForm, error)
	ChangeType(ctx context.Context, ownerID, draftID string, index int, t domain.QuestionType) (*domain.QuizForm, error)
	UpdateQuestionText(ctx context.Context, ownerID, draftID string, index int, text string) (*domain.QuizForm, error)

	AddOption(ctx context.Context, ownerID, draftID string, index int, t domain.QuestionType) (*domain.QuizForm, error)
	RemoveOption(ctx context.Context, ownerID, draftID string, index, slot int) (*domain.QuizForm, error)
	UpdateSlot(ctx context.Context, ownerID, draftID string, index, slot int, text *string, correct *bool) (*domain.QuizForm, error)
	AttachImage(ctx context.Context, ownerID, draftID string, index int, file domain.SubmissionFile) (*domain.QuizForm, error)

	// SyncFields copies posted page fields into the draft.
	SyncFields(ctx context.Context, ownerID, draftID string, values map[string][]string) (*domain.QuizForm, error)
	// Validate reports the first rule the draft breaks without submitting it.
	Validate(ctx context.Context, ownerID, draftID string) (*domain.SubmissionError, error)
	// Submit syncs values, validates and forwards the quiz. A blocked
	// submission returns a *domain.SubmissionError and keeps the draft.
	Submit(ctx context.Context, ownerID, draftID string, values map[string][]string) (*domain.Submission, error)
}

type formService struct {
	repo      domain.DraftRepository
	sink      domain.SubmissionSink
	validator *validation.SubmissionValidator

	locks *draftLocks
	now   func() time.Time
}

// NewFormService creates a new instance of FormService.
func NewFormService(repo domain.DraftRepository, sink domain.SubmissionSink, validator *validation.SubmissionValidator) FormService {
	if validator == nil {
		validator = validation.NewSubmissionValidator(false)
	}
	return &formService{
		repo:      repo,
		sink:      sink,
		validator: validator,
		locks:     newDraftLocks(),
		now:       time.Now,
	}
}

func (s *formService) CreateDraft(ctx context.Context, ownerID string) (*domain.QuizForm, error) {
	form := domain.NewQuizForm(util.NewULID(), ownerID)
	form.CreatedAt = s.now()
	form.UpdatedAt = form.CreatedAt
	// A fresh page renders one default question.
	form.AddQuestion()

	if err := s.repo.SaveDraft(ctx, form); err != nil {
		return nil, domain.NewInternalError("failed to save draft", err)
	}
	logger.Get().Info("Draft created",
		zap.String("draft_id", form.ID),
		zap.String("owner_id", ownerID))
	return form, nil
}

func (s *formService) GetDraft(ctx context.Context, ownerID, draftID string) (*domain.QuizForm, error) {
	return s.load(ctx, ownerID, draftID)
}

// load returns a draft the author can still edit.
func (s *formService) load(ctx context.Context, ownerID, draftID string) (*domain.QuizForm, error) {
	form, err := s.loadAny(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if form.Submitted() {
		return nil, domain.NewDraftSubmittedError(draftID)
	}
	return form, nil
}

func (s *formService) loadAny(ctx context.Context, ownerID, draftID string) (*domain.QuizForm, error) {
	form, err := s.repo.GetDraft(ctx, draftID)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewDraftNotFoundError(draftID)
		}
		return nil, domain.NewInternalError("failed to load draft", err)
	}
	if form.OwnerID != ownerID {
		logger.Get().Warn("Draft requested by another author",
			zap.String("draft_id", draftID),
			zap.String("owner_id", ownerID))
		return nil, domain.NewDraftNotFoundError(draftID)
	}
	return form, nil
}

func (s *formService) DiscardDraft(ctx context.Context, ownerID, draftID string) error {
	unlock := s.locks.lock(draftID)
	defer unlock()

	form, err := s.loadAny(ctx, ownerID, draftID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDraft(ctx, form.ID); err != nil {
		return domain.NewInternalError("failed to delete draft", err)
	}
	return nil
}

// mutate runs fn against the stored draft under the draft's lock and saves
// the result. Images of questions that lost their upload control are
// removed from the store.
func (s *formService) mutate(ctx context.Context, ownerID, draftID string, fn func(form *domain.QuizForm) error) (*domain.QuizForm, error) {
	unlock := s.locks.lock(draftID)
	defer unlock()

	form, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	withImage := make(map[int]bool)
	for i, q := range form.Questions {
		if q.Image != nil {
			withImage[i] = true
		}
	}

	if err := fn(form); err != nil {
		return nil, err
	}
	form.UpdatedAt = s.now()

	if err := s.repo.SaveDraft(ctx, form); err != nil {
		return nil, domain.NewInternalError("failed to save draft", err)
	}

	for i := range withImage {
		if q, ok := form.Question(i); ok && q.Image != nil {
			continue
		}
		if err := s.repo.DeleteImage(ctx, form.ID, i); err != nil {
			logger.Get().Warn("Failed to delete dropped image",
				zap.String("draft_id", form.ID),
				zap.Int("question_index", i),
				zap.Error(err))
		}
	}
	return form, nil
}

func questionNotFound(index int) error {
	return domain.NewNotFoundError(fmt.Sprintf("question %d not found", index)).
		WithContext("question_index", index)
}

func (s *formService) AddQuestion(ctx context.Context, ownerID, draftID string) (*domain.QuizForm, int, error) {
	var index int
	form, err := s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		index = form.AddQuestion()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return form, index, nil
}

// DeleteQuestion is idempotent; deleting a question that is already gone
// leaves the draft unchanged.
func (s *formService) DeleteQuestion(ctx context.Context, ownerID, draftID string, index int) (*domain.QuizForm, error) {
	return s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		form.DeleteQuestion(index)
		return nil
	})
}

func (s *formService) ChangeType(ctx context.Context, ownerID, draftID string, index int, t domain.QuestionType) (*domain.QuizForm, error) {
	return s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		if _, ok := form.Question(index); !ok {
			return questionNotFound(index)
		}
		form.ChangeType(index, t)
		return nil
	})
}

func (s *formService) UpdateQuestionText(ctx context.Context, ownerID, draftID string, index int, text string) (*domain.QuizForm, error) {
	return s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		if _, ok := form.Question(index); !ok {
			return questionNotFound(index)
		}
		form.SetQuestionText(index, text)
		return nil
	})
}

// AddOption appends a slot for t. An empty t means the question's current
// type. A t the question no longer has is ignored.
func (s *formService) AddOption(ctx context.Context, ownerID, draftID string, index int, t domain.QuestionType) (*domain.QuizForm, error) {
	return s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		q, ok := form.Question(index)
		if !ok {
			return questionNotFound(index)
		}
		if t == domain.TypeNone {
			t = q.Type
		}
		if _, added := form.AddOption(t, index); !added {
			logger.Get().Debug("Add option ignored",
				zap.String("draft_id", form.ID),
				zap.Int("question_index", index),
				zap.String("requested_type", string(t)),
				zap.String("current_type", string(q.Type)))
		}
		return nil
	})
}

func (s *formService) RemoveOption(ctx context.Context, ownerID, draftID string, index, slot int) (*domain.QuizForm, error) {
	return s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		q, ok := form.Question(index)
		if !ok {
			return questionNotFound(index)
		}
		if _, ok := q.Slot(slot); !ok {
			return domain.NewNotFoundError(fmt.Sprintf("slot %d of question %d not found", slot, index))
		}
		if !form.RemoveOption(index, slot) {
			return domain.NewInvalidInputError(fmt.Sprintf("slot %d of question %d cannot be removed", slot, index))
		}
		return nil
	})
}

func (s *formService) UpdateSlot(ctx context.Context, ownerID, draftID string, index, slot int, text *string, correct *bool) (*domain.QuizForm, error) {
	return s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		q, ok := form.Question(index)
		if !ok {
			return questionNotFound(index)
		}
		sl, ok := q.Slot(slot)
		if !ok {
			return domain.NewNotFoundError(fmt.Sprintf("slot %d of question %d not found", slot, index))
		}
		if correct != nil && sl.Kind != domain.SlotOption {
			return domain.NewInvalidInputError("only option slots can be marked correct")
		}
		if text != nil {
			form.SetSlotText(index, slot, *text)
		}
		if correct != nil {
			form.SetSlotCorrect(index, slot, *correct)
		}
		return nil
	})
}

// AttachImage stores the picture of a picture-response question.
func (s *formService) AttachImage(ctx context.Context, ownerID, draftID string, index int, file domain.SubmissionFile) (*domain.QuizForm, error) {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return nil, domain.NewInvalidInputError("uploaded file must be an image").
			WithContext("content_type", file.ContentType)
	}
	if len(file.Data) == 0 {
		return nil, domain.NewInvalidInputError("uploaded image is empty")
	}

	return s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		q, ok := form.Question(index)
		if !ok {
			return questionNotFound(index)
		}
		if q.Type != domain.TypePictureResponse {
			return domain.NewInvalidInputError(fmt.Sprintf("question %d does not take an image", index))
		}
		if err := s.repo.SaveImage(ctx, form.ID, index, file.Data); err != nil {
			return domain.NewInternalError("failed to save image", err)
		}
		form.AttachImage(index, domain.ImageRef{
			FileName:    file.FileName,
			ContentType: file.ContentType,
			Size:        int64(len(file.Data)),
		})
		return nil
	})
}

func (s *formService) SyncFields(ctx context.Context, ownerID, draftID string, values map[string][]string) (*domain.QuizForm, error) {
	return s.mutate(ctx, ownerID, draftID, func(form *domain.QuizForm) error {
		form.ApplyFieldValues(values)
		return nil
	})
}

func (s *formService) Validate(ctx context.Context, ownerID, draftID string) (*domain.SubmissionError, error) {
	form, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(form), nil
}

// Submit forwards the quiz at most once. The draft is marked submitted
// before the sink sees it and the mark is cleared only if the sink fails,
// so a draft left behind by a failed delete cannot be forwarded again.
func (s *formService) Submit(ctx context.Context, ownerID, draftID string, values map[string][]string) (*domain.Submission, error) {
	appLogger := logger.Get()

	unlock := s.locks.lock(draftID)
	defer unlock()

	form, err := s.load(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	if len(values) > 0 {
		form.ApplyFieldValues(values)
		form.UpdatedAt = s.now()
		if err := s.repo.SaveDraft(ctx, form); err != nil {
			return nil, domain.NewInternalError("failed to save draft", err)
		}
	}

	if verr := s.validator.Validate(form); verr != nil {
		appLogger.Info("Submission blocked",
			zap.String("draft_id", form.ID),
			zap.Int("question", verr.QuestionNumber()),
			zap.String("rule", string(verr.Code)))
		return nil, verr
	}

	submission, err := s.buildSubmission(ctx, form)
	if err != nil {
		return nil, err
	}

	submittedAt := s.now()
	form.SubmittedAt = &submittedAt
	if err := s.repo.SaveDraft(ctx, form); err != nil {
		return nil, domain.NewInternalError("failed to save draft", err)
	}

	if err := s.sink.Submit(ctx, submission); err != nil {
		appLogger.Error("Failed to forward quiz",
			zap.String("draft_id", form.ID),
			zap.Error(err))
		form.SubmittedAt = nil
		if serr := s.repo.SaveDraft(ctx, form); serr != nil {
			appLogger.Error("Failed to reopen draft after forwarding failure",
				zap.String("draft_id", form.ID),
				zap.Error(serr))
		}
		return nil, domain.NewSubmissionFailedError(err)
	}

	if err := s.repo.DeleteDraft(ctx, form.ID); err != nil {
		appLogger.Warn("Failed to delete submitted draft; it stays closed until it expires",
			zap.String("draft_id", form.ID),
			zap.Error(err))
	}

	appLogger.Info("Quiz submitted",
		zap.String("draft_id", form.ID),
		zap.Int("questions", len(form.Questions)),
		zap.Int("files", len(submission.Files)))
	return submission, nil
}

// buildSubmission flattens form and attaches the stored pictures. A picture
// whose bytes expired blocks the submission like a missing upload, and its
// reference is dropped so the page asks for it again.
func (s *formService) buildSubmission(ctx context.Context, form *domain.QuizForm) (*domain.Submission, error) {
	submission := domain.NewSubmission(form)
	for _, i := range form.Indices() {
		q := form.Questions[i]
		if q.Image == nil {
			continue
		}
		data, err := s.repo.GetImage(ctx, form.ID, i)
		if err != nil {
			if !errors.Is(err, domain.ErrCacheMiss) {
				return nil, domain.NewInternalError("failed to load image", err)
			}
			logger.Get().Warn("Image expired before submission",
				zap.String("draft_id", form.ID),
				zap.Int("question_index", i))
			q.Image = nil
			form.UpdatedAt = s.now()
			if err := s.repo.SaveDraft(ctx, form); err != nil {
				return nil, domain.NewInternalError("failed to save draft", err)
			}
			return nil, validation.MissingImage(q)
		}
		submission.Files = append(submission.Files, domain.SubmissionFile{
			FieldName:   domain.ImageName(i),
			FileName:    q.Image.FileName,
			ContentType: q.Image.ContentType,
			Data:        data,
		})
	}
	return submission, nil
}
