package service

import (
	"context"

	"quiz-author/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockDraftRepository ---
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) GetDraft(ctx context.Context, draftID string) (*domain.QuizForm, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizForm), args.Error(1)
}

func (m *MockDraftRepository) SaveDraft(ctx context.Context, form *domain.QuizForm) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockDraftRepository) DeleteDraft(ctx context.Context, draftID string) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func (m *MockDraftRepository) SaveImage(ctx context.Context, draftID string, questionIndex int, data []byte) error {
	args := m.Called(ctx, draftID, questionIndex, data)
	return args.Error(0)
}

func (m *MockDraftRepository) GetImage(ctx context.Context, draftID string, questionIndex int) ([]byte, error) {
	args := m.Called(ctx, draftID, questionIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDraftRepository) DeleteImage(ctx context.Context, draftID string, questionIndex int) error {
	args := m.Called(ctx, draftID, questionIndex)
	return args.Error(0)
}

// --- MockSubmissionSink ---
type MockSubmissionSink struct {
	mock.Mock
}

func (m *MockSubmissionSink) Submit(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}
