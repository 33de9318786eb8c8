package submission

import (
	"context"

	"quiz-author/internal/domain"
	"quiz-author/internal/logger"

	"go.uber.org/zap"
)

// LogSink records accepted quizzes in the log. It is used when no
// submission endpoint is configured.
type LogSink struct{}

var _ domain.SubmissionSink = LogSink{}

// Submit implements domain.SubmissionSink.
func (LogSink) Submit(_ context.Context, submission *domain.Submission) error {
	files := make([]string, 0, len(submission.Files))
	for _, f := range submission.Files {
		files = append(files, f.FieldName+"="+f.FileName)
	}
	logger.Get().Info("Quiz submission accepted",
		zap.String("draft_id", submission.DraftID),
		zap.String("author_id", submission.AuthorID),
		zap.Any("fields", submission.Fields),
		zap.Strings("files", files))
	return nil
}
