package submission

import (
	"context"
	"fmt"
	"sort"
	"time"

	"quiz-author/internal/domain"
	"quiz-author/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// HTTPForwarder posts accepted quizzes as multipart/form-data to the
// endpoint that stores them, the way the authoring page would.
type HTTPForwarder struct {
	endpoint string
	timeout  time.Duration
}

var _ domain.SubmissionSink = (*HTTPForwarder)(nil)

// NewHTTPForwarder creates a new HTTPForwarder.
func NewHTTPForwarder(endpoint string, timeout time.Duration) (*HTTPForwarder, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("submission endpoint cannot be empty")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPForwarder{endpoint: endpoint, timeout: timeout}, nil
}

// Submit implements domain.SubmissionSink. Any non-2xx status is an error.
func (f *HTTPForwarder) Submit(ctx context.Context, submission *domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	for _, name := range sortedKeys(submission.Fields) {
		args.Set(name, submission.Fields[name])
	}

	a := fiber.Post(f.endpoint)
	a.Timeout(timeout)
	a.Set("X-Draft-ID", submission.DraftID)
	if submission.AuthorID != "" {
		a.Set("X-Author-ID", submission.AuthorID)
	}
	for _, file := range submission.Files {
		a.FileData(&fiber.FormFile{
			Fieldname: file.FieldName,
			Name:      file.FileName,
			Content:   file.Data,
		})
	}
	a.MultipartForm(args)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("failed to post quiz to %s: %w", f.endpoint, errs[0])
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		logger.Get().Warn("Submission endpoint rejected quiz",
			zap.String("draft_id", submission.DraftID),
			zap.Int("status", code),
			zap.ByteString("body", truncate(body, 512)))
		return fmt.Errorf("submission endpoint returned status %d", code)
	}

	logger.Get().Info("Quiz forwarded",
		zap.String("draft_id", submission.DraftID),
		zap.String("endpoint", f.endpoint),
		zap.Int("status", code))
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
