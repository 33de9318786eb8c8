package middleware

import (
	"errors"
	"net/http"
	"strings"

	"quiz-author/internal/domain"
	"quiz-author/internal/logger"
	"quiz-author/internal/render"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse represents validation error response
type ValidationErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Errors  []domain.ValidationError `json:"errors"`
}

// SubmissionErrorResponse is returned when a quiz fails the submission rules.
type SubmissionErrorResponse struct {
	Code     string `json:"code"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Question int    `json:"question"`
}

// ErrorHandler is a centralized error handling middleware
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger := logger.Get()
		page := isPageRequest(c)

		// Handle validation errors
		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			logger.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)),
			)
			if page {
				return c.Status(http.StatusBadRequest).SendString(validationErrs.Error())
			}
			return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
				Code:    string(domain.CodeValidation),
				Message: "Request validation failed",
				Status:  http.StatusBadRequest,
				Errors:  validationErrs,
			})
		}

		// Handle blocked submissions
		var submissionErr *domain.SubmissionError
		if errors.As(err, &submissionErr) {
			logger.Info("Submission rejected",
				zap.String("path", c.Path()),
				zap.String("rule", string(submissionErr.Code)),
				zap.Int("question", submissionErr.QuestionNumber()),
			)
			if page {
				return c.Status(http.StatusUnprocessableEntity).SendString(submissionErr.Message)
			}
			return c.Status(http.StatusUnprocessableEntity).JSON(SubmissionErrorResponse{
				Code:     string(domain.CodeSubmissionInvalid),
				Rule:     string(submissionErr.Code),
				Message:  submissionErr.Message,
				Status:   http.StatusUnprocessableEntity,
				Question: submissionErr.QuestionNumber(),
			})
		}

		// Handle domain errors
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)

			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
				zap.Error(domainErr.Cause),
			}
			if statusCode >= http.StatusInternalServerError {
				logger.Error("Domain error occurred", fields...)
			} else {
				logger.Warn("Domain error occurred", fields...)
			}

			if page {
				return c.Status(statusCode).SendString(domainErr.Message)
			}

			response := ErrorResponse{
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Status:  statusCode,
			}
			if len(domainErr.Context) > 0 {
				response.Details = domainErr.Context
			}
			return c.Status(statusCode).JSON(response)
		}

		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			logger.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			if page {
				return c.Status(fiberErr.Code).SendString(fiberErr.Message)
			}
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		// Handle unknown errors
		logger.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		if page {
			return c.Status(http.StatusInternalServerError).SendString("Internal server error")
		}
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}

// isPageRequest reports whether the request came from the HTML authoring pages.
func isPageRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), render.BasePath)
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeNotFound, domain.CodeDraftNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeValidation, domain.CodeMissingField,
		domain.CodeInvalidFormat, domain.CodeOutOfRange:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeDraftSubmitted:
		return http.StatusConflict
	case domain.CodeSubmissionInvalid:
		return http.StatusUnprocessableEntity
	case domain.CodeSubmissionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
