package middleware

import (
	"quiz-author/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	DraftIDKey       = "validated_draft_id"
	QuestionIndexKey = "validated_question_index"
	SlotIndexKey     = "validated_slot_index"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateDraftID validates the draftID path parameter.
func (vm *ValidationMiddleware) ValidateDraftID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		draftID := c.Params("draftID")
		if errors := vm.validator.ValidateDraftID(draftID); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}
		c.Locals(DraftIDKey, draftID)
		return c.Next()
	}
}

// ValidateQuestionIndex validates the question index, taken from the path
// parameter "index" or the query string.
func (vm *ValidationMiddleware) ValidateQuestionIndex() fiber.Handler {
	return vm.validateIndex("index", QuestionIndexKey)
}

// ValidateSlotIndex validates the option slot index.
func (vm *ValidationMiddleware) ValidateSlotIndex() fiber.Handler {
	return vm.validateIndex("slot", SlotIndexKey)
}

func (vm *ValidationMiddleware) validateIndex(name, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Params(name)
		if raw == "" {
			raw = c.Query(name)
		}
		n, errors := vm.validator.ParseIndex(name, raw)
		if len(errors) > 0 {
			return errors
		}
		c.Locals(key, n)
		return c.Next()
	}
}

// DraftID returns the validated draft ID.
func DraftID(c *fiber.Ctx) string {
	id, _ := c.Locals(DraftIDKey).(string)
	return id
}

// QuestionIndex returns the validated question index.
func QuestionIndex(c *fiber.Ctx) int {
	n, _ := c.Locals(QuestionIndexKey).(int)
	return n
}

// SlotIndex returns the validated slot index.
func SlotIndex(c *fiber.Ctx) int {
	n, _ := c.Locals(SlotIndexKey).(int)
	return n
}
