package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationMiddleware(t *testing.T) {
	vm := NewValidationMiddleware()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})

	var (
		gotDraft string
		gotIndex int
		gotSlot  int
	)
	capture := func(c *fiber.Ctx) error {
		gotDraft = DraftID(c)
		gotIndex = QuestionIndex(c)
		gotSlot = SlotIndex(c)
		return c.SendStatus(http.StatusNoContent)
	}
	app.Delete("/api/drafts/:draftID/questions/:index/options/:slot",
		vm.ValidateDraftID(), vm.ValidateQuestionIndex(), vm.ValidateSlotIndex(), capture)
	app.Post("/create-quiz/:draftID/actions/remove-option",
		vm.ValidateDraftID(), vm.ValidateQuestionIndex(), vm.ValidateSlotIndex(), capture)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantIndex  int
		wantSlot   int
	}{
		{"path params", "DELETE", "/api/drafts/01HGZ8VNRYXS8QKNJV5GRWPWDQ/questions/3/options/4", http.StatusNoContent, 3, 4},
		{"query params", "POST", "/create-quiz/01HGZ8VNRYXS8QKNJV5GRWPWDQ/actions/remove-option?index=1&slot=2", http.StatusNoContent, 1, 2},
		{"bad draft id", "DELETE", "/api/drafts/nope/questions/3/options/4", http.StatusBadRequest, 0, 0},
		{"negative index", "DELETE", "/api/drafts/01HGZ8VNRYXS8QKNJV5GRWPWDQ/questions/-1/options/4", http.StatusBadRequest, 0, 0},
		{"missing slot", "POST", "/create-quiz/01HGZ8VNRYXS8QKNJV5GRWPWDQ/actions/remove-option?index=1", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDraft, gotIndex, gotSlot = "", -1, -1
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, "01HGZ8VNRYXS8QKNJV5GRWPWDQ", gotDraft)
				assert.Equal(t, tt.wantIndex, gotIndex)
				assert.Equal(t, tt.wantSlot, gotSlot)
			}
		})
	}
}
