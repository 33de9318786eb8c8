package cache

import (
	"strconv"
	"strings"
)

const (
	GlobalKeyPrefix = "quizauthor"

	authoringService = "authoring"
	draftObject      = "draft"
	imageObject      = "image"
)

// Key joins the global prefix and parts with ":". Empty parts are skipped.
func Key(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, GlobalKeyPrefix)
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, ":")
}

// DraftKey is where a draft document is stored.
func DraftKey(draftID string) string {
	return Key(authoringService, draftObject, draftID)
}

// ImageKey is where the picture of one question of a draft is stored.
func ImageKey(draftID string, questionIndex int) string {
	return Key(authoringService, imageObject, draftID, strconv.Itoa(questionIndex))
}
