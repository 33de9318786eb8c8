package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quiz-author/internal/cache"
	"quiz-author/internal/domain"

	"golang.org/x/sync/singleflight"
)

// DraftCacheRepository stores drafts as JSON documents in the cache. Every
// save refreshes the TTL, so a draft expires after ttl of inactivity.
type DraftCacheRepository struct {
	cache domain.Cache
	ttl   time.Duration

	// Concurrent reads of one key share a single cache round trip. Each
	// caller decodes its own copy. Writes call Forget so no read started
	// after a write joins one started before it.
	sfGroup singleflight.Group
}

// NewDraftCacheRepository creates a draft repository on top of a cache port.
func NewDraftCacheRepository(c domain.Cache, ttl time.Duration) domain.DraftRepository {
	return &DraftCacheRepository{cache: c, ttl: ttl}
}

// GetDraft implements domain.DraftRepository
func (r *DraftCacheRepository) GetDraft(ctx context.Context, draftID string) (*domain.QuizForm, error) {
	raw, err := r.get(ctx, cache.DraftKey(draftID))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get draft %s: %w", draftID, err)
	}

	var form domain.QuizForm
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return nil, fmt.Errorf("failed to decode draft %s: %w", draftID, err)
	}
	if form.Questions == nil {
		form.Questions = make(map[int]*domain.Question)
	}
	return &form, nil
}

func (r *DraftCacheRepository) get(ctx context.Context, key string) (string, error) {
	v, err, _ := r.sfGroup.Do(key, func() (interface{}, error) {
		return r.cache.Get(ctx, key)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// SaveDraft implements domain.DraftRepository
func (r *DraftCacheRepository) SaveDraft(ctx context.Context, form *domain.QuizForm) error {
	if form == nil {
		return fmt.Errorf("cannot save nil draft")
	}
	if form.ID == "" {
		return fmt.Errorf("cannot save draft with empty ID")
	}

	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to encode draft %s: %w", form.ID, err)
	}
	if err := r.cache.Set(ctx, cache.DraftKey(form.ID), string(data), r.ttl); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", form.ID, err)
	}
	r.sfGroup.Forget(cache.DraftKey(form.ID))
	return r.refreshImages(ctx, form)
}

// refreshImages keeps uploaded pictures alive as long as their draft.
func (r *DraftCacheRepository) refreshImages(ctx context.Context, form *domain.QuizForm) error {
	var keys []string
	for _, i := range form.Indices() {
		if form.Questions[i].Image != nil {
			keys = append(keys, cache.ImageKey(form.ID, i))
		}
	}
	if err := r.cache.Expire(ctx, r.ttl, keys...); err != nil {
		return fmt.Errorf("failed to refresh images of draft %s: %w", form.ID, err)
	}
	return nil
}

// DeleteDraft implements domain.DraftRepository. Images are removed with it
// for every index the draft ever allocated.
func (r *DraftCacheRepository) DeleteDraft(ctx context.Context, draftID string) error {
	keys := []string{cache.DraftKey(draftID)}
	if form, err := r.GetDraft(ctx, draftID); err == nil {
		for i := 0; i < form.NextIndex; i++ {
			keys = append(keys, cache.ImageKey(draftID, i))
		}
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", draftID, err)
	}
	for _, key := range keys {
		r.sfGroup.Forget(key)
	}
	return nil
}

// SaveImage implements domain.DraftRepository
func (r *DraftCacheRepository) SaveImage(ctx context.Context, draftID string, questionIndex int, data []byte) error {
	if err := r.cache.Set(ctx, cache.ImageKey(draftID, questionIndex), string(data), r.ttl); err != nil {
		return fmt.Errorf("failed to save image for draft %s question %d: %w", draftID, questionIndex, err)
	}
	r.sfGroup.Forget(cache.ImageKey(draftID, questionIndex))
	return nil
}

// GetImage implements domain.DraftRepository
func (r *DraftCacheRepository) GetImage(ctx context.Context, draftID string, questionIndex int) ([]byte, error) {
	raw, err := r.get(ctx, cache.ImageKey(draftID, questionIndex))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get image for draft %s question %d: %w", draftID, questionIndex, err)
	}
	return []byte(raw), nil
}

// DeleteImage implements domain.DraftRepository
func (r *DraftCacheRepository) DeleteImage(ctx context.Context, draftID string, questionIndex int) error {
	if err := r.cache.Delete(ctx, cache.ImageKey(draftID, questionIndex)); err != nil {
		return fmt.Errorf("failed to delete image for draft %s question %d: %w", draftID, questionIndex, err)
	}
	r.sfGroup.Forget(cache.ImageKey(draftID, questionIndex))
	return nil
}
