package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/models"
)

const apiKeyBytes = 32

// CreateAPIKey issues a new random key for the user. The returned key is
// the only place its token is readable in full.
func (s *Store) CreateAPIKey(ctx context.Context, userID uint, name string, expiresAt *time.Time) (*models.APIKey, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: api key needs a name", ErrInvalid)
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: api key would already be expired", ErrInvalid)
	}

	raw := make([]byte, apiKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	key := &models.APIKey{
		UserID:    userID,
		Token:     hex.EncodeToString(raw),
		Name:      name,
		ExpiresAt: expiresAt,
	}
	err := s.retry.Do(ctx, "create api key", func() error {
		return s.db.WithContext(ctx).Create(key).Error
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// ListAPIKeys returns the user's keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context, userID uint) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&keys).Error
	return keys, err
}

// DeleteAPIKey revokes one of the user's keys.
func (s *Store) DeleteAPIKey(ctx context.Context, userID, id uint) error {
	return s.retry.Do(ctx, "delete api key", func() error {
		res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.APIKey{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
