// Package store is the gorm backed source of truth for potlucks, the
// category catalog and registrations.
package store

import (
	"context"
	"errors"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)

type Store struct {
	db    *gorm.DB
	retry RetryPolicy
}

type Option func(*Store)

func WithRetry(p RetryPolicy) Option {
	return func(s *Store) { s.retry = p }
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, retry: DefaultRetryPolicy()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func writeHistory(tx *gorm.DB, reg models.Registration, action string) error {
	return tx.Create(&models.RegistrationHistory{
		RegistrationID:     reg.ID,
		PotluckID:          reg.PotluckID,
		Action:             action,
		RegistrationFields: reg.RegistrationFields,
	}).Error
}

// ListHistory returns the snapshots of a potluck's registrations, newest first.
func (s *Store) ListHistory(ctx context.Context, potluckID string) ([]models.RegistrationHistory, error) {
	var history []models.RegistrationHistory
	err := s.db.WithContext(ctx).
		Where("potluck_id = ?", potluckID).
		Order("created_at desc, id desc").
		Find(&history).Error
	return history, err
}
