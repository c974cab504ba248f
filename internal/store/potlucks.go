package store

import (
	"context"
	"fmt"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func (s *Store) ListPotlucks(ctx context.Context) ([]models.Potluck, error) {
	var potlucks []models.Potluck
	err := s.db.WithContext(ctx).Order("event_datetime desc, created_at desc").Find(&potlucks).Error
	return potlucks, err
}

func (s *Store) GetPotluck(ctx context.Context, id string) (*models.Potluck, error) {
	var potluck models.Potluck
	if err := s.db.WithContext(ctx).First(&potluck, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &potluck, nil
}

// GetPotluckBySlug looks a potluck up by slug. With activeOnly an inactive
// potluck is reported as not found.
func (s *Store) GetPotluckBySlug(ctx context.Context, potluckSlug string, activeOnly bool) (*models.Potluck, error) {
	q := s.db.WithContext(ctx).Where("slug = ?", potluckSlug)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var potluck models.Potluck
	if err := q.First(&potluck).Error; err != nil {
		return nil, notFound(err)
	}
	return &potluck, nil
}

func (s *Store) CreatePotluck(ctx context.Context, potluck *models.Potluck) error {
	if potluck.Slug == "" {
		potluck.Slug = potluck.TitleEN
	}
	potluck.Slug = slug.Make(potluck.Slug)
	if potluck.Slug == "" {
		return fmt.Errorf("%w: potluck needs a slug or an English title", ErrInvalid)
	}

	return s.retry.Do(ctx, "create potluck", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Potluck{}).Where("slug = ?", potluck.Slug).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: slug %q is taken", ErrConflict, potluck.Slug)
			}
			return tx.Create(potluck).Error
		})
	})
}

func (s *Store) UpdatePotluck(ctx context.Context, potluck *models.Potluck) error {
	potluck.Slug = slug.Make(potluck.Slug)
	if potluck.Slug == "" {
		return fmt.Errorf("%w: potluck needs a slug", ErrInvalid)
	}

	return s.retry.Do(ctx, "update potluck", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing models.Potluck
			if err := tx.First(&existing, "id = ?", potluck.ID).Error; err != nil {
				return notFound(err)
			}

			var count int64
			if err := tx.Model(&models.Potluck{}).Where("slug = ? AND id <> ?", potluck.Slug, potluck.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: slug %q is taken", ErrConflict, potluck.Slug)
			}

			potluck.CreatedAt = existing.CreatedAt
			return tx.Save(potluck).Error
		})
	})
}

// DeletePotluck removes a potluck together with its bindings and registrations.
func (s *Store) DeletePotluck(ctx context.Context, id string) error {
	return s.retry.Do(ctx, "delete potluck", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("potluck_id = ?", id).Delete(&models.Registration{}).Error; err != nil {
				return err
			}
			if err := tx.Where("potluck_id = ?", id).Delete(&models.PotluckCategory{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Potluck{}, "id = ?", id).Error
		})
	})
}
