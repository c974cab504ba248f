package store

import (
	"context"
	"fmt"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryKey returns the storage key for a category: the explicit key when
// one is given, otherwise a slug of its title.
func CategoryKey(explicit, title string) string {
	if key := slug.Make(explicit); key != "" {
		return key
	}
	return slug.Make(title)
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&categories).Error
	return categories, err
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.Slots < 0 {
		return fmt.Errorf("%w: slots must not be negative", ErrInvalid)
	}
	category.Key = CategoryKey(category.Key, category.TitleEN)
	if category.Key == "" {
		return fmt.Errorf("%w: category needs a key or an English title", ErrInvalid)
	}

	return s.retry.Do(ctx, "create category", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Category{}).Where("storage_key = ?", category.Key).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: category key %q is taken", ErrConflict, category.Key)
			}
			return tx.Create(category).Error
		})
	})
}

// UpdateCategory saves the editable fields of a category. The key never changes.
func (s *Store) UpdateCategory(ctx context.Context, category *models.Category) error {
	if category.Slots < 0 {
		return fmt.Errorf("%w: slots must not be negative", ErrInvalid)
	}

	return s.retry.Do(ctx, "update category", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing models.Category
			if err := tx.First(&existing, "id = ?", category.ID).Error; err != nil {
				return notFound(err)
			}

			existing.CategoryText = category.CategoryText
			existing.Icon = category.Icon
			existing.ColorClass = category.ColorClass
			existing.Slots = category.Slots
			existing.Unbounded = category.Unbounded
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}

			*category = existing
			return nil
		})
	})
}

// DeleteCategory removes a category and its binding to every potluck.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.retry.Do(ctx, "delete category", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("category_id = ?", id).Delete(&models.PotluckCategory{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Category{}, "id = ?", id).Error
		})
	})
}

// ListBindings returns the category bindings of a potluck ordered by sort order.
func (s *Store) ListBindings(ctx context.Context, potluckID string, enabledOnly bool) ([]models.PotluckCategory, error) {
	q := s.db.WithContext(ctx).Preload("Category").Where("potluck_id = ?", potluckID)
	if enabledOnly {
		q = q.Where("is_enabled = ?", true)
	}

	var bindings []models.PotluckCategory
	err := q.Order("sort_order asc, created_at asc").Find(&bindings).Error
	return bindings, err
}

// UpsertBinding creates or updates the binding of the (potluck, category) pair.
func (s *Store) UpsertBinding(ctx context.Context, binding *models.PotluckCategory) error {
	if binding.PotluckID == "" || binding.CategoryID == "" {
		return fmt.Errorf("%w: binding needs a potluck and a category", ErrInvalid)
	}

	return s.retry.Do(ctx, "upsert binding", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "potluck_id"}, {Name: "category_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"sort_order", "is_enabled", "updated_at"}),
			}).Create(binding).Error
			if err != nil {
				return err
			}

			// The id generated for the insert is discarded when the pair already exists.
			var stored models.PotluckCategory
			if err := tx.Preload("Category").
				Where("potluck_id = ? AND category_id = ?", binding.PotluckID, binding.CategoryID).
				First(&stored).Error; err != nil {
				return err
			}
			*binding = stored
			return nil
		})
	})
}

// DeleteBinding removes a binding. A missing binding is not an error.
func (s *Store) DeleteBinding(ctx context.Context, potluckID, categoryID string) error {
	return s.retry.Do(ctx, "delete binding", func() error {
		return s.db.WithContext(ctx).
			Where("potluck_id = ? AND category_id = ?", potluckID, categoryID).
			Delete(&models.PotluckCategory{}).Error
	})
}

// SortChange moves one binding from sort order From to To.
type SortChange struct {
	BindingID string
	From      int
	To        int
}

// SwapSortOrder exchanges the sort orders of two bindings.
func (s *Store) SwapSortOrder(ctx context.Context, a, b models.PotluckCategory) error {
	return s.SetSortOrders(ctx,
		SortChange{BindingID: a.ID, From: a.SortOrder, To: b.SortOrder},
		SortChange{BindingID: b.ID, From: b.SortOrder, To: a.SortOrder},
	)
}

// SetSortOrders applies all changes or none of them. Each change only
// applies while the binding still has its From value, otherwise ErrConflict
// is returned and nothing is written.
func (s *Store) SetSortOrders(ctx context.Context, changes ...SortChange) error {
	return s.retry.Do(ctx, "set sort orders", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, c := range changes {
				res := tx.Model(&models.PotluckCategory{}).
					Where("id = ? AND sort_order = ?", c.BindingID, c.From).
					Update("sort_order", c.To)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected != 1 {
					return fmt.Errorf("%w: binding %s no longer has sort order %d", ErrConflict, c.BindingID, c.From)
				}
			}
			return nil
		})
	})
}
