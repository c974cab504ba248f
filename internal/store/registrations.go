package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/slots"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListRegistrations returns every registration of a potluck in creation order.
func (s *Store) ListRegistrations(ctx context.Context, potluckID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.db.WithContext(ctx).
		Where("potluck_id = ?", potluckID).
		Order("created_at asc, id asc").
		Find(&regs).Error
	return regs, err
}

func (s *Store) GetRegistration(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	if err := s.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &reg, nil
}

// UpsertRegistration inserts reg or updates the row with the same id. An
// existing row keeps its potluck and category: a reg naming different ones
// fails with ErrConflict and writes nothing. On success reg holds the stored
// row.
func (s *Store) UpsertRegistration(ctx context.Context, reg *models.Registration) error {
	if reg.PotluckID == "" || reg.CategoryID == "" {
		return fmt.Errorf("%w: registration needs a potluck and a category", ErrInvalid)
	}
	if reg.SlotNumber != nil && *reg.SlotNumber < 1 {
		return fmt.Errorf("%w: slot number %d", ErrInvalid, *reg.SlotNumber)
	}

	return s.retry.Do(ctx, "upsert registration", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if reg.ID != "" {
				var existing models.Registration
				res := tx.Select("id", "potluck_id", "category_id").Where("id = ?", reg.ID).Limit(1).Find(&existing)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected > 0 && (existing.PotluckID != reg.PotluckID || existing.CategoryID != reg.CategoryID) {
					return fmt.Errorf("%w: registration %s belongs to another category", ErrConflict, reg.ID)
				}
			}

			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "description", "slot_number", "gif_url", "updated_at",
				}),
			}).Create(reg).Error
			if err != nil {
				return err
			}

			if err := tx.First(reg, "id = ?", reg.ID).Error; err != nil {
				return err
			}

			return writeHistory(tx, *reg, models.HistorySaved)
		})
	})
}

// DeleteRegistration removes a registration of the potluck and closes the
// gap it leaves in a slotted category. Deleting an unknown id succeeds and
// returns nil; an id of another potluck's registration is ErrNotFound.
func (s *Store) DeleteRegistration(ctx context.Context, potluckID, id string) (*models.Registration, error) {
	var deleted *models.Registration
	err := s.retry.Do(ctx, "delete registration", func() error {
		deleted = nil
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var reg models.Registration
			err := tx.First(&reg, "id = ?", id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if reg.PotluckID != potluckID {
				return fmt.Errorf("%w: registration %s is not part of potluck %s", ErrNotFound, id, potluckID)
			}

			if err := tx.Delete(&models.Registration{}, "id = ?", id).Error; err != nil {
				return err
			}
			if err := writeHistory(tx, reg, models.HistoryDeleted); err != nil {
				return err
			}

			if reg.Slotted() {
				if err := reorganize(tx, reg.PotluckID, reg.CategoryID); err != nil {
					return err
				}
			}

			deleted = &reg
			return nil
		})
	})
	return deleted, err
}

// ReorganizeSlots renumbers the slotted registrations of a category 1..n.
func (s *Store) ReorganizeSlots(ctx context.Context, potluckID, categoryID string) error {
	return s.retry.Do(ctx, "reorganize slots", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return reorganize(tx, potluckID, categoryID)
		})
	})
}

func slotted(tx *gorm.DB, potluckID, categoryID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := tx.
		Where("potluck_id = ? AND category_id = ? AND slot_number IS NOT NULL", potluckID, categoryID).
		Order("slot_number asc, created_at asc, id asc").
		Find(&regs).Error
	return regs, err
}

func reorganize(tx *gorm.DB, potluckID, categoryID string) error {
	regs, err := slotted(tx, potluckID, categoryID)
	if err != nil {
		return err
	}

	changes := slots.Reindex(regs)
	byID := make(map[string]models.Registration, len(regs))
	for _, r := range regs {
		byID[r.ID] = r
	}

	for _, c := range changes {
		if err := renumber(tx, byID[c.ID], c.To); err != nil {
			return err
		}
	}

	if len(changes) > 0 {
		logrus.WithFields(logrus.Fields{
			"potluck_id":  potluckID,
			"category_id": categoryID,
			"renumbered":  len(changes),
		}).Info("reorganized slots")
	}
	return nil
}

func renumber(tx *gorm.DB, reg models.Registration, slotNumber int) error {
	if err := tx.Model(&models.Registration{}).
		Where("id = ?", reg.ID).
		Update("slot_number", slotNumber).Error; err != nil {
		return err
	}
	reg.SlotNumber = &slotNumber
	return writeHistory(tx, reg, models.HistoryRenumbered)
}

// ReorderSlots gives the slotted registrations of a category the slot
// numbers 1..n in the order of orderedIDs, which must name every one of them.
func (s *Store) ReorderSlots(ctx context.Context, potluckID, categoryID string, orderedIDs []string) error {
	return s.retry.Do(ctx, "reorder slots", func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			regs, err := slotted(tx, potluckID, categoryID)
			if err != nil {
				return err
			}
			if len(regs) != len(orderedIDs) {
				return fmt.Errorf("%w: expected %d registrations, got %d", ErrInvalid, len(regs), len(orderedIDs))
			}

			byID := make(map[string]models.Registration, len(regs))
			for _, r := range regs {
				byID[r.ID] = r
			}

			seen := make(map[string]bool, len(orderedIDs))
			for i, id := range orderedIDs {
				reg, ok := byID[id]
				if !ok || seen[id] {
					return fmt.Errorf("%w: registration %q", ErrInvalid, id)
				}
				seen[id] = true

				want := slots.SlotNumber(i)
				if *reg.SlotNumber == want {
					continue
				}
				if err := renumber(tx, reg, want); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
