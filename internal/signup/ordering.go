package signup

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/slots"
	"github.com/gdg-garage/potluck-signup/internal/store"
	"github.com/sirupsen/logrus"
)

const moveAttempts = 3

// MoveCategory swaps the category with its enabled neighbour in direction
// dir. It reports false without writing when the category already sits at
// that end. A concurrent reorder is retried against fresh bindings.
func (e *Engine) MoveCategory(ctx context.Context, potluckID, categoryID string, dir slots.Direction) (bool, error) {
	var err error
	for attempt := 1; attempt <= moveAttempts; attempt++ {
		var moved bool
		moved, err = e.moveOnce(ctx, potluckID, categoryID, dir)
		if err == nil {
			if moved {
				e.changed(ctx, potluckID)
			}
			return moved, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return false, err
		}
		logrus.WithFields(logrus.Fields{
			"potluck_id":  potluckID,
			"category_id": categoryID,
			"attempt":     attempt,
		}).Warn("category order changed concurrently, retrying")
	}
	return false, err
}

func (e *Engine) moveOnce(ctx context.Context, potluckID, categoryID string, dir slots.Direction) (bool, error) {
	bindings, err := e.store.ListBindings(ctx, potluckID, false)
	if err != nil {
		return false, fmt.Errorf("load categories: %w", err)
	}

	moved, neighbour, ok := slots.SwapTarget(bindings, categoryID, dir)
	if !ok {
		return false, nil
	}

	changes := []store.SortChange{
		{BindingID: moved.ID, From: moved.SortOrder, To: neighbour.SortOrder},
		{BindingID: neighbour.ID, From: neighbour.SortOrder, To: moved.SortOrder},
	}
	if moved.SortOrder == neighbour.SortOrder {
		// Equal keys would swap to the same order; step past the neighbour instead.
		changes = []store.SortChange{
			{BindingID: moved.ID, From: moved.SortOrder, To: neighbour.SortOrder + int(dir)},
		}
	}

	if err := e.store.SetSortOrders(ctx, changes...); err != nil {
		return false, err
	}
	return true, nil
}

// SetCategoryEnabled adds the category to the end of the potluck's order or
// removes its binding.
func (e *Engine) SetCategoryEnabled(ctx context.Context, potluckID, categoryID string, enabled bool) error {
	if !enabled {
		if err := e.store.DeleteBinding(ctx, potluckID, categoryID); err != nil {
			return fmt.Errorf("disable category: %w", err)
		}
		e.changed(ctx, potluckID)
		return nil
	}

	bindings, err := e.store.ListBindings(ctx, potluckID, false)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	for _, b := range bindings {
		if b.CategoryID == categoryID && b.IsEnabled {
			return nil
		}
	}

	binding := &models.PotluckCategory{
		PotluckID:  potluckID,
		CategoryID: categoryID,
		SortOrder:  slots.NextSortOrder(bindings),
		IsEnabled:  true,
	}
	if err := e.store.UpsertBinding(ctx, binding); err != nil {
		return fmt.Errorf("enable category: %w", err)
	}
	e.changed(ctx, potluckID)
	return nil
}

// ReorderRegistrations renumbers a slotted category's registrations in the
// given order.
func (e *Engine) ReorderRegistrations(ctx context.Context, potluckID, categoryID string, orderedIDs []string) error {
	if err := e.store.ReorderSlots(ctx, potluckID, categoryID, orderedIDs); err != nil {
		return fmt.Errorf("reorder registrations: %w", err)
	}
	e.changed(ctx, potluckID)
	return nil
}

// DeleteRegistration removes one of the potluck's registrations, for admins.
func (e *Engine) DeleteRegistration(ctx context.Context, potluckID, registrationID string) error {
	return e.remove(ctx, potluckID, registrationID)
}
