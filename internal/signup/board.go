package signup

import (
	"context"
	"strings"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/slots"
	"github.com/google/uuid"
)

// Entry is what a guest typed into a card.
type Entry struct {
	ID          string
	Name        string
	Description string
}

func (in Entry) trimmed() Entry {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func (in Entry) empty() bool {
	return in.Name == "" && in.Description == ""
}

func (in Entry) complete() bool {
	return in.Name != "" && in.Description != ""
}

// Section is one category of a board. Slotted categories use Slots,
// unbounded ones use Items.
type Section struct {
	Binding  models.PotluckCategory
	Category models.Category
	Slots    slots.List
	Items    slots.Items
}

// Board is the sign-up view of one potluck. It is rebuilt by Engine.Load
// and patched in place by the write operations; it is not safe for
// concurrent use.
type Board struct {
	Potluck  models.Potluck
	Sections []*Section
	engine   *Engine
}

func (b *Board) Section(categoryID string) (*Section, error) {
	for _, s := range b.Sections {
		if s.Category.ID == categoryID {
			return s, nil
		}
	}
	return nil, ErrUnknownCategory
}

func (b *Board) slotted(categoryID string) (*Section, error) {
	sec, err := b.Section(categoryID)
	if err != nil {
		return nil, err
	}
	if sec.Category.Unbounded {
		return nil, ErrWrongKind
	}
	return sec, nil
}

func (b *Board) unbounded(categoryID string) (*Section, error) {
	sec, err := b.Section(categoryID)
	if err != nil {
		return nil, err
	}
	if !sec.Category.Unbounded {
		return nil, ErrWrongKind
	}
	return sec, nil
}

// HasIncomplete reports whether any registration lacks a name or a description.
func (b *Board) HasIncomplete() bool {
	incomplete := func(r models.Registration) bool {
		return strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Description) == ""
	}
	for _, s := range b.Sections {
		for _, r := range s.Slots {
			if r != nil && incomplete(*r) {
				return true
			}
		}
		for _, r := range s.Items {
			if incomplete(r) {
				return true
			}
		}
	}
	return false
}

// FillSlot stores the entry in slot index of a slotted category. Without an
// id the entry creates a registration and the slot must be empty. With the
// occupant's id it edits it, and with the id of another registration of the
// same category it moves that registration here. index must lie within the
// current list, whose last slot is always empty.
func (b *Board) FillSlot(ctx context.Context, categoryID string, index int, in Entry) (*models.Registration, error) {
	sec, err := b.slotted(categoryID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(sec.Slots) {
		return nil, slots.ErrIndexOutOfRange
	}
	in = in.trimmed()
	if !in.complete() {
		return nil, ErrEmptyEntry
	}

	occupant := sec.Slots.At(index)
	switch {
	case occupant != nil && in.ID != occupant.ID:
		return nil, ErrSlotTaken
	case occupant == nil && in.ID != "" && sec.slotOf(in.ID) < 0:
		return nil, ErrSlotTaken
	}

	slotNumber := slots.SlotNumber(index)
	reg := models.Registration{PotluckID: b.Potluck.ID}
	reg.ID = in.ID
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.Name = in.Name
	reg.Description = in.Description
	reg.CategoryID = categoryID
	reg.SlotNumber = &slotNumber
	if occupant != nil {
		reg.GifURL = occupant.GifURL
	}

	if err := b.engine.save(ctx, b.Potluck, sec.Category, &reg, in.ID == ""); err != nil {
		return nil, err
	}

	if from := sec.slotOf(reg.ID); from >= 0 && from != index {
		sec.Slots = sec.Slots.Clear(from)
	}
	sec.Slots = sec.Slots.Set(index, &reg).EnsureTrailingEmpty().TrimTrailingEmpty(sec.Category.Slots)
	return &reg, nil
}

// slotOf returns the index holding the registration, or -1.
func (s *Section) slotOf(id string) int {
	for i, r := range s.Slots {
		if r != nil && r.ID == id {
			return i
		}
	}
	return -1
}

// holds reports whether the registration is anywhere on the board.
func (b *Board) holds(id string) bool {
	for _, s := range b.Sections {
		if s.slotOf(id) >= 0 {
			return true
		}
		for _, r := range s.Items {
			if r.ID == id {
				return true
			}
		}
	}
	return false
}

// ClearSlot deletes the occupant of slot index. An empty slot is left alone.
func (b *Board) ClearSlot(ctx context.Context, categoryID string, index int) error {
	sec, err := b.slotted(categoryID)
	if err != nil {
		return err
	}

	occupant := sec.Slots.At(index)
	if occupant == nil {
		return nil
	}
	if err := b.engine.remove(ctx, b.Potluck.ID, occupant.ID); err != nil {
		return err
	}

	sec.Slots = sec.Slots.Clear(index).TrimTrailingEmpty(sec.Category.Slots).EnsureTrailingEmpty()
	return nil
}

// SaveSlot is FillSlot, except that saving an occupied slot with both fields
// blank clears it.
func (b *Board) SaveSlot(ctx context.Context, categoryID string, index int, in Entry) (*models.Registration, error) {
	in = in.trimmed()
	if in.empty() {
		sec, err := b.slotted(categoryID)
		if err != nil {
			return nil, err
		}
		occupant := sec.Slots.At(index)
		if occupant == nil {
			return nil, ErrEmptyEntry
		}
		if in.ID != "" && in.ID != occupant.ID {
			return nil, ErrSlotTaken
		}
		return nil, b.ClearSlot(ctx, categoryID, index)
	}
	return b.FillSlot(ctx, categoryID, index, in)
}

// Append adds an item after all existing items of an unbounded category.
func (b *Board) Append(ctx context.Context, categoryID string, in Entry) (*models.Registration, error) {
	sec, err := b.unbounded(categoryID)
	if err != nil {
		return nil, err
	}
	in = in.trimmed()
	if !in.complete() {
		return nil, ErrEmptyEntry
	}
	if in.ID != "" && b.holds(in.ID) {
		return nil, ErrSlotTaken
	}

	reg := models.Registration{PotluckID: b.Potluck.ID}
	reg.ID = in.ID
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.Name = in.Name
	reg.Description = in.Description
	reg.CategoryID = categoryID

	if err := b.engine.save(ctx, b.Potluck, sec.Category, &reg, true); err != nil {
		return nil, err
	}
	sec.Items = sec.Items.Append(reg)
	return &reg, nil
}

// UpdateAt edits the item at index. Both fields blank removes the item.
func (b *Board) UpdateAt(ctx context.Context, categoryID string, index int, in Entry) (*models.Registration, error) {
	sec, err := b.unbounded(categoryID)
	if err != nil {
		return nil, err
	}
	current, ok := sec.Items.At(index)
	if !ok {
		return nil, slots.ErrIndexOutOfRange
	}
	if in.ID != "" && in.ID != current.ID {
		return nil, ErrSlotTaken
	}

	in = in.trimmed()
	if in.empty() {
		return nil, b.RemoveAt(ctx, categoryID, index)
	}
	if !in.complete() {
		return nil, ErrEmptyEntry
	}

	reg := current
	reg.Name = in.Name
	reg.Description = in.Description
	if err := b.engine.save(ctx, b.Potluck, sec.Category, &reg, false); err != nil {
		return nil, err
	}
	sec.Items, _ = sec.Items.UpdateAt(index, reg)
	return &reg, nil
}

// RemoveAt deletes the item at index; later items move up by one.
func (b *Board) RemoveAt(ctx context.Context, categoryID string, index int) error {
	sec, err := b.unbounded(categoryID)
	if err != nil {
		return err
	}
	current, ok := sec.Items.At(index)
	if !ok {
		return slots.ErrIndexOutOfRange
	}

	if err := b.engine.remove(ctx, b.Potluck.ID, current.ID); err != nil {
		return err
	}
	sec.Items, _ = sec.Items.RemoveAt(index)
	return nil
}
