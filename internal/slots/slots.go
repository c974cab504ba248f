// Package slots derives the ordered slot list of a category from its stored
// registrations and keeps that list ready for the next sign-up.
//
// Slot numbers are 1-based in storage and on the wire; list indices are
// 0-based. SlotNumber and Index are the only conversions between the two.
package slots

import (
	"errors"
	"sort"

	"github.com/gdg-garage/potluck-signup/internal/models"
)

var ErrIndexOutOfRange = errors.New("slot index out of range")

// List is the working slot list of a slotted category. A nil entry is an empty slot.
type List []*models.Registration

// Conflict describes two registrations stored with the same slot number.
type Conflict struct {
	SlotNumber int
	Kept       models.Registration
	Dropped    models.Registration
}

func SlotNumber(index int) int { return index + 1 }

func Index(slotNumber int) int { return slotNumber - 1 }

// Build places every slotted registration at its slot and appends an empty
// slot when the last one is taken.
func Build(defaultSlots int, registrations []models.Registration) List {
	list, _ := BuildWithConflicts(defaultSlots, registrations)
	return list
}

// BuildWithConflicts is Build that also reports duplicate slot numbers. The
// registration created first keeps the slot; ties on creation time go to the
// lower id.
func BuildWithConflicts(defaultSlots int, registrations []models.Registration) (List, []Conflict) {
	if defaultSlots < 0 {
		defaultSlots = 0
	}

	size := defaultSlots
	for _, r := range registrations {
		if r.SlotNumber != nil && *r.SlotNumber > size {
			size = *r.SlotNumber
		}
	}

	list := make(List, size)
	var conflicts []Conflict
	for i := range registrations {
		r := registrations[i]
		if r.SlotNumber == nil || *r.SlotNumber < 1 {
			continue
		}
		idx := Index(*r.SlotNumber)
		current := list[idx]
		if current == nil {
			list[idx] = &r
			continue
		}
		if createdBefore(r, *current) {
			conflicts = append(conflicts, Conflict{SlotNumber: *r.SlotNumber, Kept: r, Dropped: *current})
			list[idx] = &r
		} else {
			conflicts = append(conflicts, Conflict{SlotNumber: *r.SlotNumber, Kept: *current, Dropped: r})
		}
	}

	return list.EnsureTrailingEmpty(), conflicts
}

// EnsureTrailingEmpty appends an empty slot when the list is empty or its
// last slot is occupied.
func (l List) EnsureTrailingEmpty() List {
	if len(l) == 0 || l[len(l)-1] != nil {
		return append(l, nil)
	}
	return l
}

// TrimTrailingEmpty drops surplus trailing empty slots while the list is
// longer than defaultSlots. The final empty slot is never dropped.
func (l List) TrimTrailingEmpty(defaultSlots int) List {
	for len(l) > defaultSlots && len(l) >= 2 && l[len(l)-1] == nil && l[len(l)-2] == nil {
		l = l[:len(l)-1]
	}
	return l
}

// Set stores reg at index, growing the list with empty slots when index is
// past the end.
func (l List) Set(index int, reg *models.Registration) List {
	for len(l) <= index {
		l = append(l, nil)
	}
	l[index] = reg
	return l
}

// Clear empties the slot at index. Out of range indices are ignored.
func (l List) Clear(index int) List {
	if index >= 0 && index < len(l) {
		l[index] = nil
	}
	return l
}

// At returns the occupant of index, or nil for an empty or missing slot.
func (l List) At(index int) *models.Registration {
	if index < 0 || index >= len(l) {
		return nil
	}
	return l[index]
}

// Filled counts the occupied slots.
func (l List) Filled() int {
	n := 0
	for _, r := range l {
		if r != nil {
			n++
		}
	}
	return n
}

// Renumber is a slot number change produced by Reindex.
type Renumber struct {
	ID   string
	From int
	To   int
}

// Reindex numbers the slotted registrations 1..n keeping their previous
// relative order, and returns only the ones whose number changes.
func Reindex(registrations []models.Registration) []Renumber {
	slotted := make([]models.Registration, 0, len(registrations))
	for _, r := range registrations {
		if r.SlotNumber != nil {
			slotted = append(slotted, r)
		}
	}

	sort.SliceStable(slotted, func(i, j int) bool {
		a, b := slotted[i], slotted[j]
		if *a.SlotNumber != *b.SlotNumber {
			return *a.SlotNumber < *b.SlotNumber
		}
		return createdBefore(a, b)
	})

	var changes []Renumber
	for i, r := range slotted {
		want := SlotNumber(i)
		if *r.SlotNumber != want {
			changes = append(changes, Renumber{ID: r.ID, From: *r.SlotNumber, To: want})
		}
	}
	return changes
}

func createdBefore(a, b models.Registration) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
