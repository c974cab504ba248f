package slots

import "github.com/gdg-garage/potluck-signup/internal/models"

// Items is the list of an unbounded category in storage order.
type Items []models.Registration

// Append adds reg after every existing item.
func (it Items) Append(reg models.Registration) Items {
	return append(it, reg)
}

func (it Items) UpdateAt(index int, reg models.Registration) (Items, error) {
	if index < 0 || index >= len(it) {
		return it, ErrIndexOutOfRange
	}
	it[index] = reg
	return it, nil
}

// RemoveAt splices out the item at index, shifting the following items down by one.
func (it Items) RemoveAt(index int) (Items, error) {
	if index < 0 || index >= len(it) {
		return it, ErrIndexOutOfRange
	}
	return append(it[:index], it[index+1:]...), nil
}

func (it Items) At(index int) (models.Registration, bool) {
	if index < 0 || index >= len(it) {
		return models.Registration{}, false
	}
	return it[index], true
}
