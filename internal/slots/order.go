package slots

import (
	"sort"

	"github.com/gdg-garage/potluck-signup/internal/models"
)

type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// Enabled returns the enabled bindings sorted by sort order.
func Enabled(bindings []models.PotluckCategory) []models.PotluckCategory {
	out := make([]models.PotluckCategory, 0, len(bindings))
	for _, b := range bindings {
		if b.IsEnabled {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// SwapTarget finds the binding of categoryID and its neighbour in direction
// dir among the enabled bindings. ok is false when the category is not
// enabled or already sits at that end of the order.
func SwapTarget(bindings []models.PotluckCategory, categoryID string, dir Direction) (moved, neighbour models.PotluckCategory, ok bool) {
	enabled := Enabled(bindings)
	for i, b := range enabled {
		if b.CategoryID != categoryID {
			continue
		}
		j := i + int(dir)
		if j < 0 || j >= len(enabled) {
			return models.PotluckCategory{}, models.PotluckCategory{}, false
		}
		return b, enabled[j], true
	}
	return models.PotluckCategory{}, models.PotluckCategory{}, false
}

// NextSortOrder is the sort order given to a newly enabled category.
func NextSortOrder(bindings []models.PotluckCategory) int {
	max := -1
	for _, b := range bindings {
		if b.SortOrder > max {
			max = b.SortOrder
		}
	}
	return max + 1
}
