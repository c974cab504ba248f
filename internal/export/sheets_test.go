package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValues struct {
	cleared  []string
	updated  map[string][][]interface{}
	clearErr error
}

func (f *fakeValues) Clear(_ context.Context, rangeA1 string) error {
	f.cleared = append(f.cleared, rangeA1)
	return f.clearErr
}

func (f *fakeValues) Update(_ context.Context, rangeA1 string, rows [][]interface{}) error {
	if f.updated == nil {
		f.updated = map[string][][]interface{}{}
	}
	f.updated[rangeA1] = rows
	return nil
}

func registration(id, categoryID, name string, slot int) models.Registration {
	r := models.Registration{}
	r.ID = id
	r.CategoryID = categoryID
	r.Name = name
	r.Description = name + "'s dish"
	r.CreatedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if slot > 0 {
		r.SlotNumber = &slot
	}
	return r
}

func categories() []models.Category {
	mains := models.Category{CategoryText: models.CategoryText{TitleEN: "Main Dishes"}}
	mains.ID = "main"
	extra := models.Category{CategoryText: models.CategoryText{TitleEN: "Additional Items"}, Unbounded: true}
	extra.ID = "extra"
	return []models.Category{mains, extra}
}

func TestRows(t *testing.T) {
	rows := Rows(categories(), []models.Registration{
		registration("3", "extra", "Cleo", 0),
		registration("2", "main", "Bo", 3),
		registration("1", "main", "Ann", 1),
		registration("9", "unbound", "Ghost", 1),
	})

	require.Len(t, rows, 4)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, []interface{}{"Main Dishes", "1", "Ann", "Ann's dish", "", "2025-06-01T10:00:00Z"}, rows[1])
	assert.Equal(t, "Bo", rows[2][2])
	assert.Equal(t, []interface{}{"Additional Items", "", "Cleo", "Cleo's dish", "", "2025-06-01T10:00:00Z"}, rows[3])
}

func TestExport(t *testing.T) {
	fake := &fakeValues{}
	e := &SheetsExporter{values: fake, tab: "Registrations"}

	n, err := e.Export(context.Background(), models.Potluck{Slug: "summer"}, categories(), []models.Registration{
		registration("1", "main", "Ann", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Registrations!A:Z"}, fake.cleared)
	assert.Len(t, fake.updated["Registrations!A1"], 2)
}

func TestExport_ClearFails(t *testing.T) {
	fake := &fakeValues{clearErr: errors.New("quota")}
	e := &SheetsExporter{values: fake, tab: "Registrations"}

	_, err := e.Export(context.Background(), models.Potluck{}, categories(), nil)
	assert.ErrorContains(t, err, "quota")
	assert.Empty(t, fake.updated)
}

func TestNewSheetsExporter_Unconfigured(t *testing.T) {
	_, err := NewSheetsExporter(context.Background(), "", "", "Registrations")
	assert.Error(t, err)
}
