// Package export copies a potluck's registrations into a Google Sheets tab.
package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

var header = []interface{}{"Category", "Slot", "Name", "Description", "Image", "Signed up"}

type valueWriter interface {
	Clear(ctx context.Context, rangeA1 string) error
	Update(ctx context.Context, rangeA1 string, rows [][]interface{}) error
}

type SheetsExporter struct {
	values valueWriter
	tab    string
}

// NewSheetsExporter authenticates with a service account credentials file.
func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID, tab string) (*SheetsExporter, error) {
	if credentialsFile == "" || spreadsheetID == "" {
		return nil, fmt.Errorf("google sheets export not configured")
	}

	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		values: &sheetValues{srv: srv, spreadsheetID: spreadsheetID},
		tab:    tab,
	}, nil
}

// Export replaces the content of the tab with the potluck's registrations
// and returns the number of registration rows written.
func (e *SheetsExporter) Export(ctx context.Context, potluck models.Potluck, categories []models.Category, registrations []models.Registration) (int, error) {
	rows := Rows(categories, registrations)

	if err := e.values.Clear(ctx, e.tab+"!A:Z"); err != nil {
		return 0, fmt.Errorf("clear sheet: %w", err)
	}
	if err := e.values.Update(ctx, e.tab+"!A1", rows); err != nil {
		return 0, fmt.Errorf("write sheet: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"potluck": potluck.Slug,
		"rows":    len(rows) - 1,
		"tab":     e.tab,
	}).Info("exported registrations to google sheets")
	return len(rows) - 1, nil
}

// Rows lays out a header row and one row per registration, grouped by
// category in the given order. Slotted registrations are sorted by slot.
func Rows(categories []models.Category, registrations []models.Registration) [][]interface{} {
	byCategory := make(map[string][]models.Registration)
	for _, r := range registrations {
		byCategory[r.CategoryID] = append(byCategory[r.CategoryID], r)
	}

	rows := [][]interface{}{header}
	for _, c := range categories {
		regs := byCategory[c.ID]
		sort.SliceStable(regs, func(i, j int) bool {
			a, b := regs[i].SlotNumber, regs[j].SlotNumber
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return *a < *b
		})

		for _, r := range regs {
			slot := ""
			if r.SlotNumber != nil {
				slot = fmt.Sprint(*r.SlotNumber)
			}
			image := ""
			if r.GifURL != nil {
				image = *r.GifURL
			}
			rows = append(rows, []interface{}{
				c.TitleEN, slot, r.Name, r.Description, image, r.CreatedAt.Format(time.RFC3339),
			})
		}
	}
	return rows
}

type sheetValues struct {
	srv           *sheets.Service
	spreadsheetID string
}

func (v *sheetValues) Clear(ctx context.Context, rangeA1 string) error {
	_, err := v.srv.Spreadsheets.Values.Clear(v.spreadsheetID, rangeA1, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (v *sheetValues) Update(ctx context.Context, rangeA1 string, rows [][]interface{}) error {
	_, err := v.srv.Spreadsheets.Values.Update(v.spreadsheetID, rangeA1, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
