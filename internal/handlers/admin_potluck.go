package handlers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/potluck-signup/internal/auth"
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/slots"
)

type BindingsResponse struct {
	Body []models.PotluckCategory
}

func (h *AdminHandler) HandleListBindings(ctx context.Context, input *PotluckIDRequest) (*BindingsResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	bindings, err := h.store.ListBindings(ctx, input.ID, false)
	if err != nil {
		return nil, apiError(err, "Failed to list categories")
	}
	return &BindingsResponse{Body: bindings}, nil
}

type SetBindingRequest struct {
	auth.AuthInput
	ID         string `path:"id" doc:"Potluck id"`
	CategoryID string `path:"categoryID" doc:"Category id"`
	Body       struct {
		Enabled bool `json:"enabled"`
	}
}

func (h *AdminHandler) HandleSetBinding(ctx context.Context, input *SetBindingRequest) (*BindingsResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	if _, err := h.store.GetPotluck(ctx, input.ID); err != nil {
		return nil, apiError(err, "Potluck not found")
	}
	if _, err := h.store.GetCategory(ctx, input.CategoryID); err != nil {
		return nil, apiError(err, "Category not found")
	}

	if err := h.engine.SetCategoryEnabled(ctx, input.ID, input.CategoryID, input.Body.Enabled); err != nil {
		return nil, apiError(err, "Failed to update category")
	}

	bindings, err := h.store.ListBindings(ctx, input.ID, false)
	if err != nil {
		return nil, apiError(err, "Failed to list categories")
	}
	return &BindingsResponse{Body: bindings}, nil
}

type MoveBindingRequest struct {
	auth.AuthInput
	ID         string `path:"id" doc:"Potluck id"`
	CategoryID string `path:"categoryID" doc:"Category id"`
	Body       struct {
		Direction string `json:"direction" enum:"up,down"`
	}
}

type MoveBindingResponse struct {
	Body struct {
		Moved    bool                     `json:"moved" doc:"False when the category already sits at that end"`
		Bindings []models.PotluckCategory `json:"bindings"`
	}
}

func (h *AdminHandler) HandleMoveBinding(ctx context.Context, input *MoveBindingRequest) (*MoveBindingResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	dir := slots.Down
	if input.Body.Direction == "up" {
		dir = slots.Up
	}
	moved, err := h.engine.MoveCategory(ctx, input.ID, input.CategoryID, dir)
	if err != nil {
		return nil, apiError(err, "Failed to move category")
	}

	bindings, err := h.store.ListBindings(ctx, input.ID, false)
	if err != nil {
		return nil, apiError(err, "Failed to list categories")
	}

	res := &MoveBindingResponse{}
	res.Body.Moved = moved
	res.Body.Bindings = bindings
	return res, nil
}

type ListRegistrationsRequest struct {
	auth.AuthInput
	ID    string `path:"id" doc:"Potluck id"`
	Sort  string `query:"sort" enum:"date,category,name,description" default:"date"`
	Order string `query:"order" enum:"asc,desc" default:"asc"`
}

type AdminRegistration struct {
	models.Registration
	CategoryKey   string `json:"category_key"`
	CategoryTitle string `json:"category_title"`
}

type ListRegistrationsResponse struct {
	Body []AdminRegistration
}

func (h *AdminHandler) HandleListRegistrations(ctx context.Context, input *ListRegistrationsRequest) (*ListRegistrationsResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	regs, err := h.store.ListRegistrations(ctx, input.ID)
	if err != nil {
		return nil, apiError(err, "Failed to list registrations")
	}
	bindings, err := h.store.ListBindings(ctx, input.ID, false)
	if err != nil {
		return nil, apiError(err, "Failed to list categories")
	}

	categories := make(map[string]models.PotluckCategory, len(bindings))
	for _, b := range bindings {
		categories[b.CategoryID] = b
	}

	out := make([]AdminRegistration, 0, len(regs))
	for _, r := range regs {
		b := categories[r.CategoryID]
		out = append(out, AdminRegistration{Registration: r, CategoryKey: b.Category.Key, CategoryTitle: b.Category.TitleEN})
	}
	sortRegistrations(out, categories, input.Sort, input.Order == "desc")
	return &ListRegistrationsResponse{Body: out}, nil
}

// sortRegistrations orders the admin list. Registrations of the same
// category keep their slot order when sorted by category.
func sortRegistrations(regs []AdminRegistration, bindings map[string]models.PotluckCategory, by string, desc bool) {
	slotOf := func(r AdminRegistration) int {
		if r.SlotNumber == nil {
			return int(^uint(0) >> 1)
		}
		return *r.SlotNumber
	}

	less := func(a, b AdminRegistration) bool {
		switch by {
		case "category":
			oa, ob := bindings[a.CategoryID].SortOrder, bindings[b.CategoryID].SortOrder
			if oa != ob {
				return oa < ob
			}
			if a.CategoryID != b.CategoryID {
				return a.CategoryID < b.CategoryID
			}
			return slotOf(a) < slotOf(b)
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "description":
			return strings.ToLower(a.Description) < strings.ToLower(b.Description)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(regs, func(i, j int) bool {
		if desc {
			return less(regs[j], regs[i])
		}
		return less(regs[i], regs[j])
	})
}

type DeleteRegistrationRequest struct {
	auth.AuthInput
	ID             string `path:"id" doc:"Potluck id"`
	RegistrationID string `path:"registrationID" doc:"Registration id"`
}

func (h *AdminHandler) HandleDeleteRegistration(ctx context.Context, input *DeleteRegistrationRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	if err := h.engine.DeleteRegistration(ctx, input.ID, input.RegistrationID); err != nil {
		return nil, apiError(err, "Failed to delete registration")
	}
	return nil, nil
}

type ReorderRegistrationsRequest struct {
	auth.AuthInput
	ID         string `path:"id" doc:"Potluck id"`
	CategoryID string `path:"categoryID" doc:"Category id"`
	Body       struct {
		RegistrationIDs []string `json:"registration_ids" doc:"Every slotted registration of the category in the new order"`
	}
}

func (h *AdminHandler) HandleReorderRegistrations(ctx context.Context, input *ReorderRegistrationsRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	if err := h.engine.ReorderRegistrations(ctx, input.ID, input.CategoryID, input.Body.RegistrationIDs); err != nil {
		return nil, apiError(err, "Failed to reorder registrations")
	}
	return nil, nil
}

type HistoryRequest struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Potluck id"`
	Diff bool   `query:"diff" default:"true" doc:"Omit fields unchanged since the registration's previous snapshot"`
}

// HistoryFields are the snapshot values. A nil field is unchanged when the
// history is diffed, except for the nullable fields listed in Changed.
type HistoryFields struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	SlotNumber  *int    `json:"slot_number,omitempty"`
	GifURL      *string `json:"gif_url,omitempty"`
}

type HistoryItem struct {
	ID                 uint          `json:"id"`
	RegistrationID     string        `json:"registration_id"`
	Action             string        `json:"action"`
	CreatedAt          time.Time     `json:"created_at"`
	Changed            []string      `json:"changed"`
	RegistrationFields HistoryFields `json:"registration_fields"`
}

type HistoryResponse struct {
	Body struct {
		History []HistoryItem `json:"history"`
	}
}

func (h *AdminHandler) HandleHistory(ctx context.Context, input *HistoryRequest) (*HistoryResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	history, err := h.store.ListHistory(ctx, input.ID)
	if err != nil {
		return nil, apiError(err, "Failed to fetch history")
	}

	res := &HistoryResponse{}
	res.Body.History = historyItems(history, input.Diff)
	return res, nil
}

// historyItems converts snapshots ordered newest first. With diff every
// snapshot only carries what changed since the previous snapshot of the
// same registration.
func historyItems(history []models.RegistrationHistory, diff bool) []HistoryItem {
	items := make([]HistoryItem, len(history))
	previous := make(map[string]*models.RegistrationFields)

	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		cur := entry.RegistrationFields
		prev := previous[entry.RegistrationID]
		if !diff {
			prev = nil
		}

		item := HistoryItem{
			ID:             entry.ID,
			RegistrationID: entry.RegistrationID,
			Action:         entry.Action,
			CreatedAt:      entry.CreatedAt,
			Changed:        []string{},
		}
		f := &item.RegistrationFields

		if prev == nil || prev.Name != cur.Name {
			f.Name = &cur.Name
			item.Changed = append(item.Changed, "name")
		}
		if prev == nil || prev.Description != cur.Description {
			f.Description = &cur.Description
			item.Changed = append(item.Changed, "description")
		}
		if prev == nil || prev.CategoryID != cur.CategoryID {
			f.CategoryID = &cur.CategoryID
			item.Changed = append(item.Changed, "category_id")
		}
		if prev == nil || !equalPtr(prev.SlotNumber, cur.SlotNumber) {
			f.SlotNumber = cur.SlotNumber
			item.Changed = append(item.Changed, "slot_number")
		}
		if prev == nil || !equalPtr(prev.GifURL, cur.GifURL) {
			f.GifURL = cur.GifURL
			item.Changed = append(item.Changed, "gif_url")
		}

		items[i] = item
		previous[entry.RegistrationID] = &cur
	}
	return items
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type ExportResponse struct {
	Body struct {
		Rows int `json:"rows"`
	}
}

func (h *AdminHandler) HandleExport(ctx context.Context, input *PotluckIDRequest) (*ExportResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	if h.exporter == nil {
		return nil, huma.Error503ServiceUnavailable("Export is not configured")
	}

	potluck, err := h.store.GetPotluck(ctx, input.ID)
	if err != nil {
		return nil, apiError(err, "Potluck not found")
	}
	bindings, err := h.store.ListBindings(ctx, potluck.ID, false)
	if err != nil {
		return nil, apiError(err, "Failed to list categories")
	}
	regs, err := h.store.ListRegistrations(ctx, potluck.ID)
	if err != nil {
		return nil, apiError(err, "Failed to list registrations")
	}

	categories := make([]models.Category, 0, len(bindings))
	for _, b := range slots.Enabled(bindings) {
		categories = append(categories, b.Category)
	}

	rows, err := h.exporter.Export(ctx, *potluck, categories, regs)
	if err != nil {
		return nil, apiError(err, "Failed to export registrations")
	}

	res := &ExportResponse{}
	res.Body.Rows = rows
	return res, nil
}
