package handlers

import (
	"context"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/auth"
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/signup"
	"github.com/gdg-garage/potluck-signup/internal/store"
)

// Exporter writes a potluck's registrations to an external sheet.
type Exporter interface {
	Export(ctx context.Context, potluck models.Potluck, categories []models.Category, registrations []models.Registration) (int, error)
}

// AdminHandler serves the organizer operations. Every operation requires an
// administrator.
type AdminHandler struct {
	store       *store.Store
	engine      *signup.Engine
	exporter    Exporter
	authHandler *auth.AuthHandler
}

// NewAdminHandler builds the admin operations. exporter may be nil when no
// sheet is configured.
func NewAdminHandler(s *store.Store, engine *signup.Engine, exporter Exporter, authHandler *auth.AuthHandler) *AdminHandler {
	return &AdminHandler{store: s, engine: engine, exporter: exporter, authHandler: authHandler}
}

type PotluckBody struct {
	Slug                 string     `json:"slug,omitempty" doc:"URL slug; derived from the English title when empty"`
	TitleEN              string     `json:"title_en" minLength:"1"`
	TitleDA              string     `json:"title_da,omitempty"`
	SubtitleEN           string     `json:"subtitle_en,omitempty"`
	SubtitleDA           string     `json:"subtitle_da,omitempty"`
	FooterEN             string     `json:"footer_en,omitempty"`
	FooterDA             string     `json:"footer_da,omitempty"`
	EventDatetime        *time.Time `json:"event_datetime,omitempty"`
	IsActive             bool       `json:"is_active,omitempty"`
	HeaderBackground     string     `json:"header_background,omitempty"`
	GradientFrom         string     `json:"gradient_from,omitempty"`
	GradientTo           string     `json:"gradient_to,omitempty"`
	HeaderOverlayOpacity float64    `json:"header_overlay_opacity,omitempty" minimum:"0" maximum:"1"`
	FooterEmojis         string     `json:"footer_emojis,omitempty"`
	OrganizerName        string     `json:"organizer_name,omitempty"`
	OrganizerEmail       string     `json:"organizer_email,omitempty"`
	Icon                 string     `json:"icon,omitempty"`
}

func (b PotluckBody) apply(p *models.Potluck) {
	p.Slug = b.Slug
	p.TitleEN = b.TitleEN
	p.TitleDA = b.TitleDA
	p.SubtitleEN = b.SubtitleEN
	p.SubtitleDA = b.SubtitleDA
	p.FooterEN = b.FooterEN
	p.FooterDA = b.FooterDA
	p.EventDatetime = b.EventDatetime
	p.IsActive = b.IsActive
	p.HeaderBackground = b.HeaderBackground
	p.GradientFrom = b.GradientFrom
	p.GradientTo = b.GradientTo
	p.HeaderOverlayOpacity = b.HeaderOverlayOpacity
	p.FooterEmojis = b.FooterEmojis
	p.OrganizerName = b.OrganizerName
	p.OrganizerEmail = b.OrganizerEmail
	p.Icon = b.Icon
}

type ListPotlucksRequest struct {
	auth.AuthInput
}

type ListPotlucksResponse struct {
	Body []models.Potluck
}

func (h *AdminHandler) HandleListPotlucks(ctx context.Context, input *ListPotlucksRequest) (*ListPotlucksResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	potlucks, err := h.store.ListPotlucks(ctx)
	if err != nil {
		return nil, apiError(err, "Failed to list potlucks")
	}
	return &ListPotlucksResponse{Body: potlucks}, nil
}

type CreatePotluckRequest struct {
	auth.AuthInput
	Body PotluckBody
}

type PotluckIDRequest struct {
	auth.AuthInput
	ID string `path:"id" doc:"Potluck id"`
}

type UpdatePotluckRequest struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Potluck id"`
	Body PotluckBody
}

func (h *AdminHandler) HandleCreatePotluck(ctx context.Context, input *CreatePotluckRequest) (*PotluckResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var potluck models.Potluck
	input.Body.apply(&potluck)
	if err := h.store.CreatePotluck(ctx, &potluck); err != nil {
		return nil, apiError(err, "Failed to create potluck")
	}
	return &PotluckResponse{Body: potluck}, nil
}

func (h *AdminHandler) HandleGetPotluck(ctx context.Context, input *PotluckIDRequest) (*PotluckResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	potluck, err := h.store.GetPotluck(ctx, input.ID)
	if err != nil {
		return nil, apiError(err, "Potluck not found")
	}
	return &PotluckResponse{Body: *potluck}, nil
}

func (h *AdminHandler) HandleUpdatePotluck(ctx context.Context, input *UpdatePotluckRequest) (*PotluckResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	potluck := models.Potluck{}
	potluck.ID = input.ID
	input.Body.apply(&potluck)
	if potluck.Slug == "" {
		potluck.Slug = potluck.TitleEN
	}
	if err := h.store.UpdatePotluck(ctx, &potluck); err != nil {
		return nil, apiError(err, "Failed to update potluck")
	}
	return &PotluckResponse{Body: potluck}, nil
}

func (h *AdminHandler) HandleDeletePotluck(ctx context.Context, input *PotluckIDRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	if err := h.store.DeletePotluck(ctx, input.ID); err != nil {
		return nil, apiError(err, "Failed to delete potluck")
	}
	return nil, nil
}

type CategoryBody struct {
	Key           string `json:"key,omitempty" doc:"Storage key; derived from the English title when empty. Ignored on update."`
	TitleEN       string `json:"title_en" minLength:"1"`
	TitleDA       string `json:"title_da,omitempty"`
	SingularEN    string `json:"singular_en,omitempty"`
	SingularDA    string `json:"singular_da,omitempty"`
	PlaceholderEN string `json:"placeholder_en,omitempty"`
	PlaceholderDA string `json:"placeholder_da,omitempty"`
	Icon          string `json:"icon,omitempty"`
	ColorClass    string `json:"color_class,omitempty"`
	Slots         int    `json:"slots" minimum:"0" doc:"Default number of slots"`
	Unbounded     bool   `json:"unbounded,omitempty" doc:"Plain item list without slots"`
}

func (b CategoryBody) category() models.Category {
	return models.Category{
		Key: b.Key,
		CategoryText: models.CategoryText{
			TitleEN:       b.TitleEN,
			TitleDA:       b.TitleDA,
			SingularEN:    b.SingularEN,
			SingularDA:    b.SingularDA,
			PlaceholderEN: b.PlaceholderEN,
			PlaceholderDA: b.PlaceholderDA,
		},
		Icon:       b.Icon,
		ColorClass: b.ColorClass,
		Slots:      b.Slots,
		Unbounded:  b.Unbounded,
	}
}

type ListCategoriesRequest struct {
	auth.AuthInput
}

type ListCategoriesResponse struct {
	Body []models.Category
}

type CategoryRequest struct {
	auth.AuthInput
	Body CategoryBody
}

type UpdateCategoryRequest struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Category id"`
	Body CategoryBody
}

type CategoryIDRequest struct {
	auth.AuthInput
	ID string `path:"id" doc:"Category id"`
}

type CategoryResponse struct {
	Body models.Category
}

func (h *AdminHandler) HandleListCategories(ctx context.Context, input *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		return nil, apiError(err, "Failed to list categories")
	}
	return &ListCategoriesResponse{Body: categories}, nil
}

func (h *AdminHandler) HandleCreateCategory(ctx context.Context, input *CategoryRequest) (*CategoryResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	category := input.Body.category()
	if err := h.store.CreateCategory(ctx, &category); err != nil {
		return nil, apiError(err, "Failed to create category")
	}
	return &CategoryResponse{Body: category}, nil
}

func (h *AdminHandler) HandleUpdateCategory(ctx context.Context, input *UpdateCategoryRequest) (*CategoryResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	category := input.Body.category()
	category.ID = input.ID
	if err := h.store.UpdateCategory(ctx, &category); err != nil {
		return nil, apiError(err, "Failed to update category")
	}
	return &CategoryResponse{Body: category}, nil
}

func (h *AdminHandler) HandleDeleteCategory(ctx context.Context, input *CategoryIDRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	if err := h.store.DeleteCategory(ctx, input.ID); err != nil {
		return nil, apiError(err, "Failed to delete category")
	}
	return nil, nil
}
