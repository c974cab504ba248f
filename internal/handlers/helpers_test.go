package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/potluck-signup/internal/auth"
	"github.com/gdg-garage/potluck-signup/internal/config"
	"github.com/gdg-garage/potluck-signup/internal/database"
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/realtime"
	"github.com/gdg-garage/potluck-signup/internal/signup"
	"github.com/gdg-garage/potluck-signup/internal/store"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	store  *store.Store
	engine *signup.Engine
	hub    *realtime.Hub
	auth   *auth.AuthHandler

	potluck    models.Potluck
	mains      models.Category
	additional models.Category

	adminCookie string
	guestCookie string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	f := &fixture{db: db, hub: realtime.NewHub()}
	f.store = store.New(db, store.WithRetry(store.NewRetryPolicy(1, 0)))
	f.engine = signup.NewEngine(f.store, signup.WithPublisher(f.hub))
	f.auth = auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db, nil)

	ctx := context.Background()
	f.potluck = models.Potluck{TitleEN: "Summer Potluck", IsActive: true}
	if err := f.store.CreatePotluck(ctx, &f.potluck); err != nil {
		t.Fatalf("failed to create potluck: %v", err)
	}

	f.mains = models.Category{CategoryText: models.CategoryText{TitleEN: "Main Dishes"}, Slots: 2}
	f.additional = models.Category{CategoryText: models.CategoryText{TitleEN: "Additional Items"}, Unbounded: true}
	for _, c := range []*models.Category{&f.mains, &f.additional} {
		if err := f.store.CreateCategory(ctx, c); err != nil {
			t.Fatalf("failed to create category: %v", err)
		}
		if err := f.engine.SetCategoryEnabled(ctx, f.potluck.ID, c.ID, true); err != nil {
			t.Fatalf("failed to enable category: %v", err)
		}
	}

	admin := models.User{DiscordID: "admin", Username: "organizer", IsAdmin: true}
	guest := models.User{DiscordID: "guest", Username: "guest"}
	db.Create(&admin)
	db.Create(&guest)

	adminToken, _ := f.auth.GenerateToken(admin.ID)
	guestToken, _ := f.auth.GenerateToken(guest.ID)
	f.adminCookie = "auth_token=" + adminToken
	f.guestCookie = "auth_token=" + guestToken
	return f
}

func (f *fixture) signupHandler() *SignupHandler {
	return NewSignupHandler(f.store, f.engine, nil)
}

func (f *fixture) adminHandler(exporter Exporter) *AdminHandler {
	return NewAdminHandler(f.store, f.engine, exporter, f.auth)
}

func (f *fixture) admin() auth.AuthInput {
	return auth.AuthInput{Cookie: f.adminCookie}
}

func statusOf(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}
	return 0
}

func slotPath(slug, categoryID string, index int) SlotPath {
	return SlotPath{CategoryPath: CategoryPath{Slug: slug, CategoryID: categoryID}, Index: index}
}
