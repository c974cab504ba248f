package handlers

import (
	"context"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/auth"
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/store"
	"github.com/sirupsen/logrus"
)

// APIKeyHandler manages the long-lived keys administrators use for scripted
// access through the X-API-KEY header.
type APIKeyHandler struct {
	store       *store.Store
	authHandler *auth.AuthHandler
}

func NewAPIKeyHandler(s *store.Store, authHandler *auth.AuthHandler) *APIKeyHandler {
	return &APIKeyHandler{store: s, authHandler: authHandler}
}

type APIKeyResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	// Key is only complete in the response that created it.
	Key        string     `json:"key"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

func apiKeyResponse(k models.APIKey, reveal bool) APIKeyResponse {
	key := k.Token
	if !reveal && len(key) > 4 {
		key = "..." + key[len(key)-4:]
	}
	return APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Key:        key,
		CreatedAt:  k.CreatedAt,
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
	}
}

type CreateAPIKeyInput struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" minLength:"1" maxLength:"100"`
		ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Never expires when omitted"`
	}
}

type CreateAPIKeyOutput struct {
	Body APIKeyResponse
}

func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyInput) (*CreateAPIKeyOutput, error) {
	user, err := h.authHandler.RequireAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	key, err := h.store.CreateAPIKey(ctx, user.ID, input.Body.Name, input.Body.ExpiresAt)
	if err != nil {
		return nil, apiError(err, "Failed to create API key")
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "name": key.Name}).Info("api key created")

	return &CreateAPIKeyOutput{Body: apiKeyResponse(*key, true)}, nil
}

type ListAPIKeysInput struct {
	auth.AuthInput
}

type ListAPIKeysOutput struct {
	Body []APIKeyResponse
}

func (h *APIKeyHandler) HandleList(ctx context.Context, input *ListAPIKeysInput) (*ListAPIKeysOutput, error) {
	user, err := h.authHandler.RequireAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	keys, err := h.store.ListAPIKeys(ctx, user.ID)
	if err != nil {
		return nil, apiError(err, "Failed to list API keys")
	}

	out := &ListAPIKeysOutput{Body: make([]APIKeyResponse, 0, len(keys))}
	for _, k := range keys {
		out.Body = append(out.Body, apiKeyResponse(k, false))
	}
	return out, nil
}

type DeleteAPIKeyInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *DeleteAPIKeyInput) (*struct{}, error) {
	user, err := h.authHandler.RequireAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := h.store.DeleteAPIKey(ctx, user.ID, input.ID); err != nil {
		return nil, apiError(err, "API key not found")
	}
	return nil, nil
}
