package handlers

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/signup"
	"github.com/gdg-garage/potluck-signup/internal/store"
)

// ItemExtractor reduces a free-text description to a short item name.
type ItemExtractor interface {
	ExtractItem(ctx context.Context, description string) string
}

// SignupHandler serves the guest facing sign-up board.
type SignupHandler struct {
	store     *store.Store
	engine    *signup.Engine
	extractor ItemExtractor
}

func NewSignupHandler(s *store.Store, engine *signup.Engine, extractor ItemExtractor) *SignupHandler {
	return &SignupHandler{store: s, engine: engine, extractor: extractor}
}

type PotluckRequest struct {
	Slug string `path:"slug" doc:"Potluck slug"`
}

type PotluckResponse struct {
	Body models.Potluck
}

func (h *SignupHandler) potluck(ctx context.Context, slug string) (*models.Potluck, error) {
	potluck, err := h.store.GetPotluckBySlug(ctx, slug, true)
	if err != nil {
		return nil, apiError(err, "Potluck not found")
	}
	return potluck, nil
}

func (h *SignupHandler) board(ctx context.Context, slug string) (*signup.Board, error) {
	potluck, err := h.potluck(ctx, slug)
	if err != nil {
		return nil, err
	}
	board, err := h.engine.Load(ctx, *potluck)
	if err != nil {
		return nil, apiError(err, "Failed to load board")
	}
	return board, nil
}

func (h *SignupHandler) HandleGetPotluck(ctx context.Context, input *PotluckRequest) (*PotluckResponse, error) {
	potluck, err := h.potluck(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &PotluckResponse{Body: *potluck}, nil
}

type BoardResponse struct {
	Body BoardView
}

func (h *SignupHandler) HandleBoard(ctx context.Context, input *PotluckRequest) (*BoardResponse, error) {
	board, err := h.board(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &BoardResponse{Body: boardView(board)}, nil
}

type EntryBody struct {
	ID          string `json:"id,omitempty" required:"false" doc:"Registration being edited; empty for a new sign-up"`
	Name        string `json:"name" maxLength:"200" doc:"Guest name"`
	Description string `json:"description" maxLength:"500" doc:"What the guest brings"`
}

func (b EntryBody) entry() signup.Entry {
	return signup.Entry{ID: b.ID, Name: b.Name, Description: b.Description}
}

type CategoryPath struct {
	Slug       string `path:"slug" doc:"Potluck slug"`
	CategoryID string `path:"categoryID" doc:"Category id"`
}

type SlotPath struct {
	CategoryPath
	Index int `path:"index" minimum:"0" doc:"Zero-based card index"`
}

type SaveSlotRequest struct {
	SlotPath
	Body EntryBody
}

type ClearSlotRequest struct {
	SlotPath
}

type AppendItemRequest struct {
	CategoryPath
	Body EntryBody
}

type SignupResponse struct {
	Body struct {
		// Registration is nil when the write removed the card's registration.
		Registration *models.Registration `json:"registration"`
		Board        BoardView            `json:"board"`
	}
}

func signupResponse(reg *models.Registration, board *signup.Board) *SignupResponse {
	res := &SignupResponse{}
	res.Body.Registration = reg
	res.Body.Board = boardView(board)
	return res
}

func (h *SignupHandler) HandleSaveSlot(ctx context.Context, input *SaveSlotRequest) (*SignupResponse, error) {
	board, err := h.board(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	reg, err := board.SaveSlot(ctx, input.CategoryID, input.Index, input.Body.entry())
	if err != nil {
		return nil, apiError(err, "Failed to save sign-up")
	}
	return signupResponse(reg, board), nil
}

func (h *SignupHandler) HandleClearSlot(ctx context.Context, input *ClearSlotRequest) (*SignupResponse, error) {
	board, err := h.board(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	if err := board.ClearSlot(ctx, input.CategoryID, input.Index); err != nil {
		return nil, apiError(err, "Failed to clear slot")
	}
	return signupResponse(nil, board), nil
}

func (h *SignupHandler) HandleAppendItem(ctx context.Context, input *AppendItemRequest) (*SignupResponse, error) {
	board, err := h.board(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	reg, err := board.Append(ctx, input.CategoryID, input.Body.entry())
	if err != nil {
		return nil, apiError(err, "Failed to add item")
	}
	return signupResponse(reg, board), nil
}

type UpdateItemRequest struct {
	SlotPath
	Body EntryBody
}

func (h *SignupHandler) HandleUpdateItem(ctx context.Context, input *UpdateItemRequest) (*SignupResponse, error) {
	board, err := h.board(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	reg, err := board.UpdateAt(ctx, input.CategoryID, input.Index, input.Body.entry())
	if err != nil {
		return nil, apiError(err, "Failed to update item")
	}
	return signupResponse(reg, board), nil
}

type RemoveItemRequest struct {
	SlotPath
}

func (h *SignupHandler) HandleRemoveItem(ctx context.Context, input *RemoveItemRequest) (*SignupResponse, error) {
	board, err := h.board(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	if err := board.RemoveAt(ctx, input.CategoryID, input.Index); err != nil {
		return nil, apiError(err, "Failed to remove item")
	}
	return signupResponse(nil, board), nil
}

type ExtractItemRequest struct {
	Body struct {
		Description string `json:"description" maxLength:"500"`
	}
}

type ExtractItemResponse struct {
	Body struct {
		ExtractedItem string `json:"extracted_item"`
	}
}

func (h *SignupHandler) HandleExtractItem(ctx context.Context, input *ExtractItemRequest) (*ExtractItemResponse, error) {
	description := strings.TrimSpace(input.Body.Description)
	if description == "" {
		return nil, huma.Error400BadRequest("Description is required")
	}

	res := &ExtractItemResponse{}
	res.Body.ExtractedItem = description
	if h.extractor != nil {
		res.Body.ExtractedItem = h.extractor.ExtractItem(ctx, description)
	}
	return res, nil
}
