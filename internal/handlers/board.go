package handlers

import (
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/signup"
	"github.com/gdg-garage/potluck-signup/internal/slots"
)

type SlotView struct {
	Index        int                  `json:"index"`
	SlotNumber   int                  `json:"slot_number"`
	Registration *models.Registration `json:"registration"`
}

type SectionView struct {
	Category  models.Category       `json:"category"`
	SortOrder int                   `json:"sort_order"`
	Slots     []SlotView            `json:"slots"`
	Items     []models.Registration `json:"items"`
	// AddSlot marks unbounded sections, which always offer a blank card for a new item.
	AddSlot bool `json:"add_slot"`
}

type BoardView struct {
	Potluck       models.Potluck `json:"potluck"`
	Sections      []SectionView  `json:"sections"`
	HasIncomplete bool           `json:"has_incomplete"`
}

func boardView(b *signup.Board) BoardView {
	view := BoardView{
		Potluck:       b.Potluck,
		Sections:      make([]SectionView, 0, len(b.Sections)),
		HasIncomplete: b.HasIncomplete(),
	}
	for _, s := range b.Sections {
		sec := SectionView{
			Category:  s.Category,
			SortOrder: s.Binding.SortOrder,
			Slots:     []SlotView{},
			Items:     []models.Registration{},
			AddSlot:   s.Category.Unbounded,
		}
		for i, r := range s.Slots {
			sec.Slots = append(sec.Slots, SlotView{Index: i, SlotNumber: slots.SlotNumber(i), Registration: r})
		}
		sec.Items = append(sec.Items, s.Items...)
		view.Sections = append(view.Sections, sec)
	}
	return view
}
