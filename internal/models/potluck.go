package models

import "time"

type Potluck struct {
	Base
	Slug                 string     `json:"slug" gorm:"uniqueIndex;size:128"`
	TitleEN              string     `json:"title_en"`
	TitleDA              string     `json:"title_da"`
	SubtitleEN           string     `json:"subtitle_en"`
	SubtitleDA           string     `json:"subtitle_da"`
	FooterEN             string     `json:"footer_en"`
	FooterDA             string     `json:"footer_da"`
	EventDatetime        *time.Time `json:"event_datetime"`
	IsActive             bool       `json:"is_active"`
	HeaderBackground     string     `json:"header_background"`
	GradientFrom         string     `json:"gradient_from"`
	GradientTo           string     `json:"gradient_to"`
	HeaderOverlayOpacity float64    `json:"header_overlay_opacity"`
	FooterEmojis         string     `json:"footer_emojis"`
	OrganizerName        string     `json:"organizer_name"`
	OrganizerEmail       string     `json:"organizer_email"`
	Icon                 string     `json:"icon"`
}
