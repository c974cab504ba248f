package models

import (
	"gorm.io/gorm"
)

const (
	HistorySaved      = "saved"
	HistoryDeleted    = "deleted"
	HistoryRenumbered = "renumbered"
)

type RegistrationHistory struct {
	gorm.Model
	RegistrationID     string `json:"registration_id" gorm:"index;size:36"`
	PotluckID          string `json:"potluck_id" gorm:"index;size:36"`
	Action             string `json:"action"`
	RegistrationFields `gorm:"embedded"`
}
