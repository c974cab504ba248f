package models

type RegistrationFields struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id" gorm:"index;size:36"`
	SlotNumber  *int    `json:"slot_number"`
	GifURL      *string `json:"gif_url"`
}

type Registration struct {
	Base
	PotluckID          string `json:"potluck_id" gorm:"index;size:36"`
	RegistrationFields `gorm:"embedded"`
}

// Slotted reports whether the registration occupies a numbered slot.
func (r Registration) Slotted() bool {
	return r.SlotNumber != nil
}
