package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an organizer who signed in with Discord. Guests never have one.
type User struct {
	gorm.Model
	DiscordID   string     `json:"discord_id" gorm:"uniqueIndex;size:32"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Avatar      string     `json:"avatar"`
	IsAdmin     bool       `json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at"`
}
