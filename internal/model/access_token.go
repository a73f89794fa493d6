package model

import "time"

// AccessToken is the server-side record of an issued bearer token. A token is
// only honored while its row exists, so deleting a user's rows revokes every
// active session at once.
type AccessToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	TokenID   string    `json:"token_id" gorm:"uniqueIndex;size:36;not null"`
	Name      string    `json:"name" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
}
