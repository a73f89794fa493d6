package model

import "time"

// Subscriber is a contact on an owner's list. Email is unique across the whole
// table, not just within one owner's scope.
type Subscriber struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      string    `json:"name" gorm:"size:255"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
