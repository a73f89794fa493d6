package model

import "time"

const (
	CampaignStatusDraft   = "draft"
	CampaignStatusPending = "pending"
	CampaignStatusSent    = "sent"
)

// Campaign is one dispatch of a newsletter's content to a chosen set of
// subscribers. Status and SentAt are descriptive metadata supplied by the
// client; nothing here triggers actual delivery.
type Campaign struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Subject      string     `json:"subject" gorm:"size:255;not null"`
	Content      string     `json:"content" gorm:"type:text;not null"`
	NewsletterID uint       `json:"newsletter_id" gorm:"index;not null"`
	UserID       uint       `json:"user_id" gorm:"index;not null"`
	Status       string     `json:"status" gorm:"size:20;not null;default:'draft'"`
	SentAt       *time.Time `json:"sent_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
