package model

import "time"

// CampaignSubscriber joins a campaign to one of its recipients and carries the
// per-pair open state.
type CampaignSubscriber struct {
	CampaignID   uint       `json:"campaign_id" gorm:"primaryKey"`
	SubscriberID uint       `json:"subscriber_id" gorm:"primaryKey"`
	Opened       bool       `json:"opened" gorm:"not null;default:false"`
	OpenedAt     *time.Time `json:"opened_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (CampaignSubscriber) TableName() string {
	return "campaign_subscribers"
}
