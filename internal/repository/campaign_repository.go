package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"mailmaster_backend/internal/apperror"
	"mailmaster_backend/internal/model"
)

// SubscriberWithState is a campaign's view of one recipient: the subscriber's
// contact fields plus the per-pair open state from the association row.
type SubscriberWithState struct {
	ID       uint       `json:"id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Opened   bool       `json:"opened"`
	OpenedAt *time.Time `json:"opened_at"`
}

// CampaignWithSubscribers is the fully materialized read shape; no lazy
// relation loading happens anywhere.
type CampaignWithSubscribers struct {
	model.Campaign
	Subscribers []SubscriberWithState `json:"subscribers"`
}

type CampaignRepository struct {
	DB *gorm.DB
}

func (r *CampaignRepository) ListByOwner(ownerID uint, includeSubscribers bool) ([]CampaignWithSubscribers, error) {
	campaigns := []model.Campaign{}
	if err := r.DB.Where("user_id = ?", ownerID).Order("id").Find(&campaigns).Error; err != nil {
		return nil, err
	}

	out := make([]CampaignWithSubscribers, 0, len(campaigns))
	for _, campaign := range campaigns {
		row := CampaignWithSubscribers{Campaign: campaign, Subscribers: []SubscriberWithState{}}
		if includeSubscribers {
			subscribers, err := r.subscribersFor(campaign.ID)
			if err != nil {
				return nil, err
			}
			row.Subscribers = subscribers
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *CampaignRepository) GetByOwner(ownerID, id uint, includeSubscribers bool) (*CampaignWithSubscribers, error) {
	var campaign model.Campaign
	err := r.DB.Where("id = ? AND user_id = ?", id, ownerID).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	row := CampaignWithSubscribers{Campaign: campaign, Subscribers: []SubscriberWithState{}}
	if includeSubscribers {
		subscribers, err := r.subscribersFor(campaign.ID)
		if err != nil {
			return nil, err
		}
		row.Subscribers = subscribers
	}
	return &row, nil
}

// Create stores the campaign and, when subscriberIDs is non-nil, replaces its
// association set in the same transaction. A nil slice leaves the set alone;
// an empty one clears it.
func (r *CampaignRepository) Create(campaign *model.Campaign, subscriberIDs []uint) error {
	tx := r.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Create(campaign).Error; err != nil {
		tx.Rollback()
		return err
	}
	if subscriberIDs != nil {
		if err := syncSubscribers(tx, campaign.ID, subscriberIDs); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// Update writes the campaign fields and optionally replaces the association
// set, both inside one transaction so the two never diverge.
func (r *CampaignRepository) Update(campaign *model.Campaign, subscriberIDs []uint) error {
	tx := r.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Save(campaign).Error; err != nil {
		tx.Rollback()
		return err
	}
	if subscriberIDs != nil {
		if err := syncSubscribers(tx, campaign.ID, subscriberIDs); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// Delete removes the campaign and its association rows together.
func (r *CampaignRepository) Delete(ownerID, id uint) error {
	campaign, err := r.GetByOwner(ownerID, id, false)
	if err != nil {
		return err
	}

	tx := r.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Where("campaign_id = ?", campaign.ID).Delete(&model.CampaignSubscriber{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&model.Campaign{}, campaign.ID).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// MarkOpened stamps the pair's first open and is a no-op on every later hit,
// so opened_at always records the earliest open. Pairs that don't exist are
// silently ignored; a tracking URL must not reveal whether data exists.
func (r *CampaignRepository) MarkOpened(campaignID, subscriberID uint, openedAt time.Time) error {
	return r.DB.Model(&model.CampaignSubscriber{}).
		Where("campaign_id = ? AND subscriber_id = ? AND opened = ?", campaignID, subscriberID, false).
		Updates(map[string]interface{}{"opened": true, "opened_at": openedAt}).Error
}

// syncSubscribers makes the campaign's membership exactly ids: pairs outside
// the set are removed, new pairs start unopened, and pairs present before and
// after keep their opened/opened_at state untouched.
func syncSubscribers(tx *gorm.DB, campaignID uint, ids []uint) error {
	if len(ids) == 0 {
		return tx.Where("campaign_id = ?", campaignID).Delete(&model.CampaignSubscriber{}).Error
	}

	if err := tx.Where("campaign_id = ? AND subscriber_id NOT IN ?", campaignID, ids).
		Delete(&model.CampaignSubscriber{}).Error; err != nil {
		return err
	}

	existing := []model.CampaignSubscriber{}
	if err := tx.Where("campaign_id = ?", campaignID).Find(&existing).Error; err != nil {
		return err
	}
	have := make(map[uint]struct{}, len(existing))
	for _, pair := range existing {
		have[pair.SubscriberID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := have[id]; ok {
			continue
		}
		pair := model.CampaignSubscriber{CampaignID: campaignID, SubscriberID: id}
		if err := tx.Create(&pair).Error; err != nil {
			return err
		}
		have[id] = struct{}{}
	}
	return nil
}

func (r *CampaignRepository) subscribersFor(campaignID uint) ([]SubscriberWithState, error) {
	subscribers := []SubscriberWithState{}
	err := r.DB.Table("campaign_subscribers").
		Select("subscribers.id, subscribers.email, subscribers.name, campaign_subscribers.opened, campaign_subscribers.opened_at").
		Joins("JOIN subscribers ON subscribers.id = campaign_subscribers.subscriber_id").
		Where("campaign_subscribers.campaign_id = ?", campaignID).
		Order("subscribers.id").
		Scan(&subscribers).Error
	return subscribers, err
}
