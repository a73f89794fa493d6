package repository

import (
	"errors"

	"gorm.io/gorm"

	"mailmaster_backend/internal/apperror"
	"mailmaster_backend/internal/model"
)

type SubscriberRepository struct {
	DB *gorm.DB
}

func (r *SubscriberRepository) ListByOwner(ownerID uint) ([]model.Subscriber, error) {
	subscribers := []model.Subscriber{}
	err := r.DB.Where("user_id = ?", ownerID).Order("id").Find(&subscribers).Error
	return subscribers, err
}

func (r *SubscriberRepository) Create(subscriber *model.Subscriber) error {
	return r.DB.Create(subscriber).Error
}

func (r *SubscriberRepository) GetByOwner(ownerID, id uint) (*model.Subscriber, error) {
	var subscriber model.Subscriber
	err := r.DB.Where("id = ? AND user_id = ?", id, ownerID).First(&subscriber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &subscriber, nil
}

func (r *SubscriberRepository) Update(subscriber *model.Subscriber) error {
	return r.DB.Save(subscriber).Error
}

// Delete removes the subscriber together with its campaign association rows.
func (r *SubscriberRepository) Delete(ownerID, id uint) error {
	subscriber, err := r.GetByOwner(ownerID, id)
	if err != nil {
		return err
	}

	tx := r.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Where("subscriber_id = ?", subscriber.ID).Delete(&model.CampaignSubscriber{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&model.Subscriber{}, subscriber.ID).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// EmailTaken checks uniqueness across every owner's subscribers. excludeID
// lets an update keep the record's own email without tripping the check.
func (r *SubscriberRepository) EmailTaken(email string, excludeID uint) (bool, error) {
	var count int64
	q := r.DB.Model(&model.Subscriber{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// AllExist reports whether every id references a subscriber row.
func (r *SubscriberRepository) AllExist(ids []uint) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}

	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var count int64
	if err := r.DB.Model(&model.Subscriber{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return false, err
	}
	return count == int64(len(unique)), nil
}
