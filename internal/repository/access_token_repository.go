package repository

import (
	"gorm.io/gorm"

	"mailmaster_backend/internal/model"
)

type AccessTokenRepository struct {
	DB *gorm.DB
}

func (r *AccessTokenRepository) Create(userID uint, tokenID, name string) error {
	return r.DB.Create(&model.AccessToken{
		UserID:  userID,
		TokenID: tokenID,
		Name:    name,
	}).Error
}

func (r *AccessTokenRepository) Exists(userID uint, tokenID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.AccessToken{}).
		Where("user_id = ? AND token_id = ?", userID, tokenID).
		Count(&count).Error
	return count > 0, err
}

// RevokeAll deletes every token row for the user, killing all active sessions,
// not just the one that made the logout call.
func (r *AccessTokenRepository) RevokeAll(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.AccessToken{}).Error
}
