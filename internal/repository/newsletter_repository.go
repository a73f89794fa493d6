package repository

import (
	"errors"

	"gorm.io/gorm"

	"mailmaster_backend/internal/apperror"
	"mailmaster_backend/internal/model"
)

type NewsletterRepository struct {
	DB *gorm.DB
}

func (r *NewsletterRepository) ListByOwner(ownerID uint) ([]model.Newsletter, error) {
	newsletters := []model.Newsletter{}
	err := r.DB.Where("user_id = ?", ownerID).Order("id").Find(&newsletters).Error
	return newsletters, err
}

func (r *NewsletterRepository) Create(newsletter *model.Newsletter) error {
	return r.DB.Create(newsletter).Error
}

// GetByOwner returns ErrNotFound both when the id is absent and when the row
// belongs to someone else.
func (r *NewsletterRepository) GetByOwner(ownerID, id uint) (*model.Newsletter, error) {
	var newsletter model.Newsletter
	err := r.DB.Where("id = ? AND user_id = ?", id, ownerID).First(&newsletter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &newsletter, nil
}

func (r *NewsletterRepository) Update(newsletter *model.Newsletter) error {
	return r.DB.Save(newsletter).Error
}

// Delete refuses to remove a newsletter that campaigns still reference, so the
// referential check done at campaign write time stays meaningful afterward.
func (r *NewsletterRepository) Delete(ownerID, id uint) error {
	newsletter, err := r.GetByOwner(ownerID, id)
	if err != nil {
		return err
	}

	var refs int64
	if err := r.DB.Model(&model.Campaign{}).Where("newsletter_id = ?", newsletter.ID).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return apperror.NewFieldError("newsletter", "The newsletter is still referenced by campaigns and cannot be deleted.")
	}

	return r.DB.Delete(&model.Newsletter{}, newsletter.ID).Error
}

// Exists checks the id against the whole table, not one owner's scope,
// matching the referential rule on campaign writes.
func (r *NewsletterRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Newsletter{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
