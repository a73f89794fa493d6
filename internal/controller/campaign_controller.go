package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"mailmaster_backend/internal/apperror"
	"mailmaster_backend/internal/model"
	"mailmaster_backend/internal/repository"
	"mailmaster_backend/pkg/utils/validation"
)

type CampaignController struct {
	Campaigns   *repository.CampaignRepository
	Newsletters *repository.NewsletterRepository
	Subscribers *repository.SubscriberRepository
}

type CampaignCreateInput struct {
	Subject       string     `json:"subject" validate:"required,max=255"`
	Content       string     `json:"content" validate:"required"`
	NewsletterID  uint       `json:"newsletter_id" validate:"required"`
	Status        string     `json:"status" validate:"omitempty,oneof=draft pending sent"`
	SentAt        *time.Time `json:"sent_at"`
	SubscriberIDs []uint     `json:"subscriber_ids"`
}

// Unlike create, update requires status and always replaces sent_at with the
// supplied value; the asymmetry matches the API contract.
type CampaignUpdateInput struct {
	Subject       string     `json:"subject" validate:"required,max=255"`
	Content       string     `json:"content" validate:"required"`
	NewsletterID  uint       `json:"newsletter_id" validate:"required"`
	Status        string     `json:"status" validate:"required,oneof=draft pending sent"`
	SentAt        *time.Time `json:"sent_at"`
	SubscriberIDs []uint     `json:"subscriber_ids"`
}

func (ctl *CampaignController) List(c *fiber.Ctx) error {
	claims := currentUser(c)

	campaigns, err := ctl.Campaigns.ListByOwner(claims.UserID, true)
	if err != nil {
		return serverError(c, "Could not fetch campaigns")
	}

	return c.JSON(campaigns)
}

func (ctl *CampaignController) Create(c *fiber.Ctx) error {
	claims := currentUser(c)
	input := new(CampaignCreateInput)

	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	if verr := validation.Struct(input); verr != nil {
		return validationFailed(c, verr)
	}
	if verr, err := ctl.checkReferences(input.NewsletterID, input.SubscriberIDs); err != nil {
		return serverError(c, "Could not create campaign")
	} else if verr != nil {
		return validationFailed(c, verr)
	}

	status := input.Status
	if status == "" {
		status = model.CampaignStatusDraft
	}

	campaign := model.Campaign{
		Subject:      input.Subject,
		Content:      input.Content,
		NewsletterID: input.NewsletterID,
		UserID:       claims.UserID,
		Status:       status,
		SentAt:       input.SentAt,
	}
	if err := ctl.Campaigns.Create(&campaign, input.SubscriberIDs); err != nil {
		return serverError(c, "Could not create campaign")
	}

	created, err := ctl.Campaigns.GetByOwner(claims.UserID, campaign.ID, true)
	if err != nil {
		return serverError(c, "Could not fetch campaign")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (ctl *CampaignController) Get(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Campaign")
	}

	campaign, err := ctl.Campaigns.GetByOwner(claims.UserID, uint(id), true)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "Campaign")
		}
		return serverError(c, "Could not fetch campaign")
	}

	return c.JSON(campaign)
}

func (ctl *CampaignController) Update(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Campaign")
	}

	input := new(CampaignUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	if verr := validation.Struct(input); verr != nil {
		return validationFailed(c, verr)
	}

	existing, err := ctl.Campaigns.GetByOwner(claims.UserID, uint(id), false)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "Campaign")
		}
		return serverError(c, "Could not fetch campaign")
	}

	if verr, err := ctl.checkReferences(input.NewsletterID, input.SubscriberIDs); err != nil {
		return serverError(c, "Could not update campaign")
	} else if verr != nil {
		return validationFailed(c, verr)
	}

	campaign := existing.Campaign
	campaign.Subject = input.Subject
	campaign.Content = input.Content
	campaign.NewsletterID = input.NewsletterID
	campaign.Status = input.Status
	campaign.SentAt = input.SentAt

	if err := ctl.Campaigns.Update(&campaign, input.SubscriberIDs); err != nil {
		return serverError(c, "Could not update campaign")
	}

	updated, err := ctl.Campaigns.GetByOwner(claims.UserID, campaign.ID, true)
	if err != nil {
		return serverError(c, "Could not fetch campaign")
	}

	return c.JSON(updated)
}

func (ctl *CampaignController) Delete(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Campaign")
	}

	if err := ctl.Campaigns.Delete(claims.UserID, uint(id)); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "Campaign")
		}
		return serverError(c, "Could not delete campaign")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// TrackOpen is the public pixel endpoint embedded in outgoing mail. It always
// answers 204 so the URL can't be used to probe which pairs exist.
func (ctl *CampaignController) TrackOpen(c *fiber.Ctx) error {
	campaignID, err := c.ParamsInt("id")
	if err != nil || campaignID < 1 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	subscriberID, err := c.ParamsInt("subscriber_id")
	if err != nil || subscriberID < 1 {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err := ctl.Campaigns.MarkOpened(uint(campaignID), uint(subscriberID), time.Now()); err != nil {
		return serverError(c, "Could not record open")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// checkReferences validates newsletter_id and subscriber_ids against existing
// rows. Existence is table-wide, not owner-scoped, per the write contract.
func (ctl *CampaignController) checkReferences(newsletterID uint, subscriberIDs []uint) (*apperror.ValidationError, error) {
	exists, err := ctl.Newsletters.Exists(newsletterID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return apperror.NewFieldError("newsletter_id", "The selected newsletter id is invalid."), nil
	}

	if len(subscriberIDs) > 0 {
		ok, err := ctl.Subscribers.AllExist(subscriberIDs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return apperror.NewFieldError("subscriber_ids", "The selected subscriber ids are invalid."), nil
		}
	}
	return nil, nil
}
