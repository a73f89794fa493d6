package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mailmaster_backend/internal/apperror"
	"mailmaster_backend/internal/model"
	"mailmaster_backend/internal/repository"
	"mailmaster_backend/pkg/utils/validation"
)

type NewsletterController struct {
	Newsletters *repository.NewsletterRepository
}

type NewsletterCreateInput struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// Content stays optional on update; only a supplied value replaces the old one.
type NewsletterUpdateInput struct {
	Title   string  `json:"title" validate:"required,max=255"`
	Content *string `json:"content"`
}

func (ctl *NewsletterController) List(c *fiber.Ctx) error {
	claims := currentUser(c)

	newsletters, err := ctl.Newsletters.ListByOwner(claims.UserID)
	if err != nil {
		return serverError(c, "Could not fetch newsletters")
	}

	return c.JSON(newsletters)
}

func (ctl *NewsletterController) Create(c *fiber.Ctx) error {
	claims := currentUser(c)
	input := new(NewsletterCreateInput)

	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	if verr := validation.Struct(input); verr != nil {
		return validationFailed(c, verr)
	}

	newsletter := model.Newsletter{
		Title:   input.Title,
		Content: input.Content,
		UserID:  claims.UserID,
	}
	if err := ctl.Newsletters.Create(&newsletter); err != nil {
		return serverError(c, "Could not create newsletter")
	}

	return c.Status(fiber.StatusCreated).JSON(newsletter)
}

func (ctl *NewsletterController) Get(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Newsletter")
	}

	newsletter, err := ctl.Newsletters.GetByOwner(claims.UserID, uint(id))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "Newsletter")
		}
		return serverError(c, "Could not fetch newsletter")
	}

	return c.JSON(newsletter)
}

func (ctl *NewsletterController) Update(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Newsletter")
	}

	input := new(NewsletterUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	if verr := validation.Struct(input); verr != nil {
		return validationFailed(c, verr)
	}

	newsletter, err := ctl.Newsletters.GetByOwner(claims.UserID, uint(id))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "Newsletter")
		}
		return serverError(c, "Could not fetch newsletter")
	}

	newsletter.Title = input.Title
	if input.Content != nil {
		newsletter.Content = *input.Content
	}
	if err := ctl.Newsletters.Update(newsletter); err != nil {
		return serverError(c, "Could not update newsletter")
	}

	return c.JSON(newsletter)
}

func (ctl *NewsletterController) Delete(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Newsletter")
	}

	if err := ctl.Newsletters.Delete(claims.UserID, uint(id)); err != nil {
		var verr *apperror.ValidationError
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			return notFound(c, "Newsletter")
		case errors.As(err, &verr):
			return validationFailed(c, verr)
		default:
			return serverError(c, "Could not delete newsletter")
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}
