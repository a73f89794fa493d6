package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mailmaster_backend/internal/apperror"
	"mailmaster_backend/internal/model"
	"mailmaster_backend/internal/repository"
	"mailmaster_backend/pkg/utils/validation"
)

type SubscriberController struct {
	Subscribers *repository.SubscriberRepository
}

type SubscriberCreateInput struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"required,max=255"`
}

type SubscriberUpdateInput struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (ctl *SubscriberController) List(c *fiber.Ctx) error {
	claims := currentUser(c)

	subscribers, err := ctl.Subscribers.ListByOwner(claims.UserID)
	if err != nil {
		return serverError(c, "Could not fetch subscribers")
	}

	return c.JSON(subscribers)
}

func (ctl *SubscriberController) Create(c *fiber.Ctx) error {
	claims := currentUser(c)
	input := new(SubscriberCreateInput)

	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	if verr := validation.Struct(input); verr != nil {
		return validationFailed(c, verr)
	}

	taken, err := ctl.Subscribers.EmailTaken(input.Email, 0)
	if err != nil {
		return serverError(c, "Could not create subscriber")
	}
	if taken {
		return validationFailed(c, apperror.NewFieldError("email", "The email has already been taken."))
	}

	subscriber := model.Subscriber{
		Email:  input.Email,
		Name:   input.Name,
		UserID: claims.UserID,
	}
	if err := ctl.Subscribers.Create(&subscriber); err != nil {
		return serverError(c, "Could not create subscriber")
	}

	return c.Status(fiber.StatusCreated).JSON(subscriber)
}

func (ctl *SubscriberController) Get(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Subscriber")
	}

	subscriber, err := ctl.Subscribers.GetByOwner(claims.UserID, uint(id))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "Subscriber")
		}
		return serverError(c, "Could not fetch subscriber")
	}

	return c.JSON(subscriber)
}

func (ctl *SubscriberController) Update(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Subscriber")
	}

	input := new(SubscriberUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}
	if verr := validation.Struct(input); verr != nil {
		return validationFailed(c, verr)
	}

	subscriber, err := ctl.Subscribers.GetByOwner(claims.UserID, uint(id))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "Subscriber")
		}
		return serverError(c, "Could not fetch subscriber")
	}

	// The record may keep its own email
	taken, err := ctl.Subscribers.EmailTaken(input.Email, subscriber.ID)
	if err != nil {
		return serverError(c, "Could not update subscriber")
	}
	if taken {
		return validationFailed(c, apperror.NewFieldError("email", "The email has already been taken."))
	}

	subscriber.Email = input.Email
	if err := ctl.Subscribers.Update(subscriber); err != nil {
		return serverError(c, "Could not update subscriber")
	}

	return c.JSON(subscriber)
}

func (ctl *SubscriberController) Delete(c *fiber.Ctx) error {
	claims := currentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return notFound(c, "Subscriber")
	}

	if err := ctl.Subscribers.Delete(claims.UserID, uint(id)); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "Subscriber")
		}
		return serverError(c, "Could not delete subscriber")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
