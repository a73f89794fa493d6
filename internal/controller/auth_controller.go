package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"mailmaster_backend/internal/apperror"
	"mailmaster_backend/internal/model"
	"mailmaster_backend/internal/repository"
	"mailmaster_backend/pkg/utils/jwt"
	"mailmaster_backend/pkg/utils/validation"
)

const tokenName = "mailmaster-token"

type AuthController struct {
	Users  *repository.UserRepository
	Tokens *repository.AccessTokenRepository
}

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ctl *AuthController) Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}

	if verr := validation.Struct(input); verr != nil {
		return validationFailed(c, verr)
	}

	taken, err := ctl.Users.EmailTaken(input.Email)
	if err != nil {
		return serverError(c, "Could not create user")
	}
	if taken {
		return validationFailed(c, apperror.NewFieldError("email", "The email has already been taken."))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return serverError(c, "Could not hash password")
	}

	user := model.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
	}
	if err := ctl.Users.Create(&user); err != nil {
		return serverError(c, "Could not create user")
	}

	token, err := ctl.issueToken(&user)
	if err != nil {
		return serverError(c, "Could not generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user,
		"token":   token,
	})
}

func (ctl *AuthController) Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInput(c)
	}

	if verr := validation.Struct(input); verr != nil {
		return validationFailed(c, verr)
	}

	// Same response for unknown email and wrong password
	user, err := ctl.Users.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return invalidCredentials(c)
		}
		return serverError(c, "Could not fetch user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		return invalidCredentials(c)
	}

	token, err := ctl.issueToken(user)
	if err != nil {
		return serverError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Logout revokes every token the caller has ever been issued, not just the
// one presented on this request.
func (ctl *AuthController) Logout(c *fiber.Ctx) error {
	claims := currentUser(c)

	if err := ctl.Tokens.RevokeAll(claims.UserID); err != nil {
		return serverError(c, "Could not revoke tokens")
	}

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

func (ctl *AuthController) Me(c *fiber.Ctx) error {
	claims := currentUser(c)

	user, err := ctl.Users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound(c, "User")
		}
		return serverError(c, "Could not fetch user")
	}

	return c.JSON(user)
}

func (ctl *AuthController) issueToken(user *model.User) (string, error) {
	token, tokenID, err := jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", err
	}
	if err := ctl.Tokens.Create(user.ID, tokenID, tokenName); err != nil {
		return "", err
	}
	return token, nil
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Invalid credentials.",
	})
}
