package handler

import (
	"github.com/gofiber/fiber/v2"

	"flowblog/internal/domain"
	"flowblog/internal/middleware"
	"flowblog/internal/service/auth"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type refreshTokenInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func sessionMeta(c *fiber.Ctx) auth.SessionMeta {
	return auth.SessionMeta{
		UserAgent: middleware.GetUserAgent(c),
		IPAddress: middleware.GetClientIP(c),
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input domain.CreateUserInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	user, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"message": "Registration successful. Please check your email for verification.",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	user, tokens, err := h.authService.Login(c.UserContext(), input, sessionMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var input refreshTokenInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	tokens, err := h.authService.RefreshToken(c.UserContext(), input.RefreshToken, sessionMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input refreshTokenInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	if err := h.authService.Logout(c.UserContext(), input.RefreshToken); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input emailInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	if err := h.authService.RequestPasswordReset(c.UserContext(), input.Email); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If the email exists, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input resetPasswordInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.UserContext(), input.Token, input.NewPassword); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password has been reset successfully",
	})
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return middleware.BadRequest("Verification token is required")
	}

	if err := h.authService.VerifyEmail(c.UserContext(), token); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Email verified successfully",
	})
}

func (h *AuthHandler) ResendVerificationEmail(c *fiber.Ctx) error {
	var input emailInput
	if err := middleware.ParseBody(c, &input); err != nil {
		return err
	}

	if err := h.authService.ResendVerificationEmail(c.UserContext(), input.Email); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If the account exists and is unverified, a new link has been sent",
	})
}
