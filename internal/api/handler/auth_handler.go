package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/core/ports"
	"github.com/socialfeed/gateway/internal/core/service"
)

type AuthHandler struct {
	ops *service.Operations
}

func NewAuthHandler(ops *service.Operations) *AuthHandler {
	return &AuthHandler{ops: ops}
}

// Signup creates a new identity.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  signupResponse
// @Failure      409   {object}  resolver.Failure
// @Failure      422   {object}  resolver.Failure
// @Router       /auth/signup [put]
func (h *AuthHandler) Signup(c echo.Context, ac domain.AuthContext) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return errMalformedBody
	}

	user, err := h.ops.Signup.Call(c.Request().Context(), ac, toSignupInput(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, signupResponse{Message: "user created", UserID: user.ID})
}

// Login authenticates a user and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.LoginResult
// @Failure      401   {object}  resolver.Failure
// @Failure      422   {object}  resolver.Failure
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context, ac domain.AuthContext) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errMalformedBody
	}

	result, err := h.ops.Login.Call(c.Request().Context(), ac, toLoginInput(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Me returns the caller's profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  resolver.Failure
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context, ac domain.AuthContext) error {
	user, err := h.ops.Me.Call(c.Request().Context(), ac, ports.MeInput{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the caller's password.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  resolver.Failure
// @Failure      422   {object}  resolver.Failure
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context, ac domain.AuthContext) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return errMalformedBody
	}

	if _, err := h.ops.ChangePassword.Call(c.Request().Context(), ac, toChangePasswordInput(req)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}
