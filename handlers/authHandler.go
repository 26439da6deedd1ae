package handlers

import (
	"errors"
	"net/http"
	"time"

	"TeleClinic/middlewares"
	"TeleClinic/services"
	"TeleClinic/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	AuthService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

// SignIn authenticates the user and returns an access token, also set as a cookie.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bind(c, &credentials) {
		return
	}

	session, err := h.AuthService.SignIn(c.Request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrUnauthorized) {
			middlewares.HttpError(c, "invalid credentials", http.StatusUnauthorized, err)
			return
		}
		middlewares.RespondError(c, err)
		return
	}

	utils.SetAuthCookie(c, session.Token, time.Until(session.Claims.Expiry))
	c.JSON(http.StatusOK, gin.H{
		"accessToken": session.Token,
		"expiresAt":   session.Claims.Expiry,
		"user":        session.User,
	})
}

// SignOut revokes the current session and clears the cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	claims, err := middlewares.ExtractClaimsFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "not authenticated", http.StatusUnauthorized, err)
		return
	}
	if err := h.AuthService.SignOut(c.Request.Context(), claims); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	utils.ClearAuthCookie(c)
	c.Status(http.StatusNoContent)
}

// SignupPatient registers a patient and returns its patient token.
func (h *AuthHandler) SignupPatient(c *gin.Context) {
	var in services.SignupInput
	if !bind(c, &in) {
		return
	}
	account, err := h.AuthService.SignupPatient(c.Request.Context(), in)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"userId":       account.User.ID,
		"patientId":    account.Profile.ID,
		"patientToken": account.Profile.Token,
	})
}

// SignupDoctor redeems a doctor-signup token.
func (h *AuthHandler) SignupDoctor(c *gin.Context) {
	var body struct {
		services.SignupInput
		Token string `json:"token"`
	}
	if !bind(c, &body) {
		return
	}
	user, err := h.AuthService.SignupDoctor(c.Request.Context(), body.SignupInput, body.Token)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"userId": user.ID})
}

// SendResetCode mails a password reset code. The answer does not reveal whether the email exists.
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
	}
	if !bind(c, &data) {
		return
	}
	if err := h.AuthService.RequestPasswordReset(c.Request.Context(), data.Email); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the email is registered, a reset code has been sent"})
}

// ResetPassword sets a new password using a mailed reset code.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var data struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if !bind(c, &data) {
		return
	}
	if err := h.AuthService.ResetPassword(c.Request.Context(), data.Email, data.Code, data.NewPassword); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	user, err := h.AuthService.Profile(c.Request.Context(), who.ID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
