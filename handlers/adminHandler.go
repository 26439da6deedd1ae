package handlers

import (
	"io"
	"net/http"

	"TeleClinic/middlewares"
	"TeleClinic/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	tokens *services.TokenService
}

func NewAdminHandler(tokens *services.TokenService) *AdminHandler {
	return &AdminHandler{tokens: tokens}
}

// IssueDoctorToken creates a doctor-signup token, optionally mailing it to the given address.
func (h *AdminHandler) IssueDoctorToken(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && err != io.EOF {
		middlewares.HttpError(c, "invalid request body", http.StatusBadRequest, err)
		return
	}

	token, err := h.tokens.IssueDoctorSignupToken(c.Request.Context(), who, body.Email)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token.Token, "createdAt": token.CreatedAt})
}
