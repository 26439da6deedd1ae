package handlers

import (
	"net/http"

	"TeleClinic/middlewares"
	"TeleClinic/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// SendMessage posts a message to a linked counterpart. Doctors address patients by patient id,
// patients address doctors by user id.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var body struct {
		ReceiverID int64  `json:"receiverId"`
		Message    string `json:"message"`
	}
	if !bind(c, &body) {
		return
	}
	msg, err := h.service.SendMessage(c.Request.Context(), who, body.ReceiverID, body.Message)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) History(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	partnerID, ok := idParam(c, "partnerId")
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), who, partnerID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *ChatHandler) Partners(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	partners, err := h.service.Partners(c.Request.Context(), who)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partners)
}
