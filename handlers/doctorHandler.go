package handlers

import (
	"net/http"

	"TeleClinic/middlewares"
	"TeleClinic/services"

	"github.com/gin-gonic/gin"
)

// DoctorHandler serves a doctor's patient roster.
type DoctorHandler struct {
	service *services.LinkService
}

func NewDoctorHandler(service *services.LinkService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

func (h *DoctorHandler) CreatePatient(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var in services.SignupInput
	if !bind(c, &in) {
		return
	}
	account, err := h.service.CreatePatientByDoctor(c.Request.Context(), who, in)
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

func (h *DoctorHandler) ListPatients(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	patients, err := h.service.ListPatients(c.Request.Context(), who)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

// LinkPatient links the caller to the patient holding the given patient token.
func (h *DoctorHandler) LinkPatient(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var body struct {
		PatientToken string `json:"patientToken"`
	}
	if !bind(c, &body) {
		return
	}
	link, err := h.service.Link(c.Request.Context(), who, body.PatientToken)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// UnlinkPatient removes the link to the patient user named in the path.
func (h *DoctorHandler) UnlinkPatient(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	if err := h.service.Unlink(c.Request.Context(), who, userID); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
