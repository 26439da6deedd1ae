package handlers

import (
	"net/http"

	"TeleClinic/middlewares"
	"TeleClinic/services"

	"github.com/gin-gonic/gin"
)

type PrescriptionHandler struct {
	service *services.PrescriptionService
}

func NewPrescriptionHandler(service *services.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{service: service}
}

func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var body struct {
		PatientID   int64                      `json:"patientId"`
		Medications []services.MedicationInput `json:"medications"`
	}
	if !bind(c, &body) {
		return
	}
	prescription, err := h.service.Prescribe(c.Request.Context(), who, body.PatientID, body.Medications)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prescriptionId": prescription.ID})
}

func (h *PrescriptionHandler) GetPrescriptionByID(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetPrescription(c.Request.Context(), who, id)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *PrescriptionHandler) ListForPatient(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	patientID, ok := idParam(c, "patientId")
	if !ok {
		return
	}
	list, err := h.service.ListForPatient(c.Request.Context(), who, patientID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PrescriptionHandler) ListOwn(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.service.ListOwnAsPatient(c.Request.Context(), who)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
