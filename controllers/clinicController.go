package controllers

import (
	"TeleClinic/handlers"
	"TeleClinic/middlewares"
	"TeleClinic/models"

	"github.com/gin-gonic/gin"
)

// SetupClinicRoutes registers the doctor, prescription and chat routes behind the session middleware.
func SetupClinicRoutes(
	router *gin.Engine,
	session gin.HandlerFunc,
	doctorHandler *handlers.DoctorHandler,
	prescriptionHandler *handlers.PrescriptionHandler,
	chatHandler *handlers.ChatHandler,
) {
	doctorOnly := middlewares.RoleAuthMiddleware(models.RoleDoctor)
	patientOnly := middlewares.RoleAuthMiddleware(models.RolePatient)
	eitherSide := middlewares.RoleAuthMiddleware(models.RoleDoctor, models.RolePatient)

	doctor := router.Group("/doctor").Use(session, doctorOnly)
	{
		doctor.POST("/patients", doctorHandler.CreatePatient)
		doctor.GET("/patients", doctorHandler.ListPatients)
		doctor.DELETE("/patients/:userId", doctorHandler.UnlinkPatient)
		doctor.POST("/links", doctorHandler.LinkPatient)
	}

	router.POST("/prescriptions", session, doctorOnly, prescriptionHandler.CreatePrescription)
	router.GET("/prescriptions/:id", session, eitherSide, prescriptionHandler.GetPrescriptionByID)
	router.GET("/patients/:patientId/prescriptions", session, doctorOnly, prescriptionHandler.ListForPatient)
	router.GET("/me/prescriptions", session, patientOnly, prescriptionHandler.ListOwn)

	chat := router.Group("/chat").Use(session, eitherSide)
	{
		chat.POST("/messages", chatHandler.SendMessage)
		chat.GET("/history/:partnerId", chatHandler.History)
		chat.GET("/partners", chatHandler.Partners)
	}
}
