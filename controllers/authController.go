package controllers

import (
	"TeleClinic/handlers"
	"TeleClinic/middlewares"
	"TeleClinic/models"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler      *handlers.AuthHandler
	AdminHandler *handlers.AdminHandler
}

// NewAuthController creates a new AuthController with the given handlers
func NewAuthController(authHandler *handlers.AuthHandler, adminHandler *handlers.AdminHandler) *AuthController {
	return &AuthController{
		Handler:      authHandler,
		AdminHandler: adminHandler,
	}
}

// RegisterRoutes initializes all authentication routes directly on the router
func (ac *AuthController) RegisterRoutes(router *gin.Engine, session gin.HandlerFunc) {
	// Public routes
	router.POST("/auth/signin", ac.Handler.SignIn)
	router.POST("/auth/signup/patient", ac.Handler.SignupPatient)
	router.POST("/auth/signup/doctor", ac.Handler.SignupDoctor)
	router.POST("/auth/reset-code", ac.Handler.SendResetCode)
	router.POST("/auth/reset-password", ac.Handler.ResetPassword)

	// Any signed-in user
	authGroup := router.Group("/auth").Use(session)
	{
		authGroup.POST("/signout", ac.Handler.SignOut)
		authGroup.GET("/me", ac.Handler.Me)
	}

	adminGroup := router.Group("/admin").Use(session, middlewares.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminGroup.POST("/doctor-tokens", ac.AdminHandler.IssueDoctorToken)
	}
}
