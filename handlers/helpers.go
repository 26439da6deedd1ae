package handlers

import (
	"net/http"
	"strconv"

	"TeleClinic/middlewares"
	"TeleClinic/services"

	"github.com/gin-gonic/gin"
)

// caller reads the authenticated caller or answers 401.
func caller(c *gin.Context) (services.Caller, bool) {
	who, err := middlewares.CallerFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "not authenticated", http.StatusUnauthorized, err)
		return services.Caller{}, false
	}
	return who, true
}

// idParam parses a positive integer path parameter or answers 400.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middlewares.HttpError(c, "invalid "+name, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

// bind decodes the JSON body or answers 400.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middlewares.HttpError(c, "invalid request body", http.StatusBadRequest, err)
		return false
	}
	return true
}
