package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie name carrying the session token.
const AccessTokenCookie = "accessToken"

func SetAuthCookie(c *gin.Context, accessToken string, expiry time.Duration) {
	setCookie(c, AccessTokenCookie, accessToken, expiry)
}

func setCookie(c *gin.Context, name, value string, expiry time.Duration) {
	secure := true
	if gin.Mode() != gin.ReleaseMode { // Toggle for local dev
		secure = false
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(expiry.Seconds()), "/", "", secure, true)
}

func ClearAuthCookie(c *gin.Context) {
	setCookie(c, AccessTokenCookie, "", -time.Second)
}
