package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"TeleClinic/logging"
	"TeleClinic/models"
	"TeleClinic/services"
	"TeleClinic/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"
	claimsKey   contextKey = "claims"
)

// Authenticator turns a session token into its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.TokenClaims, error)
}

// accessToken reads the session token from the Authorization header, falling back to the cookie.
func accessToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(utils.AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// TokenAuthMiddleware validates the session and adds the caller to the request context.
func TokenAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
			return
		}

		ctx := c.Request.Context()
		claims, err := auth.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, services.ErrInternal) {
				logging.FromContext(ctx).Error("session check failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalMessage})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}

		ctx = context.WithValue(ctx, userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, userRoleKey, claims.Role)
		ctx = context.WithValue(ctx, claimsKey, claims)
		ctx = logging.WithContext(ctx, logging.FromContext(ctx).With(zap.Int64("user_id", claims.UserID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RoleAuthMiddleware restricts access to users holding one of the given roles.
func RoleAuthMiddleware(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := ExtractUserRoleFromContext(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user role not found in context"})
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient privileges"})
	}
}

// ExtractUserIDFromContext retrieves the userID from the context.
func ExtractUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0, errors.New("user ID not found in context")
	}
	return userID, nil
}

// ExtractUserRoleFromContext retrieves the user role from the context.
func ExtractUserRoleFromContext(ctx context.Context) (models.Role, error) {
	role, ok := ctx.Value(userRoleKey).(models.Role)
	if !ok {
		return "", errors.New("user role not found in context")
	}
	return role, nil
}

// ExtractClaimsFromContext retrieves the session claims from the context.
func ExtractClaimsFromContext(ctx context.Context) (*utils.TokenClaims, error) {
	claims, ok := ctx.Value(claimsKey).(*utils.TokenClaims)
	if !ok {
		return nil, errors.New("session claims not found in context")
	}
	return claims, nil
}

// CallerFromContext returns the authenticated caller set by TokenAuthMiddleware.
func CallerFromContext(ctx context.Context) (services.Caller, error) {
	id, err := ExtractUserIDFromContext(ctx)
	if err != nil {
		return services.Caller{}, err
	}
	role, err := ExtractUserRoleFromContext(ctx)
	if err != nil {
		return services.Caller{}, err
	}
	return services.Caller{ID: id, Role: role}, nil
}
