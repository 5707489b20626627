package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"procurement/internal/model"
	"procurement/pkg/response"
)

const (
	AccessTokenCookie = "access_token"
	userKey           = "user"
	userIDKey         = "userID"
)

// Authenticator maps an access token to a directory user.
type Authenticator interface {
	Authenticate(token string) (model.User, error)
}

// Auth validates access tokens and manages the token cookie.
type Auth struct {
	authn         Authenticator
	secureCookies bool
	ttl           time.Duration
}

func NewAuth(authn Authenticator, secureCookies bool, ttl time.Duration) *Auth {
	return &Auth{authn: authn, secureCookies: secureCookies, ttl: ttl}
}

func (a *Auth) cookieMode() (http.SameSite, bool) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	if a.secureCookies {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// SetTokenCookie stores the access token as an HttpOnly cookie.
func (a *Auth) SetTokenCookie(c *gin.Context, accessToken string) {
	sameSite, secure := a.cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, accessToken, int(a.ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie.
func (a *Auth) ClearTokenCookie(c *gin.Context) {
	sameSite, secure := a.cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
}

// tokenFrom reads the cookie first, then the Authorization header.
func tokenFrom(c *gin.Context) (string, string) {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token, ""
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization is missing"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

// RequireAuth resolves the caller and stores it on the context.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := tokenFrom(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, problem))
			return
		}
		user, err := a.authn.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}
		c.Set(userKey, user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(allowed ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		for _, role := range allowed {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// CurrentUser returns the user set by RequireAuth.
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

// CurrentUserID returns the caller id, or "" when unauthenticated.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
