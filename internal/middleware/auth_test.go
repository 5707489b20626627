package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"procurement/internal/apperr"
	"procurement/internal/model"
)

type stubAuthenticator map[string]model.User

func (s stubAuthenticator) Authenticate(token string) (model.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return model.User{}, errors.New("bad token: " + apperr.ErrAuthentication.Error())
}

func newRouter(a *Auth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/any", a.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})
	r.GET("/state", a.RequireAuth(), RequireRole(model.RoleState), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	a := NewAuth(stubAuthenticator{
		"good":  {ID: "b1", Role: model.RoleBase},
		"state": {ID: "s1", Role: model.RoleState},
	}, false, time.Hour)
	r := newRouter(a)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/any", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Token good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b1", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/any", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "state"})
	r.ServeHTTP(w, req)
	assert.Equal(t, "s1", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	a := NewAuth(stubAuthenticator{
		"good":  {ID: "b1", Role: model.RoleBase},
		"state": {ID: "s1", Role: model.RoleState},
	}, false, time.Hour)
	r := newRouter(a)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Authorization", "Bearer state")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTokenCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := NewAuth(stubAuthenticator{}, true, time.Hour)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)

	a.SetTokenCookie(c, "tok")
	cookie := w.Result().Cookies()[0]
	assert.Equal(t, AccessTokenCookie, cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
}
