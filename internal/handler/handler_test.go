package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"procurement/internal/apperr"
	"procurement/internal/auth"
	"procurement/internal/database"
	"procurement/internal/hierarchy"
	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/service"
	"procurement/internal/textgen"
)

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, textgen.Prompt) (textgen.Result, error) {
	return textgen.Result{}, apperr.ErrUpstream
}

type testServer struct {
	router *gin.Engine
	tokens auth.Tokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	dir, err := hierarchy.New([]model.User{
		{ID: "s1", Name: "State", Role: model.RoleState},
		{ID: "d1", Name: "Pune", Role: model.RoleDistrict, ReportsTo: "s1"},
		{ID: "t1", Name: "Haveli", Role: model.RoleTaluka, ReportsTo: "d1"},
		{ID: "b1", Name: "PHC Wagholi", Role: model.RoleBase, ReportsTo: "t1", PasswordHash: string(hash)},
	})
	require.NoError(t, err)

	tokens := auth.Tokens{Secret: []byte("test"), TTL: time.Hour}
	authService := service.NewAuthService(dir, tokens)
	mw := middleware.NewAuth(authService, false, tokens.TTL)
	repo := repository.NewRequestRepository(db)

	router := gin.New()
	root := router.Group("")
	NewAuthHandler(authService, mw).RegisterRoutes(root)
	NewDirectoryHandler(service.NewDirectoryService(dir), mw).RegisterRoutes(root)
	NewRequestHandler(service.NewProcurementService(repo, repository.NewTransactionManager(db), dir, nil), mw).RegisterRoutes(root)
	NewReportHandler(service.NewReportService(repo, dir), mw).RegisterRoutes(root)
	NewAssistantHandler(service.NewAssistantService(failingGenerator{}, repo, dir), mw).RegisterRoutes(root)

	return &testServer{router: router, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		role := map[string]model.Role{"s1": model.RoleState, "d1": model.RoleDistrict, "t1": model.RoleTaluka, "b1": model.RoleBase}[userID]
		token, _, err := s.tokens.Issue(model.User{ID: userID, Role: role})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestLoginSetsCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/login", "", map[string]string{"user_id": "b1", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.AccessTokenCookie, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "PHC Wagholi")

	w = s.do(t, http.MethodPost, "/login", "", map[string]string{"user_id": "b1", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	submission := map[string]any{
		"category":       "Equipment",
		"item_name":      "Glucometer",
		"quantity":       3,
		"price_per_unit": "1200",
		"priority":       "High",
		"justification":  "NCD screening",
	}

	w := s.do(t, http.MethodPost, "/api/requests", "", submission)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/requests", "t1", submission)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/requests", "b1", submission)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.ProcurementRequest
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, model.StatusPendingTaluka, created.Status)

	w = s.do(t, http.MethodGet, "/api/requests", "t1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)

	w = s.do(t, http.MethodPut, "/api/requests/"+created.ID+"/approve", "d1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/requests/"+created.ID+"/reject", "t1", map[string]string{"comment": "insufficient budget"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/requests/"+created.ID+"/approve", "t1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/requests/"+created.ID+"/audit", "b1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trail []model.AuditEntry
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &trail))
	require.Len(t, trail, 2)
	assert.Equal(t, "insufficient budget", trail[1].Comment)

	w = s.do(t, http.MethodGet, "/api/activity", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	w = s.do(t, http.MethodGet, "/api/requests/REQ-FFFFFFFFFFFFFFFF", "b1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitValidationReturns400(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/requests", "b1", map[string]any{
		"category": "Equipment", "item_name": "Glucometer", "quantity": 2, "priority": "High",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error, "justification")
}

func TestDecisionBodyMustBeEmptyOrJSON(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/requests", "b1", map[string]any{
		"category": "Equipment", "item_name": "Glucometer", "quantity": 1,
		"price_per_unit": "1200", "priority": "High", "justification": "NCD screening",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.ProcurementRequest
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))

	for _, action := range []string{"approve", "reject"} {
		w = s.do(t, http.MethodPut, "/api/requests/"+created.ID+"/"+action, "t1", []byte(`{"comment":`))
		assert.Equal(t, http.StatusBadRequest, w.Code, action)
	}

	w = s.do(t, http.MethodGet, "/api/requests/"+created.ID+"/audit", "b1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trail []model.AuditEntry
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &trail))
	assert.Len(t, trail, 1)

	w = s.do(t, http.MethodPut, "/api/requests/"+created.ID+"/approve", "t1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var approved model.ProcurementRequest
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &approved))
	assert.Equal(t, model.StatusPendingDistrict, approved.Status)
}

func TestReportsAndAssistant(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/reports/budget?mode=projection", "d1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/reports/budget?mode=bogus", "d1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/reports/districts", "d1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/reports/budget.xlsx", "s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	w = s.do(t, http.MethodGet, "/api/assistant/forecast", "s1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestDirectoryRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/users/subordinates", "t1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PHC Wagholi")
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodGet, "/api/directory/chain/b1", "b1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chain []model.User
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &chain))
	assert.Len(t, chain, 4)
}
