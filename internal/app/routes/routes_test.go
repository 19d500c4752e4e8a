package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/allotment/internal/app/controllers"
	"github.com/yigit/allotment/internal/app/models"
	"github.com/yigit/allotment/internal/app/services"
	"github.com/yigit/allotment/internal/middleware"
	"github.com/yigit/allotment/internal/pkg/auth"
)

type nopPinger struct{}

func (nopPinger) Ping(context.Context) error { return nil }

// stubRecordService answers every call with an empty result
type stubRecordService struct {
	services.RecordService
}

func (stubRecordService) ListRecords(context.Context) ([]*models.StudentRecord, error) {
	return []*models.StudentRecord{}, nil
}

func (stubRecordService) LookupByIDNo(_ context.Context, idno string) ([]*models.StudentRecord, error) {
	return []*models.StudentRecord{{ID: 1, IDNo: idno}}, nil
}

func (stubRecordService) DeleteAll(context.Context) (int64, error) {
	return 0, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-secret", AccessTokenExp: time.Hour, TokenIssuer: "allotment.test"})
	creds, err := auth.NewStaticCredentials("registrar", "hunter22", "", nil)
	require.NoError(t, err)

	router := gin.New()
	SetupRouter(router,
		controllers.NewAuthController(services.NewAuthService(creds, jwtService, zerolog.Nop()), zerolog.Nop()),
		controllers.NewRecordController(stubRecordService{}, 0, zerolog.Nop()),
		controllers.NewHealthController(nopPinger{}),
		middleware.NewAuthMiddleware(jwtService),
	)
	return router, jwtService
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router, jwtService := newTestRouter(t)

	adminRoutes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/admin/records"},
		{http.MethodPost, "/api/v1/admin/records/import"},
		{http.MethodDelete, "/api/v1/admin/records/S1"},
		{http.MethodDelete, "/api/v1/admin/records"},
	}
	for _, rt := range adminRoutes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.method+" "+rt.path)
	}

	token, _, err := jwtService.GenerateAccessToken("registrar", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/records", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/ping", "/health", "/api/v1/students/S1/records"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
