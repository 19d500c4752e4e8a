package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/allotment/internal/config"
	"github.com/yigit/allotment/internal/pkg/auth"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	dir := t.TempDir()
	yaml := `
server:
  mode: test
  storage_path: ` + filepath.Join(dir, "uploads") + `
jwt:
  secret: bootstrap-test-secret
admin:
  username: registrar
  password_hash: ` + string(hash) + `
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return cfg
}

func TestBuildDependenciesAndRouter(t *testing.T) {
	cfg := loadTestConfig(t)

	deps, err := BuildDependencies(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, deps.RecordService)
	require.NotNil(t, deps.AuthService)

	info, err := os.Stat(cfg.Server.StoragePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	router := SetupRouter(cfg, deps, zerolog.Nop())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/admin/records/import")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"registrar","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	claims, err := deps.JWTService.ValidateAndExtractClaims(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "registrar", claims.Username)
}

func TestBuildDependencies_BadStoragePath(t *testing.T) {
	cfg := loadTestConfig(t)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	cfg.Server.StoragePath = filepath.Join(blocker, "uploads")

	_, err := BuildDependencies(cfg, nil, zerolog.Nop())
	assert.Error(t, err)
}
