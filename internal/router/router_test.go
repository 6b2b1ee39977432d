package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitkuhar/kitkuhar/backend/config"
	"github.com/kitkuhar/kitkuhar/backend/internal/api"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
	"github.com/kitkuhar/kitkuhar/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
	logging.Init(logging.Config{Level: "disabled"})
}

func TestSetupRouterServesLocalMedia(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	store, err := service.NewLocalStore(afero.NewMemMapFs(), "/srv/media")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(store.Fs(), "beet.jpg", []byte("jpeg bytes"), 0o644))

	cfg := &config.Config{CORSOrigins: []string{"http://localhost:3000"}}
	r := SetupRouter(cfg, db, api.NewServices(db, testhelpers.NewAuthService(db), store), Options{
		StaticFS: afero.NewHttpFs(store.Fs()),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, service.StaticPrefix+"/beet.jpg", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg bytes", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, service.StaticPrefix+"/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRouterCORS(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	cfg := &config.Config{CORSOrigins: []string{"http://localhost:3000"}}
	r := SetupRouter(cfg, db, api.NewServices(db, testhelpers.NewAuthService(db), testhelpers.NewMemoryStore()), Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recipes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
