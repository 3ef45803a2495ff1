package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dicaapp/backend/internal/auth"
	"github.com/dicaapp/backend/internal/config"
	"github.com/dicaapp/backend/internal/models"
	"github.com/dicaapp/backend/internal/ws"
)

const testSecret = "test-secret"

// newTestApp builds a router over a fresh in-memory database. The returned
// Env shares that database for direct seeding and assertions.
func newTestApp(t *testing.T) (*gin.Engine, *Env) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled in-memory sqlite hands each connection its own database;
	// pin the pool to one connection so every query sees the same schema.
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(models.All()...))

	cfg := &config.Config{
		Port:            "4000",
		JWTSecret:       testSecret,
		TokenExpiration: time.Hour,
		BaseURL:         "http://localhost:4000",
		UploadDir:       t.TempDir(),
	}

	hub := ws.NewHub()
	router := gin.New()
	Setup(router, database, hub, cfg)

	env := &Env{
		DB:  database,
		Hub: hub,
		JWT: auth.NewJWT(cfg.JWTSecret, cfg.TokenExpiration),
		Cfg: cfg,
	}
	return router, env
}

// doJSON performs a JSON request against the router.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// seedUser creates an account directly and returns it with a signed token.
func seedUser(t *testing.T, env *Env, email, cpf, role string) (models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	user := models.User{
		Email:     email,
		Password:  hash,
		Name:      "Test User",
		Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		CPF:       cpf,
		Role:      role,
	}
	require.NoError(t, env.DB.Create(&user).Error)
	token, err := env.JWT.Sign(user.ID, user.Name, user.Email, user.Role)
	require.NoError(t, err)
	return user, token
}

// seedHint creates a hint owned by the given user's admirer identity.
func seedHint(t *testing.T, env *Env, userID, content string) models.Hint {
	t.Helper()
	admirer, err := env.admirerForUser(userID, true)
	require.NoError(t, err)
	hint := models.Hint{AdmirerID: admirer.ID, Content: content, Type: models.TypeText}
	require.NoError(t, env.DB.Create(&hint).Error)
	return hint
}
