package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-admin-console/internal/adapter/db/postgres"
	"user-admin-console/internal/adapter/gin/handler"
	"user-admin-console/internal/adapter/gin/middleware"
	"user-admin-console/internal/adapter/repository/cached"
	"user-admin-console/internal/usecase/user"
)

func setupRouter(t testing.TB, probes map[string]Probe) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&postgres.UserSchema{}))

	log := zap.NewNop()
	repo := cached.NewUserRepository(postgres.NewUserRepoPG(db, log), nil, log)
	svc := user.New(repo, log)

	if probes == nil {
		probes = map[string]Probe{"database": sqlDB.PingContext}
	}

	return SetupRouter(Options{
		Console: handler.NewConsoleHandler(svc, log, handler.ConsoleConfig{
			LoadWait:      time.Second,
			SubmitWait:    time.Second,
			SubmissionTTL: time.Minute,
		}),
		API:         handler.NewUserHandler(svc, log),
		RateLimiter: middleware.NewRateLimiter(nil, middleware.RateLimiterConfig{}, log),
		Probes:      probes,
		Swagger:     true,
		ServiceName: "user-admin-console",
		Log:         log,
	})
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_EditFlowAgainstDatabase(t *testing.T) {
	r := setupRouter(t, nil)

	body, _ := json.Marshal(map[string]any{
		"firstName": "Al", "lastName": "Bo", "email": "a@b.com", "enabled": false, "org": "ORG_A", "role": "ADMIN",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	created := serve(r, req)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var idResp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &idResp))
	require.NotEmpty(t, idResp.ID)
	editURL := "/users/" + idResp.ID + "/edit"

	page := serve(r, httptest.NewRequest(http.MethodGet, editURL, nil))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `name="firstName" value="Al"`)

	form := url.Values{"action": {"save"}, "firstName": {"Ann"}, "lastName": {"Bo"}, "org": {"ORG_A"}, "role": {"ADMIN"}}
	post := httptest.NewRequest(http.MethodPost, editURL, strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	saved := serve(r, post)
	require.Equal(t, http.StatusSeeOther, saved.Code, saved.Body.String())
	assert.Equal(t, "/users", saved.Header().Get("Location"))

	got := serve(r, httptest.NewRequest(http.MethodGet, "/v1/users/"+idResp.ID, nil))
	require.Equal(t, http.StatusOK, got.Code)
	assert.JSONEq(t,
		`{"id":"`+idResp.ID+`","firstName":"Ann","lastName":"Bo","email":"a@b.com","enabled":false,"org":"ORG_A","role":"ADMIN"}`,
		got.Body.String())

	list := serve(r, httptest.NewRequest(http.MethodGet, "/users?query=ann", nil))
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Ann Bo")
}

func TestRouter_MissingUserIDRendersErrorPage(t *testing.T) {
	r := setupRouter(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/users/edit", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
}

func TestRouter_RootRedirectsToList(t *testing.T) {
	r := setupRouter(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/users", w.Header().Get("Location"))
}

func TestRouter_Health(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		r := setupRouter(t, nil)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("Unhealthy", func(t *testing.T) {
		r := setupRouter(t, map[string]Probe{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})

		w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	r := setupRouter(t, nil)
	serve(r, httptest.NewRequest(http.MethodGet, "/users", nil))

	metrics := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "user_console_http_requests_total")

	doc := serve(r, httptest.NewRequest(http.MethodGet, "/swagger.json", nil))
	assert.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), `"/v1/users/{id}"`)

	ui := serve(r, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, ui.Code)
}
