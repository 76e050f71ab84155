package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-timetable-api/internal/handler"
	"github.com/noah-isme/tutor-timetable-api/internal/models"
	"github.com/noah-isme/tutor-timetable-api/internal/repository"
	"github.com/noah-isme/tutor-timetable-api/internal/service"
	"github.com/noah-isme/tutor-timetable-api/pkg/config"
	"github.com/noah-isme/tutor-timetable-api/pkg/storage"
)

type testServer struct {
	router *gin.Engine
	tokens *service.TokenService
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := repository.NewFileScheduleRepository(files, zap.NewNop())
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(nil, metrics, time.Minute, nil, false)
	people := service.NewPeopleService(store, cacheSvc, metrics, nil, nil)
	generator := service.NewScheduleGeneratorService(service.ScheduleGeneratorParams{
		People:  people,
		Cache:   cacheSvc,
		Metrics: metrics,
	}, service.ScheduleGeneratorConfig{})
	tokens := service.NewTokenService(service.TokenConfig{Secret: "test-secret"})

	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1"}
	router := newRouter(routerDeps{
		cfg:       cfg,
		logger:    zap.NewNop(),
		metrics:   metrics,
		tokens:    tokens,
		generator: handler.NewScheduleGeneratorHandler(generator, service.NewExportService(nil, nil)),
		people:    handler.NewPeopleHandler(people, 1<<20),
		health:    handler.NewMetricsHandler(metrics, nil, nil),
	})
	return testServer{router: router, tokens: tokens}
}

func (s testServer) do(t *testing.T, method, path string, body interface{}, role models.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _, err := s.tokens.Issue("u1", "ops@example.com", role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestRouterStoredPeopleFeedGeneration(t *testing.T) {
	srv := newTestServer(t)

	person := map[string]interface{}{
		"blockedIntervals": []map[string]string{{"day": "Monday", "start": "09:00", "end": "10:00", "label": "Gym"}},
		"compatibleWith":   []string{},
	}
	w := srv.do(t, http.MethodPut, "/api/v1/people/Ana", person, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = srv.do(t, http.MethodPut, "/api/v1/people/Ana", person, models.RoleTutor)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = srv.do(t, http.MethodPut, "/api/v1/people/Ana", person, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	request := map[string]interface{}{
		"personProfiles": []map[string]interface{}{
			{"name": "Ana", "subjects": []map[string]interface{}{{"type": "daily", "name": "Math", "dailyMinutes": 60}}},
		},
		"calendar":       map[string]interface{}{"days": []string{"Monday"}, "startTime": "09:00", "endTime": "17:00"},
		"lunchTime":      "12:00",
		"usePeopleStore": true,
	}
	w = srv.do(t, http.MethodPost, "/api/v1/schedules/generate", request, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Data struct {
			Blocks []struct {
				Start string `json:"start"`
				Type  string `json:"type"`
				Label string `json:"label"`
			} `json:"blocks"`
			Success bool `json:"success"`
		} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Data.Success)
	assert.Equal(t, false, env.Meta["cache_hit"])

	var session, blocked string
	for _, block := range env.Data.Blocks {
		switch block.Type {
		case "session":
			session = block.Start
		case "blocked":
			blocked = block.Label
		}
	}
	assert.Equal(t, "10:00", session, "the stored gym block pushes the session back")
	assert.Equal(t, "Gym", blocked)
}

func TestRouterDeleteAndRestore(t *testing.T) {
	srv := newTestServer(t)
	person := map[string]interface{}{"compatibleWith": []string{"Ben"}}
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPut, "/api/v1/people/Ana", person, models.RoleAdmin).Code)

	require.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/v1/people/Ana", nil, models.RoleAdmin).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/v1/people/Ana", nil, "").Code)

	w := srv.do(t, http.MethodGet, "/api/v1/people/deletions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deletedBy":"ops@example.com"`)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/v1/people/deletions/Ana/restore", nil, models.RoleAdmin).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/api/v1/people/Ana", nil, "").Code)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health", nil, "").Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/ready", nil, "").Code)

	w := srv.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/v1/metrics/summary", nil, "").Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/api/v1/metrics/summary", nil, models.RoleViewer).Code)
}

func TestRouterStoredCompatiblePeopleShareSession(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPut, "/api/v1/people/Ana%20Lee", map[string]interface{}{"compatibleWith": []string{"Bo"}}, models.RoleAdmin)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPut, "/api/v1/people/Ana_Lee", map[string]interface{}{"compatibleWith": []string{"Bo"}}, models.RoleAdmin).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPut, "/api/v1/people/Bo", map[string]interface{}{"compatibleWith": []string{"Ana_Lee"}}, models.RoleAdmin).Code)

	math := []map[string]interface{}{{"type": "daily", "name": "Math", "dailyMinutes": 60}}
	request := map[string]interface{}{
		"personProfiles": []map[string]interface{}{
			{"name": "Ana_Lee", "subjects": math},
			{"name": "Bo", "subjects": math},
		},
		"calendar":       map[string]interface{}{"days": []string{"Monday"}, "startTime": "09:00", "endTime": "17:00"},
		"lunchTime":      "12:00",
		"usePeopleStore": true,
	}
	w = srv.do(t, http.MethodPost, "/api/v1/schedules/generate", request, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Data struct {
			Blocks []struct {
				Start  string   `json:"start"`
				Type   string   `json:"type"`
				Person string   `json:"person"`
				People []string `json:"people"`
			} `json:"blocks"`
			Success bool `json:"success"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Data.Success)

	var sessions int
	for _, block := range env.Data.Blocks {
		if block.Type != "session" {
			continue
		}
		sessions++
		assert.Equal(t, "09:00", block.Start)
		assert.Empty(t, block.Person)
		assert.ElementsMatch(t, []string{"Ana_Lee", "Bo"}, block.People)
	}
	assert.Equal(t, 1, sessions)
}
