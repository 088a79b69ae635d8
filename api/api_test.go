package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"livro/config"
	"livro/middleware"
	"livro/models"
	"livro/services"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	logs   *observer.ObservedLogs
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig.SessionSecret = "test-secret"
	config.AppConfig.SessionTTLHours = 1
	config.AppConfig.AdminEmailDomain = "villaregia.org"
	config.AppConfig.AdminCookieName = "adminAuth"

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Group{}, &models.Event{}, &models.Meeting{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)
	hub := services.NewHub(rdb, 10, log)
	cache := services.NewPageCache(rdb, 0, log)
	rv := services.NewRevalidator(cache, hub, log)

	r := gin.New()
	r.Use(middleware.AdminGate())
	RegisterRoutes(r, Services{
		DB:       db,
		RDB:      rdb,
		Groups:   services.NewGroupService(db, rv, log),
		Events:   services.NewEventService(db, rv, log),
		Meetings: services.NewMeetingService(db, rv, log),
		Book:     services.NewBookService(db, cache, log),
		Hub:      hub,
	}, log)

	return &testServer{router: r, db: db, logs: logs}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/admin/login", gin.H{"email": "ana@villaregia.org"})
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == "adminAuth" {
			s.cookie = c
		}
	}
	require.NotNil(t, s.cookie)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/admin/login", gin.H{"email": "eva@gmail.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decode(t, w)["sucesso"])

	w = s.do(t, http.MethodPost, "/admin/login", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/admin/grupos", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.login(t)
	assert.True(t, s.cookie.HttpOnly)
	w = s.do(t, http.MethodGet, "/admin/grupos", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/admin/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "adminAuth" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestGroupEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	w := s.do(t, http.MethodPost, "/admin/grupos", gin.H{"nome": "São José Jr.", "equipe": "Ana, Rui"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	grupo := decode(t, w)["grupo"].(map[string]interface{})
	assert.Equal(t, "sao-jose-jr", grupo["slug"])
	assert.Equal(t, []interface{}{"Ana", "Rui"}, grupo["equipe"])

	w = s.do(t, http.MethodPost, "/admin/grupos", gin.H{"nome": "Sao Jose Jr"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, services.ErrDuplicateSlug.Error(), decode(t, w)["erro"])

	w = s.do(t, http.MethodPut, "/admin/grupos", gin.H{"id": "sao-jose-jr", "nome": "SJ", "slug": "novo"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/admin/grupos/sao-jose-jr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SJ", decode(t, w)["grupo"].(map[string]interface{})["nome"])

	w = s.do(t, http.MethodPut, "/admin/grupos", gin.H{"id": "ghost", "nome": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.do(t, http.MethodPost, "/admin/grupos", gin.H{"nome": "Adultos"})
	w = s.do(t, http.MethodPost, "/admin/grupos/ordenar", gin.H{"ordem": []gin.H{{"id": "adultos", "ordem": 1}, {"id": "sao-jose-jr", "ordem": 2}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/admin/grupos/mover", gin.H{"grupoId": "sao-jose-jr", "direcao": "cima"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/admin/grupos/mover", gin.H{"id": "adultos", "direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/admin/grupos", gin.H{"grupoId": "adultos"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/admin/grupos", gin.H{"grupoId": "adultos"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMeetingEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	s.do(t, http.MethodPost, "/admin/grupos", gin.H{"nome": "Jovens"})
	w := s.do(t, http.MethodPost, "/admin/eventos", gin.H{"titulo": "festa", "data_inicio": "2026-06-20"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	evento := decode(t, w)["evento"].(map[string]interface{})
	assert.Equal(t, "FESTA", evento["titulo"])
	eventID := evento["id"].(string)

	w = s.do(t, http.MethodPost, "/admin/encontros", gin.H{"grupo_id": "jovens", "evento_id": eventID, "tipo": "encontro_regular", "data_inicio": "2026-05-10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/admin/encontros", gin.H{"tipo": "encontro_regular", "data_inicio": "2026-05-10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/admin/encontros", gin.H{"grupo_id": "jovens", "tipo": "encontro_regular", "data_inicio": "10/05/2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "dates are ISO")

	w = s.do(t, http.MethodPost, "/admin/encontros", gin.H{
		"evento_id":        eventID,
		"tipo":             "evento_especial",
		"data_inicio":      "2026-06-19",
		"nivel":            "organizacao",
		"mostrar_no_anual": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	meetingID := body["id"].(string)
	assert.Equal(t, false, body["encontro"].(map[string]interface{})["mostrar_no_anual"])

	w = s.do(t, http.MethodPut, "/admin/encontros", gin.H{"id": meetingID, "local": "Salão", "data_fim": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/admin/encontros/"+meetingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	encontro := decode(t, w)["encontro"].(map[string]interface{})
	assert.Equal(t, "Salão", encontro["local"])
	assert.Equal(t, "19/06/2026", encontro["data_label"])

	w = s.do(t, http.MethodDelete, "/admin/encontros", gin.H{"grupoId": meetingID})
	assert.Equal(t, http.StatusBadRequest, w.Code, "grupoId is not a meeting id")
	w = s.do(t, http.MethodGet, "/admin/encontros/"+meetingID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/admin/encontros", gin.H{"id": meetingID})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/admin/encontros", gin.H{"id": meetingID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	s.do(t, http.MethodPost, "/admin/grupos", gin.H{"nome": "Jovens"})
	s.do(t, http.MethodPost, "/admin/encontros", gin.H{"grupo_id": "jovens", "tipo": "encontro_regular", "data_inicio": "2026-05-10", "visibilidade": "publico"})
	s.cookie = nil

	w := s.do(t, http.MethodGet, "/livro", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["grupos"], 1)

	w = s.do(t, http.MethodGet, "/livro/calendario", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["meses"], 12)

	w = s.do(t, http.MethodGet, "/livro/jovens", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["encontros"], 1)

	w = s.do(t, http.MethodGet, "/livro/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/livro/evento/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorageFailure(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := s.do(t, http.MethodPost, "/admin/grupos", gin.H{"nome": "Jovens"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["sucesso"])
	assert.NotEmpty(t, body["erro"])

	logged := s.logs.FilterMessage("storage failure").All()
	require.Len(t, logged, 1)
	assert.Equal(t, "create group", logged[0].ContextMap()["op"])
}

func TestUnsupportedMethod(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	w := s.do(t, http.MethodPatch, "/admin/grupos", gin.H{})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Método não permitido", decode(t, w)["erro"])

	w = s.do(t, http.MethodGet, "/admin/nada", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["database"])
	assert.Equal(t, "ok", body["redis"])
	assert.EqualValues(t, 0, body["connections"])
}
