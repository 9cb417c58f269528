package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"equip-go/internal/config"
	"equip-go/internal/metrics"
	"equip-go/internal/models"
	"equip-go/internal/report"
	"equip-go/internal/repository"
	"equip-go/internal/service"
	"equip-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const csvBody = "Equipment Name,Type,Flowrate,Pressure,Temperature\n" +
	"Pump-1,Pump,100,5,110\n" +
	"Valve-1,Valve,50,,90\n"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.JWT.SecretKey = "test-secret"
	cfg.Admin.Password = "admin-pass"
	cfg.Dataset.RetentionCap = 2

	db, err := models.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtManager := utils.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Algorithm, time.Hour)
	authService := service.NewAuthService(repository.NewUserRepository(db), jwtManager, cfg)
	if err := authService.InitAdmin(); err != nil {
		t.Fatalf("init admin: %v", err)
	}

	m := metrics.New()
	engine := SetupRouter(Deps{
		Config:         cfg,
		JWTManager:     jwtManager,
		Logger:         logger,
		DB:             db,
		DatasetService: service.NewDatasetService(repository.NewDatasetRepository(db), cfg.Dataset.RetentionCap, logger).WithMetrics(m),
		Renderer:       report.NewRenderer(false),
		Metrics:        m,
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req, token)
	var env envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec, env := s.json("POST", "/api/login", "", map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body)
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	json.Unmarshal(env.Data, &resp)
	return resp.AccessToken
}

func (s *testServer) register(username, password string) string {
	s.t.Helper()
	rec, _ := s.json("POST", "/api/register", "", map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", username, rec.Code, rec.Body)
	}
	return s.login(username, password)
}

func (s *testServer) upload(token, filename, content string) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", filename)
	part.Write([]byte(content))
	w.Close()

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := s.do(req, token)
	var env envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestUploadSummaryReportFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register("alice", "secret1")

	rec, env := s.upload(token, "plant.csv", csvBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body)
	}
	var up struct {
		ID      uint   `json:"id"`
		Summary struct {
			TotalCount   int             `json:"total_count"`
			AvgPressure  *float64        `json:"avg_pressure"`
			Distribution json.RawMessage `json:"equipment_type_distribution"`
		} `json:"summary"`
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(env.Data, &up); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if up.Summary.TotalCount != 2 || up.Summary.AvgPressure == nil || *up.Summary.AvgPressure != 5 {
		t.Fatalf("summary = %+v", up.Summary)
	}
	if string(up.Summary.Distribution) != `{"Pump":1,"Valve":1}` {
		t.Fatalf("distribution = %s", up.Summary.Distribution)
	}
	if len(up.Data) != 2 || up.Data[1]["Pressure"] != nil {
		t.Fatalf("rows = %+v", up.Data)
	}

	rec, env = s.json("GET", "/api/summary", token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), `"filename":"plant.csv"`) {
		t.Fatalf("latest summary: %d %s", rec.Code, rec.Body)
	}

	pdf := s.do(httptest.NewRequest("GET", fmt.Sprintf("/api/dataset/%d/pdf", up.ID), nil), token)
	if pdf.Code != http.StatusOK || !strings.HasPrefix(pdf.Body.String(), "%PDF") {
		t.Fatalf("pdf: %d", pdf.Code)
	}
	if got := pdf.Header().Get("Content-Disposition"); got != fmt.Sprintf("attachment; filename=report_%d.pdf", up.ID) {
		t.Fatalf("content disposition = %q", got)
	}

	csv := s.do(httptest.NewRequest("GET", fmt.Sprintf("/api/dataset/%d/csv", up.ID), nil), token)
	if csv.Code != http.StatusOK || !strings.HasPrefix(csv.Body.String(), "Equipment Name,Type,") {
		t.Fatalf("csv: %d %s", csv.Code, csv.Body)
	}
}

func TestHistoryIsCappedAndOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "secret1")
	bob := s.register("bob_2", "secret2")

	var firstID uint
	for i := 0; i < 3; i++ {
		rec, env := s.upload(alice, fmt.Sprintf("f%d.csv", i), csvBody)
		if rec.Code != http.StatusCreated {
			t.Fatalf("upload: %d %s", rec.Code, rec.Body)
		}
		if i == 0 {
			var up struct {
				ID uint `json:"id"`
			}
			json.Unmarshal(env.Data, &up)
			firstID = up.ID
		}
	}

	_, env := s.json("GET", "/api/history", alice, nil)
	var items []struct {
		ID       uint   `json:"id"`
		Filename string `json:"filename"`
	}
	json.Unmarshal(env.Data, &items)
	if len(items) != 2 || items[0].Filename != "f2.csv" || items[1].Filename != "f1.csv" {
		t.Fatalf("history = %+v", items)
	}

	rec, _ := s.json("GET", fmt.Sprintf("/api/dataset/%d", firstID), alice, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("evicted dataset: %d", rec.Code)
	}
	rec, _ = s.json("GET", fmt.Sprintf("/api/dataset/%d", items[0].ID), bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign dataset: %d", rec.Code)
	}
	rec, _ = s.json("GET", "/api/summary", bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty latest: %d", rec.Code)
	}
}

func TestUploadRejectsMissingColumns(t *testing.T) {
	s := newTestServer(t)
	token := s.register("carol", "secret3")

	rec, env := s.upload(token, "bad.csv", "Equipment Name,Flowrate\nx,1\n")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(env.Message, "Type, Pressure, Temperature") {
		t.Fatalf("message = %q", env.Message)
	}

	_, env = s.json("GET", "/api/history", token, nil)
	if string(env.Data) != "[]" {
		t.Fatalf("history after rejected upload = %s", env.Data)
	}
}

func TestUploadRejectsRowsWiderThanHeader(t *testing.T) {
	s := newTestServer(t)
	token := s.register("frank", "secret6")

	rec, env := s.upload(token, "wide.csv", csvBody+"Pump-2,Pump,1,2,3,extra\n")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d %s", rec.Code, rec.Body)
	}
	if !strings.Contains(env.Message, "第3条记录") {
		t.Fatalf("message = %q", env.Message)
	}

	_, env = s.json("GET", "/api/history", token, nil)
	if string(env.Data) != "[]" {
		t.Fatalf("history after rejected upload = %s", env.Data)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.json("GET", "/api/history", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	rec, _ = s.json("GET", "/api/history", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.register("dave", "secret4")
	admin := s.login("admin", "admin-pass")

	rec, _ := s.json("GET", "/api/admin/users", user, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: %d", rec.Code)
	}

	rec, env := s.json("GET", "/api/admin/users", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list: %d %s", rec.Code, rec.Body)
	}
	var users []struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	json.Unmarshal(env.Data, &users)
	if env.Total != 2 {
		t.Fatalf("total users = %d", env.Total)
	}
	var daveID uint
	for _, u := range users {
		if u.Username == "dave" {
			daveID = u.ID
		}
	}
	if daveID == 0 {
		t.Fatalf("dave missing from %+v", users)
	}

	rec, _ = s.json("DELETE", fmt.Sprintf("/api/admin/users/%d", daveID), admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete user: %d %s", rec.Code, rec.Body)
	}
	rec, _ = s.json("GET", "/api/me", user, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted user me: %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.register("erin", "secret5")
	s.upload(token, "plant.csv", csvBody)

	rec := s.do(httptest.NewRequest("GET", "/metrics", nil), "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `equip_uploads_total{result="ok"} 1`) {
		t.Fatalf("metrics: %d\n%s", rec.Code, rec.Body)
	}
}
