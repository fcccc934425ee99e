package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-sales-agent/internal/auth"
	"go-sales-agent/internal/database"
	"go-sales-agent/internal/gateway"
	"go-sales-agent/internal/handlers"
	"go-sales-agent/internal/middleware"
	"go-sales-agent/internal/models"
	"go-sales-agent/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var seedUsers = []models.User{
	{Username: "gokul", Password: "admin123", Name: "Gokul", Role: models.RoleAdmin},
	{Username: "ravi", Password: "sales123", Name: "Ravi Kumar", Role: models.RoleSalesman, SalesmanID: "SM001"},
	{Username: "priya", Password: "sales123", Name: "Priya Sharma", Role: models.RoleSalesman, SalesmanID: "SM002"},
}

// remoteService is a minimal stand-in for the sales-tracking service.
type remoteService struct {
	mu    sync.Mutex
	down  atomic.Bool
	sales []models.Sale
}

func (s *remoteService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.down.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	switch r.Method + " " + r.URL.Path {
	case "POST /api/login":
		var creds struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		for _, u := range seedUsers {
			if u.Username == creds.Username && u.Password == creds.Password {
				reply(http.StatusOK, map[string]any{"success": true, "user": u})
				return
			}
		}
		reply(http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
	case "GET /api/users":
		reply(http.StatusOK, seedUsers)
	case "GET /api/products":
		reply(http.StatusOK, []map[string]any{
			{"Brand": "Acme", "Item Code": "AC-1", "RSP+Vat": 25},
			{"brand": "Zen", "itemCode": "ZN-2", "price": 40},
		})
	case "GET /api/sales":
		q := r.URL.Query()
		f := models.Filter{SalesmanID: q.Get("salesmanId"), Date: q.Get("date"), Month: q.Get("month")}
		out := []models.Sale{}
		for _, sale := range s.sales {
			if f.Matches(sale) {
				out = append(out, sale)
			}
		}
		reply(http.StatusOK, out)
	case "POST /api/sales":
		var sale models.Sale
		_ = json.NewDecoder(r.Body).Decode(&sale)
		sale.ID = models.RecordID("100")
		s.sales = append(s.sales, sale)
		reply(http.StatusCreated, map[string]any{"sale": sale})
	case "GET /api/leaves":
		reply(http.StatusOK, []models.Leave{})
	default:
		reply(http.StatusNotFound, map[string]any{"error": "no route"})
	}
}

type stubAssistant struct{}

func (stubAssistant) Ask(_ context.Context, msg string) (string, error) {
	return "you asked: " + msg, nil
}

type testEnv struct {
	router *gin.Engine
	remote *remoteService
	gw     *gateway.Gateway
}

func setupServer(t *testing.T, assistant handlers.Assistant) *testEnv {
	t.Helper()
	db, err := database.Connect(database.Options{Driver: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	st, err := store.New(db)
	require.NoError(t, err)

	remote := &remoteService{}
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	gw := gateway.New(srv.URL, st, gateway.WithTimeout(2*time.Second))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>tracker</html>"), 0o644))

	r := NewRouter(handlers.New(gw, tokens, assistant), tokens, Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		WebDir:         webDir,
		LoginLimiter:   middleware.NewRateLimiter(100, time.Minute),
	})
	return &testEnv{router: r, remote: remote, gw: gw}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.User.Password)
	return resp.Token
}

func TestLogin(t *testing.T) {
	env := setupServer(t, nil)

	assert.NotEmpty(t, env.login(t, "ravi", "sales123"))

	w := env.do(t, http.MethodPost, "/api/login", "", `{"username":"ravi","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/login", "", `{"username":"ravi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalesmanAddsSaleOnlineAndOffline(t *testing.T) {
	env := setupServer(t, nil)
	token := env.login(t, "ravi", "sales123")

	w := env.do(t, http.MethodPost, "/api/sales", token, `{"itemCode":"AC-1","quantity":2,"date":"2024-03-05"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Sale models.Sale `json:"sale"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "SM001", created.Sale.SalesmanID)
	assert.Equal(t, "Acme", created.Sale.Brand)
	assert.Equal(t, "50", created.Sale.TotalAmount.Decimal.String())

	w = env.do(t, http.MethodPost, "/api/sales", token, `{"itemCode":"NOPE","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.remote.down.Store(true)
	w = env.do(t, http.MethodPost, "/api/sales", token, `{"itemCode":"ZN-2","quantity":1,"date":"2024-03-05"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"offline":true`)

	w = env.do(t, http.MethodGet, "/api/sales?date=2024-03-05&salesmanId=SM002", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	for _, s := range listed {
		assert.Equal(t, "SM001", s.SalesmanID)
	}

	w = env.do(t, http.MethodGet, "/api/system/status", "", "")
	assert.Contains(t, w.Body.String(), `"pending_writes":1`)
	assert.Contains(t, w.Body.String(), `"online":false`)
}

func TestRoleGuards(t *testing.T) {
	env := setupServer(t, nil)
	salesman := env.login(t, "ravi", "sales123")
	admin := env.login(t, "gokul", "admin123")

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/users", "", "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/users", salesman, "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/sales", admin, `{"itemCode":"AC-1","quantity":1}`).Code)

	w := env.do(t, http.MethodGet, "/api/users", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var salesmen []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &salesmen))
	require.Len(t, salesmen, 2)
	assert.Empty(t, salesmen[0].Password)
}

func TestAdminReports(t *testing.T) {
	env := setupServer(t, nil)
	salesman := env.login(t, "ravi", "sales123")
	admin := env.login(t, "gokul", "admin123")
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/sales", salesman, `{"itemCode":"AC-1","quantity":4,"date":"2024-03-05"}`).Code)

	w := env.do(t, http.MethodGet, "/api/reports/dashboard?view=monthly&date=2024-03", admin, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Report struct {
			Period       string           `json:"period"`
			TopPerformer *map[string]any  `json:"topPerformer"`
			Salesmen     []map[string]any `json:"salesmen"`
		} `json:"report"`
		TotalSalesFmt string `json:"totalSalesFmt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2024-03", resp.Report.Period)
	assert.Equal(t, "AED 100.00", resp.TotalSalesFmt)
	require.NotNil(t, resp.Report.TopPerformer)
	assert.Len(t, resp.Report.Salesmen, 2)

	w = env.do(t, http.MethodGet, "/api/reports/dashboard?date=03/05/2024", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/products/export.csv", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Brand,Item Code,Price\nAcme,AC-1,25.00\nZen,ZN-2,40.00\n", w.Body.String())

	w = env.do(t, http.MethodGet, "/api/reports/sales/export.xlsx?view=monthly&date=2024-03", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sales-2024-03.xlsx")
}

func TestAskAI(t *testing.T) {
	env := setupServer(t, nil)
	admin := env.login(t, "gokul", "admin123")
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/ask", admin, `{"message":"hi"}`).Code)

	env = setupServer(t, stubAssistant{})
	admin = env.login(t, "gokul", "admin123")
	w := env.do(t, http.MethodPost, "/api/ask", admin, `{"message":"top brand?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"you asked: top brand?"}`, w.Body.String())
}

func TestSPAFallback(t *testing.T) {
	env := setupServer(t, nil)
	w := env.do(t, http.MethodGet, "/dashboard", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tracker")
}
