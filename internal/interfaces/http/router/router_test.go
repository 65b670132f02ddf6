package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/aquaportal/backend/docs"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/infrastructure/auth"
	"github.com/aquaportal/backend/internal/infrastructure/config"
	"github.com/aquaportal/backend/internal/interfaces/http/handler"
	"github.com/aquaportal/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(engine, WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("bills", "/bills")
		assert.Equal(t, "bills", g.Name())
		assert.Equal(t, "/bills", g.Prefix())
	})

	t.Run("methods", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })
		g.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
		g.PUT("/items/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		for method, want := range map[string]int{
			http.MethodGet:  http.StatusOK,
			http.MethodPost: http.StatusCreated,
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(method, "/api/v1/test/items", nil))
			assert.Equal(t, want, w.Code, method)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/test/items/7", nil))
		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("middleware reaches subgroups and nil entries are skipped", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("portal", "").Use(nil, func(c *gin.Context) {
			c.Header("X-Group", "portal")
			c.Next()
		})
		sub := g.Group("bills", "/bills")
		sub.GET("", nil, func(c *gin.Context) { c.String(http.StatusOK, "bills") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bills", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bills", w.Body.String())
		assert.Equal(t, "portal", w.Header().Get("X-Group"))
	})
}

func mountTestEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-access-secret-long-enough",
		RefreshSecret:          "router-test-refresh-secret-long-enough",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "water-portal",
	})

	engine := gin.New()
	engine.Use(middleware.RequestID())
	Mount(engine, Handlers{
		Auth:      handler.NewAuthHandler(nil),
		Profile:   handler.NewProfileHandler(nil),
		Bill:      handler.NewBillHandler(nil),
		Payment:   handler.NewPaymentHandler(nil),
		Complaint: handler.NewComplaintHandler(nil),
		Dashboard: handler.NewDashboardHandler(nil),
		System:    handler.NewSystemHandler("aquaportal", "test", nil),
	}, Guards{
		Authenticate: middleware.JWTAuth(middleware.JWTMiddlewareConfig{JWTService: jwtService}),
	}, Ops{
		MetricsPath:    "/metrics",
		MetricsHandler: func(c *gin.Context) { c.String(http.StatusOK, "# metrics") },
		DocsHandler:    ginSwagger.WrapHandler(swaggerFiles.Handler),
		DocsGuard:      middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: true}, nil),
	})
	return engine, jwtService
}

func TestMount_RouteTable(t *testing.T) {
	engine, _ := mountTestEngine(t)

	var got []string
	for _, route := range engine.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}
	sort.Strings(got)

	want := []string{
		"GET /api/v1/admin/complaints/pending-count",
		"GET /api/v1/admin/customers",
		"GET /api/v1/admin/dashboard",
		"GET /api/v1/bills",
		"GET /api/v1/bills/:id",
		"GET /api/v1/complaints",
		"GET /api/v1/complaints/:id/attachment",
		"GET /api/v1/dashboard",
		"GET /api/v1/payments",
		"GET /api/v1/profile",
		"GET /health",
		"GET /metrics",
		"GET /ready",
		"GET /swagger/*any",
		"POST /api/v1/admin/bills",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/logout",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/register",
		"POST /api/v1/bills/:id/payments",
		"POST /api/v1/complaints",
		"POST /api/v1/complaints/:id/attachment",
		"PUT /api/v1/admin/bills/:id/readings",
		"PUT /api/v1/admin/complaints/:id",
		"PUT /api/v1/admin/customers/:id",
		"PUT /api/v1/admin/payments/:id/review",
		"PUT /api/v1/profile",
	}
	assert.Equal(t, want, got)
}

func TestMount_Guards(t *testing.T) {
	engine, jwtService := mountTestEngine(t)

	customer, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		AccountID: uuid.New(),
		ProfileID: uuid.New(),
		Role:      identity.RoleCustomer,
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"portal route without token", http.MethodGet, "/api/v1/bills", "", http.StatusUnauthorized},
		{"admin route without token", http.MethodGet, "/api/v1/admin/dashboard", "", http.StatusUnauthorized},
		{"admin route as customer", http.MethodGet, "/api/v1/admin/dashboard", customer.AccessToken, http.StatusForbidden},
		{"logout without token", http.MethodPost, "/api/v1/auth/logout", "", http.StatusUnauthorized},
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"ready with no checks", http.MethodGet, "/ready", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"docs are served when enabled", http.MethodGet, "/swagger/doc.json", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMount_SwaggerDocsCoverEveryRoute(t *testing.T) {
	engine, _ := mountTestEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var spec struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spec))

	documented := 0
	for _, route := range engine.Routes() {
		if route.Path == "/metrics" || strings.HasPrefix(route.Path, "/swagger/") {
			continue
		}
		path := strings.ReplaceAll(route.Path, ":id", "{id}")
		_, ok := spec.Paths[path][strings.ToLower(route.Method)]
		assert.True(t, ok, "%s %s is missing from the API docs", route.Method, path)
		documented++
	}

	operations := 0
	for _, methods := range spec.Paths {
		operations += len(methods)
	}
	assert.Equal(t, documented, operations, "API docs describe routes that are not mounted")
}
