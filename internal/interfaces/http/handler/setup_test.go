package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	billingapp "github.com/aquaportal/backend/internal/application/billing"
	"github.com/aquaportal/backend/internal/application/dashboard"
	identityapp "github.com/aquaportal/backend/internal/application/identity"
	paymentapp "github.com/aquaportal/backend/internal/application/payment"
	"github.com/aquaportal/backend/internal/application/support"
	"github.com/aquaportal/backend/internal/domain/access"
	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/infrastructure/auth"
	"github.com/aquaportal/backend/internal/infrastructure/config"
	"github.com/aquaportal/backend/internal/infrastructure/persistence"
	"github.com/aquaportal/backend/internal/infrastructure/persistence/models"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/aquaportal/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	identity.PasswordCost = bcrypt.MinCost
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// testServer runs the handlers against the real services on an in-memory
// sqlite database, with redis replaced by miniredis.
type testServer struct {
	t        *testing.T
	db       *gorm.DB
	engine   *gin.Engine
	jwt      *auth.JWTService
	storage  *objectStore
	accounts *persistence.GormAccountRepository
	profiles *persistence.GormProfileRepository
	bills    *persistence.GormBillRepository
}

// objectStore keeps uploads in memory
type objectStore struct {
	objects map[string][]byte
}

func (s *objectStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *objectStore) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	return "https://files.test/" + key + "?sig=abc", time.Now().Add(15 * time.Minute), nil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-access-secret-long-enough",
		RefreshSecret:          "handler-test-refresh-secret-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "water-portal",
	})
	blacklist := auth.NewRedisTokenBlacklist(client)

	accounts := persistence.NewGormAccountRepository(db)
	profiles := persistence.NewGormProfileRepository(db)
	bills := persistence.NewGormBillRepository(db)
	payments := persistence.NewGormPaymentRepository(db)
	complaints := persistence.NewGormComplaintRepository(db)
	policy := access.NewPolicy()
	store := &objectStore{objects: map[string][]byte{}}

	authHandler := NewAuthHandler(identityapp.NewAuthService(accounts, profiles, persistence.NewGormRegistrationScope(db), jwtService, blacklist, nil))
	profileHandler := NewProfileHandler(identityapp.NewProfileService(accounts, profiles, policy, nil))
	billHandler := NewBillHandler(billingapp.NewBillService(bills, profiles, policy, nil, billingapp.DefaultBillServiceConfig()))
	paymentHandler := NewPaymentHandler(paymentapp.NewPaymentService(persistence.NewGormSettlementScope(db), payments, policy, nil))
	complaintHandler := NewComplaintHandler(support.NewComplaintService(complaints, store, policy, nil, 1<<10))
	dashboardHandler := NewDashboardHandler(dashboard.NewService(profiles, bills, payments, complaints, policy))

	engine := gin.New()
	engine.Use(middleware.RequestID())

	api := engine.Group("/api/v1")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	protected := api.Group("", middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Blacklist:  blacklist,
		Logger:     zap.NewNop(),
	}))
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", profileHandler.GetMyProfile)
	protected.PUT("/profile", profileHandler.UpdateMyProfile)
	protected.GET("/bills", billHandler.ListBills)
	protected.GET("/bills/:id", billHandler.GetBill)
	protected.POST("/bills/:id/payments", paymentHandler.RecordPayment)
	protected.GET("/payments", paymentHandler.ListPayments)
	protected.POST("/complaints", complaintHandler.FileComplaint)
	protected.GET("/complaints", complaintHandler.ListComplaints)
	protected.POST("/complaints/:id/attachment", complaintHandler.AttachFile)
	protected.GET("/complaints/:id/attachment", complaintHandler.AttachmentURL)
	protected.GET("/dashboard", dashboardHandler.CustomerSummary)

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.GET("/customers", profileHandler.ListCustomers)
	admin.PUT("/customers/:id", profileHandler.AdminUpdateProfile)
	admin.POST("/bills", billHandler.CreateBill)
	admin.PUT("/bills/:id/readings", billHandler.ReviseReadings)
	admin.PUT("/payments/:id/review", paymentHandler.ReviewPayment)
	admin.PUT("/complaints/:id", complaintHandler.RespondToComplaint)
	admin.GET("/complaints/pending-count", complaintHandler.CountPending)
	admin.GET("/dashboard", dashboardHandler.Overview)

	return &testServer{
		t:        t,
		db:       db,
		engine:   engine,
		jwt:      jwtService,
		storage:  store,
		accounts: accounts,
		profiles: profiles,
		bills:    bills,
	}
}

// user creates an account and profile and returns a bearer token for it
func (s *testServer) user(email string, admin bool, meter string) (*identity.Profile, string) {
	s.t.Helper()
	ctx := context.Background()

	account, err := identity.NewAccount(email, "password123")
	require.NoError(s.t, err)
	require.NoError(s.t, s.accounts.Create(ctx, account))

	profile, err := identity.NewProfile(account.ID, "Test User")
	require.NoError(s.t, err)
	profile.SetAdmin(admin)
	if meter != "" {
		require.NoError(s.t, profile.AssignMeter(meter))
	}
	require.NoError(s.t, s.profiles.Create(ctx, profile))

	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		AccountID: account.ID,
		ProfileID: profile.ID,
		Role:      profile.Role(),
	})
	require.NoError(s.t, err)
	return profile, pair.AccessToken
}

// bill stores a pending bill for the customer
func (s *testServer) bill(customerID uuid.UUID, previous, current string) *billing.Bill {
	s.t.Helper()
	b, err := billing.NewBill(billing.NewBillInput{
		CustomerID:      customerID,
		MeterNumber:     "MTR-001",
		PreviousReading: decimal.RequireFromString(previous),
		CurrentReading:  decimal.RequireFromString(current),
		RatePerUnit:     decimal.RequireFromString("50"),
		BillingMonth:    "January 2025",
		DueDate:         time.Now().Add(14 * 24 * time.Hour),
		Policy:          billing.ReadingPolicyPreserve,
	})
	require.NoError(s.t, err)
	require.NoError(s.t, s.bills.Create(context.Background(), b))
	return b
}

// do sends a JSON request and returns the recorder
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// envelope is the decoded response with typed data
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// errorCode returns the error code of a failed response
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode[json.RawMessage](t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
