package router

import (
	"github.com/aquaportal/backend/internal/interfaces/http/handler"
	"github.com/aquaportal/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers of the portal
type Handlers struct {
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	Bill      *handler.BillHandler
	Payment   *handler.PaymentHandler
	Complaint *handler.ComplaintHandler
	Dashboard *handler.DashboardHandler
	System    *handler.SystemHandler
}

// Guards are the middleware placed on individual route groups. Only
// Authenticate is required.
type Guards struct {
	// Authenticate validates the bearer token
	Authenticate gin.HandlerFunc
	// AuthRateLimit throttles the unauthenticated auth endpoints per IP
	AuthRateLimit gin.HandlerFunc
	// RateLimit throttles authenticated requests per account
	RateLimit gin.HandlerFunc
	// Idempotency deduplicates payment submissions
	Idempotency gin.HandlerFunc
}

// Ops holds the operational endpoints served outside the API prefix
type Ops struct {
	MetricsPath    string
	MetricsHandler gin.HandlerFunc
	// DocsHandler serves the Swagger UI and spec under /swagger
	DocsHandler gin.HandlerFunc
	// DocsGuard runs before DocsHandler, see middleware.SwaggerProtection
	DocsGuard gin.HandlerFunc
}

// Mount registers the portal's routes on engine: the API under /api/v1
// and health, readiness, metrics and docs at the root.
func Mount(engine *gin.Engine, h Handlers, g Guards, ops Ops) {
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)
	if ops.MetricsHandler != nil && ops.MetricsPath != "" {
		engine.GET(ops.MetricsPath, ops.MetricsHandler)
	}
	if ops.DocsHandler != nil {
		engine.GET("/swagger/*any", compact([]gin.HandlerFunc{ops.DocsGuard, ops.DocsHandler})...)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))

	authRoutes := NewDomainGroup("auth", "/auth").Use(g.AuthRateLimit)
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.Refresh)
	authRoutes.POST("/logout", g.Authenticate, h.Auth.Logout)

	// Everything below requires a valid token
	portal := NewDomainGroup("portal", "").Use(g.Authenticate, g.RateLimit)

	portal.GET("/profile", h.Profile.GetMyProfile)
	portal.PUT("/profile", h.Profile.UpdateMyProfile)
	portal.GET("/dashboard", h.Dashboard.CustomerSummary)

	bills := portal.Group("bills", "/bills")
	bills.GET("", h.Bill.ListBills)
	bills.GET("/:id", h.Bill.GetBill)
	bills.POST("/:id/payments", g.Idempotency, h.Payment.RecordPayment)

	portal.GET("/payments", h.Payment.ListPayments)

	complaints := portal.Group("complaints", "/complaints")
	complaints.POST("", h.Complaint.FileComplaint)
	complaints.GET("", h.Complaint.ListComplaints)
	complaints.POST("/:id/attachment", h.Complaint.AttachFile)
	complaints.GET("/:id/attachment", h.Complaint.AttachmentURL)

	admin := portal.Group("admin", "/admin").Use(middleware.RequireAdmin())
	admin.GET("/customers", h.Profile.ListCustomers)
	admin.PUT("/customers/:id", h.Profile.AdminUpdateProfile)
	admin.POST("/bills", h.Bill.CreateBill)
	admin.PUT("/bills/:id/readings", h.Bill.ReviseReadings)
	admin.PUT("/payments/:id/review", h.Payment.ReviewPayment)
	admin.PUT("/complaints/:id", h.Complaint.RespondToComplaint)
	admin.GET("/complaints/pending-count", h.Complaint.CountPending)
	admin.GET("/dashboard", h.Dashboard.Overview)

	r.Register(authRoutes).Register(portal)
	r.Setup()
}
