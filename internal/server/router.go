package server

import (
	"net/http"
	"path/filepath"
	"time"

	"go-sales-agent/internal/auth"
	"go-sales-agent/internal/handlers"
	"go-sales-agent/internal/middleware"
	"go-sales-agent/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	WebDir         string
	LoginLimiter   *middleware.RateLimiter
}

// NewRouter wires every route of the sales agent.
func NewRouter(h *handlers.Handler, tokens *auth.TokenManager, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// --- The Bridge Configuration (SPA dev server) ---
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.GET("/api/system/status", h.GetSystemStatus)

	login := []gin.HandlerFunc{h.Login}
	if opts.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{opts.LoginLimiter.Middleware()}, login...)
	}
	r.POST("/api/login", login...)

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(tokens))
	{
		// ADMIN & SALESMAN
		api.GET("/products", h.GetProducts)
		api.GET("/products/:itemCode", h.LookupProduct)
		api.GET("/sales", h.GetSales)
		api.GET("/leaves", h.GetLeaves)
		api.POST("/sync", h.SyncNow)

		// SALESMAN ONLY
		salesman := api.Group("/")
		salesman.Use(middleware.RequireRole(models.RoleSalesman))
		{
			salesman.POST("/sales", h.AddSale)
			salesman.POST("/leaves", h.ApplyLeave)
			salesman.GET("/me/dashboard", h.MyDashboard)
		}

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", h.ListSalesmen)
			admin.POST("/users", h.CreateSalesman)
			admin.DELETE("/users/:salesmanId", h.DeleteSalesman)
			admin.PUT("/users/:salesmanId/password", h.ResetPassword)

			admin.DELETE("/sales/:id", h.DeleteSale)
			admin.PATCH("/leaves/:id", h.UpdateLeaveStatus)
			admin.DELETE("/leaves/:id", h.DeleteLeave)

			admin.GET("/reports/dashboard", h.AdminDashboard)
			admin.GET("/reports/leaves", h.LeaveReport)
			admin.GET("/reports/sales/export.xlsx", h.ExportSalesReport)
			admin.GET("/products/export.csv", h.ExportProductsCSV)
			admin.GET("/products/export.xlsx", h.ExportProductsXLSX)

			admin.POST("/ask", h.AskAI)
		}
	}

	// --- DEPLOYMENT: Serve the frontend ---
	if opts.WebDir != "" {
		r.Static("/assets", filepath.Join(opts.WebDir, "assets"))
		index := filepath.Join(opts.WebDir, "index.html")
		// SPA Catch-All: unknown paths get index.html so the frontend can route them
		r.NoRoute(func(c *gin.Context) {
			c.File(index)
		})
	}
	return r
}
