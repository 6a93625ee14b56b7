package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/untangle-ph/untangle-backend/internal/config"
	"github.com/untangle-ph/untangle-backend/internal/handlers"
	"github.com/untangle-ph/untangle-backend/internal/middleware"
	"github.com/untangle-ph/untangle-backend/internal/models"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Member    *handlers.MemberHandler
	Purchase  *handlers.PurchaseHandler
	Session   *handlers.SessionHandler
	Dashboard *handlers.DashboardHandler
	Branch    *handlers.BranchHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	// Create router
	router := gin.New()
	router.Use(gin.Recovery())

	// Add middleware
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		public.GET("/metrics", gin.WrapH(promhttp.Handler()))

		// Auth routes
		auth := public.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		// Staff management. Registering accounts is admin-only.
		auth := protected.Group("/auth")
		{
			auth.GET("/me", h.Auth.Me)
			auth.POST("/register", middleware.RequireRole(models.RoleAdmin), h.Auth.Register)
		}

		// Member routes
		members := protected.Group("/members")
		{
			members.GET("", h.Member.ListMembers)
			members.GET("/:id", h.Member.GetMemberByID)
			members.GET("/mobile/:mobile", h.Member.GetMemberByMobile)
			members.POST("", h.Member.CreateMember)
			members.PUT("/:id", h.Member.UpdateMember)
			members.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), h.Member.PurgeMember)
		}

		// Purchase ledger routes
		purchases := protected.Group("/purchases")
		{
			purchases.GET("", h.Purchase.ListPurchases)
			purchases.GET("/:id", h.Purchase.GetPurchaseByID)
			purchases.POST("", h.Purchase.CreatePurchase)
			purchases.POST("/:id/rollover", h.Purchase.ApplyRollover)
			purchases.POST("/rollover-sweep", middleware.RequireRole(models.RoleAdmin, models.RoleManager), h.Purchase.SweepRollovers)
		}

		// Session routes
		sessions := protected.Group("/sessions")
		{
			sessions.GET("", h.Session.ListSessions)
			sessions.GET("/active", h.Session.GetActiveSessions)
			sessions.GET("/:id", h.Session.GetSessionByID)
			sessions.POST("/start", h.Session.StartSession)
			sessions.POST("/:id/end", h.Session.EndSession)
			sessions.POST("/:id/void", middleware.RequireRole(models.RoleAdmin, models.RoleManager), h.Session.VoidSession)
		}

		// Dashboard routes
		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/stats", h.Dashboard.GetOverallStats)
			dashboard.GET("/revenue", h.Dashboard.GetRevenueStats)
			dashboard.GET("/revenue/chart", h.Dashboard.GetRevenueChart)
			dashboard.GET("/top-usage", h.Dashboard.GetTopMembersByUsage)
			dashboard.GET("/top-spend", h.Dashboard.GetTopMembersBySpend)
			dashboard.GET("/members/expiring", h.Dashboard.GetExpiringMembers)
			dashboard.GET("/export/csv", middleware.RequireRole(models.RoleAdmin, models.RoleManager), h.Dashboard.ExportCSV)
			dashboard.GET("/export/json", middleware.RequireRole(models.RoleAdmin, models.RoleManager), h.Dashboard.ExportJSON)
		}

		// Branch routes
		branches := protected.Group("/branches")
		{
			branches.GET("", h.Branch.ListBranches)
			branches.GET("/:id", h.Branch.GetBranchByID)
			branches.POST("", middleware.RequireRole(models.RoleAdmin), h.Branch.CreateBranch)
		}
	}

	return router
}
