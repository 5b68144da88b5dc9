package handler

import (
	"time"

	"energy-server/internal/config"
	"energy-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(r *gin.Engine) {
	cfg := config.Get()

	// 全局中间件
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(gin.Recovery())

	// 安全响应头
	if cfg.Security.EnableSecurityHeaders {
		r.Use(middleware.SecurityHeadersMiddleware())
	}

	// 速率限制器
	limiter := middleware.NewRateLimiter(100, time.Minute)    // 普通接口：每分钟100次
	authLimiter := middleware.NewRateLimiter(10, time.Minute) // 认证接口：每分钟10次

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API 路由组
	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limiter))

	// API 健康检查（供 Docker/K8s 使用）
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "energy-server"})
	})

	// 初始化 Handler
	authHandler := NewAuthHandler()
	orgHandler := NewOrganizationHandler()
	memberHandler := NewMemberHandler()
	invitationHandler := NewInvitationHandler()
	sharingHandler := NewEnergySharingHandler()
	contractHandler := NewEnergyContractHandler()
	recordHandler := NewEnergyRecordHandler()
	statsHandler := NewStatisticsHandler()
	auditHandler := NewAuditHandler()
	exportHandler := NewExportHandler()
	webhookHandler := NewWebhookHandler()

	// ==================== 公开接口 ====================
	// 认证接口使用更严格的速率限制
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware(authLimiter))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/accept-invite", invitationHandler.AcceptInvite) // 凭邀请 Token 加入组织
	}

	// 邀请 Token 预检（接受邀请页面使用）
	api.GET("/invitations/validate/:token", invitationHandler.Validate)

	// CSRF Token
	api.GET("/csrf-token", middleware.GenerateCSRFToken)

	// ==================== 需要认证的接口 ====================
	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		// 用户信息
		authenticated.GET("/auth/profile", authHandler.GetProfile)
		authenticated.PUT("/auth/password", authHandler.ChangePassword)

		// 组织
		authenticated.POST("/orgs", orgHandler.Create)
		authenticated.GET("/orgs", orgHandler.List)

		// 能源共享（用户维度，不经过组织上下文）
		sharings := authenticated.Group("/energy-sharings")
		{
			sharings.POST("", sharingHandler.Propose)
			sharings.GET("", sharingHandler.List)
			sharings.GET("/:id", sharingHandler.Get)
			sharings.POST("/:id/accept", sharingHandler.Accept)
			sharings.POST("/:id/activate", sharingHandler.Activate)
			sharings.POST("/:id/complete", sharingHandler.Complete)
			sharings.POST("/:id/rate", sharingHandler.Rate)
			sharings.DELETE("/:id", sharingHandler.Cancel)
		}

		// 用户维度统计与导出
		authenticated.GET("/statistics/my-sharings", statsHandler.MySharingStats)
		authenticated.GET("/statistics/sharing-trend", statsHandler.SharingTrend)
		authenticated.GET("/export/energy-sharings", exportHandler.ExportSharings)
	}

	// ==================== 组织上下文接口 ====================
	org := api.Group("/orgs/:org_id")
	org.Use(middleware.AuthMiddleware())
	org.Use(middleware.OrganizationMiddleware())
	org.Use(middleware.AuditMiddleware())
	{
		// 组织管理
		org.GET("", orgHandler.Get)
		org.PUT("", middleware.PermissionMiddleware("org:update"), orgHandler.Update)
		org.DELETE("", middleware.OwnerMiddleware(), orgHandler.Delete)

		// 成员与角色
		org.GET("/members", middleware.PermissionMiddleware("member:read"), memberHandler.List)
		org.PUT("/members/:user_id/role", middleware.PermissionMiddleware("member:update"), memberHandler.UpdateRole)
		org.DELETE("/members/:user_id", middleware.PermissionMiddleware("member:remove"), memberHandler.Remove)
		org.GET("/roles", middleware.PermissionMiddleware("member:read"), memberHandler.ListRoles)

		// 邀请管理
		invitations := org.Group("/invitations")
		invitations.Use(middleware.PermissionMiddleware("member:invite"))
		{
			invitations.POST("", invitationHandler.Create)
			invitations.GET("", invitationHandler.List)
			invitations.POST("/:id/revoke", invitationHandler.Revoke)
			invitations.POST("/:id/resend", invitationHandler.Resend)
		}

		// 合同管理
		contracts := org.Group("/contracts")
		{
			contracts.POST("", middleware.PermissionMiddleware("contract:create"), contractHandler.Create)
			contracts.GET("", middleware.PermissionMiddleware("contract:read"), contractHandler.List)
			contracts.GET("/:id", middleware.PermissionMiddleware("contract:read"), contractHandler.Get)
			contracts.POST("/:id/approve", middleware.PermissionMiddleware("contract:approve"), contractHandler.Approve)
			contracts.POST("/:id/suspend", middleware.PermissionMiddleware("contract:suspend"), contractHandler.Suspend)
			contracts.POST("/:id/resume", middleware.PermissionMiddleware("contract:suspend"), contractHandler.Resume)
			contracts.POST("/:id/terminate", middleware.PermissionMiddleware("contract:terminate"), contractHandler.Terminate)
		}

		// 用电记录
		records := org.Group("/records")
		{
			records.POST("", middleware.PermissionMiddleware("record:create"), recordHandler.Create)
			records.GET("", middleware.PermissionMiddleware("record:read"), recordHandler.List)
		}

		// 统计数据
		stats := org.Group("/statistics")
		stats.Use(middleware.PermissionMiddleware("stats:read"))
		{
			stats.GET("/dashboard", statsHandler.Dashboard)
			stats.GET("/energy-summary", statsHandler.EnergySummary)
			stats.GET("/source-distribution", statsHandler.SourceDistribution)
		}

		// 审计日志
		audit := org.Group("/audit")
		audit.Use(middleware.PermissionMiddleware("audit:read"))
		{
			audit.GET("", auditHandler.List)
			audit.GET("/stats", auditHandler.GetStats)
			audit.GET("/:id", auditHandler.Get)
		}

		// 数据导出
		export := org.Group("/export")
		export.Use(middleware.PermissionMiddleware("export:read"))
		{
			export.GET("/formats", exportHandler.GetExportFormats)
			export.GET("/contracts", exportHandler.ExportContracts)
			export.GET("/records", exportHandler.ExportRecords)
			export.GET("/audit-logs", exportHandler.ExportAuditLogs)
		}

		// Webhook 管理
		webhooks := org.Group("/webhooks")
		webhooks.Use(middleware.PermissionMiddleware("webhook:manage"))
		{
			webhooks.POST("", webhookHandler.Create)
			webhooks.GET("", webhookHandler.List)
			webhooks.PUT("/:id", webhookHandler.Update)
			webhooks.DELETE("/:id", webhookHandler.Delete)
			webhooks.GET("/:id/logs", webhookHandler.ListLogs)
		}
	}
}
