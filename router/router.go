package router

import (
	"time"

	"moneybook/api"
	"moneybook/config"
	_ "moneybook/docs"
	"moneybook/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		passwordResetHandler := api.NewPasswordResetHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)

			// 密码重置
			auth.POST("/password/request-reset", passwordResetHandler.RequestReset)
			auth.POST("/password/reset", passwordResetHandler.ResetPassword)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 消费流水
			txHandler := api.NewTransactionHandler()
			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", txHandler.Create)
				transactions.GET("", txHandler.List)
				transactions.GET("/:id", txHandler.Get)
				transactions.PUT("/:id", txHandler.Update)
				transactions.DELETE("/:id", txHandler.Delete)
			}

			// 预算目标
			goalHandler := api.NewGoalHandler()
			goals := authorized.Group("/goals")
			{
				goals.PUT("", goalHandler.Save)
				goals.GET("", goalHandler.List)
				goals.DELETE("/:id", goalHandler.Delete)
			}

			// 预算对比与统计
			budgetHandler := api.NewBudgetHandler()
			authorized.GET("/budget/comparison", budgetHandler.GetComparison)
			authorized.GET("/statistics", budgetHandler.GetStatistics)
			authorized.GET("/statistics/monthly", budgetHandler.GetMonthlyStatistics)

			// 消费洞察
			insightHandler := api.NewInsightHandler(cfg)
			authorized.GET("/insights", insightHandler.Get)

			// 导出
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
