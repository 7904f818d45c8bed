package router

import (
	"io/fs"
	"net/http"
	"time"

	"homefinance/api"
	"homefinance/config"
	_ "homefinance/docs"
	"homefinance/middleware"
	"homefinance/service"
	"homefinance/web"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
// provider 为 nil 时银行相关接口返回未启用错误
func SetupRouter(cfg *config.Config, provider service.BankingProvider) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 嵌入的静态文件 - 前端页面
	staticFS, _ := fs.Sub(web.StaticFS, ".")
	r.GET("/", func(c *gin.Context) {
		content, err := fs.ReadFile(staticFS, "index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "加载页面失败")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", content)
	})

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录，登录接口限流）
		authHandler := api.NewAuthHandler(cfg)
		passwordResetHandler := api.NewPasswordResetHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)

			// 密码重置
			auth.POST("/password/request-reset", middleware.LoginRateLimit(3, time.Minute), passwordResetHandler.RequestPasswordReset)
			auth.GET("/password/verify-token", passwordResetHandler.VerifyResetToken)
			auth.POST("/password/reset", passwordResetHandler.ResetPassword)
		}

		// 消费类别（无需登录）
		categoryHandler := api.NewCategoryHandler()
		v1.GET("/categories", categoryHandler.List)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 家庭创建与邀请接受不要求已在家庭中
			householdHandler := api.NewHouseholdHandler(cfg)
			authorized.POST("/households", householdHandler.CreateHousehold)
			authorized.POST("/households/invitations/accept", householdHandler.AcceptInvitation)

			// 家庭上下文路由：要求当前用户已是某家庭成员
			scoped := authorized.Group("")
			scoped.Use(middleware.HouseholdScope())
			{
				// 家庭与成员
				households := scoped.Group("/households")
				{
					households.GET("/mine", householdHandler.GetMyHousehold)
					households.GET("/members", householdHandler.ListMembers)
					households.POST("/leave", householdHandler.LeaveHousehold)
					households.GET("/invitations", householdHandler.ListInvitations)

					// 拥有者操作
					owner := households.Group("")
					owner.Use(middleware.RequireOwner())
					{
						owner.DELETE("/members/:id", householdHandler.RemoveMember)
						owner.POST("/invitations", householdHandler.CreateInvitation)
						owner.DELETE("/invitations/:id", householdHandler.RevokeInvitation)
					}
				}

				// 消费记录相关
				expenseHandler := api.NewExpenseHandler()
				expenses := scoped.Group("/expenses")
				{
					expenses.POST("", expenseHandler.Create)
					expenses.GET("", expenseHandler.List)
					expenses.GET("/statistics", expenseHandler.GetStatistics)
					expenses.GET("/detailed-statistics", expenseHandler.GetDetailedStatistics)
					expenses.GET("/:id", expenseHandler.Get)
					expenses.PUT("/:id", expenseHandler.Update)
					expenses.DELETE("/:id", expenseHandler.Delete)
					expenses.PUT("/:id/splits/:split_id/paid", expenseHandler.MarkSplitPaid)
				}

				// 收入相关
				incomeHandler := api.NewIncomeHandler()
				incomes := scoped.Group("/incomes")
				{
					incomes.POST("", incomeHandler.Create)
					incomes.GET("", incomeHandler.List)
					incomes.PUT("/:id", incomeHandler.Update)
					incomes.DELETE("/:id", incomeHandler.Delete)
				}

				// 结算相关
				settlementHandler := api.NewSettlementHandler()
				settlements := scoped.Group("/settlements")
				{
					settlements.GET("/balances", settlementHandler.GetBalances)
					settlements.POST("", settlementHandler.Settle)
				}

				// 预算相关（设置与删除仅限拥有者）
				budgetHandler := api.NewBudgetHandler()
				budgets := scoped.Group("/budgets")
				{
					budgets.GET("", budgetHandler.List)
					budgets.GET("/status", budgetHandler.GetStatus)

					budgetOwner := budgets.Group("")
					budgetOwner.Use(middleware.RequireOwner())
					{
						budgetOwner.PUT("/monthly", budgetHandler.SetMonthlyBudget)
						budgetOwner.PUT("/category", budgetHandler.SetCategoryBudget)
						budgetOwner.DELETE("/monthly/:id", budgetHandler.DeleteMonthlyBudget)
						budgetOwner.DELETE("/category/:id", budgetHandler.DeleteCategoryBudget)
					}
				}

				// 周期性消费相关
				recurringHandler := api.NewRecurringHandler()
				recurring := scoped.Group("/recurring")
				{
					recurring.POST("", recurringHandler.Create)
					recurring.GET("", recurringHandler.List)
					recurring.GET("/preview", recurringHandler.Preview)
					recurring.POST("/materialize", recurringHandler.Materialize)
					recurring.PUT("/:id", recurringHandler.Update)
					recurring.DELETE("/:id", recurringHandler.Delete)
					recurring.PUT("/:id/active", recurringHandler.SetActive)
				}

				// 储蓄目标相关
				goalHandler := api.NewGoalHandler()
				goals := scoped.Group("/goals")
				{
					goals.POST("", goalHandler.Create)
					goals.GET("", goalHandler.List)
					goals.PUT("/:id", goalHandler.Update)
					goals.DELETE("/:id", goalHandler.Delete)
					goals.POST("/:id/contribute", goalHandler.Contribute)
				}

				// 银行连接与同步
				bankHandler := api.NewBankHandler(cfg, provider)
				banks := scoped.Group("/banks")
				{
					banks.GET("/institutions", bankHandler.ListInstitutions)
					banks.GET("/connections", bankHandler.ListConnections)
					banks.GET("/connections/:id/sync-logs", bankHandler.ListSyncLogs)
					banks.GET("/accounts", bankHandler.ListAccounts)

					// 连接管理与同步仅限拥有者
					bankOwner := banks.Group("")
					bankOwner.Use(middleware.RequireOwner())
					{
						bankOwner.POST("/connections", bankHandler.CreateConnection)
						bankOwner.POST("/connections/:id/complete", bankHandler.CompleteConnection)
						bankOwner.DELETE("/connections/:id", bankHandler.DeleteConnection)
						bankOwner.POST("/connections/:id/sync", bankHandler.Sync)
						bankOwner.POST("/accounts/:id/balance", bankHandler.RefreshBalance)
					}
				}

				// 导出相关
				exportHandler := api.NewExportHandler()
				export := scoped.Group("/export")
				{
					export.GET("/csv", exportHandler.ExportCSV)
					export.GET("/json", exportHandler.ExportJSON)
					export.GET("/excel", exportHandler.ExportExcel)
				}
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
