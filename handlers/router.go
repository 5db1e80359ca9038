package handlers

import (
	"net/http"

	"expense-tracker-backend/logger"
	"expense-tracker-backend/metrics"
	"expense-tracker-backend/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AppName     string
	CORSOrigins []string
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Errors      *ErrorRenderer
	Expenses    *ExpenseHandler
	Directory   *DirectoryHandler
}

func SetupRouter(cfg RouterConfig) *gin.Engine {
	middleware.SetupValidator()

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(logger.Recovery(cfg.Logger, func(c *gin.Context) {
		cfg.Errors.Internal(c, cfg.Errors.Language(c))
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "%s API running", cfg.AppName)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.AppName,
		})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Expenses
		api.GET("/expenses", cfg.Expenses.GetExpenses)
		api.POST("/expenses", cfg.Expenses.CreateExpense)
		api.DELETE("/expenses/:id", cfg.Expenses.DeleteExpense)

		// Reference data
		api.GET("/users", cfg.Directory.GetUsers)
		api.PUT("/users/:id/fcm-token", cfg.Directory.UpdateFCMToken)
		api.GET("/categories", cfg.Directory.GetCategories)
	}

	return r
}
