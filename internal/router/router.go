package router

import (
	"money-ledger/internal/config"
	"money-ledger/internal/handler"
	"money-ledger/internal/ledger"
	"money-ledger/internal/location"
	"money-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 地点补全是可选的外部依赖，关掉就换成空实现
	var resolver location.Resolver = location.Noop{}
	if cfg.Location.Enabled {
		resolver = location.NewHTTPResolver(cfg.Location.BaseURL)
	}
	service := ledger.NewService(db, resolver)

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	// 登录/注册接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, db))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)

	accountHandler := handler.NewAccountHandler(db)
	protected.POST("/accounts", accountHandler.CreateAccount)
	protected.GET("/accounts", accountHandler.ListAccounts)
	protected.PUT("/accounts/:id/balance", accountHandler.SetBalance)

	txnHandler := handler.NewTransactionHandler(db, service)
	protected.POST("/transactions", txnHandler.CreateTransaction)
	protected.GET("/transactions", txnHandler.ListTransactions)
	protected.PUT("/transactions/:id", txnHandler.UpdateTransaction)
	protected.DELETE("/transactions/:id", txnHandler.DeleteTransaction)

	holdingHandler := handler.NewHoldingHandler(db)
	protected.GET("/holdings", holdingHandler.ListHoldings)
	protected.GET("/patterns", holdingHandler.ListPatterns)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
