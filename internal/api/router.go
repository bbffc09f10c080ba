package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/taxiluck/tli-backend-go/internal/config"
	"github.com/taxiluck/tli-backend-go/internal/handler"
	"github.com/taxiluck/tli-backend-go/internal/middleware"
	"github.com/taxiluck/tli-backend-go/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc *service.AnalysisService, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// 健康检查
	analysisHandler := handler.NewAnalysisHandler(svc, logger)
	r.GET("/health", analysisHandler.Health)

	limited := r.Group("")
	if cfg.RateLimit > 0 {
		limited.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)))
	}
	{
		limited.GET("/analyze", analysisHandler.Analyze)
		limited.GET("/routes", analysisHandler.Routes)
	}

	return r
}
