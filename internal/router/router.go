package router

import (
	"equip-go/internal/config"
	"equip-go/internal/handler"
	"equip-go/internal/metrics"
	"equip-go/internal/middleware"
	"equip-go/internal/report"
	"equip-go/internal/repository"
	"equip-go/internal/service"
	"equip-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps 路由依赖
type Deps struct {
	Config         *config.Config
	JWTManager     *utils.JWTManager
	Logger         *logrus.Logger
	DB             *gorm.DB
	DatasetService *service.DatasetService
	Renderer       *report.Renderer
	Metrics        *metrics.Metrics
}

// SetupRouter 设置路由
func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config

	// 设置Gin模式
	if cfg.Server.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Dataset.MaxUploadBytes()

	// 全局中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.LoggerMiddleware(d.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg))

	// 健康检查
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "设备数据分析系统 API",
			"version": "1.0.0",
		})
	})

	if cfg.Metrics.Enabled && d.Metrics != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(d.Metrics.Handler()))
	}

	// 初始化Repository
	userRepo := repository.NewUserRepository(d.DB)

	// 初始化Service
	authService := service.NewAuthService(userRepo, d.JWTManager, cfg)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	datasetHandler := handler.NewDatasetHandler(d.DatasetService, cfg.Dataset.MaxUploadBytes())
	reportHandler := handler.NewReportHandler(d.DatasetService, d.Renderer, d.Metrics)
	adminHandler := handler.NewAdminHandler(authService)

	// API路由组
	api := r.Group("/api")
	{
		// 公开路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 认证路由
		authorized := api.Group("")
		authorized.Use(middleware.AuthMiddleware(d.JWTManager))
		{
			// 用户信息
			authorized.GET("/me", authHandler.GetMe)
			authorized.POST("/logout", authHandler.Logout)

			// 数据集
			authorized.POST("/upload", datasetHandler.Upload)
			authorized.GET("/summary", datasetHandler.GetSummary)
			authorized.GET("/summary/:id", datasetHandler.GetSummary)
			authorized.GET("/history", datasetHandler.History)
			authorized.GET("/dataset/:id", datasetHandler.GetDataset)
			authorized.GET("/dataset/:id/csv", datasetHandler.DownloadCSV)
			authorized.DELETE("/dataset/:id", datasetHandler.DeleteDataset)

			// 报告
			authorized.GET("/dataset/:id/pdf", reportHandler.DownloadPDF)

			// 管理员接口
			adminGroup := authorized.Group("/admin")
			adminGroup.Use(middleware.AdminMiddleware())
			{
				adminGroup.GET("/users", adminHandler.ListUsers)
				adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
			}
		}
	}

	return r
}
