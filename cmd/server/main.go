package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"agroplan/internal/activity"
	"agroplan/internal/auth"
	"agroplan/internal/config"
	"agroplan/internal/crop"
	"agroplan/internal/inventory"
	"agroplan/internal/plan"
	"agroplan/internal/template"
	"agroplan/pkg/database"
	"agroplan/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting agroplan service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Services. Crop deletion needs the activity layer to purge schedules,
	// wired through an interface to keep package dependencies one-way.
	authService := auth.NewService(db, cfg.JWT)
	templateService := template.NewService(db, rdb)
	cropService := crop.NewService(db)
	inventoryService := inventory.NewService(db)
	activityService := activity.NewService(db, inventoryService)
	cropService.SetActivityPurger(activityService)
	planService := plan.NewService(templateService, cropService, activityService)

	authHandler := auth.NewHandler(authService)
	templateHandler := template.NewHandler(templateService)
	cropHandler := crop.NewHandler(cropService)
	inventoryHandler := inventory.NewHandler(inventoryService)
	activityHandler := activity.NewHandler(activityService, cropService)
	planHandler := plan.NewHandler(planService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
	}

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		protected.GET("/templates", templateHandler.ListTemplates)
		protected.POST("/templates", templateHandler.CreateTemplate)
		protected.GET("/templates/:id", templateHandler.GetTemplate)
		protected.PUT("/templates/:id", templateHandler.UpdateTemplate)
		protected.DELETE("/templates/:id", templateHandler.DeleteTemplate)

		protected.POST("/fields", cropHandler.CreateField)
		protected.GET("/fields", cropHandler.ListFields)
		protected.GET("/fields/:id", cropHandler.GetField)

		protected.POST("/crops", cropHandler.CreateCrop)
		protected.GET("/crops", cropHandler.ListCrops)
		protected.GET("/crops/:id", cropHandler.GetCrop)
		protected.PUT("/crops/:id/stage", cropHandler.AdvanceStage)
		protected.DELETE("/crops/:id", cropHandler.DeleteCrop)
		protected.GET("/crops/:id/plan", planHandler.PreviewForCrop)
		protected.GET("/crops/:id/activities", activityHandler.ListCropActivities)

		protected.POST("/activities", activityHandler.CreateActivity)
		protected.GET("/activities", activityHandler.ListActivities)
		protected.GET("/activities/:id", activityHandler.GetActivity)
		protected.PUT("/activities/:id/status", activityHandler.UpdateStatus)
		protected.DELETE("/activities/:id", activityHandler.DeleteActivity)

		protected.POST("/plans/preview", planHandler.GeneratePreview)
		protected.POST("/plans/confirm", planHandler.ConfirmPlan)
		protected.POST("/plans/apply-template", planHandler.ApplyTemplate)

		protected.POST("/materials", inventoryHandler.CreateMaterial)
		protected.GET("/materials", inventoryHandler.ListMaterials)
		protected.GET("/materials/export", inventoryHandler.Export)
		protected.GET("/materials/:id", inventoryHandler.GetMaterial)
		protected.POST("/materials/:id/transactions", inventoryHandler.RecordTransaction)
		protected.GET("/materials/:id/transactions", inventoryHandler.ListTransactions)
		protected.GET("/materials/:id/audit", inventoryHandler.Audit)
		protected.POST("/materials/:id/repair", inventoryHandler.Repair)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}
