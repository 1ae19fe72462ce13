package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/healthsphere/internal/ai"
	"github.com/xxxsen/healthsphere/internal/config"
	"github.com/xxxsen/healthsphere/internal/db"
	"github.com/xxxsen/healthsphere/internal/filestore"
	"github.com/xxxsen/healthsphere/internal/handler"
	"github.com/xxxsen/healthsphere/internal/job"
	"github.com/xxxsen/healthsphere/internal/middleware"
	"github.com/xxxsen/healthsphere/internal/ocr"
	"github.com/xxxsen/healthsphere/internal/repo"
	"github.com/xxxsen/healthsphere/internal/schedule"
	"github.com/xxxsen/healthsphere/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "healthsphere",
		Short: "healthsphere backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run healthsphere server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model),
	)

	userRepo := repo.NewUserRepo(database)
	checkinRepo := repo.NewCheckinRepo(database)
	chatRepo := repo.NewChatRepo(database)
	uploadRepo := repo.NewUploadRepo(database)
	reportRepo := repo.NewReportRepo(database)
	feedbackRepo := repo.NewFeedbackRepo(database)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	aiClient := ai.NewClient(aiProvider, cfg.AI.Model, time.Duration(cfg.AI.Timeout)*time.Second)

	extractor, err := ocr.New(cfg.OCR.Provider, cfg.OCR.Data)
	if err != nil {
		return fmt.Errorf("init ocr extractor: %w", err)
	}
	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	contextService := service.NewContextService(checkinRepo, chatRepo)
	checkinService := service.NewCheckinService(checkinRepo, contextService, aiClient)
	reportService := service.NewReportService(uploadRepo, reportRepo, extractor, store, aiClient)
	chatService := service.NewChatService(contextService, chatRepo, aiClient)
	dashboardService := service.NewDashboardService(checkinRepo, uploadRepo, chatRepo)
	exportService := service.NewExportService(checkinRepo, reportRepo, chatRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Checkins:  handler.NewCheckinHandler(checkinService),
		Reports:   handler.NewReportHandler(reportService),
		Chat:      handler.NewChatHandler(chatService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Feedback:  handler.NewFeedbackHandler(feedbackService),
		Export:    handler.NewExportHandler(exportService),
		AI:        handler.NewAIHandler(aiClient),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	backfill := job.NewAnalysisBackfillJob(checkinService, 20)
	if err := scheduler.AddJob(backfill, cfg.BackfillSpec); err != nil {
		return fmt.Errorf("schedule backfill job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
