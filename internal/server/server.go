package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"taskcompass/internal/config"
	"taskcompass/internal/handler"
	"taskcompass/internal/middleware"
	"taskcompass/internal/model"
	"taskcompass/internal/notify"
	"taskcompass/internal/refresh"
	"taskcompass/internal/report"
	"taskcompass/internal/repository"
	"taskcompass/internal/tasks"
	"taskcompass/internal/users"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine    *gin.Engine
	Config    *config.Config
	refresher *refresh.Refresher
}

func Init(cfg *config.Config) (*Server, error) {
	taskStore, userStore, err := openStores(cfg)
	if err != nil {
		return nil, err
	}

	taskSvc := tasks.NewService(taskStore)
	userSvc := users.NewService(userStore)

	ctx := context.Background()
	taskSvc.Refresh(ctx)
	userSvc.Refresh(ctx)
	if err := userSvc.EnsureAdmin(ctx, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("❌ failed to seed admin account: %w", err)
	}

	// Notification pipeline: differ per user, fan-out to channels.
	var channels []notify.Channel
	if cfg.SMTPHost != "" {
		channels = append(channels, notify.NewEmailChannel(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.NotifyFrom, userSvc,
		))
	}
	if cfg.TelegramToken != "" {
		channels = append(channels, notify.NewTelegramChannel(cfg.TelegramToken, cfg.TelegramChats))
	}
	dispatcher := notify.NewDispatcher(channels...)
	stateStore := notify.NewStateStore(filepath.Join(cfg.DataDir, "notify"))
	notifier := notify.NewNotifier(stateStore, dispatcher)

	// One idempotent refresh routine shared by the timer and the API.
	refresher := refresh.New(cfg.RefreshInterval, func(ctx context.Context) {
		taskList := taskSvc.Refresh(ctx)
		userList := userSvc.Refresh(ctx)
		notifier.Evaluate(taskList, userList)
	})

	// Mutations re-evaluate immediately instead of waiting for the poll.
	onChange := func() {
		notifier.Evaluate(taskSvc.Snapshot(), userSvc.Snapshot())
	}

	userHandler := handler.NewUserHandler(userSvc, cfg.JWTSecret)
	taskHandler := handler.NewTaskHandler(taskSvc, userSvc, onChange)
	dashboardHandler := handler.NewDashboardHandler(taskSvc, userSvc, report.NewGenerator())
	notificationHandler := handler.NewNotificationHandler(userSvc, dispatcher, refresher)

	r := gin.Default()

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.List)
		authorized.GET("/tasks/export", taskHandler.Export)
		authorized.POST("/tasks/import", taskHandler.Import)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.POST("/tasks/:id/toggle", taskHandler.Toggle)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)

		// Dashboard routes
		authorized.GET("/dashboard", dashboardHandler.Summary)
		authorized.GET("/schedule", dashboardHandler.Schedule)
		authorized.GET("/progress", dashboardHandler.Progress)
		authorized.GET("/progress/report", dashboardHandler.ProgressReport)

		// Notification routes
		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/refresh", notificationHandler.Refresh)

		// User management routes
		authorized.GET("/users", userHandler.List)
		authorized.POST("/users", userHandler.Create)
		authorized.DELETE("/users/:uid", userHandler.Delete)
	}

	return &Server{
		Engine:    r,
		Config:    cfg,
		refresher: refresher,
	}, nil
}

// openStores picks the durable backend from config: a postgres database via
// gorm, or the flat JSON files the backup format speaks.
func openStores(cfg *config.Config) (tasks.Store, users.Store, error) {
	switch cfg.StorageBackend {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
		)
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
		}
		if err := db.AutoMigrate(&model.Task{}, &model.UserAccount{}); err != nil {
			return nil, nil, fmt.Errorf("❌ failed to migrate schema: %w", err)
		}
		log.Println("✅ Connected to database")
		return repository.NewTaskRepository(db), repository.NewUserRepository(db), nil
	case "file":
		fileRepo := repository.NewFileRepository(cfg.DataDir)
		log.Printf("✅ Using JSON file storage in %s", cfg.DataDir)
		return fileRepo, fileRepo, nil
	default:
		return nil, nil, fmt.Errorf("❌ unknown storage backend %q", cfg.StorageBackend)
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	go s.refresher.Run(refreshCtx)

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")
	stopRefresh()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
