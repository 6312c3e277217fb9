package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Asantha20535/docuverify-sub000/internal/api"
	"github.com/Asantha20535/docuverify-sub000/internal/config"
	"github.com/Asantha20535/docuverify-sub000/internal/db"
	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/pdf"
	"github.com/Asantha20535/docuverify-sub000/internal/services"
	"github.com/Asantha20535/docuverify-sub000/internal/utils"
	"github.com/Asantha20535/docuverify-sub000/internal/workflow"
	"github.com/Asantha20535/docuverify-sub000/pkg/logger"
	"github.com/Asantha20535/docuverify-sub000/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	var cfg *config.Configuration
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else {
		cfg = config.InitializeDefaultConfig()
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(zapLogger)

	database, err := db.Initialize(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	collector := metrics.NewCollector()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seedDatabase(ctx, database, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed database", zap.Error(err))
	}

	sessionService := services.NewSessionService(cfg.Security.SessionTimeout, zapLogger)
	defer sessionService.Close()

	documentService := services.NewDocumentService(database, cfg.Workflow.DefaultPaths, zapLogger, collector)
	templateService := services.NewTemplateService(database, zapLogger)

	resolver := pdf.NewResolver(pdf.DefaultLayout())
	stamper := pdf.NewStamper(resolver, zapLogger)

	store := db.NewStore(database)
	engine := workflow.NewEngine(store, stamper, zapLogger, collector)
	gateway := workflow.NewGateway(store, zapLogger, collector)

	router := api.NewRouter(api.RouterDeps{
		Logger:    zapLogger,
		Metrics:   collector,
		DB:        database,
		Sessions:  sessionService,
		Documents: documentService,
		Templates: templateService,
		Engine:    engine,
		Gateway:   gateway,
		MaxUpload: cfg.Upload.MaxUploadBytes,
	})
	router.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	go func() {
		if err := router.Run(":" + port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	sqlDB, err := database.DB()
	if err == nil {
		sqlDB.Close()
	}
	zapLogger.Info("Server gracefully stopped")
}

func seedDatabase(ctx context.Context, database *gorm.DB, logger *zap.Logger) error {
	var count int64
	database.Model(&models.User{}).Count(&count)
	if count > 0 {
		logger.Info("Database already seeded, skipping")
		return nil
	}
	logger.Info("Seeding database with initial data")

	passwordHash, err := utils.EncryptPassword("changeme123")
	if err != nil {
		return err
	}

	users := []models.User{
		{Username: "admin", Email: "admin@university.edu", PasswordHash: passwordHash, Role: models.RoleAdmin, FirstName: "Portal", LastName: "Admin", Department: "IT Services", ActiveStatus: true},
		{Username: "dean", Email: "dean@university.edu", PasswordHash: passwordHash, Role: models.RoleDean, FirstName: "Faculty", LastName: "Dean", Department: "Faculty Office", ActiveStatus: true},
		{Username: "registrar", Email: "registrar@university.edu", PasswordHash: passwordHash, Role: models.RoleRegistrar, FirstName: "University", LastName: "Registrar", Department: "Registry", ActiveStatus: true},
		{Username: "hod", Email: "hod@university.edu", PasswordHash: passwordHash, Role: models.RoleHOD, FirstName: "Department", LastName: "Head", Department: "Computer Science", ActiveStatus: true},
		{Username: "student1", Email: "student1@university.edu", PasswordHash: passwordHash, Role: models.RoleStudent, FirstName: "Test", LastName: "Student", Department: "Computer Science", ActiveStatus: true},
	}

	if err := database.WithContext(ctx).Create(&users).Error; err != nil {
		return err
	}
	logger.Info("Created initial users", zap.Int("count", len(users)))

	logger.Info("Database seeding completed successfully")
	return nil
}
