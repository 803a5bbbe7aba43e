package main

import (
  "fmt"
  "os"
  "time"
  "github.com/joho/godotenv"
  "github.com/oracyn-ai/oracyn-backend/internal/db"
  "github.com/oracyn-ai/oracyn-backend/internal/handlers"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/middleware"
  "github.com/oracyn-ai/oracyn-backend/internal/repos"
  "github.com/oracyn-ai/oracyn-backend/internal/server"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
  "github.com/oracyn-ai/oracyn-backend/internal/sse"
  "github.com/oracyn-ai/oracyn-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  if err := godotenv.Load(); err != nil {
    log.Debug("No .env file loaded", "error", err)
  }

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  sendMode := services.SendMode(utils.GetEnv("CHAT_SEND_MODE", string(services.SendModeSync), log))
  maxUploadBytes := utils.GetEnvAsInt64("MAX_UPLOAD_BYTES", services.DefaultMaxUploadBytes, log)
  allowedOrigins := server.SplitOrigins(utils.GetEnv("ALLOWED_ORIGINS", "", log))
  port := utils.GetEnv("PORT", "8080", log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  chatRepo := repos.NewChatRepo(thePG, log)
  messageRepo := repos.NewMessageRepo(thePG, log)
  documentRepo := repos.NewDocumentRepo(thePG, log)
  chartRepo := repos.NewChartRepo(thePG, log)
  aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)

  // SSE
  log.Info("Setting up SSE hub now...")
  sseHub := sse.NewSSEHub(log)

  // Services
  log.Info("Setting up Services from main...")
  bucketService, err := services.NewBucketService(log)
  if err != nil {
    log.Warn("Could not init BucketService", "error", err)
  }
  aiClient, err := services.NewAIClient(log)
  if err != nil {
    log.Error("Could not init AIClient", "error", err)
    os.Exit(1)
  }
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  userService := services.NewUserService(thePG, log, userRepo, userTokenRepo)
  chatService := services.NewChatService(thePG, log, chatRepo, messageRepo, aiCallLogRepo, aiClient, sseHub, sendMode)
  documentService := services.NewDocumentService(thePG, log, documentRepo, chatService, bucketService, aiClient, sseHub, maxUploadBytes)
  chartService := services.NewChartService(thePG, log, chartRepo, chatRepo, aiCallLogRepo, chatService, aiClient, sseHub)

  // Handlers
  log.Info("Setting up Handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService)
  chatHandler := handlers.NewChatHandler(log, chatService)
  documentHandler := handlers.NewDocumentHandler(log, documentService)
  chartHandler := handlers.NewChartHandler(log, chartService)
  sseHandler := handlers.NewSSEHandler(log, sseHub, chatService)

  // Middleware
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:     authHandler,
    AuthMiddleware:  authMiddleware,
    UserHandler:     userHandler,
    ChatHandler:     chatHandler,
    DocumentHandler: documentHandler,
    ChartHandler:    chartHandler,
    SSEHandler:      sseHandler,
    AllowedOrigins:  allowedOrigins,
  })

  log.Info("Starting HTTP server", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("HTTP server exited", "error", err)
    os.Exit(1)
  }
}
