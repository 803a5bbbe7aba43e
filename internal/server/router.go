package server

import (
  "strings"
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "github.com/oracyn-ai/oracyn-backend/internal/handlers"
  "github.com/oracyn-ai/oracyn-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  UserHandler       *handlers.UserHandler
  ChatHandler       *handlers.ChatHandler
  DocumentHandler   *handlers.DocumentHandler
  ChartHandler      *handlers.ChartHandler
  SSEHandler        *handlers.SSEHandler
  AllowedOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  origins := cfg.AllowedOrigins
  if len(origins) == 0 {
    origins = []string{"http://localhost:3000", "http://localhost:5173"}
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.GET("/health", handlers.HealthCheck)

  api := router.Group("/api")
  api.GET("/status", cfg.AuthMiddleware.OptionalAuth(), handlers.Status)
  api.POST("/auth/register", cfg.AuthHandler.Register)
  api.POST("/auth/login", cfg.AuthHandler.Login)

// ===============
// || Protected ||
// ===============
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/auth/logout", cfg.AuthHandler.Logout)
  protected.GET("/auth/me", cfg.UserHandler.GetMe)
  protected.PUT("/auth/profile", cfg.UserHandler.UpdateProfile)
  protected.PUT("/auth/password", cfg.UserHandler.ChangePassword)
  protected.DELETE("/auth/me", cfg.UserHandler.DeactivateAccount)
  // Chats
  protected.POST("/chats", cfg.ChatHandler.CreateChat)
  protected.GET("/chats", cfg.ChatHandler.ListChats)
  protected.GET("/chats/:id", cfg.ChatHandler.GetChat)
  protected.PUT("/chats/:id", cfg.ChatHandler.UpdateChat)
  protected.DELETE("/chats/:id", cfg.ChatHandler.DeleteChat)
  protected.GET("/chats/:id/messages", cfg.ChatHandler.ListMessages)
  protected.POST("/chats/:id/messages", cfg.ChatHandler.SendMessage)
  protected.POST("/chats/:id/query", cfg.ChatHandler.SendMessage)
  // Documents
  protected.POST("/chats/:id/upload", cfg.DocumentHandler.Upload)
  protected.GET("/chats/:id/files", cfg.DocumentHandler.ListByChat)
  protected.DELETE("/files/:id", cfg.DocumentHandler.Delete)
  // Charts
  protected.POST("/charts", cfg.ChartHandler.Generate)
  protected.GET("/charts", cfg.ChartHandler.List)
  protected.GET("/charts/chat/:chatId", cfg.ChartHandler.ListByChat)
  protected.GET("/charts/:id", cfg.ChartHandler.Get)
  protected.DELETE("/charts/:id", cfg.ChartHandler.Delete)
  // SSE
  protected.GET("/sse/stream", cfg.SSEHandler.Stream)

  return router
}

// SplitOrigins parses a comma separated ALLOWED_ORIGINS value.
func SplitOrigins(raw string) []string {
  var out []string
  for _, part := range strings.Split(raw, ",") {
    part = strings.TrimSpace(part)
    if part != "" {
      out = append(out, part)
    }
  }
  return out
}
