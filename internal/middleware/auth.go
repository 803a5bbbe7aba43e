package middleware

import (
  "errors"
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/requestdata"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
)

type AuthMiddleware struct {
  log           *logger.Logger
  authService   services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLogger := log.With("Middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth rejects with a distinguishable code so clients can tell a
// missing token from an invalid one from an expired one.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c)
    ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
    if err != nil {
      code := "invalid_token"
      switch {
      case errors.Is(err, services.ErrNoToken):
        code = "no_token"
      case errors.Is(err, services.ErrExpiredToken):
        code = "expired_token"
      }
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": err.Error(), "code": code}})
      return
    }
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "forbidden", "code": "forbidden"}})
      return
    }
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}

// OptionalAuth never rejects. A missing or bad token just means the
// request proceeds without an identity attached.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c)
    if tokenString != "" {
      ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
      if err == nil {
        c.Request = c.Request.WithContext(ctx)
      } else {
        am.log.Debug("Optional auth token rejected", "error", err)
      }
    }
    c.Next()
  }
}

func extractToken(c *gin.Context) string {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  // SSE connections cannot set headers from EventSource; allow query param.
  if qToken := c.Query("token"); qToken != "" {
    return qToken
  }
  return ""
}
