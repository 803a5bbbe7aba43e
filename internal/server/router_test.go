package server

import (
  "context"
  "net/http"
  "net/http/httptest"
  "testing"
  "time"
  "github.com/gin-gonic/gin"
  "github.com/oracyn-ai/oracyn-backend/internal/handlers"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/middleware"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

type noopAuthService struct{}

func (noopAuthService) RegisterUser(ctx context.Context, user *types.User) error { return nil }
func (noopAuthService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  return "", "", nil
}
func (noopAuthService) RefreshUser(ctx context.Context) (string, string, error) { return "", "", nil }
func (noopAuthService) LogoutUser(ctx context.Context) error                    { return nil }
func (noopAuthService) GetAccessTTL() time.Duration                             { return time.Hour }
func (noopAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  return ctx, services.ErrNoToken
}

func newTestRouter(t *testing.T) *gin.Engine {
  t.Helper()
  gin.SetMode(gin.TestMode)
  log, err := logger.New("test")
  if err != nil {
    t.Fatalf("init test logger: %v", err)
  }
  return NewRouter(RouterConfig{
    AuthHandler:     &handlers.AuthHandler{},
    AuthMiddleware:  middleware.NewAuthMiddleware(log, noopAuthService{}),
    UserHandler:     &handlers.UserHandler{},
    ChatHandler:     &handlers.ChatHandler{},
    DocumentHandler: &handlers.DocumentHandler{},
    ChartHandler:    &handlers.ChartHandler{},
    SSEHandler:      &handlers.SSEHandler{},
  })
}

func TestRouter_HealthEndpoints(t *testing.T) {
  router := newTestRouter(t)
  for _, path := range []string{"/healthcheck", "/health"} {
    w := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodGet, path, nil)
    router.ServeHTTP(w, req)
    if w.Code != http.StatusOK {
      t.Fatalf("GET %s: expected 200, got %d", path, w.Code)
    }
  }
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
  router := newTestRouter(t)
  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
  router.ServeHTTP(w, req)
  if w.Code != http.StatusUnauthorized {
    t.Fatalf("expected 401 without a token, got %d", w.Code)
  }
}

func TestSplitOrigins(t *testing.T) {
  got := SplitOrigins(" http://a.example , ,http://b.example")
  if len(got) != 2 || got[0] != "http://a.example" || got[1] != "http://b.example" {
    t.Fatalf("unexpected origins: %#v", got)
  }
}
