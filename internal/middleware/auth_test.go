package middleware

import (
  "context"
  "net/http"
  "net/http/httptest"
  "strings"
  "testing"
  "time"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/requestdata"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

type stubAuthService struct {
  validToken string
  userID     uuid.UUID
  expiredErr bool
}

func (s *stubAuthService) RegisterUser(ctx context.Context, user *types.User) error { return nil }
func (s *stubAuthService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  return "", "", nil
}
func (s *stubAuthService) RefreshUser(ctx context.Context) (string, string, error) { return "", "", nil }
func (s *stubAuthService) LogoutUser(ctx context.Context) error                    { return nil }
func (s *stubAuthService) GetAccessTTL() time.Duration                             { return time.Hour }

func (s *stubAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, services.ErrNoToken
  }
  if s.expiredErr {
    return ctx, services.ErrExpiredToken
  }
  if tokenString != s.validToken {
    return ctx, services.ErrInvalidToken
  }
  return requestdata.WithRequestData(ctx, &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      s.userID,
  }), nil
}

func newAuthTestRouter(t *testing.T, stub *stubAuthService) *gin.Engine {
  t.Helper()
  gin.SetMode(gin.TestMode)
  log, err := logger.New("test")
  if err != nil {
    t.Fatalf("init test logger: %v", err)
  }
  am := NewAuthMiddleware(log, stub)
  router := gin.New()
  router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID})
  })
  router.GET("/open", am.OptionalAuth(), func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    c.JSON(http.StatusOK, gin.H{"authenticated": rd != nil})
  })
  return router
}

func TestRequireAuth_MissingToken(t *testing.T) {
  router := newAuthTestRouter(t, &stubAuthService{validToken: "good", userID: uuid.New()})
  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/protected", nil)
  router.ServeHTTP(w, req)
  if w.Code != http.StatusUnauthorized {
    t.Fatalf("expected 401, got %d", w.Code)
  }
}

func TestRequireAuth_ValidBearerToken(t *testing.T) {
  stub := &stubAuthService{validToken: "good", userID: uuid.New()}
  router := newAuthTestRouter(t, stub)
  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/protected", nil)
  req.Header.Set("Authorization", "Bearer good")
  router.ServeHTTP(w, req)
  if w.Code != http.StatusOK {
    t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
  }
}

func TestRequireAuth_TokenViaQueryParam(t *testing.T) {
  stub := &stubAuthService{validToken: "good", userID: uuid.New()}
  router := newAuthTestRouter(t, stub)
  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/protected?token=good", nil)
  router.ServeHTTP(w, req)
  if w.Code != http.StatusOK {
    t.Fatalf("expected 200 for query token, got %d", w.Code)
  }
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
  stub := &stubAuthService{validToken: "good", userID: uuid.New(), expiredErr: true}
  router := newAuthTestRouter(t, stub)
  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/protected", nil)
  req.Header.Set("Authorization", "Bearer good")
  router.ServeHTTP(w, req)
  if w.Code != http.StatusUnauthorized {
    t.Fatalf("expected 401, got %d", w.Code)
  }
  if body := w.Body.String(); !strings.Contains(body, "expired_token") {
    t.Fatalf("expected expired_token code, got %s", body)
  }
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
  stub := &stubAuthService{validToken: "good", userID: uuid.New()}
  router := newAuthTestRouter(t, stub)

  w := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/open", nil)
  router.ServeHTTP(w, req)
  if w.Code != http.StatusOK {
    t.Fatalf("expected 200 without token, got %d", w.Code)
  }

  w = httptest.NewRecorder()
  req = httptest.NewRequest(http.MethodGet, "/open", nil)
  req.Header.Set("Authorization", "Bearer wrong")
  router.ServeHTTP(w, req)
  if w.Code != http.StatusOK {
    t.Fatalf("expected 200 with bad token, got %d", w.Code)
  }
}
