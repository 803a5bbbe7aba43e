package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "time"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/utils"
)

// AIClient is the outbound interface to the inference service. It attaches
// the service-to-service token, serializes requests, and maps every
// transport failure (timeout, refused, non-2xx) into a single wrapped
// error so the orchestrators can branch on it uniformly. No retries.
type AIClient interface {
  AnswerQuery(ctx context.Context, chatID uuid.UUID, queryText string, history []AIHistoryEntry) (*AIAnswer, error)
  ProcessDocument(ctx context.Context, chatID uuid.UUID, fileName string, fileContent []byte) error
  GenerateChart(ctx context.Context, chatID uuid.UUID, prompt, chartType string) (*AIChart, error)
  PurgeChat(ctx context.Context, chatID uuid.UUID) error
}

type AIHistoryEntry struct {
  Role      string    `json:"role"`
  Content   string    `json:"content"`
}

type AIAnswer struct {
  Answer      string            `json:"answer"`
  TokensUsed  int               `json:"tokens_used"`
  Sources     []string          `json:"sources,omitempty"`
}

type AIChartJSON struct {
  Type    string          `json:"type"`
  Data    json.RawMessage `json:"data"`
  Config  json.RawMessage `json:"config"`
}

type AIChart struct {
  ChartJSON   AIChartJSON   `json:"chart_json"`
  TokensUsed  int           `json:"tokens_used"`
}

var ErrAIUnavailable = fmt.Errorf("ai service unavailable")

type aiClient struct {
  httpClient    *http.Client
  log           *logger.Logger
  baseURL       string
  serviceToken  string
}

func NewAIClient(log *logger.Logger) (AIClient, error) {
  serviceLog := log.With("service", "AIClient")
  baseURL := utils.GetEnv("AI_SERVICE_URL", "", log)
  if baseURL == "" {
    return nil, fmt.Errorf("AI_SERVICE_URL is not set")
  }
  serviceToken := utils.GetEnv("AI_SERVICE_TOKEN", "", log)
  timeoutSeconds := utils.GetEnvAsInt("AI_TIMEOUT_SECONDS", 120, log)
  return &aiClient{
    httpClient: &http.Client{
      Timeout: time.Duration(timeoutSeconds) * time.Second,
    },
    log:          serviceLog,
    baseURL:      baseURL,
    serviceToken: serviceToken,
  }, nil
}

func (c *aiClient) AnswerQuery(ctx context.Context, chatID uuid.UUID, queryText string, history []AIHistoryEntry) (*AIAnswer, error) {
  reqBody := map[string]any{
    "query_text": queryText,
    "chat_id":    chatID.String(),
    "history":    history,
  }
  var out AIAnswer
  if err := c.doJSON(ctx, http.MethodPost, "/answer-query", reqBody, &out); err != nil {
    return nil, err
  }
  return &out, nil
}

func (c *aiClient) ProcessDocument(ctx context.Context, chatID uuid.UUID, fileName string, fileContent []byte) error {
  reqBody := map[string]any{
    "file_name":           fileName,
    "file_content_base64": fileContent,
    "chat_id":             chatID.String(),
  }
  var out struct {
    Success   bool    `json:"success"`
  }
  if err := c.doJSON(ctx, http.MethodPost, "/process-document", reqBody, &out); err != nil {
    return err
  }
  if !out.Success {
    return fmt.Errorf("%w: process-document returned success=false", ErrAIUnavailable)
  }
  return nil
}

func (c *aiClient) GenerateChart(ctx context.Context, chatID uuid.UUID, prompt, chartType string) (*AIChart, error) {
  reqBody := map[string]any{
    "prompt":     prompt,
    "chat_id":    chatID.String(),
    "chart_type": chartType,
  }
  var out AIChart
  if err := c.doJSON(ctx, http.MethodPost, "/generate-chart", reqBody, &out); err != nil {
    return nil, err
  }
  return &out, nil
}

func (c *aiClient) PurgeChat(ctx context.Context, chatID uuid.UUID) error {
  return c.doJSON(ctx, http.MethodDelete, "/chat-data/"+chatID.String(), nil, nil)
}

func (c *aiClient) doJSON(ctx context.Context, method, path string, reqBody any, out any) error {
  var bodyReader io.Reader
  if reqBody != nil {
    raw, err := json.Marshal(reqBody)
    if err != nil {
      return fmt.Errorf("Failed to marshal request body: %w", err)
    }
    bodyReader = bytes.NewReader(raw)
  }
  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
  if err != nil {
    return fmt.Errorf("Failed to build request: %w", err)
  }
  req.Header.Set("Content-Type", "application/json")
  if c.serviceToken != "" {
    req.Header.Set("Authorization", "Bearer "+c.serviceToken)
  }
  resp, err := c.httpClient.Do(req)
  if err != nil {
    c.log.Warn("AI service request failed", "method", method, "path", path, "error", err)
    return fmt.Errorf("%w: %v", ErrAIUnavailable, err)
  }
  defer resp.Body.Close()
  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
    c.log.Warn("AI service returned non-2xx", "method", method, "path", path, "status", resp.StatusCode, "body", string(raw))
    return fmt.Errorf("%w: status %d", ErrAIUnavailable, resp.StatusCode)
  }
  if out == nil {
    return nil
  }
  if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
    return fmt.Errorf("%w: decode response: %v", ErrAIUnavailable, err)
  }
  return nil
}
