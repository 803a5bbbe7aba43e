package services

import (
  "context"
  "encoding/base64"
  "encoding/json"
  "errors"
  "net/http"
  "net/http/httptest"
  "testing"
  "github.com/google/uuid"
)

func newTestAIClient(t *testing.T, handler http.Handler) AIClient {
  t.Helper()
  server := httptest.NewServer(handler)
  t.Cleanup(server.Close)
  t.Setenv("AI_SERVICE_URL", server.URL)
  t.Setenv("AI_SERVICE_TOKEN", "service-secret")
  t.Setenv("AI_TIMEOUT_SECONDS", "5")
  client, err := NewAIClient(testLogger(t))
  if err != nil {
    t.Fatalf("init AI client: %v", err)
  }
  return client
}

func TestAIClient_AnswerQuery(t *testing.T) {
  chatID := uuid.New()
  client := newTestAIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/answer-query" || r.Method != http.MethodPost {
      t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
    }
    if got := r.Header.Get("Authorization"); got != "Bearer service-secret" {
      t.Errorf("missing service token, got %q", got)
    }
    var req struct {
      QueryText string           `json:"query_text"`
      ChatID    string           `json:"chat_id"`
      History   []AIHistoryEntry `json:"history"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
      t.Errorf("decode request: %v", err)
    }
    if req.ChatID != chatID.String() || req.QueryText != "what changed?" {
      t.Errorf("unexpected payload: %+v", req)
    }
    if len(req.History) != 2 {
      t.Errorf("expected 2 history entries, got %d", len(req.History))
    }
    json.NewEncoder(w).Encode(AIAnswer{Answer: "nothing", TokensUsed: 7, Sources: []string{"a.pdf"}})
  }))

  history := []AIHistoryEntry{
    {Role: "user", Content: "hi"},
    {Role: "assistant", Content: "hello"},
  }
  answer, err := client.AnswerQuery(context.Background(), chatID, "what changed?", history)
  if err != nil {
    t.Fatalf("answer query: %v", err)
  }
  if answer.Answer != "nothing" || answer.TokensUsed != 7 {
    t.Fatalf("unexpected answer: %+v", answer)
  }
}

func TestAIClient_NonSuccessStatusIsUnavailable(t *testing.T) {
  client := newTestAIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    http.Error(w, "boom", http.StatusBadGateway)
  }))

  _, err := client.AnswerQuery(context.Background(), uuid.New(), "q", nil)
  if !errors.Is(err, ErrAIUnavailable) {
    t.Fatalf("expected ErrAIUnavailable, got %v", err)
  }
}

func TestAIClient_ConnectionFailureIsUnavailable(t *testing.T) {
  server := httptest.NewServer(http.NotFoundHandler())
  server.Close()
  t.Setenv("AI_SERVICE_URL", server.URL)
  t.Setenv("AI_SERVICE_TOKEN", "")
  t.Setenv("AI_TIMEOUT_SECONDS", "1")
  client, err := NewAIClient(testLogger(t))
  if err != nil {
    t.Fatalf("init AI client: %v", err)
  }

  if err := client.PurgeChat(context.Background(), uuid.New()); !errors.Is(err, ErrAIUnavailable) {
    t.Fatalf("expected ErrAIUnavailable, got %v", err)
  }
}

func TestAIClient_ProcessDocument(t *testing.T) {
  content := []byte("%PDF-1.7 sample")
  chatID := uuid.New()
  client := newTestAIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/process-document" {
      t.Errorf("unexpected path %s", r.URL.Path)
    }
    var req struct {
      FileName          string `json:"file_name"`
      FileContentBase64 string `json:"file_content_base64"`
      ChatID            string `json:"chat_id"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
      t.Errorf("decode request: %v", err)
    }
    raw, err := base64.StdEncoding.DecodeString(req.FileContentBase64)
    if err != nil {
      t.Errorf("content not base64: %v", err)
    }
    if string(raw) != string(content) {
      t.Errorf("content mismatch after decode")
    }
    if req.FileName != "sample.pdf" || req.ChatID != chatID.String() {
      t.Errorf("unexpected payload: %+v", req)
    }
    json.NewEncoder(w).Encode(map[string]bool{"success": true})
  }))

  if err := client.ProcessDocument(context.Background(), chatID, "sample.pdf", content); err != nil {
    t.Fatalf("process document: %v", err)
  }
}

func TestAIClient_ProcessDocumentRejectedByService(t *testing.T) {
  client := newTestAIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    json.NewEncoder(w).Encode(map[string]bool{"success": false})
  }))

  err := client.ProcessDocument(context.Background(), uuid.New(), "sample.pdf", []byte("x"))
  if !errors.Is(err, ErrAIUnavailable) {
    t.Fatalf("expected ErrAIUnavailable on success=false, got %v", err)
  }
}

func TestAIClient_GenerateChart(t *testing.T) {
  client := newTestAIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/generate-chart" {
      t.Errorf("unexpected path %s", r.URL.Path)
    }
    json.NewEncoder(w).Encode(map[string]any{
      "chart_json": map[string]any{
        "type":   "bar",
        "data":   map[string]any{"labels": []string{"Q1", "Q2"}},
        "config": map[string]any{"stacked": false},
      },
      "tokens_used": 21,
    })
  }))

  chart, err := client.GenerateChart(context.Background(), uuid.New(), "revenue by quarter", "bar")
  if err != nil {
    t.Fatalf("generate chart: %v", err)
  }
  if chart.ChartJSON.Type != "bar" || chart.TokensUsed != 21 {
    t.Fatalf("unexpected chart: %+v", chart)
  }
  if len(chart.ChartJSON.Data) == 0 || len(chart.ChartJSON.Config) == 0 {
    t.Fatalf("chart payloads not captured")
  }
}
