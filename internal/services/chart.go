package services

import (
  "context"
  "fmt"
  "strings"
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/repos"
  "github.com/oracyn-ai/oracyn-backend/internal/requestdata"
  "github.com/oracyn-ai/oracyn-backend/internal/sse"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

var allowedChartTypes = map[string]bool{
  "bar":     true,
  "line":    true,
  "pie":     true,
  "scatter": true,
  "area":    true,
}

type ChartService interface {
  GenerateChart(ctx context.Context, chatID uuid.UUID, prompt, chartType, label string) (*types.Chart, error)
  ListChartsByChat(ctx context.Context, chatID uuid.UUID) ([]*types.Chart, error)
  ListCharts(ctx context.Context) ([]*types.Chart, error)
  GetChart(ctx context.Context, chartID uuid.UUID) (*types.Chart, error)
  DeleteChart(ctx context.Context, chartID uuid.UUID) error
}

type chartService struct {
  db            *gorm.DB
  log           *logger.Logger
  chartRepo     repos.ChartRepo
  chatRepo      repos.ChatRepo
  aiCallLogRepo repos.AICallLogRepo
  chatService   ChatService
  aiClient      AIClient
  sseHub        *sse.SSEHub
}

func NewChartService(
  db *gorm.DB,
  baseLog *logger.Logger,
  chartRepo repos.ChartRepo,
  chatRepo repos.ChatRepo,
  aiCallLogRepo repos.AICallLogRepo,
  chatService ChatService,
  aiClient AIClient,
  sseHub *sse.SSEHub,
) ChartService {
  serviceLog := baseLog.With("service", "ChartService")
  return &chartService{
    db:            db,
    log:           serviceLog,
    chartRepo:     chartRepo,
    chatRepo:      chatRepo,
    aiCallLogRepo: aiCallLogRepo,
    chatService:   chatService,
    aiClient:      aiClient,
    sseHub:        sseHub,
  }
}

// GenerateChart has no fallback artifact: an AI failure is surfaced as a
// real error, unlike the chat send path.
func (cs *chartService) GenerateChart(ctx context.Context, chatID uuid.UUID, prompt, chartType, label string) (*types.Chart, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  chat, err := cs.chatService.GetOwnedChat(ctx, nil, chatID)
  if err != nil {
    return nil, err
  }
  prompt = strings.TrimSpace(prompt)
  if prompt == "" {
    return nil, fmt.Errorf("A chart prompt is required")
  }
  chartType = strings.ToLower(strings.TrimSpace(chartType))
  if !allowedChartTypes[chartType] {
    return nil, fmt.Errorf("Invalid chart type %q", chartType)
  }

  started := time.Now()
  generated, aiErr := cs.aiClient.GenerateChart(ctx, chat.ID, prompt, chartType)
  cs.recordChartCall(rd.UserID, chat.ID, generated, aiErr, time.Since(started))
  if aiErr != nil {
    return nil, fmt.Errorf("Chart generation failed: %w", aiErr)
  }

  chart := &types.Chart{
    ID:          uuid.New(),
    ChatID:      chat.ID,
    ChartType:   generated.ChartJSON.Type,
    Label:       strings.TrimSpace(label),
    Data:        datatypes.JSON(generated.ChartJSON.Data),
    Config:      datatypes.JSON(generated.ChartJSON.Config),
    CreatedFrom: prompt,
  }
  if chart.ChartType == "" {
    chart.ChartType = chartType
  }
  if generated.TokensUsed > 0 {
    tokens := generated.TokensUsed
    chart.TokensUsed = &tokens
  }

  txErr := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, err := cs.chartRepo.Create(ctx, tx, []*types.Chart{chart}); err != nil {
      return fmt.Errorf("Failed to persist chart: %w", err)
    }
    if chat.State != types.ChatStateVisualize {
      if err := cs.chatRepo.UpdateFields(ctx, tx, chat.ID, map[string]interface{}{
        "state":      types.ChatStateVisualize,
        "updated_at": time.Now(),
      }); err != nil {
        return fmt.Errorf("Failed to advance chat state: %w", err)
      }
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }

  if cs.sseHub != nil {
    cs.sseHub.Broadcast(sse.SSEMessage{
      Channel: sse.ChatChannel(chat.ID),
      Event:   sse.SSEEventChartCreated,
      Data:    chart,
    })
  }
  return chart, nil
}

func (cs *chartService) ListChartsByChat(ctx context.Context, chatID uuid.UUID) ([]*types.Chart, error) {
  chat, err := cs.chatService.GetOwnedChat(ctx, nil, chatID)
  if err != nil {
    return nil, err
  }
  return cs.chartRepo.GetByChatIDs(ctx, nil, []uuid.UUID{chat.ID})
}

func (cs *chartService) ListCharts(ctx context.Context) ([]*types.Chart, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  return cs.chartRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

func (cs *chartService) GetChart(ctx context.Context, chartID uuid.UUID) (*types.Chart, error) {
  charts, err := cs.chartRepo.GetByIDs(ctx, nil, []uuid.UUID{chartID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load chart: %w", err)
  }
  if len(charts) == 0 {
    return nil, ErrChatNotFound
  }
  chart := charts[0]
  if _, err := cs.chatService.GetOwnedChat(ctx, nil, chart.ChatID); err != nil {
    return nil, err
  }
  return chart, nil
}

func (cs *chartService) DeleteChart(ctx context.Context, chartID uuid.UUID) error {
  chart, err := cs.GetChart(ctx, chartID)
  if err != nil {
    return err
  }
  return cs.chartRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{chart.ID})
}

func (cs *chartService) recordChartCall(userID, chatID uuid.UUID, generated *AIChart, aiErr error, took time.Duration) {
  if cs.aiCallLogRepo == nil {
    return
  }
  entry := &types.AICallLog{
    ID:         uuid.New(),
    UserID:     &userID,
    ChatID:     &chatID,
    CallType:   "generate_chart",
    Success:    aiErr == nil,
    DurationMS: took.Milliseconds(),
  }
  if aiErr != nil {
    entry.Error = aiErr.Error()
  } else if generated != nil && generated.TokensUsed > 0 {
    tokens := generated.TokensUsed
    entry.TokensUsed = &tokens
  }
  logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if _, err := cs.aiCallLogRepo.Create(logCtx, nil, []*types.AICallLog{entry}); err != nil {
    cs.log.Warn("Failed to record AI call log", "error", err)
  }
}
