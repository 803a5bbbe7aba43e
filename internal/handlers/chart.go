package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
)

type ChartHandler struct {
  log             *logger.Logger
  chartService    services.ChartService
}

func NewChartHandler(log *logger.Logger, chartService services.ChartService) *ChartHandler {
  return &ChartHandler{
    log:          log.With("handler", "ChartHandler"),
    chartService: chartService,
  }
}

func (ch *ChartHandler) Generate(c *gin.Context) {
  var req struct {
    ChatID      string    `json:"chat_id"`
    Prompt      string    `json:"prompt"`
    ChartType   string    `json:"chart_type"`
    Label       string    `json:"label"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  chatID, err := uuid.Parse(req.ChatID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  chart, err := ch.chartService.GenerateChart(c.Request.Context(), chatID, req.Prompt, req.ChartType, req.Label)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"chart": chart})
}

func (ch *ChartHandler) List(c *gin.Context) {
  charts, err := ch.chartService.ListCharts(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"charts": charts})
}

func (ch *ChartHandler) ListByChat(c *gin.Context) {
  chatID, err := uuid.Parse(c.Param("chatId"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  charts, err := ch.chartService.ListChartsByChat(c.Request.Context(), chatID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"charts": charts})
}

func (ch *ChartHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  chart, err := ch.chartService.GetChart(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"chart": chart})
}

func (ch *ChartHandler) Delete(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  if err := ch.chartService.DeleteChart(c.Request.Context(), id); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
