package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
)

type ChatHandler struct {
  log           *logger.Logger
  chatService   services.ChatService
}

func NewChatHandler(log *logger.Logger, chatService services.ChatService) *ChatHandler {
  return &ChatHandler{
    log:         log.With("handler", "ChatHandler"),
    chatService: chatService,
  }
}

func chatIDParam(c *gin.Context) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return uuid.Nil, false
  }
  return id, true
}

func (ch *ChatHandler) CreateChat(c *gin.Context) {
  var req struct {
    Title     string    `json:"title"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  chat, err := ch.chatService.CreateChat(c.Request.Context(), req.Title)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

func (ch *ChatHandler) ListChats(c *gin.Context) {
  chats, err := ch.chatService.ListChats(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"chats": chats})
}

func (ch *ChatHandler) GetChat(c *gin.Context) {
  id, ok := chatIDParam(c)
  if !ok {
    return
  }
  chat, err := ch.chatService.GetChat(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"chat": chat})
}

func (ch *ChatHandler) UpdateChat(c *gin.Context) {
  id, ok := chatIDParam(c)
  if !ok {
    return
  }
  var req struct {
    Title     *string   `json:"title"`
    Status    *string   `json:"status"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  chat, err := ch.chatService.UpdateChat(c.Request.Context(), id, req.Title, req.Status)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"chat": chat})
}

func (ch *ChatHandler) DeleteChat(c *gin.Context) {
  id, ok := chatIDParam(c)
  if !ok {
    return
  }
  if err := ch.chatService.DeleteChat(c.Request.Context(), id); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}

func (ch *ChatHandler) ListMessages(c *gin.Context) {
  id, ok := chatIDParam(c)
  if !ok {
    return
  }
  messages, err := ch.chatService.ListMessages(c.Request.Context(), id, 0)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"messages": messages})
}

func (ch *ChatHandler) SendMessage(c *gin.Context) {
  id, ok := chatIDParam(c)
  if !ok {
    return
  }
  var req struct {
    Content     string    `json:"content"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  result, err := ch.chatService.SendMessage(c.Request.Context(), id, req.Content)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  status := http.StatusOK
  if result.Pending {
    status = http.StatusAccepted
  }
  c.JSON(status, result)
}
