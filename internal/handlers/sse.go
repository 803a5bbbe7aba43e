package handlers

import (
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/requestdata"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
  "github.com/oracyn-ai/oracyn-backend/internal/sse"
)

type SSEHandler struct {
  log           *logger.Logger
  hub           *sse.SSEHub
  chatService   services.ChatService
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub, chatService services.ChatService) *SSEHandler {
  return &SSEHandler{
    log:         log.With("handler", "SSEHandler"),
    hub:         hub,
    chatService: chatService,
  }
}

// Stream subscribes the caller to live events. The optional "chats" query
// parameter narrows the subscription to specific chat IDs; without it the
// client receives events for every chat the caller owns.
func (sh *SSEHandler) Stream(c *gin.Context) {
  ctx := c.Request.Context()
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    RespondError(c, http.StatusForbidden, "forbidden", nil)
    return
  }

  client := sh.hub.NewSSEClient(rd.UserID)
  defer sh.hub.CloseClient(client)

  raw := strings.TrimSpace(c.Query("chats"))
  if raw != "" {
    for _, part := range strings.Split(raw, ",") {
      chatID, err := uuid.Parse(strings.TrimSpace(part))
      if err != nil {
        RespondError(c, http.StatusBadRequest, "invalid_id", err)
        return
      }
      if _, err := sh.chatService.GetOwnedChat(ctx, nil, chatID); err != nil {
        RespondServiceError(c, err)
        return
      }
      sh.hub.AddChannel(client, sse.ChatChannel(chatID))
    }
  } else {
    chats, err := sh.chatService.ListChats(ctx)
    if err != nil {
      RespondServiceError(c, err)
      return
    }
    for _, chat := range chats {
      sh.hub.AddChannel(client, sse.ChatChannel(chat.ID))
    }
  }

  sh.hub.ServeHTTP(c.Writer, c.Request, client)
}
