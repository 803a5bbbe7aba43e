package services

import (
  "context"
  "errors"
  "fmt"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/normalization"
  "github.com/oracyn-ai/oracyn-backend/internal/repos"
  "github.com/oracyn-ai/oracyn-backend/internal/requestdata"
  "github.com/oracyn-ai/oracyn-backend/internal/sse"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

// FallbackAssistantMessage is persisted in place of the assistant reply
// whenever the AI service call fails. The failure is not surfaced as an
// error to the HTTP caller; the message carries degraded=true instead.
const FallbackAssistantMessage = "I'm sorry, I encountered an error while processing your request. Please try again."

const historyWindow = 10

var ErrChatNotFound = errors.New("chat not found")

// ErrInternal marks failures in our own storage layer, as opposed to
// validation problems or upstream AI outages. Handlers map it to a 500.
var ErrInternal = errors.New("internal error")

// SendMode selects whether SendMessage waits for the AI reply or returns
// right after the user message is persisted, leaving the assistant
// message to a detached continuation.
type SendMode string

const (
  SendModeSync  SendMode = "sync"
  SendModeAsync SendMode = "async"
)

type SendResult struct {
  UserMessage       *types.Message  `json:"user_message"`
  AssistantMessage  *types.Message  `json:"assistant_message,omitempty"`
  Pending           bool            `json:"pending"`
}

type ChatService interface {
  CreateChat(ctx context.Context, title string) (*types.Chat, error)
  ListChats(ctx context.Context) ([]*types.Chat, error)
  GetChat(ctx context.Context, chatID uuid.UUID) (*types.Chat, error)
  UpdateChat(ctx context.Context, chatID uuid.UUID, title, status *string) (*types.Chat, error)
  DeleteChat(ctx context.Context, chatID uuid.UUID) error
  ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]*types.Message, error)
  SendMessage(ctx context.Context, chatID uuid.UUID, content string) (*SendResult, error)

  // GetOwnedChat resolves chatID to a chat owned by the authenticated
  // caller; any mismatch is reported as ErrChatNotFound.
  GetOwnedChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Chat, error)
}

type chatService struct {
  db            *gorm.DB
  log           *logger.Logger
  chatRepo      repos.ChatRepo
  messageRepo   repos.MessageRepo
  aiCallLogRepo repos.AICallLogRepo
  aiClient      AIClient
  sseHub        *sse.SSEHub
  sendMode      SendMode
  asyncTimeout  time.Duration
  locks         *chatLocks
}

func NewChatService(
  db *gorm.DB,
  baseLog *logger.Logger,
  chatRepo repos.ChatRepo,
  messageRepo repos.MessageRepo,
  aiCallLogRepo repos.AICallLogRepo,
  aiClient AIClient,
  sseHub *sse.SSEHub,
  sendMode SendMode,
) ChatService {
  serviceLog := baseLog.With("service", "ChatService")
  if sendMode != SendModeAsync {
    sendMode = SendModeSync
  }
  serviceLog.Info("Chat send mode configured", "mode", string(sendMode))
  return &chatService{
    db:            db,
    log:           serviceLog,
    chatRepo:      chatRepo,
    messageRepo:   messageRepo,
    aiCallLogRepo: aiCallLogRepo,
    aiClient:      aiClient,
    sseHub:        sseHub,
    sendMode:      sendMode,
    asyncTimeout:  5 * time.Minute,
    locks:         newChatLocks(),
  }
}

func (cs *chatService) GetOwnedChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Chat, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  chats, err := cs.chatRepo.GetByIDs(ctx, tx, []uuid.UUID{chatID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load chat: %w", err)
  }
  if len(chats) == 0 || chats[0].UserID != rd.UserID {
    return nil, ErrChatNotFound
  }
  return chats[0], nil
}

func (cs *chatService) CreateChat(ctx context.Context, title string) (*types.Chat, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  title = normalization.ParseDisplayString(title)
  if title == "" {
    return nil, fmt.Errorf("A chat title is required")
  }
  exists, err := cs.chatRepo.TitleExists(ctx, nil, rd.UserID, title)
  if err != nil {
    return nil, fmt.Errorf("Failed to check chat title: %w", err)
  }
  if exists {
    return nil, fmt.Errorf("A chat with this title already exists")
  }
  chat := &types.Chat{
    ID:     uuid.New(),
    UserID: rd.UserID,
    Title:  title,
    State:  types.ChatStateUpload,
    Status: types.ChatStatusNone,
  }
  created, err := cs.chatRepo.Create(ctx, nil, []*types.Chat{chat})
  if err != nil {
    return nil, fmt.Errorf("Failed to create chat: %w", err)
  }
  return created[0], nil
}

func (cs *chatService) ListChats(ctx context.Context) ([]*types.Chat, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  return cs.chatRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

func (cs *chatService) GetChat(ctx context.Context, chatID uuid.UUID) (*types.Chat, error) {
  return cs.GetOwnedChat(ctx, nil, chatID)
}

func (cs *chatService) UpdateChat(ctx context.Context, chatID uuid.UUID, title, status *string) (*types.Chat, error) {
  chat, err := cs.GetOwnedChat(ctx, nil, chatID)
  if err != nil {
    return nil, err
  }
  updates := map[string]interface{}{"updated_at": time.Now()}
  if title != nil {
    newTitle := normalization.ParseDisplayString(*title)
    if newTitle == "" {
      return nil, fmt.Errorf("A chat title cannot be empty")
    }
    if newTitle != chat.Title {
      exists, tErr := cs.chatRepo.TitleExists(ctx, nil, chat.UserID, newTitle)
      if tErr != nil {
        return nil, fmt.Errorf("Failed to check chat title: %w", tErr)
      }
      if exists {
        return nil, fmt.Errorf("A chat with this title already exists")
      }
      updates["title"] = newTitle
    }
  }
  if status != nil {
    switch *status {
    case types.ChatStatusNone, types.ChatStatusStarred, types.ChatStatusSaved:
      updates["status"] = *status
    default:
      return nil, fmt.Errorf("Invalid chat status %q", *status)
    }
  }
  if err := cs.chatRepo.UpdateFields(ctx, nil, chat.ID, updates); err != nil {
    return nil, fmt.Errorf("Failed to update chat: %w", err)
  }
  return cs.GetOwnedChat(ctx, nil, chatID)
}

func (cs *chatService) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
  chat, err := cs.GetOwnedChat(ctx, nil, chatID)
  if err != nil {
    return err
  }
  if err := cs.chatRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{chat.ID}); err != nil {
    return fmt.Errorf("Failed to delete chat: %w", err)
  }
  // AI-side purge of embeddings is best-effort; the chat is already gone.
  if cs.aiClient != nil {
    if pErr := cs.aiClient.PurgeChat(ctx, chat.ID); pErr != nil {
      cs.log.Warn("Failed to purge chat data from AI service", "chat_id", chat.ID, "error", pErr)
    }
  }
  return nil
}

func (cs *chatService) ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]*types.Message, error) {
  chat, err := cs.GetOwnedChat(ctx, nil, chatID)
  if err != nil {
    return nil, err
  }
  return cs.messageRepo.GetByChatIDs(ctx, nil, []uuid.UUID{chat.ID}, limit)
}

func (cs *chatService) SendMessage(ctx context.Context, chatID uuid.UUID, content string) (*SendResult, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  content = normalization.ParseDisplayString(content)
  if content == "" {
    return nil, fmt.Errorf("Message content cannot be empty")
  }
  chat, err := cs.GetOwnedChat(ctx, nil, chatID)
  if err != nil {
    return nil, err
  }

  cs.locks.Lock(chat.ID)
  defer cs.locks.Unlock(chat.ID)

  history, hErr := cs.messageRepo.GetLastByChatID(ctx, nil, chat.ID, historyWindow)
  if hErr != nil {
    return nil, fmt.Errorf("Failed to load message history: %w", hErr)
  }

  userMsg := &types.Message{
    ID:      uuid.New(),
    ChatID:  chat.ID,
    Sender:  types.MessageSenderUser,
    Content: content,
    Type:    types.MessageTypeQuery,
  }
  if _, err := cs.messageRepo.Create(ctx, nil, []*types.Message{userMsg}); err != nil {
    return nil, fmt.Errorf("Failed to persist user message: %w", err)
  }

  if cs.sendMode == SendModeAsync {
    go cs.runAssistantContinuation(chat, rd.UserID, content, history)
    return &SendResult{UserMessage: userMsg, Pending: true}, nil
  }

  assistantMsg, exErr := cs.completeExchange(ctx, chat, rd.UserID, content, history)
  if exErr != nil {
    return nil, exErr
  }
  return &SendResult{UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}

// runAssistantContinuation is the detached half of the async send path.
// It carries its own timeout context; the HTTP response has already been
// written by the time this runs.
func (cs *chatService) runAssistantContinuation(chat *types.Chat, userID uuid.UUID, content string, history []*types.Message) {
  cs.locks.Lock(chat.ID)
  defer cs.locks.Unlock(chat.ID)
  ctx, cancel := context.WithTimeout(context.Background(), cs.asyncTimeout)
  defer cancel()
  assistantMsg, err := cs.completeExchange(ctx, chat, userID, content, history)
  if err != nil {
    cs.log.Error("Assistant continuation failed", "chat_id", chat.ID, "error", err)
    return
  }
  if cs.sseHub != nil {
    cs.sseHub.Broadcast(sse.SSEMessage{
      Channel: sse.ChatChannel(chat.ID),
      Event:   sse.SSEEventChatMessageCreated,
      Data:    assistantMsg,
    })
  }
}

// completeExchange calls the AI service and persists the assistant
// message, substituting the fallback text on an AI failure. The chat
// state advance and the assistant insert share one transaction. Only the
// upstream AI failure is absorbed; a failed transaction is returned to
// the caller.
func (cs *chatService) completeExchange(ctx context.Context, chat *types.Chat, userID uuid.UUID, content string, history []*types.Message) (*types.Message, error) {
  aiHistory := make([]AIHistoryEntry, 0, len(history))
  for _, m := range history {
    aiHistory = append(aiHistory, AIHistoryEntry{Role: m.Sender, Content: m.Content})
  }

  started := time.Now()
  answer, aiErr := cs.aiClient.AnswerQuery(ctx, chat.ID, content, aiHistory)
  cs.recordAICall(userID, chat.ID, "answer_query", answer, aiErr, time.Since(started))

  assistantMsg := &types.Message{
    ID:     uuid.New(),
    ChatID: chat.ID,
    Sender: types.MessageSenderAssistant,
    Type:   types.MessageTypeResponse,
  }
  if aiErr != nil {
    cs.log.Warn("AI query failed, substituting fallback message", "chat_id", chat.ID, "error", aiErr)
    assistantMsg.Content = FallbackAssistantMessage
    assistantMsg.Degraded = true
  } else {
    assistantMsg.Content = answer.Answer
    if answer.TokensUsed > 0 {
      tokens := answer.TokensUsed
      assistantMsg.TokensUsed = &tokens
    }
    if len(answer.Sources) > 0 {
      if raw, mErr := marshalSources(answer.Sources); mErr == nil {
        assistantMsg.Sources = raw
      }
    }
  }

  txErr := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, err := cs.messageRepo.Create(ctx, tx, []*types.Message{assistantMsg}); err != nil {
      return fmt.Errorf("Failed to persist assistant message: %w", err)
    }
    now := time.Now()
    updates := map[string]interface{}{
      "last_message_at": now,
      "updated_at":      now,
    }
    if chat.State == types.ChatStateUpload && !assistantMsg.Degraded {
      updates["state"] = types.ChatStateChat
      chat.State = types.ChatStateChat
    }
    if err := cs.chatRepo.UpdateFields(ctx, tx, chat.ID, updates); err != nil {
      return fmt.Errorf("Failed to update chat bookkeeping: %w", err)
    }
    return nil
  })
  if txErr != nil {
    return nil, fmt.Errorf("%w: Failed to record assistant message: %v", ErrInternal, txErr)
  }
  return assistantMsg, nil
}

func (cs *chatService) recordAICall(userID, chatID uuid.UUID, callType string, answer *AIAnswer, aiErr error, took time.Duration) {
  if cs.aiCallLogRepo == nil {
    return
  }
  entry := &types.AICallLog{
    ID:         uuid.New(),
    UserID:     &userID,
    ChatID:     &chatID,
    CallType:   callType,
    Success:    aiErr == nil,
    DurationMS: took.Milliseconds(),
  }
  if aiErr != nil {
    entry.Error = aiErr.Error()
  } else if answer != nil && answer.TokensUsed > 0 {
    tokens := answer.TokensUsed
    entry.TokensUsed = &tokens
  }
  logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if _, err := cs.aiCallLogRepo.Create(logCtx, nil, []*types.AICallLog{entry}); err != nil {
    cs.log.Warn("Failed to record AI call log", "error", err)
  }
}
