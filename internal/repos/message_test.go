package repos

import (
  "context"
  "fmt"
  "testing"
  "time"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/repos/testutil"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

func TestMessageRepo_GetLastByChatID_ReturnsChronologicalTail(t *testing.T) {
  db := testutil.DB(t)
  log := testutil.Logger(t)
  userRepo := NewUserRepo(db, log)
  chatRepo := NewChatRepo(db, log)
  messageRepo := NewMessageRepo(db, log)
  ctx := context.Background()

  user := seedUser(t, userRepo)
  chat := &types.Chat{ID: uuid.New(), UserID: user.ID, Title: "History " + uuid.New().String()[:8], State: types.ChatStateChat, Status: types.ChatStatusNone}
  if _, err := chatRepo.Create(ctx, nil, []*types.Chat{chat}); err != nil {
    t.Fatalf("create chat: %v", err)
  }

  base := time.Now().Add(-time.Hour)
  for i := 0; i < 5; i++ {
    msg := &types.Message{
      ID:        uuid.New(),
      ChatID:    chat.ID,
      Sender:    types.MessageSenderUser,
      Content:   fmt.Sprintf("message %d", i),
      Type:      types.MessageTypeQuery,
      CreatedAt: base.Add(time.Duration(i) * time.Minute),
    }
    if _, err := messageRepo.Create(ctx, nil, []*types.Message{msg}); err != nil {
      t.Fatalf("create message %d: %v", i, err)
    }
  }

  last, err := messageRepo.GetLastByChatID(ctx, nil, chat.ID, 3)
  if err != nil {
    t.Fatalf("get last messages: %v", err)
  }
  if len(last) != 3 {
    t.Fatalf("expected 3 messages, got %d", len(last))
  }
  // Tail of the conversation, oldest first.
  for i, want := range []string{"message 2", "message 3", "message 4"} {
    if last[i].Content != want {
      t.Fatalf("position %d: expected %q, got %q", i, want, last[i].Content)
    }
  }
}

func TestMessageRepo_GetByChatIDs_OrderAndCount(t *testing.T) {
  db := testutil.DB(t)
  log := testutil.Logger(t)
  userRepo := NewUserRepo(db, log)
  chatRepo := NewChatRepo(db, log)
  messageRepo := NewMessageRepo(db, log)
  ctx := context.Background()

  user := seedUser(t, userRepo)
  chat := &types.Chat{ID: uuid.New(), UserID: user.ID, Title: "Ordering " + uuid.New().String()[:8], State: types.ChatStateChat, Status: types.ChatStatusNone}
  if _, err := chatRepo.Create(ctx, nil, []*types.Chat{chat}); err != nil {
    t.Fatalf("create chat: %v", err)
  }

  base := time.Now().Add(-time.Hour)
  pair := []*types.Message{
    {ID: uuid.New(), ChatID: chat.ID, Sender: types.MessageSenderUser, Content: "question", Type: types.MessageTypeQuery, CreatedAt: base},
    {ID: uuid.New(), ChatID: chat.ID, Sender: types.MessageSenderAssistant, Content: "answer", Type: types.MessageTypeResponse, CreatedAt: base.Add(time.Second)},
  }
  if _, err := messageRepo.Create(ctx, nil, pair); err != nil {
    t.Fatalf("create messages: %v", err)
  }

  all, err := messageRepo.GetByChatIDs(ctx, nil, []uuid.UUID{chat.ID}, 0)
  if err != nil {
    t.Fatalf("get messages: %v", err)
  }
  if len(all) != 2 {
    t.Fatalf("expected 2 messages, got %d", len(all))
  }
  if all[0].Sender != types.MessageSenderUser || all[1].Sender != types.MessageSenderAssistant {
    t.Fatalf("messages out of conversation order: %q then %q", all[0].Sender, all[1].Sender)
  }

  count, err := messageRepo.CountByChatIDs(ctx, nil, []uuid.UUID{chat.ID})
  if err != nil {
    t.Fatalf("count messages: %v", err)
  }
  if count != 2 {
    t.Fatalf("expected count 2, got %d", count)
  }
}
