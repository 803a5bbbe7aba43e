package repos

import (
  "context"
  "testing"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/repos/testutil"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

func seedUser(t *testing.T, repo UserRepo) *types.User {
  t.Helper()
  suffix := uuid.New().String()[:8]
  user := &types.User{
    ID:       uuid.New(),
    Email:    "chat_test_" + suffix + "@example.com",
    Username: "chat_test_" + suffix,
    Password: "hashed-password",
    IsActive: true,
  }
  if _, err := repo.Create(context.Background(), nil, []*types.User{user}); err != nil {
    t.Fatalf("seed user: %v", err)
  }
  return user
}

func TestChatRepo_CreateAndGetByIDs(t *testing.T) {
  db := testutil.DB(t)
  log := testutil.Logger(t)
  userRepo := NewUserRepo(db, log)
  chatRepo := NewChatRepo(db, log)
  ctx := context.Background()

  user := seedUser(t, userRepo)
  chat := &types.Chat{
    ID:     uuid.New(),
    UserID: user.ID,
    Title:  "Quarterly Report " + uuid.New().String()[:8],
    State:  types.ChatStateUpload,
    Status: types.ChatStatusNone,
  }
  created, err := chatRepo.Create(ctx, nil, []*types.Chat{chat})
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }
  if len(created) != 1 {
    t.Fatalf("expected 1 created chat, got %d", len(created))
  }

  got, err := chatRepo.GetByIDs(ctx, nil, []uuid.UUID{chat.ID})
  if err != nil {
    t.Fatalf("get chat: %v", err)
  }
  if len(got) != 1 || got[0].ID != chat.ID {
    t.Fatalf("unexpected chat lookup result: %+v", got)
  }
  if got[0].State != types.ChatStateUpload {
    t.Fatalf("expected state %q, got %q", types.ChatStateUpload, got[0].State)
  }
}

func TestChatRepo_TitleExists(t *testing.T) {
  db := testutil.DB(t)
  log := testutil.Logger(t)
  userRepo := NewUserRepo(db, log)
  chatRepo := NewChatRepo(db, log)
  ctx := context.Background()

  user := seedUser(t, userRepo)
  title := "Sales Analysis " + uuid.New().String()[:8]
  chat := &types.Chat{ID: uuid.New(), UserID: user.ID, Title: title, State: types.ChatStateUpload, Status: types.ChatStatusNone}
  if _, err := chatRepo.Create(ctx, nil, []*types.Chat{chat}); err != nil {
    t.Fatalf("create chat: %v", err)
  }

  exists, err := chatRepo.TitleExists(ctx, nil, user.ID, title)
  if err != nil {
    t.Fatalf("title exists: %v", err)
  }
  if !exists {
    t.Fatalf("expected title to exist for owner")
  }

  otherUser := seedUser(t, userRepo)
  exists, err = chatRepo.TitleExists(ctx, nil, otherUser.ID, title)
  if err != nil {
    t.Fatalf("title exists for other user: %v", err)
  }
  if exists {
    t.Fatalf("title uniqueness is per user; other user should be free to reuse it")
  }
}

func TestChatRepo_UpdateFieldsAndDelete(t *testing.T) {
  db := testutil.DB(t)
  log := testutil.Logger(t)
  userRepo := NewUserRepo(db, log)
  chatRepo := NewChatRepo(db, log)
  ctx := context.Background()

  user := seedUser(t, userRepo)
  chat := &types.Chat{ID: uuid.New(), UserID: user.ID, Title: "Temp " + uuid.New().String()[:8], State: types.ChatStateUpload, Status: types.ChatStatusNone}
  if _, err := chatRepo.Create(ctx, nil, []*types.Chat{chat}); err != nil {
    t.Fatalf("create chat: %v", err)
  }

  if err := chatRepo.UpdateFields(ctx, nil, chat.ID, map[string]interface{}{
    "state":  types.ChatStateChat,
    "status": types.ChatStatusStarred,
  }); err != nil {
    t.Fatalf("update fields: %v", err)
  }
  got, err := chatRepo.GetByIDs(ctx, nil, []uuid.UUID{chat.ID})
  if err != nil || len(got) != 1 {
    t.Fatalf("reload chat: %v (%d rows)", err, len(got))
  }
  if got[0].State != types.ChatStateChat || got[0].Status != types.ChatStatusStarred {
    t.Fatalf("update not applied: state=%q status=%q", got[0].State, got[0].Status)
  }

  if err := chatRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{chat.ID}); err != nil {
    t.Fatalf("delete chat: %v", err)
  }
  got, err = chatRepo.GetByIDs(ctx, nil, []uuid.UUID{chat.ID})
  if err != nil {
    t.Fatalf("lookup after delete: %v", err)
  }
  if len(got) != 0 {
    t.Fatalf("chat still present after delete")
  }
}
