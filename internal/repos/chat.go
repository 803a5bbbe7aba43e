package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

type ChatRepo interface {
  Create(ctx context.Context, tx *gorm.DB, chats []*types.Chat) ([]*types.Chat, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) ([]*types.Chat, error)
  GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Chat, error)
  TitleExists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string) (bool, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, updates map[string]interface{}) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error
}

type chatRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
  repoLog := baseLog.With("repo", "ChatRepo")
  return &chatRepo{db: db, log: repoLog}
}

func (cr *chatRepo) Create(ctx context.Context, tx *gorm.DB, chats []*types.Chat) ([]*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  if len(chats) == 0 {
    return []*types.Chat{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&chats).Error; err != nil {
    return nil, err
  }
  return chats, nil
}

func (cr *chatRepo) GetByIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) ([]*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var results []*types.Chat
  if len(chatIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", chatIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *chatRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var results []*types.Chat
  if len(userIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("user_id IN ?", userIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *chatRepo) TitleExists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Chat{}).
    Where("user_id = ? AND title = ?", userID, title).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (cr *chatRepo) UpdateFields(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  if len(updates) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.Chat{}).
    Where("id = ?", chatID).
    Updates(updates).Error
}

func (cr *chatRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  if len(chatIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id IN ?", chatIDs).
    Delete(&types.Chat{}).Error
}
