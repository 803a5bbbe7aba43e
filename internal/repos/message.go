package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

type MessageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error)
  GetByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID, limit int) ([]*types.Message, error)
  GetLastByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, n int) ([]*types.Message, error)
  CountByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) (int64, error)
}

type messageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
  repoLog := baseLog.With("repo", "MessageRepo")
  return &messageRepo{db: db, log: repoLog}
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  if len(messages) == 0 {
    return []*types.Message{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
    return nil, err
  }
  return messages, nil
}

// GetByChatIDs returns messages in conversation order (insertion order).
func (mr *messageRepo) GetByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID, limit int) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var results []*types.Message
  if len(chatIDs) == 0 {
    return results, nil
  }
  query := transaction.WithContext(ctx).
    Where("chat_id IN ?", chatIDs).
    Order("created_at ASC")
  if limit > 0 {
    query = query.Limit(limit)
  }
  if err := query.Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// GetLastByChatID returns the most recent n messages, oldest first,
// for use as conversational history.
func (mr *messageRepo) GetLastByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, n int) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var results []*types.Message
  if n <= 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("chat_id = ?", chatID).
    Order("created_at DESC").
    Limit(n).
    Find(&results).Error; err != nil {
    return nil, err
  }
  for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
    results[i], results[j] = results[j], results[i]
  }
  return results, nil
}

func (mr *messageRepo) CountByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var count int64
  if len(chatIDs) == 0 {
    return 0, nil
  }
  if err := transaction.WithContext(ctx).
    Model(&types.Message{}).
    Where("chat_id IN ?", chatIDs).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
