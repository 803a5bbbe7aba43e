package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

type DocumentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, documents []*types.Document) ([]*types.Document, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, documentIDs []uuid.UUID) ([]*types.Document, error)
  GetByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) ([]*types.Document, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, updates map[string]interface{}) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, documentIDs []uuid.UUID) error
}

type documentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
  repoLog := baseLog.With("repo", "DocumentRepo")
  return &documentRepo{db: db, log: repoLog}
}

func (dr *documentRepo) Create(ctx context.Context, tx *gorm.DB, documents []*types.Document) ([]*types.Document, error) {
  transaction := tx
  if transaction == nil {
    transaction = dr.db
  }
  if len(documents) == 0 {
    return []*types.Document{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&documents).Error; err != nil {
    return nil, err
  }
  return documents, nil
}

func (dr *documentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, documentIDs []uuid.UUID) ([]*types.Document, error) {
  transaction := tx
  if transaction == nil {
    transaction = dr.db
  }
  var results []*types.Document
  if len(documentIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", documentIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (dr *documentRepo) GetByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) ([]*types.Document, error) {
  transaction := tx
  if transaction == nil {
    transaction = dr.db
  }
  var results []*types.Document
  if len(chatIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("chat_id IN ?", chatIDs).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (dr *documentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = dr.db
  }
  if len(updates) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.Document{}).
    Where("id = ?", documentID).
    Updates(updates).Error
}

func (dr *documentRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, documentIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = dr.db
  }
  if len(documentIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id IN ?", documentIDs).
    Delete(&types.Document{}).Error
}
