package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

type ChartRepo interface {
  Create(ctx context.Context, tx *gorm.DB, charts []*types.Chart) ([]*types.Chart, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, chartIDs []uuid.UUID) ([]*types.Chart, error)
  GetByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) ([]*types.Chart, error)
  GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Chart, error)
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, chartIDs []uuid.UUID) error
}

type chartRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChartRepo(db *gorm.DB, baseLog *logger.Logger) ChartRepo {
  repoLog := baseLog.With("repo", "ChartRepo")
  return &chartRepo{db: db, log: repoLog}
}

func (cr *chartRepo) Create(ctx context.Context, tx *gorm.DB, charts []*types.Chart) ([]*types.Chart, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  if len(charts) == 0 {
    return []*types.Chart{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&charts).Error; err != nil {
    return nil, err
  }
  return charts, nil
}

func (cr *chartRepo) GetByIDs(ctx context.Context, tx *gorm.DB, chartIDs []uuid.UUID) ([]*types.Chart, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var results []*types.Chart
  if len(chartIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", chartIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *chartRepo) GetByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) ([]*types.Chart, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var results []*types.Chart
  if len(chatIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("chat_id IN ?", chatIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *chartRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Chart, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var results []*types.Chart
  if len(userIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Joins("JOIN chat ON chat.id = chart.chat_id").
    Where("chat.user_id IN ?", userIDs).
    Order("chart.created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *chartRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, chartIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  if len(chartIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id IN ?", chartIDs).
    Delete(&types.Chart{}).Error
}
