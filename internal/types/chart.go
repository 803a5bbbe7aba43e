package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

type Chart struct {
  ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ChatID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"chat_id"`
  Chat         *Chat           `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"chat,omitempty"`
  ChartType    string          `gorm:"not null;column:chart_type" json:"chart_type"`
  Label        string          `gorm:"column:label" json:"label"`
  Data         datatypes.JSON  `gorm:"type:jsonb;column:data" json:"data"`
  Config       datatypes.JSON  `gorm:"type:jsonb;column:config" json:"config"`
  CreatedFrom  string          `gorm:"column:created_from" json:"created_from"`
  TokensUsed   *int            `gorm:"column:tokens_used" json:"tokens_used,omitempty"`
  CreatedAt    time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Chart) TableName() string {
  return "chart"
}
