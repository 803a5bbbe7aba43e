package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  MessageSenderUser      = "user"
  MessageSenderAssistant = "assistant"
  MessageSenderSystem    = "system"
)

const (
  MessageTypeQuery    = "query"
  MessageTypeResponse = "response"
  MessageTypeRegular  = "regular"
  MessageTypeSystem   = "system"
)

type Message struct {
  ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ChatID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"chat_id"`
  Chat        *Chat           `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"chat,omitempty"`
  Sender      string          `gorm:"not null;column:sender" json:"sender"`
  Content     string          `gorm:"not null;column:content" json:"content"`
  Type        string          `gorm:"not null;default:'regular';column:type" json:"type"`
  TokensUsed  *int            `gorm:"column:tokens_used" json:"tokens_used,omitempty"`
  Degraded    bool            `gorm:"not null;default:false;column:degraded" json:"degraded"`
  Sources     datatypes.JSON  `gorm:"type:jsonb;column:sources" json:"sources,omitempty"`
  CreatedAt   time.Time       `gorm:"not null;default:now();index" json:"created_at"`
  UpdatedAt   time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Message) TableName() string {
  return "message"
}
