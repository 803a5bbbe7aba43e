package types

import (
  "time"
  "github.com/google/uuid"
)

// Chat lifecycle states. A chat starts in "upload" until the first
// successful message exchange moves it to "chat"; "visualize" is set
// once a chart has been generated from it.
const (
  ChatStateUpload    = "upload"
  ChatStateChat      = "chat"
  ChatStateVisualize = "visualize"
)

const (
  ChatStatusNone    = "none"
  ChatStatusStarred = "starred"
  ChatStatusSaved   = "saved"
)

type Chat struct {
  ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_chat_user_title" json:"user_id"`
  User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title          string         `gorm:"not null;uniqueIndex:idx_chat_user_title;column:title" json:"title"`
  State          string         `gorm:"not null;default:'upload';column:state" json:"state"`
  Status         string         `gorm:"not null;default:'none';column:status" json:"status"`
  LastMessageAt  *time.Time     `gorm:"column:last_message_at" json:"last_message_at,omitempty"`
  CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Chat) TableName() string {
  return "chat"
}
