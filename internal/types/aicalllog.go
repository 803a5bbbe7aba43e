package types

import (
  "time"
  "github.com/google/uuid"
)

// AICallLog records every outbound call to the inference service,
// success or not. Written best-effort; never blocks the caller.
type AICallLog struct {
  ID          uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID      *uuid.UUID    `gorm:"type:uuid;index" json:"user_id,omitempty"`
  ChatID      *uuid.UUID    `gorm:"type:uuid;index" json:"chat_id,omitempty"`
  CallType    string        `gorm:"column:call_type;not null" json:"call_type"`
  Success     bool          `gorm:"column:success;not null" json:"success"`
  Error       string        `gorm:"column:error" json:"error"`
  TokensUsed  *int          `gorm:"column:tokens_used" json:"tokens_used,omitempty"`
  DurationMS  int64         `gorm:"column:duration_ms" json:"duration_ms"`
  CreatedAt   time.Time     `gorm:"not null;default:now()" json:"created_at"`
}

func (AICallLog) TableName() string {
  return "ai_call_log"
}
