package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  DocumentStatusUploaded   = "uploaded"
  DocumentStatusProcessing = "processing"
  DocumentStatusProcessed  = "processed"
  DocumentStatusFailed     = "failed"
)

type Document struct {
  ID            uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ChatID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"chat_id"`
  Chat          *Chat        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"chat,omitempty"`
  OriginalName  string       `gorm:"column:original_name;not null" json:"original_name"`
  StorageKey    string       `gorm:"column:storage_key;not null" json:"storage_key"`
  FileURL       string       `gorm:"column:file_url" json:"file_url"`
  MimeType      string       `gorm:"column:mime_type" json:"mime_type"`
  SizeBytes     int64        `gorm:"column:size_bytes" json:"size_bytes"`
  Processed     bool         `gorm:"not null;default:false;column:processed" json:"processed"`
  Status        string       `gorm:"not null;default:'uploaded';column:status" json:"status"`
  CreatedAt     time.Time    `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time    `gorm:"not null;default:now()" json:"updated_at"`
}

func (Document) TableName() string {
  return "document"
}
