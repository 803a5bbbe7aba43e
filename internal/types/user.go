package types

import (
  "time"
  "github.com/google/uuid"
)

type User struct {
  ID                          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Email                       string          `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Username                    string          `gorm:"uniqueIndex;not null;column:username" json:"username"`
  Password                    string          `gorm:"not null;column:password" json:"-"`
  FirstName                   string          `gorm:"column:first_name" json:"first_name"`
  LastName                    string          `gorm:"column:last_name" json:"last_name"`
  IsActive                    bool            `gorm:"not null;default:true;column:is_active" json:"is_active"`
  IsVerified                  bool            `gorm:"not null;default:false;column:is_verified" json:"is_verified"`
  VerificationToken           string          `gorm:"column:verification_token" json:"-"`
  VerificationTokenExpiresAt  *time.Time      `gorm:"column:verification_token_expires_at" json:"-"`
  ResetToken                  string          `gorm:"column:reset_token" json:"-"`
  ResetTokenExpiresAt         *time.Time      `gorm:"column:reset_token_expires_at" json:"-"`
  CreatedAt                   time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt                   time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
