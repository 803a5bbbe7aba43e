// Package testutil opens a throwaway Postgres handle for integration
// tests. Tests that need it are skipped unless TEST_POSTGRES_DSN is set.
package testutil

import (
  "os"
  "testing"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

func Logger(tb testing.TB) *logger.Logger {
  tb.Helper()
  log, err := logger.New("test")
  if err != nil {
    tb.Fatalf("init test logger: %v", err)
  }
  return log
}

func DB(tb testing.TB) *gorm.DB {
  tb.Helper()
  dsn := os.Getenv("TEST_POSTGRES_DSN")
  if dsn == "" {
    tb.Skip("TEST_POSTGRES_DSN not set")
  }
  gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    tb.Fatalf("connect to test postgres: %v", err)
  }
  if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    tb.Fatalf("enable uuid-ossp: %v", err)
  }
  if err := gormDB.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Chat{},
    &types.Message{},
    &types.Document{},
    &types.Chart{},
    &types.AICallLog{},
  ); err != nil {
    tb.Fatalf("automigrate test schema: %v", err)
  }
  return gormDB
}
