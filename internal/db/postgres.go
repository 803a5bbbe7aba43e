package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
  "github.com/oracyn-ai/oracyn-backend/internal/utils"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "oracyn", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
  }

  return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Chat{},
    &types.Message{},
    &types.Document{},
    &types.Chart{},
    &types.AICallLog{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  s.log.Info("Configuring foreign key relationships for postgres tables...")
  constraints := []struct {
    name  string
    ddl   string
  }{
    {"fk_user_token_user_id", `
      ALTER TABLE "user_token"
      ADD CONSTRAINT "fk_user_token_user_id"
      FOREIGN KEY ("user_id") REFERENCES "user"("id")
      ON DELETE CASCADE`},
    {"fk_chat_user_id", `
      ALTER TABLE "chat"
      ADD CONSTRAINT "fk_chat_user_id"
      FOREIGN KEY ("user_id") REFERENCES "user"("id")
      ON DELETE CASCADE`},
    {"fk_message_chat_id", `
      ALTER TABLE "message"
      ADD CONSTRAINT "fk_message_chat_id"
      FOREIGN KEY ("chat_id") REFERENCES "chat"("id")
      ON DELETE CASCADE`},
    {"fk_document_chat_id", `
      ALTER TABLE "document"
      ADD CONSTRAINT "fk_document_chat_id"
      FOREIGN KEY ("chat_id") REFERENCES "chat"("id")
      ON DELETE CASCADE`},
    {"fk_chart_chat_id", `
      ALTER TABLE "chart"
      ADD CONSTRAINT "fk_chart_chat_id"
      FOREIGN KEY ("chat_id") REFERENCES "chat"("id")
      ON DELETE CASCADE`},
  }
  for _, c := range constraints {
    var count int64
    if err := s.db.Raw(
      `SELECT COUNT(*) FROM information_schema.table_constraints WHERE constraint_name = ?`, c.name,
    ).Scan(&count).Error; err != nil {
      return fmt.Errorf("Failed to check constraint %s: %w", c.name, err)
    }
    if count > 0 {
      continue
    }
    if err := s.db.Exec(c.ddl).Error; err != nil {
      return fmt.Errorf("Failed to add %s: %w", c.name, err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
