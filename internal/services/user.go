package services

import (
  "context"
  "fmt"
  "time"
  "gorm.io/gorm"
  "golang.org/x/crypto/bcrypt"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/normalization"
  "github.com/oracyn-ai/oracyn-backend/internal/repos"
  "github.com/oracyn-ai/oracyn-backend/internal/requestdata"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

type UserService interface {
  GetMe(ctx context.Context) (*types.User, error)
  UpdateProfile(ctx context.Context, firstName, lastName string) (*types.User, error)
  ChangePassword(ctx context.Context, currentPassword, newPassword string) error
  DeactivateAccount(ctx context.Context) error
}

type userService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, userTokenRepo repos.UserTokenRepo) UserService {
  serviceLog := baseLog.With("service", "UserService")
  return &userService{db: db, log: serviceLog, userRepo: userRepo, userTokenRepo: userTokenRepo}
}

func (us *userService) currentUser(ctx context.Context, tx *gorm.DB) (*types.User, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  users, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{rd.UserID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load user: %w", err)
  }
  if len(users) == 0 {
    return nil, fmt.Errorf("user not found")
  }
  return users[0], nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
  return us.currentUser(ctx, nil)
}

func (us *userService) UpdateProfile(ctx context.Context, firstName, lastName string) (*types.User, error) {
  user, err := us.currentUser(ctx, nil)
  if err != nil {
    return nil, err
  }
  firstName = normalization.ParseDisplayString(firstName)
  lastName = normalization.ParseDisplayString(lastName)
  updates := map[string]interface{}{
    "updated_at": time.Now(),
  }
  if firstName != "" {
    updates["first_name"] = firstName
  }
  if lastName != "" {
    updates["last_name"] = lastName
  }
  if err := us.userRepo.UpdateFields(ctx, nil, user.ID, updates); err != nil {
    return nil, fmt.Errorf("Failed to update profile: %w", err)
  }
  return us.currentUser(ctx, nil)
}

func (us *userService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
  user, err := us.currentUser(ctx, nil)
  if err != nil {
    return err
  }
  if currentPassword == "" || newPassword == "" {
    return fmt.Errorf("Both current and new passwords are required")
  }
  if len(newPassword) < 8 {
    return fmt.Errorf("Password must be at least 8 characters")
  }
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); hErr != nil {
    return fmt.Errorf("Current password is incorrect")
  }
  hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
  if err != nil {
    return fmt.Errorf("Failed to hash password")
  }
  return us.userRepo.UpdateFields(ctx, nil, user.ID, map[string]interface{}{
    "password":   string(hashed),
    "updated_at": time.Now(),
  })
}

// DeactivateAccount never hard-deletes the row. The unique email and
// username are rewritten with a deleted_ prefix so both become available
// for a new registration immediately.
func (us *userService) DeactivateAccount(ctx context.Context) error {
  return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user, err := us.currentUser(ctx, tx)
    if err != nil {
      return err
    }
    marker := uuid.New().String()[:8]
    updates := map[string]interface{}{
      "email":      fmt.Sprintf("deleted_%s_%s", marker, user.Email),
      "username":   fmt.Sprintf("deleted_%s_%s", marker, user.Username),
      "is_active":  false,
      "updated_at": time.Now(),
    }
    if err := us.userRepo.UpdateFields(ctx, tx, user.ID, updates); err != nil {
      return fmt.Errorf("Failed to deactivate account: %w", err)
    }
    tokens, tErr := us.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
    if tErr != nil {
      return fmt.Errorf("Failed to load user tokens: %w", tErr)
    }
    if dErr := us.userTokenRepo.FullDeleteByTokens(ctx, tx, tokens); dErr != nil {
      return fmt.Errorf("Failed to revoke user tokens: %w", dErr)
    }
    us.log.Info("Account deactivated", "user_id", user.ID)
    return nil
  })
}
