package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
)

type UserHandler struct {
  userService     services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
  return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
  me, err := uh.userService.GetMe(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"me": me})
}

func (uh *UserHandler) UpdateProfile(c *gin.Context) {
  var req struct {
    FirstName   string      `json:"first_name"`
    LastName    string      `json:"last_name"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  me, err := uh.userService.UpdateProfile(c.Request.Context(), req.FirstName, req.LastName)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"me": me})
}

func (uh *UserHandler) ChangePassword(c *gin.Context) {
  var req struct {
    CurrentPassword   string    `json:"current_password"`
    NewPassword       string    `json:"new_password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  if err := uh.userService.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}

func (uh *UserHandler) DeactivateAccount(c *gin.Context) {
  if err := uh.userService.DeactivateAccount(c.Request.Context()); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
