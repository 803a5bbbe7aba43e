package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
)

type APIError struct {
  Message     string    `json:"message"`
  Code        string    `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error       APIError  `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondServiceError maps well-known service errors to statuses;
// everything else is a 400 so validation messages reach the client.
func RespondServiceError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, services.ErrChatNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, services.ErrAIUnavailable):
    RespondError(c, http.StatusBadGateway, "ai_unavailable", err)
  case errors.Is(err, services.ErrInternal):
    RespondError(c, http.StatusInternalServerError, "internal_error", err)
  default:
    RespondError(c, http.StatusBadRequest, "bad_request", err)
  }
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}
