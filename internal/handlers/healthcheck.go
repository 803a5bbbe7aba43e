package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/oracyn-ai/oracyn-backend/internal/requestdata"
)

func HealthCheck(c *gin.Context) {
  c.String(http.StatusOK, "ok")
}

/// Status is mounted behind OptionalAuth: the payload names the caller
// when a valid token was presented, and stays anonymous otherwise.
func Status(c *gin.Context) {
  payload := gin.H{"status": "ok", "service": "oracyn-backend"}
  if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
    payload["authenticated"] = true
    payload["email"] = rd.Email
  } else {
    payload["authenticated"] = false
  }
  c.JSON(http.StatusOK, payload)
}
