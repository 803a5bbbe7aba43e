package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/services"
)

type DocumentHandler struct {
  log               *logger.Logger
  documentService   services.DocumentService
}

func NewDocumentHandler(log *logger.Logger, documentService services.DocumentService) *DocumentHandler {
  return &DocumentHandler{
    log:             log.With("handler", "DocumentHandler"),
    documentService: documentService,
  }
}

// Upload expects a multipart form with the file under the "file" field.
func (dh *DocumentHandler) Upload(c *gin.Context) {
  id, ok := chatIDParam(c)
  if !ok {
    return
  }
  fileHeader, err := c.FormFile("file")
  if err != nil {
    RespondError(c, http.StatusBadRequest, "missing_file", err)
    return
  }
  file, err := fileHeader.Open()
  if err != nil {
    RespondError(c, http.StatusBadRequest, "unreadable_file", err)
    return
  }
  defer file.Close()

  mimeType := fileHeader.Header.Get("Content-Type")
  doc, err := dh.documentService.UploadDocument(c.Request.Context(), id, fileHeader.Filename, mimeType, fileHeader.Size, file)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"document": doc})
}

func (dh *DocumentHandler) ListByChat(c *gin.Context) {
  id, ok := chatIDParam(c)
  if !ok {
    return
  }
  docs, err := dh.documentService.ListDocuments(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"documents": docs})
}

func (dh *DocumentHandler) Delete(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return
  }
  if err := dh.documentService.DeleteDocument(c.Request.Context(), id); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
