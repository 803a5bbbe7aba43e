package services

import (
  "bytes"
  "context"
  "fmt"
  "io"
  "strings"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/logger"
  "github.com/oracyn-ai/oracyn-backend/internal/repos"
  "github.com/oracyn-ai/oracyn-backend/internal/sse"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

const DefaultMaxUploadBytes = 15 << 20

var defaultAllowedMimeTypes = map[string]bool{
  "application/pdf":  true,
  "text/plain":       true,
  "text/csv":         true,
  "text/markdown":    true,
  "application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type DocumentService interface {
  UploadDocument(ctx context.Context, chatID uuid.UUID, fileName, mimeType string, size int64, file io.Reader) (*types.Document, error)
  ListDocuments(ctx context.Context, chatID uuid.UUID) ([]*types.Document, error)
  DeleteDocument(ctx context.Context, documentID uuid.UUID) error
}

type documentService struct {
  db             *gorm.DB
  log            *logger.Logger
  documentRepo   repos.DocumentRepo
  chatService    ChatService
  bucketService  BucketService
  aiClient       AIClient
  sseHub         *sse.SSEHub
  maxUploadBytes int64
  allowedMime    map[string]bool
}

func NewDocumentService(
  db *gorm.DB,
  baseLog *logger.Logger,
  documentRepo repos.DocumentRepo,
  chatService ChatService,
  bucketService BucketService,
  aiClient AIClient,
  sseHub *sse.SSEHub,
  maxUploadBytes int64,
) DocumentService {
  serviceLog := baseLog.With("service", "DocumentService")
  if maxUploadBytes <= 0 {
    maxUploadBytes = DefaultMaxUploadBytes
  }
  return &documentService{
    db:             db,
    log:            serviceLog,
    documentRepo:   documentRepo,
    chatService:    chatService,
    bucketService:  bucketService,
    aiClient:       aiClient,
    sseHub:         sseHub,
    maxUploadBytes: maxUploadBytes,
    allowedMime:    defaultAllowedMimeTypes,
  }
}

// UploadDocument stores the bytes in the bucket, records the Document row,
// and forwards the content to the AI service for ingestion. Size and type
// are rejected before any row or object exists. If anything fails after
// the bucket write, the stored object is deleted before the error returns.
func (ds *documentService) UploadDocument(ctx context.Context, chatID uuid.UUID, fileName, mimeType string, size int64, file io.Reader) (*types.Document, error) {
  // Startup tolerates a missing bucket configuration so the rest of the
  // API stays up; uploads have to refuse cleanly rather than panic.
  if ds.bucketService == nil {
    return nil, fmt.Errorf("%w: Object storage is not configured", ErrInternal)
  }
  chat, err := ds.chatService.GetOwnedChat(ctx, nil, chatID)
  if err != nil {
    return nil, err
  }
  fileName = strings.TrimSpace(fileName)
  if fileName == "" {
    return nil, fmt.Errorf("A file name is required")
  }
  if size > ds.maxUploadBytes {
    return nil, fmt.Errorf("File exceeds the maximum upload size of %d bytes", ds.maxUploadBytes)
  }
  baseMime := mimeType
  if i := strings.Index(baseMime, ";"); i >= 0 {
    baseMime = baseMime[:i]
  }
  baseMime = strings.TrimSpace(strings.ToLower(baseMime))
  if !ds.allowedMime[baseMime] {
    return nil, fmt.Errorf("File type %q is not allowed", mimeType)
  }

  // Buffer with a hard cap; multipart headers can undercount.
  content, err := io.ReadAll(io.LimitReader(file, ds.maxUploadBytes+1))
  if err != nil {
    return nil, fmt.Errorf("Failed to read uploaded file: %w", err)
  }
  if int64(len(content)) > ds.maxUploadBytes {
    return nil, fmt.Errorf("File exceeds the maximum upload size of %d bytes", ds.maxUploadBytes)
  }

  doc := &types.Document{
    ID:           uuid.New(),
    ChatID:       chat.ID,
    OriginalName: fileName,
    MimeType:     baseMime,
    SizeBytes:    int64(len(content)),
    Status:       types.DocumentStatusUploaded,
  }
  doc.StorageKey = fmt.Sprintf("documents/%s/%s", chat.ID, doc.ID)

  if err := ds.bucketService.UploadFile(ctx, doc.StorageKey, bytes.NewReader(content)); err != nil {
    return nil, fmt.Errorf("Failed to store file: %w", err)
  }
  doc.FileURL = ds.bucketService.GetPublicURL(doc.StorageKey)

  if _, err := ds.documentRepo.Create(ctx, nil, []*types.Document{doc}); err != nil {
    ds.cleanupObject(doc.StorageKey)
    return nil, fmt.Errorf("Failed to record document: %w", err)
  }

  if err := ds.documentRepo.UpdateFields(ctx, nil, doc.ID, map[string]interface{}{
    "status":     types.DocumentStatusProcessing,
    "updated_at": time.Now(),
  }); err != nil {
    ds.log.Warn("Failed to mark document processing", "document_id", doc.ID, "error", err)
  }

  if aiErr := ds.aiClient.ProcessDocument(ctx, chat.ID, fileName, content); aiErr != nil {
    ds.log.Warn("AI ingestion failed for document", "document_id", doc.ID, "error", aiErr)
    if uErr := ds.documentRepo.UpdateFields(ctx, nil, doc.ID, map[string]interface{}{
      "status":     types.DocumentStatusFailed,
      "updated_at": time.Now(),
    }); uErr != nil {
      ds.log.Error("Failed to mark document failed", "document_id", doc.ID, "error", uErr)
    }
    doc.Status = types.DocumentStatusFailed
    ds.broadcastDocumentEvent(chat.ID, sse.SSEEventDocumentFailed, doc)
    return nil, fmt.Errorf("Document stored but ingestion failed: %w", aiErr)
  }

  now := time.Now()
  if err := ds.documentRepo.UpdateFields(ctx, nil, doc.ID, map[string]interface{}{
    "processed":  true,
    "status":     types.DocumentStatusProcessed,
    "updated_at": now,
  }); err != nil {
    return nil, fmt.Errorf("Failed to mark document processed: %w", err)
  }
  doc.Processed = true
  doc.Status = types.DocumentStatusProcessed
  doc.UpdatedAt = now
  ds.broadcastDocumentEvent(chat.ID, sse.SSEEventDocumentProcessed, doc)
  return doc, nil
}

func (ds *documentService) ListDocuments(ctx context.Context, chatID uuid.UUID) ([]*types.Document, error) {
  chat, err := ds.chatService.GetOwnedChat(ctx, nil, chatID)
  if err != nil {
    return nil, err
  }
  return ds.documentRepo.GetByChatIDs(ctx, nil, []uuid.UUID{chat.ID})
}

func (ds *documentService) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
  docs, err := ds.documentRepo.GetByIDs(ctx, nil, []uuid.UUID{documentID})
  if err != nil {
    return fmt.Errorf("Failed to load document: %w", err)
  }
  if len(docs) == 0 {
    return ErrChatNotFound
  }
  doc := docs[0]
  if _, err := ds.chatService.GetOwnedChat(ctx, nil, doc.ChatID); err != nil {
    return err
  }
  if doc.StorageKey != "" {
    if ds.bucketService == nil {
      return fmt.Errorf("%w: Object storage is not configured", ErrInternal)
    }
    if bErr := ds.bucketService.DeleteFile(ctx, doc.StorageKey); bErr != nil {
      return fmt.Errorf("Failed to delete stored file: %w", bErr)
    }
  }
  return ds.documentRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{doc.ID})
}

func (ds *documentService) cleanupObject(key string) {
  ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
  defer cancel()
  if err := ds.bucketService.DeleteFile(ctx, key); err != nil {
    ds.log.Warn("Failed to clean up orphaned object", "storage_key", key, "error", err)
  }
}

func (ds *documentService) broadcastDocumentEvent(chatID uuid.UUID, event sse.SSEEvent, doc *types.Document) {
  if ds.sseHub == nil {
    return
  }
  ds.sseHub.Broadcast(sse.SSEMessage{
    Channel: sse.ChatChannel(chatID),
    Event:   event,
    Data:    doc,
  })
}
