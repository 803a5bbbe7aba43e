package services

import (
  "bytes"
  "context"
  "errors"
  "fmt"
  "io"
  "strings"
  "testing"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/oracyn-ai/oracyn-backend/internal/types"
)

// ownedChatService hands out a single chat to its owner and nothing else.
type ownedChatService struct {
  ChatService
  chat    *types.Chat
  ownerID uuid.UUID
}

func (o *ownedChatService) GetOwnedChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Chat, error) {
  if chatID != o.chat.ID {
    return nil, ErrChatNotFound
  }
  return o.chat, nil
}

type fakeDocumentRepo struct {
  created   []*types.Document
  updates   map[uuid.UUID][]map[string]interface{}
  deleted   []uuid.UUID
  createErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
  return &fakeDocumentRepo{updates: make(map[uuid.UUID][]map[string]interface{})}
}

func (f *fakeDocumentRepo) Create(ctx context.Context, tx *gorm.DB, documents []*types.Document) ([]*types.Document, error) {
  if f.createErr != nil {
    return nil, f.createErr
  }
  f.created = append(f.created, documents...)
  return documents, nil
}

func (f *fakeDocumentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, documentIDs []uuid.UUID) ([]*types.Document, error) {
  var out []*types.Document
  for _, d := range f.created {
    for _, id := range documentIDs {
      if d.ID == id {
        out = append(out, d)
      }
    }
  }
  return out, nil
}

func (f *fakeDocumentRepo) GetByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) ([]*types.Document, error) {
  var out []*types.Document
  for _, d := range f.created {
    for _, id := range chatIDs {
      if d.ChatID == id {
        out = append(out, d)
      }
    }
  }
  return out, nil
}

func (f *fakeDocumentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, updates map[string]interface{}) error {
  f.updates[documentID] = append(f.updates[documentID], updates)
  return nil
}

func (f *fakeDocumentRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, documentIDs []uuid.UUID) error {
  f.deleted = append(f.deleted, documentIDs...)
  return nil
}

type fakeBucketService struct {
  objects   map[string][]byte
  deleted   []string
  uploadErr error
}

func newFakeBucketService() *fakeBucketService {
  return &fakeBucketService{objects: make(map[string][]byte)}
}

func (f *fakeBucketService) UploadFile(ctx context.Context, key string, file io.Reader) error {
  if f.uploadErr != nil {
    return f.uploadErr
  }
  raw, err := io.ReadAll(file)
  if err != nil {
    return err
  }
  f.objects[key] = raw
  return nil
}

func (f *fakeBucketService) DeleteFile(ctx context.Context, key string) error {
  delete(f.objects, key)
  f.deleted = append(f.deleted, key)
  return nil
}

func (f *fakeBucketService) GetPublicURL(key string) string {
  return "https://cdn.example.com/" + key
}

func newDocumentTestService(t *testing.T, docRepo *fakeDocumentRepo, bucket *fakeBucketService, ai *fakeAIClient, maxBytes int64) (DocumentService, *types.Chat, context.Context) {
  t.Helper()
  ownerID := uuid.New()
  chat := &types.Chat{ID: uuid.New(), UserID: ownerID, Title: "Docs", State: types.ChatStateUpload}
  owned := &ownedChatService{chat: chat, ownerID: ownerID}
  svc := NewDocumentService(nil, testLogger(t), docRepo, owned, bucket, ai, nil, maxBytes)
  return svc, chat, authedContext(ownerID)
}

func TestDocumentService_UploadDocument_Success(t *testing.T) {
  docRepo := newFakeDocumentRepo()
  bucket := newFakeBucketService()
  ai := &fakeAIClient{}
  svc, chat, ctx := newDocumentTestService(t, docRepo, bucket, ai, 0)

  content := []byte("col_a,col_b\n1,2\n")
  doc, err := svc.UploadDocument(ctx, chat.ID, "numbers.csv", "text/csv; charset=utf-8", int64(len(content)), bytes.NewReader(content))
  if err != nil {
    t.Fatalf("upload: %v", err)
  }
  if doc.Status != types.DocumentStatusProcessed || !doc.Processed {
    t.Fatalf("expected processed document, got status %q", doc.Status)
  }
  if doc.MimeType != "text/csv" {
    t.Fatalf("mime parameters should be stripped, got %q", doc.MimeType)
  }
  if len(docRepo.created) != 1 {
    t.Fatalf("expected one document row, got %d", len(docRepo.created))
  }
  if got, ok := bucket.objects[doc.StorageKey]; !ok || !bytes.Equal(got, content) {
    t.Fatalf("stored object does not match upload")
  }
  if !bytes.Equal(ai.lastContent, content) || ai.lastFileName != "numbers.csv" {
    t.Fatalf("ingestion did not receive the uploaded bytes")
  }
  if !strings.HasPrefix(doc.FileURL, "https://cdn.example.com/") {
    t.Fatalf("public URL not populated: %q", doc.FileURL)
  }
}

func TestDocumentService_UploadDocument_RejectsBeforeAnySideEffect(t *testing.T) {
  docRepo := newFakeDocumentRepo()
  bucket := newFakeBucketService()
  ai := &fakeAIClient{}
  svc, chat, ctx := newDocumentTestService(t, docRepo, bucket, ai, 64)

  cases := []struct {
    name     string
    fileName string
    mime     string
    size     int64
    body     string
  }{
    {"oversize header", "big.pdf", "application/pdf", 65, "x"},
    {"oversize body", "sneaky.pdf", "application/pdf", 10, strings.Repeat("y", 100)},
    {"disallowed type", "tool.exe", "application/octet-stream", 4, "MZ.."},
    {"empty name", "   ", "text/plain", 4, "text"},
  }
  for _, tc := range cases {
    if _, err := svc.UploadDocument(ctx, chat.ID, tc.fileName, tc.mime, tc.size, strings.NewReader(tc.body)); err == nil {
      t.Fatalf("%s: expected rejection", tc.name)
    }
  }
  if len(docRepo.created) != 0 {
    t.Fatalf("rejected uploads must not create rows, found %d", len(docRepo.created))
  }
  if len(bucket.objects) != 0 {
    t.Fatalf("rejected uploads must not leave objects, found %d", len(bucket.objects))
  }
}

func TestDocumentService_UploadDocument_NoBucketConfigured(t *testing.T) {
  docRepo := newFakeDocumentRepo()
  ownerID := uuid.New()
  chat := &types.Chat{ID: uuid.New(), UserID: ownerID, Title: "Docs", State: types.ChatStateUpload}
  owned := &ownedChatService{chat: chat, ownerID: ownerID}
  svc := NewDocumentService(nil, testLogger(t), docRepo, owned, nil, &fakeAIClient{}, nil, 0)
  ctx := authedContext(ownerID)

  _, err := svc.UploadDocument(ctx, chat.ID, "report.pdf", "application/pdf", 4, strings.NewReader("%PDF"))
  if err == nil {
    t.Fatalf("expected an error when object storage is not configured")
  }
  if !errors.Is(err, ErrInternal) {
    t.Fatalf("missing bucket should wrap ErrInternal, got %v", err)
  }
  if len(docRepo.created) != 0 {
    t.Fatalf("no rows may be created without object storage, found %d", len(docRepo.created))
  }
}

func TestDocumentService_UploadDocument_ForeignChat(t *testing.T) {
  docRepo := newFakeDocumentRepo()
  bucket := newFakeBucketService()
  svc, _, ctx := newDocumentTestService(t, docRepo, bucket, &fakeAIClient{}, 0)

  _, err := svc.UploadDocument(ctx, uuid.New(), "a.pdf", "application/pdf", 2, strings.NewReader("ab"))
  if !errors.Is(err, ErrChatNotFound) {
    t.Fatalf("expected ErrChatNotFound, got %v", err)
  }
}

func TestDocumentService_UploadDocument_IngestionFailureMarksFailed(t *testing.T) {
  docRepo := newFakeDocumentRepo()
  bucket := newFakeBucketService()
  ai := &fakeAIClient{processErr: fmt.Errorf("%w: status 503", ErrAIUnavailable)}
  svc, chat, ctx := newDocumentTestService(t, docRepo, bucket, ai, 0)

  _, err := svc.UploadDocument(ctx, chat.ID, "report.pdf", "application/pdf", 4, strings.NewReader("%PDF"))
  if err == nil {
    t.Fatalf("expected ingestion failure to surface")
  }
  if !errors.Is(err, ErrAIUnavailable) {
    t.Fatalf("expected wrapped ErrAIUnavailable, got %v", err)
  }
  if len(docRepo.created) != 1 {
    t.Fatalf("the stored document row should remain, got %d rows", len(docRepo.created))
  }
  doc := docRepo.created[0]
  last := docRepo.updates[doc.ID][len(docRepo.updates[doc.ID])-1]
  if last["status"] != types.DocumentStatusFailed {
    t.Fatalf("document not marked failed: %v", last)
  }
}

func TestDocumentService_UploadDocument_RowFailureCleansUpObject(t *testing.T) {
  docRepo := newFakeDocumentRepo()
  docRepo.createErr = fmt.Errorf("insert failed")
  bucket := newFakeBucketService()
  svc, chat, ctx := newDocumentTestService(t, docRepo, bucket, &fakeAIClient{}, 0)

  _, err := svc.UploadDocument(ctx, chat.ID, "report.pdf", "application/pdf", 4, strings.NewReader("%PDF"))
  if err == nil {
    t.Fatalf("expected row creation failure to surface")
  }
  if len(bucket.objects) != 0 {
    t.Fatalf("orphaned object left in bucket after row failure")
  }
  if len(bucket.deleted) != 1 {
    t.Fatalf("expected one cleanup delete, got %d", len(bucket.deleted))
  }
}

func TestDocumentService_DeleteDocument_ChecksOwnershipViaChat(t *testing.T) {
  docRepo := newFakeDocumentRepo()
  bucket := newFakeBucketService()
  svc, chat, ctx := newDocumentTestService(t, docRepo, bucket, &fakeAIClient{}, 0)

  content := []byte("%PDF")
  doc, err := svc.UploadDocument(ctx, chat.ID, "report.pdf", "application/pdf", int64(len(content)), bytes.NewReader(content))
  if err != nil {
    t.Fatalf("upload: %v", err)
  }

  if err := svc.DeleteDocument(ctx, doc.ID); err != nil {
    t.Fatalf("delete document: %v", err)
  }
  if len(docRepo.deleted) != 1 || docRepo.deleted[0] != doc.ID {
    t.Fatalf("document row not deleted")
  }
  if _, ok := bucket.objects[doc.StorageKey]; ok {
    t.Fatalf("stored object not deleted")
  }

  if err := svc.DeleteDocument(ctx, uuid.New()); !errors.Is(err, ErrChatNotFound) {
    t.Fatalf("expected ErrChatNotFound for unknown document, got %v", err)
  }
}
