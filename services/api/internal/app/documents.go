package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"legalgpt/internal/util"
	"legalgpt/pkg/docparse"
	"legalgpt/pkg/domain"
	"legalgpt/pkg/storage"
)

const uploadedDocumentType = "uploaded"

// DocumentInput is a document submitted as JSON.
type DocumentInput struct {
	Title        string
	Content      string
	DocumentType string
	Analysis     string
	Tags         []string
}

// SaveDocument stores a document and counts it against the owner's profile.
func (a *App) SaveDocument(user domain.User, in DocumentInput) (domain.Document, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.DocumentType = strings.TrimSpace(in.DocumentType)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" || in.DocumentType == "" {
		return domain.Document{}, invalid("Title, content, and documentType are required")
	}
	now := a.timestamp()
	doc := domain.Document{
		ID:           util.NewID(),
		OwnerID:      user.ID,
		Title:        in.Title,
		Content:      in.Content,
		DocumentType: in.DocumentType,
		Analysis:     strings.TrimSpace(in.Analysis),
		Tags:         normalizeTags(in.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return a.persistDocument(doc)
}

// UploadInput is a document file received as multipart form data.
type UploadInput struct {
	FileName     string
	Data         []byte
	Title        string
	DocumentType string
	Analyze      bool
	Country      string
}

// UploadDocument extracts the text of an uploaded file, optionally analyses
// it, archives the original when an object store is configured, and stores
// the result as a document.
func (a *App) UploadDocument(ctx context.Context, user domain.User, in UploadInput) (domain.Document, error) {
	fileName := filepath.Base(strings.TrimSpace(in.FileName))
	if fileName == "" || fileName == "." || len(in.Data) == 0 {
		return domain.Document{}, invalid("A non-empty file is required")
	}
	if !docparse.Supported(fileName) {
		return domain.Document{}, invalid("Unsupported file type; upload %s", strings.Join(docparse.SupportedExtensions, ", "))
	}
	text, err := docparse.Extract(fileName, in.Data)
	if err != nil {
		if errors.Is(err, docparse.ErrNoText) {
			return domain.Document{}, invalid("No readable text found in %s", fileName)
		}
		return domain.Document{}, invalid("Could not read %s", fileName)
	}
	country, err := resolveCountry(in.Country)
	if err != nil {
		return domain.Document{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}
	docType := strings.TrimSpace(in.DocumentType)
	if docType == "" {
		docType = uploadedDocumentType
	}
	var analysis string
	if in.Analyze {
		analysis, err = a.gateway.AnalyzeDocument(ctx, docparse.Truncate(text, a.maxAnalysis), country)
		if err != nil {
			return domain.Document{}, err
		}
	}

	now := a.timestamp()
	doc := domain.Document{
		ID:           util.NewID(),
		OwnerID:      user.ID,
		Title:        title,
		Content:      text,
		DocumentType: docType,
		Analysis:     analysis,
		Tags:         []string{},
		FileName:     fileName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if a.objects != nil {
		key := storage.DocumentKey(user.ID, doc.ID, fileName)
		contentType := http.DetectContentType(in.Data)
		if err := a.objects.Put(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), contentType); err != nil {
			return domain.Document{}, fmt.Errorf("archive original: %w", err)
		}
		doc.StorageKey = key
	}
	saved, err := a.persistDocument(doc)
	if err != nil && doc.StorageKey != "" {
		a.removeObject(ctx, doc.StorageKey)
	}
	return saved, err
}

func (a *App) persistDocument(doc domain.Document) (domain.Document, error) {
	if err := a.store.CreateDocument(doc); err != nil {
		return domain.Document{}, fmt.Errorf("create document: %w", err)
	}
	if err := a.store.IncrementDocumentCount(doc.OwnerID); err != nil {
		return domain.Document{}, fmt.Errorf("count document: %w", err)
	}
	return doc, nil
}

func (a *App) ListDocuments(user domain.User) ([]domain.Document, error) {
	docs, err := a.store.ListDocumentsByOwner(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (a *App) GetDocument(user domain.User, id string) (domain.Document, error) {
	return loadOwned(user, "Document", id, a.store.GetDocument)
}

func (a *App) UpdateDocument(user domain.User, id string, upd domain.DocumentUpdate) (domain.Document, error) {
	if _, err := a.GetDocument(user, id); err != nil {
		return domain.Document{}, err
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return domain.Document{}, invalid("Title cannot be empty")
	}
	if upd.Content != nil && strings.TrimSpace(*upd.Content) == "" {
		return domain.Document{}, invalid("Content cannot be empty")
	}
	if upd.DocumentType != nil && strings.TrimSpace(*upd.DocumentType) == "" {
		return domain.Document{}, invalid("Document type cannot be empty")
	}
	if upd.Tags != nil {
		tags := normalizeTags(*upd.Tags)
		upd.Tags = &tags
	}
	doc, ok, err := a.store.UpdateDocument(id, upd, a.timestamp())
	if err != nil {
		return domain.Document{}, fmt.Errorf("update document: %w", err)
	}
	if !ok {
		return domain.Document{}, notFound("Document")
	}
	return doc, nil
}

// DeleteDocument removes an owned document and its archived original.
func (a *App) DeleteDocument(ctx context.Context, user domain.User, id string) error {
	doc, err := a.GetDocument(user, id)
	if err != nil {
		return err
	}
	if err := a.store.DeleteDocument(id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	a.removeObject(ctx, doc.StorageKey)
	return nil
}

// DocumentOriginalURL returns a short-lived download link for the archived
// upload behind an owned document.
func (a *App) DocumentOriginalURL(ctx context.Context, user domain.User, id string) (string, error) {
	doc, err := a.GetDocument(user, id)
	if err != nil {
		return "", err
	}
	if doc.StorageKey == "" {
		return "", notFound("Original file")
	}
	if a.objects == nil {
		return "", ErrStorageDisabled
	}
	link, err := a.objects.PresignGet(ctx, doc.StorageKey, a.presignExpiry)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return "", notFound("Original file")
	}
	if err != nil {
		return "", fmt.Errorf("presign original: %w", err)
	}
	return link, nil
}

// removeObject deletes an archived original. Failures leave an orphaned
// object behind and are only logged.
func (a *App) removeObject(ctx context.Context, key string) {
	if a.objects == nil || key == "" {
		return
	}
	if err := a.objects.Delete(ctx, key); err != nil {
		util.LoggerFromContext(ctx).Warn("failed to delete archived document", "key", key, "err", err)
	}
}
