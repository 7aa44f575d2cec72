package resumes

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"jobtrack-backend/internal/extract"
	"jobtrack-backend/internal/shared/storage/object"
	"jobtrack-backend/internal/shared/telemetry"
)

// Service contains business logic for resumes.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

// Upload saves the file to object storage, records the resume, and extracts
// its text. Extraction failure does not fail the upload; the resume simply
// has no text until a supported file is re-uploaded.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Resume, error) {
	if fileName == "" {
		return Resume{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Resume{}, err
	}

	resume := Resume{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, resume); err != nil {
		return Resume{}, err
	}

	if _, err := extract.ExtractText(ctx, s.Store, storageKey, mimeType, fileName); err != nil {
		telemetry.Error("resume.extract_failed", map[string]any{
			"user_id":   userID,
			"resume_id": resume.ID,
			"mime_type": mimeType,
			"error":     err.Error(),
		})
		return resume, nil
	}

	extractedKey := storageKey + ".extracted.txt"
	extractedAt := time.Now().UTC()
	if err := s.Repo.UpdateExtraction(ctx, userID, resume.ID, extractedKey, extractedAt); err != nil {
		return Resume{}, err
	}
	resume.ExtractedTextKey = extractedKey
	resume.ExtractedAt = &extractedAt

	return resume, nil
}

// Get returns a resume owned by the user.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if userID == "" || resumeID == "" {
		return Resume{}, errors.New("user id and resume id are required")
	}
	return s.Repo.GetOwnedByUser(ctx, resumeID, userID)
}

// List returns the user's resumes, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	return s.Repo.ListByUser(ctx, userID)
}

// LoadText reads the extracted text for a resume. Returns empty when no
// extraction exists yet.
func (s *Service) LoadText(ctx context.Context, resume Resume) (string, error) {
	return LoadText(ctx, s.Store, resume)
}

// LoadText reads the extracted text for a resume from the object store.
func LoadText(ctx context.Context, store object.ObjectStore, resume Resume) (string, error) {
	if resume.ExtractedTextKey == "" {
		return "", nil
	}
	body, err := store.Open(ctx, resume.ExtractedTextKey)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
