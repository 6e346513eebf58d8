package service

import (
	"fmt"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/apperrors"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/repository"
)

// AttachmentService handles attachment storage. When an encryption key is
// configured, payloads are fernet-sealed before they reach the database and
// unsealed on read; callers always see the original bytes. The service
// enforces no size cap: that is an API-boundary rule, not a store invariant.
type AttachmentService struct {
	attachmentRepo *repository.AttachmentRepository
	key            *fernet.Key
}

// NewAttachmentService creates a new AttachmentService. key may be nil, in
// which case payloads are stored as-is.
func NewAttachmentService(attachmentRepo *repository.AttachmentRepository, key *fernet.Key) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		key:            key,
	}
}

// Add stores a document against an existing entry and returns the stored
// record with its assigned ID. The owning entry must exist.
func (s *AttachmentService) Add(entryID int64, filename, mimeType string, data []byte) (model.Attachment, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	payload := data
	encrypted := false
	if s.key != nil {
		sealed, err := fernet.EncryptAndSign(data, s.key)
		if err != nil {
			return model.Attachment{}, fmt.Errorf("failed to encrypt attachment: %w", err)
		}
		payload = sealed
		encrypted = true
	}

	attachment := model.Attachment{
		ID:       uuid.New().String(),
		EntryID:  entryID,
		Filename: filename,
		FileType: mimeType,
		FileData: payload,
	}

	if err := s.attachmentRepo.Insert(&attachment, encrypted); err != nil {
		return model.Attachment{}, err
	}

	attachment.FileData = data
	return attachment, nil
}

// ListMetadata returns the attachments of an entry without payloads, most
// recent first.
func (s *AttachmentService) ListMetadata(entryID int64) ([]model.AttachmentMeta, error) {
	return s.attachmentRepo.ListMetadata(entryID)
}

// GetPayload retrieves an attachment with its original payload bytes.
func (s *AttachmentService) GetPayload(attachmentID string) (model.Attachment, error) {
	attachment, encrypted, err := s.attachmentRepo.GetPayload(attachmentID)
	if err != nil {
		return model.Attachment{}, err
	}

	if encrypted {
		if s.key == nil {
			return model.Attachment{}, apperrors.ErrAttachmentKeyInvalid
		}
		plain := fernet.VerifyAndDecrypt(attachment.FileData, 0, []*fernet.Key{s.key})
		if plain == nil {
			return model.Attachment{}, apperrors.ErrAttachmentKeyInvalid
		}
		attachment.FileData = plain
	}

	return attachment, nil
}

// DeleteOne removes a single attachment.
func (s *AttachmentService) DeleteOne(attachmentID string) error {
	return s.attachmentRepo.DeleteOne(attachmentID)
}

// DeleteAllForEntry removes every attachment of an entry.
func (s *AttachmentService) DeleteAllForEntry(entryID int64) error {
	return s.attachmentRepo.DeleteAllForEntry(entryID)
}
