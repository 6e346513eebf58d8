package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/apperrors"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
)

// AttachmentRepository provides data access methods for the attachments table.
// Payloads are stored as opaque blobs; whether a row is encrypted at rest is
// tracked per row so a key can be introduced on an existing database.
type AttachmentRepository struct {
	db *sql.DB
}

// NewAttachmentRepository creates a new AttachmentRepository with the provided database connection.
func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Insert stores an attachment inside a transaction that first verifies the
// owning entry still exists, so no orphan creation path exists even when a
// concurrent user deletes the entry mid-upload.
func (r *AttachmentRepository) Insert(a *model.Attachment, encrypted bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin attachment transaction: %w", mapStoreErr(err))
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM entries WHERE id = ?`, a.EntryID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query entries table: %w", mapStoreErr(err))
	}
	if exists == 0 {
		return apperrors.ErrEntryNotFound
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO attachments (id, entry_id, filename, file_type, file_data, encrypted, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.EntryID,
		a.Filename,
		a.FileType,
		a.FileData,
		boolToInt(encrypted),
		now.Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into attachments table: %w", mapStoreErr(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit attachment transaction: %w", mapStoreErr(err))
	}

	a.UploadedAt = now
	return nil
}

// ListMetadata retrieves the attachments of an entry without their payloads,
// most recent first.
func (r *AttachmentRepository) ListMetadata(entryID int64) ([]model.AttachmentMeta, error) {
	query := `
		SELECT id, entry_id, filename, file_type, uploaded_at
		FROM attachments
		WHERE entry_id = ?
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.Query(query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments table: %w", mapStoreErr(err))
	}
	defer rows.Close()

	metas := []model.AttachmentMeta{}
	for rows.Next() {
		var m model.AttachmentMeta
		var uploadedAtStr string

		err := rows.Scan(&m.ID, &m.EntryID, &m.Filename, &m.FileType, &uploadedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachments table results: %w", err)
		}

		if m.UploadedAt, err = ParseTime(uploadedAtStr); err != nil {
			return nil, err
		}

		metas = append(metas, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments table: %w", err)
	}

	return metas, nil
}

// GetPayload retrieves a full attachment record including its payload.
// The second return value reports whether the stored payload is encrypted.
func (r *AttachmentRepository) GetPayload(attachmentID string) (model.Attachment, bool, error) {
	query := `
		SELECT id, entry_id, filename, file_type, file_data, encrypted, uploaded_at
		FROM attachments
		WHERE id = ?
	`

	var a model.Attachment
	var encrypted int
	var uploadedAtStr string

	err := r.db.QueryRow(query, attachmentID).Scan(
		&a.ID,
		&a.EntryID,
		&a.Filename,
		&a.FileType,
		&a.FileData,
		&encrypted,
		&uploadedAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Attachment{}, false, apperrors.ErrAttachmentNotFound
	}
	if err != nil {
		return model.Attachment{}, false, fmt.Errorf("failed to query attachments table: %w", mapStoreErr(err))
	}

	if a.UploadedAt, err = ParseTime(uploadedAtStr); err != nil {
		return model.Attachment{}, false, err
	}

	return a, encrypted != 0, nil
}

// DeleteOne removes a single attachment.
func (r *AttachmentRepository) DeleteOne(attachmentID string) error {
	result, err := r.db.Exec(`DELETE FROM attachments WHERE id = ?`, attachmentID)
	if err != nil {
		return fmt.Errorf("failed to delete from attachments table: %w", mapStoreErr(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAttachmentNotFound
	}

	return nil
}

// DeleteAllForEntry removes every attachment of an entry. Deleting zero rows
// is not an error; the entry may simply have no attachments.
func (r *AttachmentRepository) DeleteAllForEntry(entryID int64) error {
	if _, err := r.db.Exec(`DELETE FROM attachments WHERE entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("failed to delete from attachments table: %w", mapStoreErr(err))
	}
	return nil
}
