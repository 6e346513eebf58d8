package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/washdate"
)

// EntryBuilder provides a fluent interface for creating test entries.
//
// Example usage:
//
//	// Simple creation with defaults
//	entry := testutil.NewEntry().Build(t, db)
//
//	// Customized entry
//	entry := testutil.NewEntry().
//	    WithAccount("ACCT-1234").
//	    SoldDaysAgo(40).
//	    CompletedOn(time.Now()).
//	    Build(t, db)
type EntryBuilder struct {
	Account       string
	Tickers       string
	HeldIn        string
	Broker        string
	SellDate      time.Time
	TargetDate    time.Time
	Comments      string
	Status        model.Status
	CompletedDate *time.Time

	targetOverridden bool
}

// NewEntry creates an EntryBuilder with sensible defaults: a fresh pending
// entry sold today.
func NewEntry() *EntryBuilder {
	sellDate := washdate.Today()
	return &EntryBuilder{
		Account:  MakeAccount("ACCT"),
		Tickers:  "AAPL,MSFT",
		HeldIn:   "CASH",
		Broker:   "SCHWAB",
		SellDate: sellDate,
		Status:   model.StatusPending,
	}
}

// WithAccount sets a custom account.
func (b *EntryBuilder) WithAccount(account string) *EntryBuilder {
	b.Account = account
	return b
}

// WithTickers sets custom tickers.
func (b *EntryBuilder) WithTickers(tickers string) *EntryBuilder {
	b.Tickers = tickers
	return b
}

// WithHeldIn sets a custom held-in value.
func (b *EntryBuilder) WithHeldIn(heldIn string) *EntryBuilder {
	b.HeldIn = heldIn
	return b
}

// WithBroker sets a custom broker.
func (b *EntryBuilder) WithBroker(broker string) *EntryBuilder {
	b.Broker = broker
	return b
}

// WithComments sets custom comments.
func (b *EntryBuilder) WithComments(comments string) *EntryBuilder {
	b.Comments = comments
	return b
}

// WithSellDate sets the sell date; the target date follows unless
// explicitly overridden.
func (b *EntryBuilder) WithSellDate(sellDate time.Time) *EntryBuilder {
	b.SellDate = washdate.Normalize(sellDate)
	return b
}

// WithTargetDate overrides the derived target date, for tests that need an
// entry already past (or not yet at) its window.
func (b *EntryBuilder) WithTargetDate(targetDate time.Time) *EntryBuilder {
	b.TargetDate = washdate.Normalize(targetDate)
	b.targetOverridden = true
	return b
}

// SoldDaysAgo moves the sell date n days into the past. Anything past 33
// days guarantees the target date has arrived regardless of weekends.
func (b *EntryBuilder) SoldDaysAgo(n int) *EntryBuilder {
	b.SellDate = washdate.Today().AddDate(0, 0, -n)
	return b
}

// WithStatus sets the workflow stage. Completed status gets today's
// completion date; use CompletedOn for a specific date.
func (b *EntryBuilder) WithStatus(status model.Status) *EntryBuilder {
	b.Status = status
	if status == model.StatusCompleted && b.CompletedDate == nil {
		today := washdate.Today()
		b.CompletedDate = &today
	}
	if status != model.StatusCompleted {
		b.CompletedDate = nil
	}
	return b
}

// CompletedOn marks the entry completed on the given date.
func (b *EntryBuilder) CompletedOn(date time.Time) *EntryBuilder {
	b.Status = model.StatusCompleted
	d := washdate.Normalize(date)
	b.CompletedDate = &d
	return b
}

// Build creates the entry in the database and returns it.
func (b *EntryBuilder) Build(t *testing.T, db *sql.DB) model.Entry {
	t.Helper()

	targetDate := b.TargetDate
	if !b.targetOverridden {
		targetDate = washdate.TargetDate(b.SellDate)
	}

	completed := 0
	var completedDate any
	if b.Status == model.StatusCompleted {
		completed = 1
		if b.CompletedDate != nil {
			completedDate = b.CompletedDate.Format(washdate.DateFormat)
		}
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO entries (account, tickers, held_in, broker, sell_date, target_date,
			comments, status, completed, completed_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		b.Account,
		b.Tickers,
		b.HeldIn,
		b.Broker,
		b.SellDate.Format(washdate.DateFormat),
		targetDate.Format(washdate.DateFormat),
		b.Comments,
		string(b.Status),
		completed,
		completedDate,
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test entry: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read test entry ID: %v", err)
	}

	return model.Entry{
		ID:            id,
		Account:       b.Account,
		Tickers:       b.Tickers,
		HeldIn:        b.HeldIn,
		Broker:        b.Broker,
		SellDate:      b.SellDate,
		TargetDate:    targetDate,
		Comments:      b.Comments,
		Status:        b.Status,
		Completed:     b.Status == model.StatusCompleted,
		CompletedDate: b.CompletedDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AttachmentBuilder provides a fluent interface for creating test attachments.
type AttachmentBuilder struct {
	ID       string
	EntryID  int64
	Filename string
	FileType string
	FileData []byte
}

// NewAttachment creates an AttachmentBuilder for the given entry with
// sensible defaults.
func NewAttachment(entryID int64) *AttachmentBuilder {
	return &AttachmentBuilder{
		ID:       MakeID(),
		EntryID:  entryID,
		Filename: "confirmation.pdf",
		FileType: "application/pdf",
		FileData: []byte("%PDF-1.4 test"),
	}
}

// WithFilename sets a custom filename.
func (b *AttachmentBuilder) WithFilename(filename string) *AttachmentBuilder {
	b.Filename = filename
	return b
}

// WithFileType sets a custom MIME type.
func (b *AttachmentBuilder) WithFileType(fileType string) *AttachmentBuilder {
	b.FileType = fileType
	return b
}

// WithFileData sets a custom payload.
func (b *AttachmentBuilder) WithFileData(data []byte) *AttachmentBuilder {
	b.FileData = data
	return b
}

// Build creates the attachment in the database (unencrypted) and returns it.
func (b *AttachmentBuilder) Build(t *testing.T, db *sql.DB) model.Attachment {
	t.Helper()

	now := time.Now().UTC()
	query := `
		INSERT INTO attachments (id, entry_id, filename, file_type, file_data, encrypted, uploaded_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`

	_, err := db.Exec(query, b.ID, b.EntryID, b.Filename, b.FileType, b.FileData, now.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test attachment: %v", err)
	}

	return model.Attachment{
		ID:         b.ID,
		EntryID:    b.EntryID,
		Filename:   b.Filename,
		FileType:   b.FileType,
		FileData:   b.FileData,
		UploadedAt: now,
	}
}
