package model

import "time"

// Attachment is a binary document (trade confirmation, email) tied to an entry.
type Attachment struct {
	ID         string    `json:"id"`
	EntryID    int64     `json:"entryId"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"fileType"`
	FileData   []byte    `json:"-"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// AttachmentMeta is the payload-free projection used for listings.
type AttachmentMeta struct {
	ID         string    `json:"id"`
	EntryID    int64     `json:"entryId"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"fileType"`
	UploadedAt time.Time `json:"uploadedAt"`
}
