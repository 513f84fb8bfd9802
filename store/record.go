package store

import "time"

// Document lifecycle status values.
const (
	StatusUploaded = "uploaded"
	StatusUpdated  = "updated"
)

// DocumentRecord is the metadata row for one document. The schema is
// fixed; anything that does not fit these columns does not belong in
// the record.
type DocumentRecord struct {
	DocumentID  string    `gorm:"primaryKey;column:document_id" json:"document_id"`
	Filename    string    `gorm:"not null" json:"filename"`
	ContentType string    `json:"content_type"`
	OwnerID     string    `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
	BlobKey     string    `gorm:"not null" json:"-"`
	Size        int64     `json:"size"`
	PageCount   int       `json:"page_count"`
	TextCount   int       `json:"text_count"`
	ImageCount  int       `json:"image_count"`
	Status      string    `gorm:"not null" json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the table name independent of GORM pluralization.
func (DocumentRecord) TableName() string { return "documents" }
