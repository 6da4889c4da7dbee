package models

// PendingUpload represents a photo captured while offline, persisted
// locally until a remote upload round-trip succeeds. The upload queue
// is the exclusive owner of these records.
type PendingUpload struct {
	ID          string `db:"id" json:"id"`
	ParentID    string `db:"parent_id" json:"parent_id"`
	Payload     []byte `db:"payload" json:"-"`
	ContentType string `db:"content_type" json:"content_type"`
	RetryCount  int    `db:"retry_count" json:"retry_count"`
	LastError   string `db:"last_error" json:"last_error,omitempty"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
	UpdatedAt   int64  `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for PendingUpload.
func (PendingUpload) TableName() string {
	return "pending_uploads"
}
