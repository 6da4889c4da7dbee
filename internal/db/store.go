package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/atelierhq/fieldsync/internal/errors"
	"github.com/atelierhq/fieldsync/internal/models"
)

// UploadStore provides CRUD operations for pending uploads, keyed by id.
// The upload queue is the only writer; within a process, access is
// serialized by the single sqlite writer connection.
type UploadStore struct {
	db *sql.DB

	// Prepared statement cache for frequently used queries.
	// Statements are prepared on first use and cached for reuse.
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewUploadStore creates a new UploadStore instance.
func NewUploadStore(db *sql.DB) *UploadStore {
	return &UploadStore{db: db}
}

// prepareStmt gets or creates a prepared statement from cache.
// Key is the query string, value is the prepared statement.
func (s *UploadStore) prepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := s.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := s.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this, close our duplicate
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}

	return stmt, nil
}

// Close closes all cached prepared statements.
// Should be called when the UploadStore is no longer needed.
func (s *UploadStore) Close() error {
	var firstErr error
	s.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// Put inserts a pending upload, or replaces it when the id already
// exists (retry bookkeeping updates go through the same path).
func (s *UploadStore) Put(upload *models.PendingUpload) error {
	now := time.Now().Unix()
	if upload.CreatedAt == 0 {
		upload.CreatedAt = now
	}
	upload.UpdatedAt = now

	query := `
	INSERT OR REPLACE INTO pending_uploads
		(id, parent_id, payload, content_type, retry_count, last_error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, upload.ID, upload.ParentID, upload.Payload,
		upload.ContentType, upload.RetryCount, upload.LastError,
		upload.CreatedAt, upload.UpdatedAt)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to persist pending upload", err)
	}
	return nil
}

// Get retrieves a pending upload by id.
func (s *UploadStore) Get(id string) (*models.PendingUpload, error) {
	query := `
	SELECT id, parent_id, payload, content_type, retry_count, last_error, created_at, updated_at
	FROM pending_uploads WHERE id = ?
	`
	stmt, err := s.prepareStmt(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to prepare lookup", err)
	}

	var upload models.PendingUpload
	err = stmt.QueryRow(id).Scan(
		&upload.ID, &upload.ParentID, &upload.Payload, &upload.ContentType,
		&upload.RetryCount, &upload.LastError, &upload.CreatedAt, &upload.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.ErrNotFound, "pending upload %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to read pending upload", err)
	}
	return &upload, nil
}

// GetAll returns all pending uploads, oldest first. Ordering is for
// diagnostics only; the queue makes no delivery-order guarantee.
func (s *UploadStore) GetAll() ([]*models.PendingUpload, error) {
	query := `
	SELECT id, parent_id, payload, content_type, retry_count, last_error, created_at, updated_at
	FROM pending_uploads ORDER BY created_at ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list pending uploads", err)
	}
	defer rows.Close()

	var uploads []*models.PendingUpload
	for rows.Next() {
		var upload models.PendingUpload
		err := rows.Scan(
			&upload.ID, &upload.ParentID, &upload.Payload, &upload.ContentType,
			&upload.RetryCount, &upload.LastError, &upload.CreatedAt, &upload.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to scan pending upload", err)
		}
		uploads = append(uploads, &upload)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to iterate pending uploads", err)
	}
	return uploads, nil
}

// Delete removes a pending upload by id. Deleting an absent id is not
// an error; a crash between upload success and delete may legitimately
// leave nothing to remove.
func (s *UploadStore) Delete(id string) error {
	_, err := s.db.Exec("DELETE FROM pending_uploads WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete pending upload", err)
	}
	return nil
}

// Count returns the number of pending uploads.
func (s *UploadStore) Count() (int, error) {
	stmt, err := s.prepareStmt("SELECT COUNT(*) FROM pending_uploads")
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "failed to prepare count", err)
	}

	var count int
	if err := stmt.QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "failed to count pending uploads", err)
	}
	return count, nil
}
