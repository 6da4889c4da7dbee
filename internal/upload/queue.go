package upload

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/atelierhq/fieldsync/internal/db"
	"github.com/atelierhq/fieldsync/internal/errors"
	"github.com/atelierhq/fieldsync/internal/logging"
	"github.com/atelierhq/fieldsync/internal/models"
	"github.com/atelierhq/fieldsync/internal/uuid"
)

// Config holds upload queue tuning.
type Config struct {
	MaxRetries        int   // failed attempts before a record is abandoned
	CompressThreshold int64 // payloads above this are downscaled/re-encoded
	MaxPayloadBytes   int64 // post-compression hard ceiling, rejected outright
	MaxDimension      int   // compression bounding box edge
	JPEGQuality       int   // compression re-encode quality
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		CompressThreshold: 1 << 20,  // 1 MiB
		MaxPayloadBytes:   10 << 20, // 10 MiB
		MaxDimension:      1600,
		JPEGQuality:       80,
	}
}

// SubmitResult is the outcome of a Submit call. A queued submission is
// a success for the caller: the payload is durably captured even
// though no reference exists yet.
type SubmitResult struct {
	UploadID  string
	Queued    bool
	Reference string
}

// DrainResult summarizes one pass over the pending queue.
type DrainResult struct {
	Attempted int
	Uploaded  int
	Failed    int
	Dropped   int
}

// Queue guarantees that a submitted photo eventually reaches remote
// storage and is attached to its parent record, surviving connectivity
// loss, up to the retry ceiling.
type Queue struct {
	store      *db.UploadStore
	uploader   RemoteUploader
	patcher    RecordPatcher
	monitor    *NetworkMonitor
	notifier   Notifier
	compressor *Compressor
	cfg        Config

	mu          sync.Mutex
	draining    bool
	closed      bool
	unsubscribe func()
}

// New creates a Queue and subscribes it to the network monitor. An
// offline-to-online transition triggers an asynchronous drain.
func New(store *db.UploadStore, uploader RemoteUploader, patcher RecordPatcher, monitor *NetworkMonitor, notifier Notifier, cfg Config) *Queue {
	q := &Queue{
		store:      store,
		uploader:   uploader,
		patcher:    patcher,
		monitor:    monitor,
		notifier:   notifier,
		compressor: NewCompressor(cfg.CompressThreshold, cfg.MaxDimension, cfg.JPEGQuality),
		cfg:        cfg,
	}

	q.unsubscribe = monitor.Subscribe(func(online bool) {
		if online {
			go q.drainOnReconnect()
		}
	})

	return q
}

// Close detaches the queue from the network monitor. Pending records
// stay in the store for a future queue instance.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	if q.unsubscribe != nil {
		q.unsubscribe()
	}
}

// Submit validates, compresses, and delivers a photo payload. Online,
// it attempts an immediate upload and parent attach; offline, or on
// any transient failure of the immediate attempt, the payload is
// persisted for a later drain and a queued result is returned.
//
// Validation failures (empty or non-image payload, payload still over
// the size ceiling after compression, sync not configured) are
// rejected immediately and never queued: they cannot succeed on retry.
func (q *Queue) Submit(ctx context.Context, parentID string, payload []byte) (*SubmitResult, error) {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return nil, errors.New(errors.ErrQueueClosed, "queue is closed")
	}

	if parentID == "" {
		return nil, errors.New(errors.ErrInvalid, "parent id is required")
	}
	if len(payload) == 0 {
		return nil, errors.New(errors.ErrEmptyPayload, "payload is empty")
	}
	if q.uploader == nil {
		return nil, errors.New(errors.ErrSyncNotConfigured, "no remote uploader configured")
	}

	contentType := mimetype.Detect(payload).String()
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.Newf(errors.ErrUnsupportedMedia, "unsupported media type %s", contentType)
	}

	body, contentType, err := q.compressor.Compress(payload, contentType)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > q.cfg.MaxPayloadBytes {
		return nil, errors.Newf(errors.ErrPayloadTooLarge, "payload is %d bytes after compression, limit %d", len(body), q.cfg.MaxPayloadBytes)
	}

	uploadID := uuid.New()

	if q.monitor.IsOnline() {
		ref, err := q.uploader.Upload(ctx, body, destinationHint(parentID, uploadID, contentType))
		if err == nil {
			if attachErr := q.patcher.AttachReference(ctx, parentID, ref); attachErr == nil {
				return &SubmitResult{UploadID: uploadID, Reference: ref}, nil
			}
			// Upload succeeded but the attach did not; requeueing the
			// payload re-uploads it later, which the uploader contract
			// allows (duplicates over data loss).
			logging.Warn("attach failed after upload, queuing payload",
				map[string]interface{}{"upload_id": uploadID, "parent_id": parentID})
		} else {
			logging.Warn("immediate upload failed, queuing payload",
				map[string]interface{}{"upload_id": uploadID, "parent_id": parentID, "error": err.Error()})
		}
	}

	pending := &models.PendingUpload{
		ID:          uploadID,
		ParentID:    parentID,
		Payload:     body,
		ContentType: contentType,
		CreatedAt:   time.Now().Unix(),
	}
	if err := q.store.Put(pending); err != nil {
		// Persistence is the durability guarantee; failing it is a hard error.
		return nil, err
	}

	logging.Info("upload queued",
		map[string]interface{}{"upload_id": uploadID, "parent_id": parentID, "bytes": len(body)})

	return &SubmitResult{UploadID: uploadID, Queued: true}, nil
}

// Drain attempts to flush all pending uploads. Records at or over the
// retry ceiling are deleted without a further attempt. Per-record
// failures are swallowed: retry state is persisted and the pass moves
// on. A second concurrent call fails with SYNC_IN_PROGRESS.
func (q *Queue) Drain(ctx context.Context) (*DrainResult, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, errors.New(errors.ErrQueueClosed, "queue is closed")
	}
	if q.draining {
		q.mu.Unlock()
		return nil, errors.New(errors.ErrSyncInProgress, "drain already in progress")
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	pending, err := q.store.GetAll()
	if err != nil {
		return nil, err
	}

	result := &DrainResult{}

	for _, rec := range pending {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if rec.RetryCount >= q.cfg.MaxRetries {
			// Give up: the payload is lost. The deletion is logged with
			// the full record identity as the only audit trail.
			logging.ErrorWithCode("abandoning upload after retry ceiling",
				string(errors.ErrRetryExhausted), nil,
				map[string]interface{}{
					"upload_id":   rec.ID,
					"parent_id":   rec.ParentID,
					"retry_count": rec.RetryCount,
					"last_error":  rec.LastError,
				})
			if err := q.store.Delete(rec.ID); err != nil {
				logging.Error("failed to delete abandoned upload", err,
					map[string]interface{}{"upload_id": rec.ID})
			}
			result.Dropped++
			continue
		}

		result.Attempted++

		ref, err := q.uploader.Upload(ctx, rec.Payload, destinationHint(rec.ParentID, rec.ID, rec.ContentType))
		if err == nil {
			err = q.patcher.AttachReference(ctx, rec.ParentID, ref)
		}
		if err != nil {
			rec.RetryCount++
			rec.LastError = err.Error()
			if putErr := q.store.Put(rec); putErr != nil {
				logging.Error("failed to persist retry state", putErr,
					map[string]interface{}{"upload_id": rec.ID})
			}
			result.Failed++
			continue
		}

		if err := q.store.Delete(rec.ID); err != nil {
			logging.Error("failed to delete completed upload", err,
				map[string]interface{}{"upload_id": rec.ID})
		}
		result.Uploaded++
	}

	logging.Info("drain completed", map[string]interface{}{
		"attempted": result.Attempted,
		"uploaded":  result.Uploaded,
		"failed":    result.Failed,
		"dropped":   result.Dropped,
	})

	if q.notifier != nil && result.Attempted > 0 {
		// Best-effort; notification failures are ignored.
		_ = q.notifier.Notify("photo sync",
			fmt.Sprintf("%d uploaded, %d failed, %d abandoned", result.Uploaded, result.Failed, result.Dropped))
	}

	return result, nil
}

// Pending returns the number of uploads waiting in the store.
func (q *Queue) Pending() (int, error) {
	return q.store.Count()
}

// Stats is a point-in-time snapshot of queue state.
type Stats struct {
	Pending  int
	Draining bool
}

// Stats reports the pending record count and whether a drain is running.
func (q *Queue) Stats() (*Stats, error) {
	count, err := q.store.Count()
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	draining := q.draining
	q.mu.Unlock()

	return &Stats{Pending: count, Draining: draining}, nil
}

// drainOnReconnect runs a drain triggered by a connectivity transition.
func (q *Queue) drainOnReconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := q.Drain(ctx); err != nil {
		if errors.Is(err, errors.ErrSyncInProgress) || errors.Is(err, errors.ErrQueueClosed) {
			logging.Debug("skipping reconnect drain", map[string]interface{}{"reason": err.Error()})
			return
		}
		logging.ErrorWithCode("reconnect drain failed", string(errors.ErrSyncFailed), err)
	}
}
