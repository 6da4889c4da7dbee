// Package upload provides the offline photo-upload queue.
//
// A photo captured by the host UI is submitted to the queue; when the
// device is online it is uploaded immediately, otherwise it is
// persisted to the local store and drained once connectivity returns.
// Delivery is at-least-once: a record is only deleted after a confirmed
// upload, so duplicates are possible but loss is not (up to the retry
// ceiling).
package upload

import (
	"context"
	"fmt"
	"log"
)

// RemoteUploader uploads a payload to durable remote storage and
// returns a public reference to it. Implementations must tolerate
// being called more than once for the same logical payload; duplicate
// remote objects are acceptable, corruption is not.
type RemoteUploader interface {
	Upload(ctx context.Context, payload []byte, destinationHint string) (string, error)
}

// RecordPatcher appends an uploaded reference to a parent record's
// reference list (read-modify-write). Concurrent calls for the same
// parent may lose updates; that race is accepted by design.
type RecordPatcher interface {
	AttachReference(ctx context.Context, parentID, reference string) error
}

// Notifier delivers best-effort, fire-and-forget sync notifications to
// the host (toast, badge, log line). Failures are ignored.
type Notifier interface {
	Notify(subject, message string) error
}

// ConsoleNotifier logs notifications to the process log.
type ConsoleNotifier struct{}

// NewConsoleNotifier creates a ConsoleNotifier.
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

// Notify implements Notifier.
func (c *ConsoleNotifier) Notify(subject, message string) error {
	log.Printf("[notify] %s :: %s\n", subject, message)
	return nil
}

// destinationHint builds the remote object name for an upload.
func destinationHint(parentID, uploadID, contentType string) string {
	ext := ".bin"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	}
	return fmt.Sprintf("parents/%s/%s%s", parentID, uploadID, ext)
}
