// Package main wires the fieldsync core for standalone use: local
// store, S3 uploader, and upload queue, with a one-shot "sync now"
// drain. Host applications embed the internal packages directly; this
// binary exists for operations and smoke-testing against a bucket.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/atelierhq/fieldsync/internal/config"
	"github.com/atelierhq/fieldsync/internal/db"
	"github.com/atelierhq/fieldsync/internal/logging"
	"github.com/atelierhq/fieldsync/internal/upload"
	"github.com/atelierhq/fieldsync/internal/upload/s3"
)

// Version is set at build time
var Version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logging.Init(os.Stdout, logging.LogLevel(cfg.LogLevel))

	if !cfg.SyncConfigured() {
		log.Fatal("remote storage is not configured; set the FIELDSYNC_S3_* variables")
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}
	defer database.Close()

	store := db.NewUploadStore(database.DB)
	defer store.Close()

	uploader := s3.NewClient(&s3.Config{
		Endpoint:       cfg.S3Endpoint,
		BucketName:     cfg.S3Bucket,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Region:         cfg.S3Region,
		ForcePathStyle: cfg.S3PathStyle,
	})

	monitor := upload.NewNetworkMonitor(true)

	queue := upload.New(store, uploader, noopPatcher{}, monitor, upload.NewConsoleNotifier(), upload.Config{
		MaxRetries:        cfg.MaxRetries,
		CompressThreshold: cfg.CompressThreshold,
		MaxPayloadBytes:   cfg.MaxPayloadBytes,
		MaxDimension:      cfg.MaxDimension,
		JPEGQuality:       cfg.JPEGQuality,
	})
	defer queue.Close()

	pending, err := queue.Pending()
	if err != nil {
		log.Fatalf("failed to read queue: %v", err)
	}

	fmt.Printf("fieldsync v%s — %d pending upload(s)\n", Version, pending)

	if len(os.Args) > 1 && os.Args[1] == "sync" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		result, err := queue.Drain(ctx)
		if err != nil {
			log.Fatalf("drain failed: %v", err)
		}
		fmt.Printf("drained: %d uploaded, %d failed, %d abandoned\n",
			result.Uploaded, result.Failed, result.Dropped)
	}
}

// noopPatcher stands in when no host record store is attached; the
// reference list of the parent lives in the host application.
type noopPatcher struct{}

func (noopPatcher) AttachReference(ctx context.Context, parentID, reference string) error {
	logging.Info("reference ready for parent",
		map[string]interface{}{"parent_id": parentID, "reference": reference})
	return nil
}
