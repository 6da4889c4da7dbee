// Package config loads fieldsync configuration from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// App holds the runtime configuration for the fieldsync core.
type App struct {
	// Storage
	DataDir string `envconfig:"FIELDSYNC_DATA_DIR" default:"./data"`

	// Remote storage (S3-compatible)
	S3Endpoint   string `envconfig:"FIELDSYNC_S3_ENDPOINT" default:""`
	S3Bucket     string `envconfig:"FIELDSYNC_S3_BUCKET" default:""`
	S3AccessKey  string `envconfig:"FIELDSYNC_S3_ACCESS_KEY" default:""`
	S3SecretKey  string `envconfig:"FIELDSYNC_S3_SECRET_KEY" default:""`
	S3Region     string `envconfig:"FIELDSYNC_S3_REGION" default:"us-east-1"`
	S3PathStyle  bool   `envconfig:"FIELDSYNC_S3_PATH_STYLE" default:"false"`

	// Upload queue
	MaxRetries        int   `envconfig:"FIELDSYNC_MAX_RETRIES" default:"3"`
	CompressThreshold int64 `envconfig:"FIELDSYNC_COMPRESS_THRESHOLD" default:"1048576"` // 1 MiB
	MaxPayloadBytes   int64 `envconfig:"FIELDSYNC_MAX_PAYLOAD_BYTES" default:"10485760"` // 10 MiB
	MaxDimension      int   `envconfig:"FIELDSYNC_MAX_DIMENSION" default:"1600"`
	JPEGQuality       int   `envconfig:"FIELDSYNC_JPEG_QUALITY" default:"80"`

	// Logging
	LogLevel string `envconfig:"FIELDSYNC_LOG_LEVEL" default:"INFO"`
}

// Load reads the configuration from the environment.
func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}

// SyncConfigured reports whether remote storage credentials are present.
// Submitting uploads without them is a validation error, never a retry.
func (c App) SyncConfigured() bool {
	return c.S3Endpoint != "" && c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
