package s3

import (
	"fmt"
	"strings"
)

// Default AWS S3 endpoints by region.
var awsEndpoints = map[string]string{
	"us-east-1":      "s3.amazonaws.com",
	"us-east-2":      "s3.us-east-2.amazonaws.com",
	"us-west-1":      "s3.us-west-1.amazonaws.com",
	"us-west-2":      "s3.us-west-2.amazonaws.com",
	"eu-west-1":      "s3.eu-west-1.amazonaws.com",
	"eu-west-2":      "s3.eu-west-2.amazonaws.com",
	"eu-central-1":   "s3.eu-central-1.amazonaws.com",
	"eu-north-1":     "s3.eu-north-1.amazonaws.com",
	"ap-northeast-1": "s3.ap-northeast-1.amazonaws.com",
	"ap-southeast-1": "s3.ap-southeast-1.amazonaws.com",
	"ap-southeast-2": "s3.ap-southeast-2.amazonaws.com",
	"ap-south-1":     "s3.ap-south-1.amazonaws.com",
	"ca-central-1":   "s3.ca-central-1.amazonaws.com",
	"sa-east-1":      "s3.sa-east-1.amazonaws.com",
}

// AWSConfig holds AWS S3-specific configuration.
type AWSConfig struct {
	BucketName string
	AccessKey  string
	SecretKey  string
	Region     string // Default: us-east-1
}

// NewAWSClient creates a Client configured for AWS S3, which uses
// virtual-host style URLs (bucket.s3.amazonaws.com).
func NewAWSClient(config *AWSConfig) *Client {
	region := config.Region
	if region == "" {
		region = "us-east-1"
	}

	endpoint, ok := awsEndpoints[region]
	if !ok {
		// Fallback to global endpoint for unknown regions
		endpoint = "s3.amazonaws.com"
	}

	return NewClient(&Config{
		Endpoint:       endpoint,
		BucketName:     config.BucketName,
		AccessKey:      config.AccessKey,
		SecretKey:      config.SecretKey,
		Region:         region,
		ForcePathStyle: false,
	})
}

// MinIOConfig holds MinIO-specific configuration.
type MinIOConfig struct {
	Endpoint   string // MinIO server endpoint (e.g., "localhost:9000")
	BucketName string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
}

// NewMinIOClient creates a Client configured for MinIO, which requires
// path-style URLs (endpoint/bucket/key).
func NewMinIOClient(config *MinIOConfig) *Client {
	endpoint := config.Endpoint

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if config.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	return NewClient(&Config{
		Endpoint:       endpoint,
		BucketName:     config.BucketName,
		AccessKey:      config.AccessKey,
		SecretKey:      config.SecretKey,
		Region:         "us-east-1", // MinIO doesn't use regions, default required
		ForcePathStyle: true,
	})
}

// R2Config holds Cloudflare R2-specific configuration.
type R2Config struct {
	AccountID  string // Cloudflare Account ID
	BucketName string
	AccessKey  string
	SecretKey  string
}

// NewR2Client creates a Client configured for Cloudflare R2. The R2
// endpoint format is <accountid>.r2.cloudflarestorage.com.
func NewR2Client(config *R2Config) *Client {
	return NewClient(&Config{
		Endpoint:       fmt.Sprintf("%s.r2.cloudflarestorage.com", config.AccountID),
		BucketName:     config.BucketName,
		AccessKey:      config.AccessKey,
		SecretKey:      config.SecretKey,
		Region:         "auto", // R2 doesn't use regions like AWS
		ForcePathStyle: false,
	})
}
