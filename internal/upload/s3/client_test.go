// Package s3 provides unit tests for the S3 uploader.
package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient points a path-style client at a local test server.
func newTestClient(serverURL string) *Client {
	return NewClient(&Config{
		Endpoint:       serverURL,
		BucketName:     "photos",
		AccessKey:      "test-access",
		SecretKey:      "test-secret",
		Region:         "us-east-1",
		ForcePathStyle: true,
	})
}

// TestUpload tests a successful PUT round-trip.
func TestUpload(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ref, err := client.Upload(context.Background(), []byte("jpeg bytes"), "parents/order-1/u-1.jpg")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if gotPath != "/photos/parents/order-1/u-1.jpg" {
		t.Errorf("path = %s, want /photos/parents/order-1/u-1.jpg", gotPath)
	}
	if string(gotBody) != "jpeg bytes" {
		t.Errorf("body = %q, want payload bytes", gotBody)
	}
	if !strings.HasSuffix(ref, "/photos/parents/order-1/u-1.jpg") {
		t.Errorf("reference = %s, want object URL", ref)
	}
}

// TestUploadSignsRequest tests that auth headers are present.
func TestUploadSignsRequest(t *testing.T) {
	var auth, amzDate string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		amzDate = r.Header.Get("X-Amz-Date")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Upload(context.Background(), []byte("x"), "k"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=test-access/") {
		t.Errorf("Authorization = %q, want AWS4-HMAC-SHA256 credential header", auth)
	}
	if amzDate == "" {
		t.Error("X-Amz-Date header missing")
	}
}

// TestUploadServerError tests that non-200 responses surface as errors.
func TestUploadServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "access denied", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Upload(context.Background(), []byte("x"), "k")
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error = %v, want it to mention the status", err)
	}
}

// TestDelete tests object deletion.
func TestDelete(t *testing.T) {
	var gotMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Delete(context.Background(), "parents/order-1/u-1.jpg"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
}

// TestNewAWSClient tests regional endpoint resolution.
func TestNewAWSClient(t *testing.T) {
	client := NewAWSClient(&AWSConfig{BucketName: "b", Region: "eu-west-1"})
	if client.config.Endpoint != "s3.eu-west-1.amazonaws.com" {
		t.Errorf("endpoint = %s, want s3.eu-west-1.amazonaws.com", client.config.Endpoint)
	}

	// Unknown region falls back to the global endpoint
	client = NewAWSClient(&AWSConfig{BucketName: "b", Region: "mars-north-1"})
	if client.config.Endpoint != "s3.amazonaws.com" {
		t.Errorf("endpoint = %s, want s3.amazonaws.com", client.config.Endpoint)
	}
}

// TestNewMinIOClient tests scheme and path-style defaults.
func TestNewMinIOClient(t *testing.T) {
	client := NewMinIOClient(&MinIOConfig{Endpoint: "localhost:9000", BucketName: "b"})
	if client.config.Endpoint != "http://localhost:9000" {
		t.Errorf("endpoint = %s, want http://localhost:9000", client.config.Endpoint)
	}
	if !client.config.ForcePathStyle {
		t.Error("MinIO client must use path-style URLs")
	}

	client = NewMinIOClient(&MinIOConfig{Endpoint: "minio.example.com", BucketName: "b", UseSSL: true})
	if client.config.Endpoint != "https://minio.example.com" {
		t.Errorf("endpoint = %s, want https://minio.example.com", client.config.Endpoint)
	}
}

// TestNewR2Client tests account-scoped endpoint construction.
func TestNewR2Client(t *testing.T) {
	client := NewR2Client(&R2Config{AccountID: "abc123", BucketName: "b"})
	if client.config.Endpoint != "abc123.r2.cloudflarestorage.com" {
		t.Errorf("endpoint = %s, want abc123.r2.cloudflarestorage.com", client.config.Endpoint)
	}
	if client.config.Region != "auto" {
		t.Errorf("region = %s, want auto", client.config.Region)
	}
}
