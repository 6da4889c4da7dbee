// Package s3 provides an S3-compatible RemoteUploader implementation.
package s3

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds S3 connection configuration.
type Config struct {
	Endpoint       string
	BucketName     string
	AccessKey      string
	SecretKey      string
	Region         string
	ForcePathStyle bool // Use path-style URLs (minio, localstack)
}

// Client uploads photo payloads to S3-compatible storage. It satisfies
// the upload queue's RemoteUploader contract: calling Upload twice for
// the same payload just overwrites the same object.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new Client.
func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: false,
			},
		},
	}
}

// Upload PUTs the payload under the hinted object key and returns the
// object's public URL as the reference.
func (c *Client) Upload(ctx context.Context, payload []byte, destinationHint string) (string, error) {
	req, err := c.createRequest(ctx, http.MethodPut, destinationHint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return c.objectURL(destinationHint), nil
}

// Delete removes an object. Used by hosts that let users detach photos.
func (c *Client) Delete(ctx context.Context, key string) error {
	req, err := c.createRequest(ctx, http.MethodDelete, key, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// objectURL builds the public URL for an object key.
func (c *Client) objectURL(key string) string {
	if c.config.ForcePathStyle {
		return fmt.Sprintf("%s/%s/%s", c.config.Endpoint, c.config.BucketName, key)
	}
	return fmt.Sprintf("%s.%s/%s", c.config.BucketName, c.config.Endpoint, key)
}

// createRequest creates an S3 request with authentication.
func (c *Client) createRequest(ctx context.Context, method, key string, body io.Reader) (*http.Request, error) {
	urlStr := c.objectURL(key)

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, err
	}

	if !c.config.ForcePathStyle {
		req.Host = fmt.Sprintf("%s.%s", c.config.BucketName, c.config.Endpoint)
	}

	timestamp := time.Now().UTC()
	amzDate := timestamp.Format("20060102T150405Z")

	req.Header.Set("Host", req.Host)
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Content-Sha256", "UNSIGNED-PAYLOAD")

	authorization := c.calculateAuthorization(method, key, amzDate)
	req.Header.Set("Authorization", authorization)

	return req, nil
}

// calculateAuthorization calculates the AWS V4 signature header.
func (c *Client) calculateAuthorization(method, key, amzDate string) string {
	// Simplified AWS Signature V4; enough for S3-compatible endpoints
	// that accept UNSIGNED-PAYLOAD.
	dateStamp := amzDate[:8]
	scope := fmt.Sprintf("%s/%s/s3/aws4_request", dateStamp, c.config.Region)

	canonicalURI := "/" + c.config.BucketName + "/" + key
	canonicalQuery := ""
	canonicalHeaders := fmt.Sprintf("host:%s\nx-amz-date:%s\n",
		c.config.BucketName+"."+c.config.Endpoint, amzDate)
	signedHeaders := "host;x-amz-date"

	payloadHash := "UNSIGNED-PAYLOAD"

	canonicalRequest := fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		method, canonicalURI, canonicalQuery, canonicalHeaders, signedHeaders+" "+payloadHash)

	algorithm := "AWS4-HMAC-SHA256"
	stringToSign := fmt.Sprintf("%s\n%s\n%s\n%s",
		algorithm, amzDate, scope, hex.EncodeToString(hashSHA256([]byte(canonicalRequest))))

	kSecret := []byte("AWS4" + c.config.SecretKey)
	kDate := hmacSHA256(kSecret, dateStamp)
	kRegion := hmacSHA256(kDate, c.config.Region)
	kService := hmacSHA256(kRegion, "s3")
	kSigning := hmacSHA256(kService, "aws4_request")
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm, c.config.AccessKey, scope, signedHeaders, signature)
}

// hmacSHA256 calculates HMAC-SHA256.
func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

// hashSHA256 calculates SHA256 hash.
func hashSHA256(data []byte) []byte {
	h := sha256.New()
	h.Write(data)
	return h.Sum(nil)
}
