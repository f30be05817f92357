package supa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"aqua/blob/blob"
	"aqua/config"
)

// Store uploads receipts to a Supabase storage bucket over its HTTP
// object API and returns the public object URL.
type Store struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
}

// NewStore reads SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY from the
// environment.
func NewStore() (blob.Store, error) {
	baseURL := os.Getenv("SUPABASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is not set")
	}
	serviceKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if serviceKey == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is not set")
	}
	return &Store{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		bucket:     config.ReceiptBucket,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Upload stores data under name in the receipts bucket.
func (s *Store) Upload(ctx context.Context, name string, data []byte) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("storage rejected %s: status %d: %s", name, resp.StatusCode, body)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name), nil
}
