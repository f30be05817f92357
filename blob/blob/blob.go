package blob

import "context"

// Store uploads receipt files and hands back a public URL. Upload is
// attempt-once; callers surface failures, nothing retries.
type Store interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}
