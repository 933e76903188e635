package media

import (
	"context"
	"errors"
	"io"
	"time"
)

// Reference is an opaque handle to a stored attachment. The booking core
// never interprets it; it only carries it between upload and playback.
type Reference string

var ErrUpload = errors.New("media upload failed")

// Store is the blob collaborator the booking workflow consumes. Upload
// must be durable before it returns: a submission carrying a Reference
// may assume the bytes are already stored.
type Store interface {
	Upload(ctx context.Context, r io.Reader, contentType string) (Reference, error)
	PlaybackURL(ctx context.Context, ref Reference, ttl time.Duration) (string, error)
}
