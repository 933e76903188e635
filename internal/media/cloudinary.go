package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary delivers audio under the "video" resource type; that is the
// bucket its API files sound recordings into.
const audioResourceType = "video"

type CloudinaryStore struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiSecret string
	folder    string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not set")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{
		cld:       cld,
		cloudName: cloudName,
		apiSecret: apiSecret,
		folder:    folder,
	}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, contentType string) (Reference, error) {
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: audioResourceType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("%w: no public id returned", ErrUpload)
	}
	return Reference(result.PublicID), nil
}

// PlaybackURL builds a short-lived signed delivery URL for an
// authenticated asset. The signature is SHA-1 over expires_at and
// public_id concatenated with the API secret.
func (s *CloudinaryStore) PlaybackURL(ctx context.Context, ref Reference, ttl time.Duration) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty media reference")
	}
	expiresAt := time.Now().Add(ttl).Unix()
	signature := signPlayback(string(ref), expiresAt, s.apiSecret)
	url := fmt.Sprintf("https://res.cloudinary.com/%s/%s/authenticated/s--%s--/expires_%d/%s",
		s.cloudName, audioResourceType, signature, expiresAt, ref)
	return url, nil
}

func signPlayback(publicID string, expiresAt int64, apiSecret string) string {
	h := sha1.New()
	fmt.Fprintf(h, "expires_at=%d&public_id=%s%s", expiresAt, publicID, apiSecret)
	return hex.EncodeToString(h.Sum(nil))
}
