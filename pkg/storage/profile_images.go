package storage

import (
	"context"
	"fmt"
	"time"

	"iisa-recruitment-backend/internal/domain"
)

const profileImagePrefix = "candidate-images/"

// ProfileImages implements domain.ProfileImageStore on a Bucket.
type ProfileImages struct {
	bucket *Bucket
	now    func() time.Time
}

func NewProfileImages(bucket *Bucket) *ProfileImages {
	return &ProfileImages{bucket: bucket, now: time.Now}
}

// ObjectKey is candidate-images/<unix-millis>_<sanitized-name>.jpg
func (p *ProfileImages) ObjectKey(filename string) string {
	return fmt.Sprintf("%s%d_%s.jpg", profileImagePrefix, p.now().UnixMilli(), SanitizeFilename(filename))
}

func (p *ProfileImages) UploadProfileImage(ctx context.Context, img domain.ImageUpload) (string, error) {
	if err := ValidateImage(img.Filename, img.Data); err != nil {
		return "", err
	}
	normalized, err := NormalizeImage(img.Data, MaxImageDimension, JPEGQuality)
	if err != nil {
		return "", err
	}
	return p.bucket.Upload(ctx, p.ObjectKey(img.Filename), "image/jpeg", normalized)
}

func (p *ProfileImages) DeleteProfileImage(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return p.bucket.Delete(ctx, url)
}
