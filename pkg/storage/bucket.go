package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of *s3.Client used here.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var ErrForeignURL = errors.New("storage: url does not belong to this bucket")

// Bucket stores objects and maps keys to public URLs.
type Bucket struct {
	api       ObjectAPI
	name      string
	publicURL string
}

func NewBucket(api ObjectAPI, name, publicURL string) *Bucket {
	return &Bucket{api: api, name: name, publicURL: strings.TrimRight(publicURL, "/")}
}

func (b *Bucket) URL(key string) string {
	return b.publicURL + "/" + key
}

// Key reverses URL.
func (b *Bucket) Key(url string) (string, error) {
	prefix := b.publicURL + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", ErrForeignURL
	}
	return strings.TrimPrefix(url, prefix), nil
}

func (b *Bucket) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return b.URL(key), nil
}

func (b *Bucket) Delete(ctx context.Context, url string) error {
	key, err := b.Key(url)
	if err != nil {
		return err
	}
	if _, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}
